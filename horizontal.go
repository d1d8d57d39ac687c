package dsl

import (
	"fmt"
)

func errEmptyFold() error {
	return fmt.Errorf("%w: cannot return empty fold because the number of output rows is unknown", ErrCompute)
}

func newHorizontal(fn HorizontalFunction, opts FunctionOptions, exprs []Expr) *FunctionExpr {
	opts.FmtStr = fn.String()
	return &FunctionExpr{
		Inputs:   append([]Expr(nil), exprs...),
		Function: fn,
		Options:  opts,
	}
}

// ============================================================================
// Boolean
// ============================================================================

func booleanHorizontalOptions() FunctionOptions {
	opts := DefaultFunctionOptions()
	opts.Flags = DefaultFunctionFlags().
		Set(FlagInputWildcardExpansion).
		Set(FlagAllowEmptyInputs)
	return opts
}

// AllHorizontal computes the row-wise logical AND of Bool inputs using
// Kleene logic. The output column is named "all".
func AllHorizontal(exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	return newHorizontal(AllHorizontalFn, booleanHorizontalOptions(), exprs), nil
}

// AnyHorizontal computes the row-wise logical OR of Bool inputs using
// Kleene logic. The output column is named "any".
func AnyHorizontal(exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	return newHorizontal(AnyHorizontalFn, booleanHorizontalOptions(), exprs), nil
}

// ============================================================================
// Min / Max
// ============================================================================

func minMaxHorizontalOptions() FunctionOptions {
	return FunctionOptions{
		CollectGroups: ElementWise,
		Flags: DefaultFunctionFlags().
			Set(FlagInputWildcardExpansion).
			Clear(FlagReturnsScalar).
			Set(FlagAllowRename),
		CastOptions: CastNone,
	}
}

// MaxHorizontal computes the maximum non-null value in each row. The output
// column is named "max".
func MaxHorizontal(exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	return newHorizontal(MaxHorizontalFn, minMaxHorizontalOptions(), exprs), nil
}

// MinHorizontal computes the minimum non-null value in each row. The output
// column is named "min".
func MinHorizontal(exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	return newHorizontal(MinHorizontalFn, minMaxHorizontalOptions(), exprs), nil
}

// ============================================================================
// Sum / Mean
// ============================================================================

func sumMeanHorizontalOptions() FunctionOptions {
	return FunctionOptions{
		CollectGroups: ElementWise,
		Flags: DefaultFunctionFlags().
			Set(FlagInputWildcardExpansion).
			Clear(FlagReturnsScalar),
		CastOptions: CastNone,
	}
}

// SumHorizontal sums the inputs in each row. With ignoreNulls, nulls count
// as zero; otherwise a null anywhere in the row makes the sum null.
func SumHorizontal(ignoreNulls bool, exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	e := newHorizontal(SumHorizontalFn, sumMeanHorizontalOptions(), exprs)
	e.IgnoreNulls = ignoreNulls
	return e, nil
}

// MeanHorizontal averages the inputs in each row. With ignoreNulls the mean
// is taken over the non-null values only.
func MeanHorizontal(ignoreNulls bool, exprs ...Expr) (*FunctionExpr, error) {
	if len(exprs) == 0 {
		return nil, errEmptyFold()
	}
	e := newHorizontal(MeanHorizontalFn, sumMeanHorizontalOptions(), exprs)
	e.IgnoreNulls = ignoreNulls
	return e, nil
}

// ============================================================================
// Coalesce
// ============================================================================

// Coalesce keeps the first non-null value of each row, scanning the inputs
// left to right. Inputs are cast to their supertype first.
// Coalescing zero inputs is only reported at evaluation.
func Coalesce(exprs ...Expr) *FunctionExpr {
	opts := FunctionOptions{
		CollectGroups: ElementWise,
		Flags:         DefaultFunctionFlags().Set(FlagInputWildcardExpansion),
		CastOptions:   CastToSupertypes,
	}
	return newHorizontal(CoalesceFn, opts, exprs)
}
