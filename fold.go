package dsl

import (
	"fmt"
)

// Combiner merges the running accumulator with the next input column.
//
// Combine may be called concurrently from several goroutines, once per group,
// and must not modify acc or next. Returning (nil, nil) declines the step and
// leaves the accumulator unchanged.
type Combiner interface {
	Combine(acc, next *Column) (*Column, error)
}

// CombineFunc adapts an ordinary function to the Combiner interface
type CombineFunc func(acc, next *Column) (*Column, error)

// Combine calls f(acc, next)
func (f CombineFunc) Combine(acc, next *Column) (*Column, error) {
	return f(acc, next)
}

func accumulatorOptions(fmtStr string) FunctionOptions {
	return FunctionOptions{
		CollectGroups: GroupWise,
		Flags: DefaultFunctionFlags().
			Set(FlagInputWildcardExpansion).
			Set(FlagReturnsScalar),
		CastOptions: CastNone,
		FmtStr:      fmtStr,
	}
}

func errNoAccumulator(name string) error {
	return fmt.Errorf("%w: `%s` has no accumulator column", ErrCompute, name)
}

// foldColumns runs f over cols starting from acc. When record is non-nil
// it is called with the accumulator after every step, renamed to the name
// of that step's input.
func foldColumns(f Combiner, acc *Column, cols []*Column, record func(*Column)) (*Column, error) {
	for _, c := range cols {
		next, err := f.Combine(acc, c)
		if err != nil {
			return nil, err
		}
		if next != nil {
			acc = next
		}
		if record != nil {
			record(acc.Rename(c.Name()))
		}
	}
	return acc, nil
}

// ============================================================================
// Fold / Reduce
// ============================================================================

// Fold accumulates over exprs from left to right, starting from acc.
//
// The node's inputs are exprs followed by acc. At evaluation the last column
// is taken as the seed and f is applied with each remaining column in order.
// The output is typed as the supertype of all inputs and named after the
// first one. acc must evaluate to a single column; a selection expanding to
// any other number of columns is an evaluation error.
func Fold(acc Expr, f Combiner, exprs ...Expr) *AnonymousFunctionExpr {
	inputs := make([]Expr, 0, len(exprs)+1)
	inputs = append(inputs, exprs...)
	inputs = append(inputs, acc)

	fn := func(cols []*Column) (*Column, error) {
		if len(cols) == 0 {
			return nil, errNoAccumulator("fold")
		}
		seed := cols[len(cols)-1]
		return foldColumns(f, seed, cols[:len(cols)-1], nil)
	}

	return &AnonymousFunctionExpr{
		Inputs:     inputs,
		Function:   fn,
		OutputType: SuperTypeResolver(),
		Options:    accumulatorOptions("fold"),
		seeded:     true,
	}
}

// Reduce is Fold seeded with the first input instead of a separate
// accumulator. Reducing over zero inputs is an evaluation-time error.
func Reduce(f Combiner, exprs ...Expr) *AnonymousFunctionExpr {
	fn := func(cols []*Column) (*Column, error) {
		if len(cols) == 0 {
			return nil, fmt.Errorf("%w: `reduce` did not have any expressions to fold", ErrCompute)
		}
		return foldColumns(f, cols[0], cols[1:], nil)
	}

	return &AnonymousFunctionExpr{
		Inputs:     append([]Expr(nil), exprs...),
		Function:   fn,
		OutputType: SuperTypeResolver(),
		Options:    accumulatorOptions("reduce"),
	}
}

// ============================================================================
// Cumulative Fold / Reduce
// ============================================================================

// CumReduce is Reduce that keeps every intermediate accumulator. The result
// is a Struct column with one field per input, each holding the accumulator
// after that input was combined and named after it.
func CumReduce(f Combiner, exprs ...Expr) *AnonymousFunctionExpr {
	fn := func(cols []*Column) (*Column, error) {
		if len(cols) == 0 {
			return nil, fmt.Errorf("%w: `reduce` did not have any expressions to fold", ErrCompute)
		}
		seed := cols[0]
		snapshots := []*Column{seed.Clone()}
		if _, err := foldColumns(f, seed, cols[1:], func(c *Column) {
			snapshots = append(snapshots, c)
		}); err != nil {
			return nil, err
		}
		return NewStructColumn(snapshots[0].Name(), snapshots[0].Len(), snapshots)
	}

	return &AnonymousFunctionExpr{
		Inputs:     append([]Expr(nil), exprs...),
		Function:   fn,
		OutputType: cumFoldDType(false, false),
		Options:    accumulatorOptions("cum_reduce"),
	}
}

// CumFold is Fold that keeps every intermediate accumulator as a field of a
// Struct column. With includeInit the seed is recorded as the first field.
// A step the combiner declines still produces a field, holding the
// unchanged accumulator. A CumFold with no exprs and includeInit false has nothing to record and
// fails at evaluation.
func CumFold(acc Expr, f Combiner, includeInit bool, exprs ...Expr) *AnonymousFunctionExpr {
	inputs := make([]Expr, 0, len(exprs)+1)
	inputs = append(inputs, exprs...)
	inputs = append(inputs, acc)

	fn := func(cols []*Column) (*Column, error) {
		if len(cols) == 0 {
			return nil, errNoAccumulator("cum_fold")
		}
		seed := cols[len(cols)-1]
		var snapshots []*Column
		if includeInit {
			snapshots = append(snapshots, seed.Clone())
		}
		if _, err := foldColumns(f, seed, cols[:len(cols)-1], func(c *Column) {
			snapshots = append(snapshots, c)
		}); err != nil {
			return nil, err
		}
		if len(snapshots) == 0 {
			return nil, fmt.Errorf("%w: `cum_fold` produced no snapshots", ErrCompute)
		}
		return NewStructColumn(snapshots[0].Name(), snapshots[0].Len(), snapshots)
	}

	return &AnonymousFunctionExpr{
		Inputs:     inputs,
		Function:   fn,
		OutputType: cumFoldDType(true, includeInit),
		Options:    accumulatorOptions("cum_fold"),
		seeded:     true,
	}
}
