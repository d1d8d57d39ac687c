package dsl

import (
	"fmt"
)

// ============================================================================
// Wildcard Expansion
// ============================================================================

// isMultiOutput reports whether e stands for a variable number of columns
func isMultiOutput(e Expr) bool {
	switch e.(type) {
	case *WildcardExpr, *ColsExpr:
		return true
	default:
		return false
	}
}

// expandExpr replaces a wildcard or multi-column selection with one column
// reference per matching column. Other expressions are returned unchanged.
func expandExpr(e Expr, schema *Schema) ([]Expr, error) {
	switch ex := e.(type) {
	case *WildcardExpr:
		names := schema.Names()
		out := make([]Expr, len(names))
		for i, name := range names {
			out[i] = Col(name)
		}
		return out, nil

	case *ColsExpr:
		out := make([]Expr, len(ex.Names))
		for i, name := range ex.Names {
			if _, ok := schema.Get(name); !ok {
				return nil, fmt.Errorf("%w: column '%s' not found", ErrColumnNotFound, name)
			}
			out[i] = Col(name)
		}
		return out, nil

	default:
		return []Expr{e}, nil
	}
}

// expandExprs expands every top-level wildcard in exprs, preserving order
func expandExprs(exprs []Expr, schema *Schema) ([]Expr, error) {
	out := make([]Expr, 0, len(exprs))
	for _, e := range exprs {
		expanded, err := expandExpr(e, schema)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

// expandFunctionInputs expands the inputs of a function node according to
// its FlagInputWildcardExpansion flag.
func expandFunctionInputs(name string, inputs []Expr, opts FunctionOptions, schema *Schema) ([]Expr, error) {
	if opts.Flags.Contains(FlagInputWildcardExpansion) {
		return expandExprs(inputs, schema)
	}
	for _, in := range inputs {
		if isMultiOutput(in) {
			return nil, fmt.Errorf("%w: %s does not accept multi-column input %s", ErrCompute, name, in)
		}
	}
	return inputs, nil
}

// ============================================================================
// Output Schema Resolution
// ============================================================================

// OutputField predicts the name and type expr produces when evaluated
// against a frame with the given schema.
func OutputField(expr Expr, schema *Schema) (Field, error) {
	switch e := expr.(type) {
	case *ColExpr:
		f, ok := schema.Get(e.Name)
		if !ok {
			return Field{}, fmt.Errorf("%w: column '%s' not found", ErrColumnNotFound, e.Name)
		}
		return f, nil

	case *LitExpr:
		dt, err := literalDType(e.Value)
		if err != nil {
			return Field{}, err
		}
		return NewField("literal", dt), nil

	case *AliasExpr:
		f, err := OutputField(e.Inner, schema)
		if err != nil {
			return Field{}, err
		}
		return f.WithName(e.AliasName), nil

	case *CastExpr:
		f, err := OutputField(e.Inner, schema)
		if err != nil {
			return Field{}, err
		}
		if e.TargetType == Struct {
			return Field{}, fmt.Errorf("%w: cannot cast '%s' to a bare Struct", ErrSchema, f.Name)
		}
		return NewField(f.Name, e.TargetType), nil

	case *BinaryOpExpr:
		left, err := OutputField(e.Left, schema)
		if err != nil {
			return Field{}, err
		}
		right, err := OutputField(e.Right, schema)
		if err != nil {
			return Field{}, err
		}
		if e.Op.isComparison() || e.Op.isLogical() {
			return NewField(left.Name, Bool), nil
		}
		st, err := superTypeField(left, right)
		if err != nil {
			return Field{}, err
		}
		return st, nil

	case *IsNullExpr:
		f, err := OutputField(e.Input, schema)
		if err != nil {
			return Field{}, err
		}
		return NewField(f.Name, Bool), nil

	case *IsNotNullExpr:
		f, err := OutputField(e.Input, schema)
		if err != nil {
			return Field{}, err
		}
		return NewField(f.Name, Bool), nil

	case *AnonymousFunctionExpr:
		inputs, err := e.expandInputs(schema)
		if err != nil {
			return Field{}, err
		}
		fields, err := inputFields(inputs, schema)
		if err != nil {
			return Field{}, err
		}
		return e.OutputType.ResolveField(fields)

	case *FunctionExpr:
		inputs, err := expandFunctionInputs(e.Options.FmtStr, e.Inputs, e.Options, schema)
		if err != nil {
			return Field{}, err
		}
		if len(inputs) == 0 && e.Options.Flags.Contains(FlagAllowEmptyInputs) {
			if f, ok := emptyBooleanField(e.Function); ok {
				return f, nil
			}
		}
		fields, err := inputFields(inputs, schema)
		if err != nil {
			return Field{}, err
		}
		return horizontalOutputField(e.Function, fields)

	case *WildcardExpr, *ColsExpr:
		return Field{}, fmt.Errorf("%w: %s expands to several columns; use OutputSchema", ErrCompute, expr)

	default:
		return Field{}, fmt.Errorf("cannot resolve expression type: %T", expr)
	}
}

// OutputSchema predicts the columns a Select of exprs produces, expanding
// top-level wildcards.
func OutputSchema(schema *Schema, exprs ...Expr) (*Schema, error) {
	expanded, err := expandExprs(exprs, schema)
	if err != nil {
		return nil, err
	}
	fields, err := inputFields(expanded, schema)
	if err != nil {
		return nil, err
	}
	return NewSchema(fields...)
}

func inputFields(inputs []Expr, schema *Schema) ([]Field, error) {
	fields := make([]Field, len(inputs))
	for i, in := range inputs {
		f, err := OutputField(in, schema)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return fields, nil
}

// emptyBooleanField is the output of all/any when a wildcard expanded to
// nothing: the identity element of the operation.
func emptyBooleanField(fn HorizontalFunction) (Field, bool) {
	switch fn {
	case AllHorizontalFn:
		return NewField("all", Bool), true
	case AnyHorizontalFn:
		return NewField("any", Bool), true
	default:
		return Field{}, false
	}
}
