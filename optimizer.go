package dsl

// ============================================================================
// Expression Optimizer
// ============================================================================

// Optimize prepares exprs for evaluation against a frame with the given
// schema. Passes run in order:
//
//  1. Wildcard expansion - top-level and function inputs that allow it
//  2. Boolean reduction - all/any horizontal become and/or chains
//
// The rewritten expressions produce the same names, types and values as
// the originals.
func Optimize(schema *Schema, exprs ...Expr) ([]Expr, error) {
	expanded, err := expandExprs(exprs, schema)
	if err != nil {
		return nil, err
	}

	out := make([]Expr, len(expanded))
	for i, e := range expanded {
		// Pass 1: expand function inputs
		e, err = expandFunctionWildcards(e, schema)
		if err != nil {
			return nil, err
		}

		// Pass 2: boolean reduction
		out[i] = Simplify(e, schema)
	}
	return out, nil
}

// Simplify rewrites all_horizontal and any_horizontal nodes into chains of
// binary and/or operations aliased to "all" or "any". Only nodes whose
// inputs all resolve to Bool under schema are rewritten; nodes with
// wildcard inputs, other input types or a nil schema are left alone.
func Simplify(expr Expr, schema *Schema) Expr {
	expr = mapChildren(expr, func(e Expr) Expr { return Simplify(e, schema) })

	fe, ok := expr.(*FunctionExpr)
	if !ok || len(fe.Inputs) == 0 {
		return expr
	}

	var op BinaryOp
	var name string
	switch fe.Function {
	case AllHorizontalFn:
		op, name = OpAnd, "all"
	case AnyHorizontalFn:
		op, name = OpOr, "any"
	default:
		return expr
	}
	if !boolInputs(fe.Inputs, schema) {
		return expr
	}

	if len(fe.Inputs) == 1 {
		return &AliasExpr{Inner: &CastExpr{Inner: fe.Inputs[0], TargetType: Bool}, AliasName: name}
	}

	chain := fe.Inputs[0]
	for _, in := range fe.Inputs[1:] {
		chain = &BinaryOpExpr{Left: chain, Op: op, Right: in}
	}
	return &AliasExpr{Inner: chain, AliasName: name}
}

// boolInputs reports whether every input is a single Bool column under schema
func boolInputs(inputs []Expr, schema *Schema) bool {
	if schema == nil {
		return false
	}
	for _, in := range inputs {
		if isMultiOutput(in) {
			return false
		}
		f, err := OutputField(in, schema)
		if err != nil || f.DType != Bool {
			return false
		}
	}
	return true
}

// expandFunctionWildcards expands wildcard inputs of every function node in
// the tree that carries FlagInputWildcardExpansion
func expandFunctionWildcards(expr Expr, schema *Schema) (Expr, error) {
	var firstErr error
	var visit func(Expr) Expr
	visit = func(e Expr) Expr {
		e = mapChildren(e, visit)
		if firstErr != nil {
			return e
		}
		switch fe := e.(type) {
		case *AnonymousFunctionExpr:
			inputs, err := fe.expandInputs(schema)
			if err != nil {
				firstErr = err
				return e
			}
			return fe.withInputs(inputs)
		case *FunctionExpr:
			inputs, err := expandFunctionInputs(fe.Options.FmtStr, fe.Inputs, fe.Options, schema)
			if err != nil {
				firstErr = err
				return e
			}
			return fe.withInputs(inputs)
		}
		return e
	}
	out := visit(expr)
	return out, firstErr
}

// mapChildren returns a copy of expr with fn applied to each direct child.
// Leaves are returned unchanged.
func mapChildren(expr Expr, fn func(Expr) Expr) Expr {
	switch e := expr.(type) {
	case *AliasExpr:
		return &AliasExpr{Inner: fn(e.Inner), AliasName: e.AliasName}
	case *CastExpr:
		return &CastExpr{Inner: fn(e.Inner), TargetType: e.TargetType}
	case *BinaryOpExpr:
		return &BinaryOpExpr{Left: fn(e.Left), Op: e.Op, Right: fn(e.Right)}
	case *IsNullExpr:
		return &IsNullExpr{Input: fn(e.Input)}
	case *IsNotNullExpr:
		return &IsNotNullExpr{Input: fn(e.Input)}
	case *AnonymousFunctionExpr:
		return e.withInputs(mapExprs(e.Inputs, fn))
	case *FunctionExpr:
		return e.withInputs(mapExprs(e.Inputs, fn))
	default:
		return expr
	}
}

func mapExprs(exprs []Expr, fn func(Expr) Expr) []Expr {
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = fn(e)
	}
	return out
}
