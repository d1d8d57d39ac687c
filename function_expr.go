package dsl

import (
	"fmt"
)

// ColumnsUDF computes one output column from the evaluated input columns of
// a function node. It may be called concurrently for different groups and
// must not modify its arguments.
type ColumnsUDF func(cols []*Column) (*Column, error)

// ============================================================================
// Anonymous Function Expression
// ============================================================================

// AnonymousFunctionExpr is a function node backed by a Go closure.
// Nodes are immutable once built; the planner and executor read the exported
// fields but never change them.
type AnonymousFunctionExpr struct {
	Inputs     []Expr
	Function   ColumnsUDF
	OutputType OutputTypeResolver
	Options    FunctionOptions

	seeded bool // last input is a fold accumulator
}

func (e *AnonymousFunctionExpr) String() string {
	return fmt.Sprintf("%s(%s)", e.Options.FmtStr, joinExprs(e.Inputs))
}

// Clone copies the input tree. The closure and resolver are shared.
func (e *AnonymousFunctionExpr) Clone() Expr {
	return &AnonymousFunctionExpr{
		Inputs:     cloneExprs(e.Inputs),
		Function:   e.Function,
		OutputType: e.OutputType,
		Options:    e.Options,
		seeded:     e.seeded,
	}
}

func (e *AnonymousFunctionExpr) columns() []string  { return exprsColumns(e.Inputs) }
func (e *AnonymousFunctionExpr) exprType() exprKind { return exprAnonymousFunction }

func (e *AnonymousFunctionExpr) Alias(name string) *AliasExpr {
	return &AliasExpr{Inner: e, AliasName: name}
}

// expandInputs expands the node's inputs against schema. A fold accumulator
// must stand for exactly one column.
func (e *AnonymousFunctionExpr) expandInputs(schema *Schema) ([]Expr, error) {
	if e.seeded && len(e.Inputs) > 0 {
		acc := e.Inputs[len(e.Inputs)-1]
		if isMultiOutput(acc) && e.Options.Flags.Contains(FlagInputWildcardExpansion) {
			cols, err := expandExpr(acc, schema)
			if err != nil {
				return nil, err
			}
			if len(cols) != 1 {
				return nil, fmt.Errorf("%w: `%s` accumulator %s must be a single column, got %d",
					ErrCompute, e.Options.FmtStr, acc, len(cols))
			}
		}
	}
	return expandFunctionInputs(e.Options.FmtStr, e.Inputs, e.Options, schema)
}

// withInputs returns a copy of the node over different inputs
func (e *AnonymousFunctionExpr) withInputs(inputs []Expr) *AnonymousFunctionExpr {
	c := *e
	c.Inputs = inputs
	return &c
}

// ============================================================================
// Horizontal Function Expression
// ============================================================================

// HorizontalFunction tags a built-in row-wise function. The executor picks
// the kernel from the tag; there is no closure.
type HorizontalFunction uint8

const (
	AllHorizontalFn HorizontalFunction = iota
	AnyHorizontalFn
	MaxHorizontalFn
	MinHorizontalFn
	SumHorizontalFn
	MeanHorizontalFn
	CoalesceFn
)

func (f HorizontalFunction) String() string {
	switch f {
	case AllHorizontalFn:
		return "all_horizontal"
	case AnyHorizontalFn:
		return "any_horizontal"
	case MaxHorizontalFn:
		return "max_horizontal"
	case MinHorizontalFn:
		return "min_horizontal"
	case SumHorizontalFn:
		return "sum_horizontal"
	case MeanHorizontalFn:
		return "mean_horizontal"
	case CoalesceFn:
		return "coalesce"
	default:
		return "?"
	}
}

// FunctionExpr is a built-in horizontal function node
type FunctionExpr struct {
	Inputs   []Expr
	Function HorizontalFunction

	// IgnoreNulls is only read for SumHorizontalFn and MeanHorizontalFn
	IgnoreNulls bool

	Options FunctionOptions
}

func (e *FunctionExpr) String() string {
	switch e.Function {
	case SumHorizontalFn, MeanHorizontalFn:
		return fmt.Sprintf("%s(%s, ignore_nulls=%t)", e.Options.FmtStr, joinExprs(e.Inputs), e.IgnoreNulls)
	default:
		return fmt.Sprintf("%s(%s)", e.Options.FmtStr, joinExprs(e.Inputs))
	}
}

func (e *FunctionExpr) Clone() Expr {
	return &FunctionExpr{
		Inputs:      cloneExprs(e.Inputs),
		Function:    e.Function,
		IgnoreNulls: e.IgnoreNulls,
		Options:     e.Options,
	}
}

func (e *FunctionExpr) columns() []string  { return exprsColumns(e.Inputs) }
func (e *FunctionExpr) exprType() exprKind { return exprFunction }

func (e *FunctionExpr) Alias(name string) *AliasExpr {
	return &AliasExpr{Inner: e, AliasName: name}
}

func (e *FunctionExpr) withInputs(inputs []Expr) *FunctionExpr {
	c := *e
	c.Inputs = inputs
	return &c
}
