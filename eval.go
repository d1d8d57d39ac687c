package dsl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow/compute"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Entry Points
// ============================================================================

// Evaluate computes a single-output expression against one frame using the
// global EvalConfig.
func Evaluate(ctx context.Context, expr Expr, frame *Frame) (*Column, error) {
	ev := newEvaluator(GetEvalConfig())
	return ev.eval(ev.withAllocator(ctx), expr, frame)
}

// EvaluateAll evaluates exprs against frame, expanding top-level wildcards
// and multi-column selections into one result per column.
func EvaluateAll(ctx context.Context, frame *Frame, exprs ...Expr) ([]*Column, error) {
	ev := newEvaluator(GetEvalConfig())
	ctx = ev.withAllocator(ctx)
	expanded, err := expandExprs(exprs, frame.Schema())
	if err != nil {
		return nil, err
	}
	out := make([]*Column, len(expanded))
	for i, e := range expanded {
		if out[i], err = ev.eval(ctx, e, frame); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// EvaluateGroups evaluates expr once per group and returns one column per
// group, in group order.
//
// Trees made only of element-wise operations run once over the concatenated
// groups and are split back afterwards. Anything containing a GroupWise
// function runs per group, concurrently when the config allows it.
func EvaluateGroups(ctx context.Context, expr Expr, groups []*Frame) ([]*Column, error) {
	ev := newEvaluator(GetEvalConfig())
	return ev.evalGroups(ev.withAllocator(ctx), expr, groups)
}

// ============================================================================
// Evaluator
// ============================================================================

type evaluator struct {
	cfg *EvalConfig
	log *slog.Logger
}

func newEvaluator(cfg *EvalConfig) *evaluator {
	return &evaluator{cfg: cfg, log: cfg.logger()}
}

// withAllocator attaches the configured allocator to ctx; compute kernels
// and the evaluator's own builders read it back with compute.GetAllocator.
func (ev *evaluator) withAllocator(ctx context.Context) context.Context {
	return compute.WithAllocator(ctx, ev.cfg.allocator())
}

func (ev *evaluator) evalGroups(ctx context.Context, expr Expr, groups []*Frame) ([]*Column, error) {
	if len(groups) == 0 {
		return nil, nil
	}

	if isElementWiseTree(expr) && len(groups) > 1 {
		ev.log.Debug("evaluating element-wise expression over concatenated groups",
			"expr", expr.String(), "groups", len(groups))
		all, err := concatFrames(groups, compute.GetAllocator(ctx))
		if err != nil {
			return nil, err
		}
		col, err := ev.eval(ctx, expr, all)
		if err != nil {
			return nil, err
		}
		heights := make([]int, len(groups))
		for i, g := range groups {
			heights[i] = g.Height()
		}
		if col.Len() != all.Height() {
			return nil, fmt.Errorf("%w: element-wise result has %d rows, input has %d", ErrCompute, col.Len(), all.Height())
		}
		return splitColumn(col, heights), nil
	}

	workers := ev.cfg.numWorkers()
	ev.log.Debug("evaluating expression per group",
		"expr", expr.String(), "groups", len(groups), "workers", workers)

	out := make([]*Column, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, group := range groups {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			col, err := ev.eval(gctx, expr, group)
			if err != nil {
				return fmt.Errorf("group %d: %w", i, err)
			}
			out[i] = col
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// eval evaluates an expression on a Frame and returns a Column
func (ev *evaluator) eval(ctx context.Context, expr Expr, frame *Frame) (*Column, error) {
	switch e := expr.(type) {
	case *ColExpr:
		col := frame.Column(e.Name)
		if col == nil {
			return nil, fmt.Errorf("%w: column '%s' not found", ErrColumnNotFound, e.Name)
		}
		return col, nil

	case *LitExpr:
		return literalColumn("literal", e.Value, frame.Height())

	case *AliasExpr:
		col, err := ev.eval(ctx, e.Inner, frame)
		if err != nil {
			return nil, err
		}
		return col.Rename(e.AliasName), nil

	case *CastExpr:
		col, err := ev.eval(ctx, e.Inner, frame)
		if err != nil {
			return nil, err
		}
		return col.CastTo(ctx, e.TargetType)

	case *BinaryOpExpr:
		return ev.evalBinaryOp(ctx, e, frame)

	case *IsNullExpr:
		col, err := ev.eval(ctx, e.Input, frame)
		if err != nil {
			return nil, err
		}
		return nullMask(col, true), nil

	case *IsNotNullExpr:
		col, err := ev.eval(ctx, e.Input, frame)
		if err != nil {
			return nil, err
		}
		return nullMask(col, false), nil

	case *AnonymousFunctionExpr:
		return ev.evalAnonymous(ctx, e, frame)

	case *FunctionExpr:
		return ev.evalFunction(ctx, e, frame)

	case *WildcardExpr, *ColsExpr:
		return nil, fmt.Errorf("%w: cannot evaluate %s directly; use it in Select or as a function input", ErrCompute, expr)

	default:
		return nil, fmt.Errorf("cannot evaluate expression type: %T", expr)
	}
}

// evalBinaryOp evaluates a binary operation
func (ev *evaluator) evalBinaryOp(ctx context.Context, e *BinaryOpExpr, frame *Frame) (*Column, error) {
	left, err := ev.eval(ctx, e.Left, frame)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(ctx, e.Right, frame)
	if err != nil {
		return nil, err
	}

	switch {
	case e.Op == OpAnd:
		return left.And(ctx, right)
	case e.Op == OpOr:
		return left.Or(ctx, right)
	case e.Op.isComparison():
		return left.Compare(ctx, e.Op, right)
	default:
		return left.arith(ctx, right, e.Op)
	}
}

// evalInputs evaluates the expanded inputs of a function node
func (ev *evaluator) evalInputs(ctx context.Context, name string, inputs []Expr, opts FunctionOptions, frame *Frame) ([]*Column, error) {
	expanded, err := expandFunctionInputs(name, inputs, opts, frame.Schema())
	if err != nil {
		return nil, err
	}
	if len(expanded) != len(inputs) {
		ev.log.Debug("expanded function inputs", "function", name, "before", len(inputs), "after", len(expanded))
	}
	cols := make([]*Column, len(expanded))
	for i, in := range expanded {
		if cols[i], err = ev.eval(ctx, in, frame); err != nil {
			return nil, err
		}
	}
	return cols, nil
}

func (ev *evaluator) evalAnonymous(ctx context.Context, e *AnonymousFunctionExpr, frame *Frame) (*Column, error) {
	inputs, err := e.expandInputs(frame.Schema())
	if err != nil {
		return nil, err
	}
	cols, err := ev.evalInputs(ctx, e.Options.FmtStr, inputs, e.Options, frame)
	if err != nil {
		return nil, err
	}

	res, err := e.Function(cols)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Options.FmtStr, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: %s returned no column", ErrCompute, e.Options.FmtStr)
	}

	if !e.Options.AllowRename() {
		fields := make([]Field, len(cols))
		for i, c := range cols {
			fields[i] = c.Field()
		}
		out, err := e.OutputType.ResolveField(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Options.FmtStr, err)
		}
		res = res.Rename(out.Name)
	}
	return ev.fitHeight(ctx, res, e.Options, frame)
}

func (ev *evaluator) evalFunction(ctx context.Context, e *FunctionExpr, frame *Frame) (*Column, error) {
	cols, err := ev.evalInputs(ctx, e.Options.FmtStr, e.Inputs, e.Options, frame)
	if err != nil {
		return nil, err
	}

	if len(cols) == 0 && e.Options.Flags.Contains(FlagAllowEmptyInputs) {
		if f, ok := emptyBooleanField(e.Function); ok {
			return literalColumn(f.Name, e.Function == AllHorizontalFn, frame.Height())
		}
	}

	if e.Options.CastOptions == CastToSupertypes && len(cols) > 0 {
		fields := make([]Field, len(cols))
		for i, c := range cols {
			fields[i] = c.Field()
		}
		st, err := superTypeOfFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Options.FmtStr, err)
		}
		ev.log.Debug("casting function inputs to supertype", "function", e.Options.FmtStr, "dtype", st.TypeString())
		for i, c := range cols {
			if cols[i], err = c.Cast(ctx, st.WithName(c.Name())); err != nil {
				return nil, err
			}
		}
	}

	res, err := evalHorizontal(ctx, e, cols)
	if err != nil {
		return nil, err
	}
	return ev.fitHeight(ctx, res, e.Options, frame)
}

// fitHeight broadcasts a scalar result of a RETURNS_SCALAR function to the
// frame height
func (ev *evaluator) fitHeight(ctx context.Context, res *Column, opts FunctionOptions, frame *Frame) (*Column, error) {
	if res.Len() == 1 && frame.Height() != 1 && opts.ReturnsScalar() {
		return res.broadcast(ctx, frame.Height())
	}
	return res, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

// isElementWiseTree reports whether every node of expr computes each output
// row from the same input row only
func isElementWiseTree(expr Expr) bool {
	switch e := expr.(type) {
	case *ColExpr, *LitExpr, *WildcardExpr, *ColsExpr:
		return true
	case *AliasExpr:
		return isElementWiseTree(e.Inner)
	case *CastExpr:
		return isElementWiseTree(e.Inner)
	case *BinaryOpExpr:
		return isElementWiseTree(e.Left) && isElementWiseTree(e.Right)
	case *IsNullExpr:
		return isElementWiseTree(e.Input)
	case *IsNotNullExpr:
		return isElementWiseTree(e.Input)
	case *AnonymousFunctionExpr:
		return e.Options.IsElementWise() && allElementWise(e.Inputs)
	case *FunctionExpr:
		return e.Options.IsElementWise() && allElementWise(e.Inputs)
	default:
		return false
	}
}

func allElementWise(exprs []Expr) bool {
	for _, e := range exprs {
		if !isElementWiseTree(e) {
			return false
		}
	}
	return true
}

// nullMask returns a Bool column marking null (or non-null) rows
func nullMask(col *Column, wantNull bool) *Column {
	data := make([]bool, col.Len())
	for i := range data {
		data[i] = col.IsNull(i) == wantNull
	}
	return NewColumnBool(col.Name(), data)
}
