package dsl

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
)

// ============================================================================
// Output Schema
// ============================================================================

// horizontalOutputField predicts the output of a built-in horizontal
// function from its expanded input fields.
func horizontalOutputField(fn HorizontalFunction, fields []Field) (Field, error) {
	if len(fields) == 0 {
		if fn == CoalesceFn {
			return Field{}, fmt.Errorf("%w: cannot coalesce zero inputs", ErrCompute)
		}
		return Field{}, errEmptyFold()
	}

	switch fn {
	case AllHorizontalFn, AnyHorizontalFn:
		for _, f := range fields {
			if f.DType != Bool && f.DType != Null {
				return Field{}, fmt.Errorf("%w: %s expects Bool inputs, got %s for '%s'",
					ErrSchema, fn, f.TypeString(), f.Name)
			}
		}
		name := "all"
		if fn == AnyHorizontalFn {
			name = "any"
		}
		return NewField(name, Bool), nil

	case MaxHorizontalFn, MinHorizontalFn:
		st, err := superTypeOfFields(fields)
		if err != nil {
			return Field{}, err
		}
		if st.DType == Struct || st.DType == Bool {
			return Field{}, fmt.Errorf("%w: %s not supported for %s", ErrSchema, fn, st.TypeString())
		}
		name := "max"
		if fn == MinHorizontalFn {
			name = "min"
		}
		return st.WithName(name), nil

	case SumHorizontalFn:
		st, err := superTypeOfFields(fields)
		if err != nil {
			return Field{}, err
		}
		switch {
		case st.DType == Bool:
			return NewField(st.Name, UInt32), nil
		case st.DType == Null:
			return NewField(st.Name, Int64), nil
		case st.DType.IsNumeric():
			return st, nil
		default:
			return Field{}, fmt.Errorf("%w: sum_horizontal not supported for %s", ErrSchema, st.TypeString())
		}

	case MeanHorizontalFn:
		st, err := superTypeOfFields(fields)
		if err != nil {
			return Field{}, err
		}
		if !st.DType.IsNumeric() && st.DType != Bool && st.DType != Null {
			return Field{}, fmt.Errorf("%w: mean_horizontal not supported for %s", ErrSchema, st.TypeString())
		}
		if st.DType == Float32 {
			return st, nil
		}
		return NewField(st.Name, Float64), nil

	case CoalesceFn:
		return superTypeOfFields(fields)

	default:
		return Field{}, fmt.Errorf("%w: unknown horizontal function %d", ErrCompute, fn)
	}
}

// ============================================================================
// Kernels
// ============================================================================

// evalHorizontal runs a built-in horizontal function over evaluated inputs
// of equal length.
func evalHorizontal(ctx context.Context, e *FunctionExpr, cols []*Column) (*Column, error) {
	fields := make([]Field, len(cols))
	for i, c := range cols {
		fields[i] = c.Field()
	}
	out, err := horizontalOutputField(e.Function, fields)
	if err != nil {
		return nil, err
	}
	for _, c := range cols[1:] {
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("%w: %s inputs differ in length: '%s' has %d rows, '%s' has %d",
				ErrCompute, e.Function, cols[0].Name(), cols[0].Len(), c.Name(), c.Len())
		}
	}

	switch e.Function {
	case AllHorizontalFn:
		return booleanHorizontal(ctx, cols, out.Name, (*Column).And)
	case AnyHorizontalFn:
		return booleanHorizontal(ctx, cols, out.Name, (*Column).Or)
	case MaxHorizontalFn:
		return minMaxHorizontal(ctx, cols, out, true)
	case MinHorizontalFn:
		return minMaxHorizontal(ctx, cols, out, false)
	case SumHorizontalFn:
		return sumHorizontal(ctx, cols, out, e.IgnoreNulls)
	case MeanHorizontalFn:
		return meanHorizontal(ctx, cols, out, e.IgnoreNulls)
	case CoalesceFn:
		return coalesceColumns(ctx, cols, out)
	default:
		return nil, fmt.Errorf("%w: unknown horizontal function %d", ErrCompute, e.Function)
	}
}

func castAll(ctx context.Context, cols []*Column, target Field) ([]*Column, error) {
	out := make([]*Column, len(cols))
	for i, c := range cols {
		cast, err := c.Cast(ctx, target)
		if err != nil {
			return nil, err
		}
		out[i] = cast
	}
	return out, nil
}

type boolOp func(*Column, context.Context, *Column) (*Column, error)

func booleanHorizontal(ctx context.Context, cols []*Column, name string, op boolOp) (*Column, error) {
	acc, err := cols[0].CastTo(ctx, Bool)
	if err != nil {
		return nil, err
	}
	for _, c := range cols[1:] {
		if acc, err = op(acc, ctx, c); err != nil {
			return nil, err
		}
	}
	return acc.Rename(name), nil
}

// minMaxHorizontal picks, per row, the input holding the extreme non-null
// value and gathers it with a single take over the concatenated inputs.
func minMaxHorizontal(ctx context.Context, cols []*Column, out Field, wantMax bool) (*Column, error) {
	if out.DType == Null {
		return NewNullColumn(out.Name, cols[0].Len()), nil
	}
	cast, err := castAll(ctx, cols, out)
	if err != nil {
		return nil, err
	}
	n := cast[0].Len()

	b := array.NewInt64Builder(compute.GetAllocator(ctx))
	defer b.Release()
	for i := 0; i < n; i++ {
		best := -1
		var bestVal interface{}
		for k, c := range cast {
			v := c.Get(i)
			if v == nil {
				continue
			}
			if best < 0 || (wantMax && compareValues(v, bestVal) > 0) || (!wantMax && compareValues(v, bestVal) < 0) {
				best, bestVal = k, v
			}
		}
		if best < 0 {
			b.AppendNull()
		} else {
			b.Append(int64(best*n + i))
		}
	}
	return gatherRows(ctx, cast, b, out.Name)
}

// sumHorizontal adds the inputs row by row after casting to the output type
func sumHorizontal(ctx context.Context, cols []*Column, out Field, ignoreNulls bool) (*Column, error) {
	cast, err := castAll(ctx, cols, out)
	if err != nil {
		return nil, err
	}
	if ignoreNulls {
		zero, err := literalColumn("zero", int64(0), cast[0].Len())
		if err != nil {
			return nil, err
		}
		for i, c := range cast {
			if cast[i], err = coalesceColumns(ctx, []*Column{c, zero}, c.Field()); err != nil {
				return nil, err
			}
		}
	}
	acc := cast[0]
	for _, c := range cast[1:] {
		if acc, err = acc.Add(ctx, c); err != nil {
			return nil, err
		}
	}
	return acc.Rename(out.Name), nil
}

// meanHorizontal averages row values. Without ignoreNulls any null makes the
// row null; with it, only rows with no valid value are null.
func meanHorizontal(ctx context.Context, cols []*Column, out Field, ignoreNulls bool) (*Column, error) {
	n := cols[0].Len()
	sums := make([]float64, n)
	counts := make([]int, n)
	nulls := make([]bool, n)

	for _, c := range cols {
		vals := c.Float64()
		if vals == nil && c.DType() != Null {
			return nil, fmt.Errorf("%w: mean_horizontal not supported for '%s' of type %s", ErrCompute, c.Name(), c.DType())
		}
		for i := 0; i < n; i++ {
			if c.IsNull(i) {
				nulls[i] = true
				continue
			}
			sums[i] += vals[i]
			counts[i]++
		}
	}

	valid := make([]bool, n)
	means := make([]float64, n)
	for i := range means {
		if counts[i] == 0 || (!ignoreNulls && nulls[i]) {
			continue
		}
		if ignoreNulls {
			means[i] = sums[i] / float64(counts[i])
		} else {
			means[i] = sums[i] / float64(len(cols))
		}
		valid[i] = true
	}

	res := NewColumnF64WithNulls(out.Name, means, valid)
	if out.DType == Float32 {
		return res.CastTo(ctx, Float32)
	}
	return res, nil
}

// coalesceColumns keeps the first non-null value of each row
func coalesceColumns(ctx context.Context, cols []*Column, out Field) (*Column, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: cannot coalesce zero inputs", ErrCompute)
	}
	if out.DType == Null {
		return NewNullColumn(out.Name, cols[0].Len()), nil
	}
	cast, err := castAll(ctx, cols, out)
	if err != nil {
		return nil, err
	}
	n := cast[0].Len()

	b := array.NewInt64Builder(compute.GetAllocator(ctx))
	defer b.Release()
	for i := 0; i < n; i++ {
		picked := false
		for k, c := range cast {
			if !c.IsNull(i) {
				b.Append(int64(k*n + i))
				picked = true
				break
			}
		}
		if !picked {
			b.AppendNull()
		}
	}
	return gatherRows(ctx, cast, b, out.Name)
}

// gatherRows concatenates cols and takes the rows listed in the builder
func gatherRows(ctx context.Context, cols []*Column, idx *array.Int64Builder, name string) (*Column, error) {
	indices := idx.NewArray()
	defer indices.Release()

	all, err := concatColumns(cols, compute.GetAllocator(ctx))
	if err != nil {
		return nil, err
	}
	defer all.Release()

	res, err := all.take(ctx, indices)
	if err != nil {
		return nil, err
	}
	return res.Rename(name), nil
}

// compareValues orders two non-null values of the same Go type
func compareValues(a, b interface{}) int {
	switch x := a.(type) {
	case string:
		y := b.(string)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case int64:
		return cmpOrdered(x, b.(int64))
	case int32:
		return cmpOrdered(x, b.(int32))
	case uint64:
		return cmpOrdered(x, b.(uint64))
	case uint32:
		return cmpOrdered(x, b.(uint32))
	case float32:
		return cmpOrdered(x, b.(float32))
	case float64:
		return cmpOrdered(x, b.(float64))
	default:
		return 0
	}
}

func cmpOrdered[T int64 | int32 | uint64 | uint32 | float32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
