package dsl

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/compute"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ============================================================================
// Casting
// ============================================================================

// Cast converts the column to the given field type, keeping its name.
// Null columns become all-null columns of the target type.
func (c *Column) Cast(ctx context.Context, target Field) (*Column, error) {
	if c.field.sameType(target) {
		return c.Clone(), nil
	}
	dt, err := dtypeToArrowType(target)
	if err != nil {
		return nil, err
	}
	if c.DType() == Null {
		return newColumnOwned(c.name, array.MakeArrayOfNull(compute.GetAllocator(ctx), dt, c.Len()))
	}
	out, err := compute.CastArray(ctx, c.arr, compute.UnsafeCastOptions(dt))
	if err != nil {
		return nil, fmt.Errorf("cast '%s' from %s to %s: %w", c.name, c.field.TypeString(), target.TypeString(), err)
	}
	return newColumnOwned(c.name, out)
}

// CastTo is Cast for non-nested target types
func (c *Column) CastTo(ctx context.Context, dtype DType) (*Column, error) {
	return c.Cast(ctx, NewField(c.name, dtype))
}

// ============================================================================
// Arithmetic
// ============================================================================

// Add returns c + other element-wise, named after c. Both sides are first
// cast to their supertype.
func (c *Column) Add(ctx context.Context, other *Column) (*Column, error) {
	return c.arith(ctx, other, OpAdd)
}

// Sub returns c - other element-wise
func (c *Column) Sub(ctx context.Context, other *Column) (*Column, error) {
	return c.arith(ctx, other, OpSub)
}

// Mul returns c * other element-wise
func (c *Column) Mul(ctx context.Context, other *Column) (*Column, error) {
	return c.arith(ctx, other, OpMul)
}

// Div returns c / other element-wise. Integer division by zero is an error.
func (c *Column) Div(ctx context.Context, other *Column) (*Column, error) {
	return c.arith(ctx, other, OpDiv)
}

func (c *Column) arith(ctx context.Context, other *Column, op BinaryOp) (*Column, error) {
	left, right, err := castPair(ctx, c, other)
	if err != nil {
		return nil, err
	}
	if !left.DType().IsNumeric() && left.DType() != Null {
		return nil, fmt.Errorf("%w: arithmetic '%s' not supported for %s", ErrCompute, op, left.DType())
	}
	if left.DType() == Null {
		return NewNullColumn(c.name, c.Len()), nil
	}

	l, r := compute.NewDatum(left.arr), compute.NewDatum(right.arr)
	defer l.Release()
	defer r.Release()

	opts := compute.ArithmeticOptions{}
	var out compute.Datum
	switch op {
	case OpAdd:
		out, err = compute.Add(ctx, opts, l, r)
	case OpSub:
		out, err = compute.Subtract(ctx, opts, l, r)
	case OpMul:
		out, err = compute.Multiply(ctx, opts, l, r)
	case OpDiv:
		out, err = compute.Divide(ctx, opts, l, r)
	default:
		return nil, fmt.Errorf("%w: unsupported arithmetic operation: %s", ErrCompute, op)
	}
	if err != nil {
		return nil, fmt.Errorf("'%s' %s '%s': %w", c.name, op, other.name, err)
	}
	return datumToColumn(c.name, out)
}

// ============================================================================
// Comparison and Logic
// ============================================================================

var compareFuncs = map[BinaryOp]string{
	OpEq:  "equal",
	OpNeq: "not_equal",
	OpGt:  "greater",
	OpGte: "greater_equal",
	OpLt:  "less",
	OpLte: "less_equal",
}

// Compare returns a Bool column holding c <op> other for each row
func (c *Column) Compare(ctx context.Context, op BinaryOp, other *Column) (*Column, error) {
	fn, ok := compareFuncs[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a comparison", ErrCompute, op)
	}
	left, right, err := castPair(ctx, c, other)
	if err != nil {
		return nil, err
	}
	return callBinary(ctx, fn, c.name, left, right)
}

// And returns the Kleene conjunction of two Bool columns
func (c *Column) And(ctx context.Context, other *Column) (*Column, error) {
	return c.logical(ctx, "and_kleene", other)
}

// Or returns the Kleene disjunction of two Bool columns
func (c *Column) Or(ctx context.Context, other *Column) (*Column, error) {
	return c.logical(ctx, "or_kleene", other)
}

func (c *Column) logical(ctx context.Context, fn string, other *Column) (*Column, error) {
	left, err := c.CastTo(ctx, Bool)
	if err != nil {
		return nil, err
	}
	right, err := other.CastTo(ctx, Bool)
	if err != nil {
		return nil, err
	}
	return callBinary(ctx, fn, c.name, left, right)
}

func callBinary(ctx context.Context, fn, name string, left, right *Column) (*Column, error) {
	if left.Len() != right.Len() {
		return nil, fmt.Errorf("%w: length mismatch in %s: %d vs %d", ErrCompute, fn, left.Len(), right.Len())
	}
	l, r := compute.NewDatum(left.arr), compute.NewDatum(right.arr)
	defer l.Release()
	defer r.Release()

	out, err := compute.CallFunction(ctx, fn, nil, l, r)
	if err != nil {
		return nil, fmt.Errorf("%s('%s', '%s'): %w", fn, left.name, right.name, err)
	}
	return datumToColumn(name, out)
}

// castPair casts both columns to their supertype
func castPair(ctx context.Context, a, b *Column) (*Column, *Column, error) {
	if a.Len() != b.Len() {
		return nil, nil, fmt.Errorf("%w: column length mismatch: '%s' has %d rows, '%s' has %d",
			ErrCompute, a.name, a.Len(), b.name, b.Len())
	}
	st, err := superTypeField(a.Field(), b.Field())
	if err != nil {
		return nil, nil, err
	}
	left, err := a.Cast(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	right, err := b.Cast(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func datumToColumn(name string, d compute.Datum) (*Column, error) {
	defer d.Release()
	ad, ok := d.(*compute.ArrayDatum)
	if !ok {
		return nil, fmt.Errorf("%w: expected array result, got %s", ErrCompute, d.Kind())
	}
	return newColumnOwned(name, ad.MakeArray())
}

// ============================================================================
// Reshaping
// ============================================================================

// concatColumns appends columns of the same type end to end, named after the
// first one.
func concatColumns(cols []*Column, mem memory.Allocator) (*Column, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrCompute)
	}
	arrs := make([]arrow.Array, len(cols))
	for i, c := range cols {
		arrs[i] = c.arr
	}
	out, err := array.Concatenate(arrs, mem)
	if err != nil {
		return nil, fmt.Errorf("%w: concatenating '%s': %v", ErrCompute, cols[0].name, err)
	}
	return newColumnOwned(cols[0].name, out)
}

// take gathers rows by index; a null index yields a null row
func (c *Column) take(ctx context.Context, indices arrow.Array) (*Column, error) {
	out, err := compute.TakeArray(ctx, c.arr, indices)
	if err != nil {
		return nil, fmt.Errorf("take from '%s': %w", c.name, err)
	}
	return newColumnOwned(c.name, out)
}

// broadcast repeats a length-1 column n times
func (c *Column) broadcast(ctx context.Context, n int) (*Column, error) {
	if c.Len() == n {
		return c.Clone(), nil
	}
	if c.Len() != 1 {
		return nil, fmt.Errorf("%w: cannot broadcast column '%s' of length %d to %d",
			ErrCompute, c.name, c.Len(), n)
	}
	b := array.NewInt64Builder(compute.GetAllocator(ctx))
	defer b.Release()
	b.AppendValues(make([]int64, n), nil)
	idx := b.NewArray()
	defer idx.Release()
	return c.take(ctx, idx)
}

// literalColumn materializes a Go value as a column of n rows
func literalColumn(name string, value interface{}, n int) (*Column, error) {
	valid := make([]bool, n)
	for i := range valid {
		valid[i] = true
	}
	switch v := value.(type) {
	case nil:
		return NewNullColumn(name, n), nil
	case float64:
		data := make([]float64, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnF64(name, data), nil
	case float32:
		data := make([]float32, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnF32(name, data), nil
	case int:
		data := make([]int64, n)
		for i := range data {
			data[i] = int64(v)
		}
		return NewColumnI64(name, data), nil
	case int64:
		data := make([]int64, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnI64(name, data), nil
	case int32:
		data := make([]int32, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnI32(name, data), nil
	case uint64:
		data := make([]uint64, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnU64(name, data), nil
	case uint32:
		data := make([]uint32, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnU32(name, data), nil
	case bool:
		data := make([]bool, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnBoolWithNulls(name, data, valid), nil
	case string:
		data := make([]string, n)
		for i := range data {
			data[i] = v
		}
		return NewColumnStringWithNulls(name, data, valid), nil
	default:
		return nil, fmt.Errorf("%w: unsupported literal type: %T", ErrCompute, value)
	}
}

// literalDType returns the dtype a literal value evaluates to
func literalDType(value interface{}) (DType, error) {
	switch value.(type) {
	case nil:
		return Null, nil
	case float64:
		return Float64, nil
	case float32:
		return Float32, nil
	case int, int64:
		return Int64, nil
	case int32:
		return Int32, nil
	case uint64:
		return UInt64, nil
	case uint32:
		return UInt32, nil
	case bool:
		return Bool, nil
	case string:
		return String, nil
	default:
		return Null, fmt.Errorf("%w: unsupported literal type: %T", ErrCompute, value)
	}
}
