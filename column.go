package dsl

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column is a named, immutable sequence of values for one group of rows,
// backed by an Arrow array.
//
// Columns are never modified in place. Rename and Clone return a new Column
// that shares the underlying Arrow buffers, so both are cheap metadata
// operations. A Column handed to a Combiner may be referenced from several
// goroutines at once.
type Column struct {
	name  string
	field Field
	arr   arrow.Array
}

// NewColumnFromArrow wraps an Arrow array as a Column. The column retains
// the array; the caller keeps its own reference.
func NewColumnFromArrow(name string, arr arrow.Array) (*Column, error) {
	if arr == nil {
		return nil, fmt.Errorf("%w: nil arrow array for column %q", ErrCompute, name)
	}
	field, err := arrowTypeToField(name, arr.DataType())
	if err != nil {
		return nil, err
	}
	arr.Retain()
	return &Column{name: name, field: field, arr: arr}, nil
}

// newColumnOwned wraps an array whose reference is transferred to the column
func newColumnOwned(name string, arr arrow.Array) (*Column, error) {
	field, err := arrowTypeToField(name, arr.DataType())
	if err != nil {
		arr.Release()
		return nil, err
	}
	return &Column{name: name, field: field, arr: arr}, nil
}

// mustOwned is newColumnOwned for arrays built from a known dtype
func mustOwned(name string, arr arrow.Array) *Column {
	col, err := newColumnOwned(name, arr)
	if err != nil {
		panic(err)
	}
	return col
}

// ============================================================================
// Constructors
// ============================================================================

// NewColumnF64 creates a Float64 column from a Go slice
func NewColumnF64(name string, data []float64) *Column {
	return NewColumnF64WithNulls(name, data, nil)
}

// NewColumnF64WithNulls creates a Float64 column with null values.
// The valid slice indicates which values are valid (true) vs null (false);
// a nil valid slice means all values are valid.
func NewColumnF64WithNulls(name string, data []float64, valid []bool) *Column {
	b := array.NewFloat64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, valid)
	return mustOwned(name, b.NewArray())
}

// NewColumnF32 creates a Float32 column from a Go slice
func NewColumnF32(name string, data []float32) *Column {
	b := array.NewFloat32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, nil)
	return mustOwned(name, b.NewArray())
}

// NewColumnI64 creates an Int64 column from a Go slice
func NewColumnI64(name string, data []int64) *Column {
	return NewColumnI64WithNulls(name, data, nil)
}

// NewColumnI64WithNulls creates an Int64 column with null values
func NewColumnI64WithNulls(name string, data []int64, valid []bool) *Column {
	b := array.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, valid)
	return mustOwned(name, b.NewArray())
}

// NewColumnI32 creates an Int32 column from a Go slice
func NewColumnI32(name string, data []int32) *Column {
	b := array.NewInt32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, nil)
	return mustOwned(name, b.NewArray())
}

// NewColumnU64 creates a UInt64 column from a Go slice
func NewColumnU64(name string, data []uint64) *Column {
	b := array.NewUint64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, nil)
	return mustOwned(name, b.NewArray())
}

// NewColumnU32 creates a UInt32 column from a Go slice
func NewColumnU32(name string, data []uint32) *Column {
	b := array.NewUint32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, nil)
	return mustOwned(name, b.NewArray())
}

// NewColumnBool creates a Bool column from a Go slice
func NewColumnBool(name string, data []bool) *Column {
	return NewColumnBoolWithNulls(name, data, nil)
}

// NewColumnBoolWithNulls creates a Bool column with null values
func NewColumnBoolWithNulls(name string, data []bool, valid []bool) *Column {
	b := array.NewBooleanBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, valid)
	return mustOwned(name, b.NewArray())
}

// NewColumnString creates a String column from a Go slice
func NewColumnString(name string, data []string) *Column {
	return NewColumnStringWithNulls(name, data, nil)
}

// NewColumnStringWithNulls creates a String column with null values
func NewColumnStringWithNulls(name string, data []string, valid []bool) *Column {
	b := array.NewStringBuilder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(data, valid)
	return mustOwned(name, b.NewArray())
}

// NewNullColumn creates a column of n nulls with the Null dtype
func NewNullColumn(name string, n int) *Column {
	return mustOwned(name, array.NewNull(n))
}

// ============================================================================
// Metadata
// ============================================================================

// Name returns the column name
func (c *Column) Name() string { return c.name }

// DType returns the column data type
func (c *Column) DType() DType { return c.field.DType }

// Field returns the name and full type of the column
func (c *Column) Field() Field { return c.field.WithName(c.name) }

// Len returns the number of rows
func (c *Column) Len() int { return c.arr.Len() }

// NullCount returns the number of null rows
func (c *Column) NullCount() int { return c.arr.NullN() }

// IsNull reports whether row i is null
func (c *Column) IsNull(i int) bool { return c.arr.IsNull(i) }

// Arrow returns the backing Arrow array. The array is shared; callers that
// keep it beyond the column's lifetime must Retain it.
func (c *Column) Arrow() arrow.Array { return c.arr }

// Rename returns a column with a new name sharing the same data
func (c *Column) Rename(name string) *Column {
	c.arr.Retain()
	return &Column{name: name, field: c.field, arr: c.arr}
}

// Clone returns another reference to the same data
func (c *Column) Clone() *Column {
	return c.Rename(c.name)
}

// Release drops this column's reference to the Arrow data
func (c *Column) Release() {
	if c.arr != nil {
		c.arr.Release()
	}
}

// Slice returns rows [start, end) as a zero-copy column
func (c *Column) Slice(start, end int) *Column {
	return &Column{name: c.name, field: c.field, arr: array.NewSlice(c.arr, int64(start), int64(end))}
}

// ============================================================================
// Value Access
// ============================================================================

// Get returns the value at row i as a Go value, or nil if it is null.
// Struct rows are returned as map[string]interface{}.
func (c *Column) Get(i int) interface{} {
	if c.arr.IsNull(i) {
		return nil
	}
	switch a := c.arr.(type) {
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return a.Value(i)
	case *array.Int64:
		return a.Value(i)
	case *array.Int32:
		return a.Value(i)
	case *array.Uint64:
		return a.Value(i)
	case *array.Uint32:
		return a.Value(i)
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.Struct:
		fields := c.StructFields()
		row := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			row[f.Name()] = f.Get(i)
		}
		return row
	default:
		return nil
	}
}

// Values returns every row as a Go value (nil for nulls)
func (c *Column) Values() []interface{} {
	out := make([]interface{}, c.Len())
	for i := range out {
		out[i] = c.Get(i)
	}
	return out
}

// Float64 returns the values converted to float64, with nulls as 0.
// It returns nil for non-numeric columns.
func (c *Column) Float64() []float64 {
	if !c.DType().IsNumeric() && c.DType() != Bool {
		return nil
	}
	out := make([]float64, c.Len())
	for i := range out {
		if v, ok := toFloat64(c.Get(i)); ok {
			out[i] = v
		}
	}
	return out
}

// Int64 returns the values converted to int64, with nulls as 0.
// It returns nil for non-integer columns.
func (c *Column) Int64() []int64 {
	if !c.DType().IsInteger() && c.DType() != Bool {
		return nil
	}
	out := make([]int64, c.Len())
	for i := range out {
		switch v := c.Get(i).(type) {
		case int64:
			out[i] = v
		case int32:
			out[i] = int64(v)
		case uint64:
			out[i] = int64(v)
		case uint32:
			out[i] = int64(v)
		case bool:
			if v {
				out[i] = 1
			}
		}
	}
	return out
}

// Strings returns string values, with nulls as "". It returns nil for
// non-String columns.
func (c *Column) Strings() []string {
	a, ok := c.arr.(*array.String)
	if !ok {
		return nil
	}
	out := make([]string, a.Len())
	for i := range out {
		if a.IsValid(i) {
			out[i] = a.Value(i)
		}
	}
	return out
}

// Bools returns boolean values, with nulls as false. It returns nil for
// non-Bool columns.
func (c *Column) Bools() []bool {
	a, ok := c.arr.(*array.Boolean)
	if !ok {
		return nil
	}
	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.IsValid(i) && a.Value(i)
	}
	return out
}

func (c *Column) String() string {
	return fmt.Sprintf("Column('%s', %s, len=%d)", c.name, c.field.TypeString(), c.Len())
}

func toFloat64(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case int:
		return float64(val), true
	case uint64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
