package dsl

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// ============================================================================
// Struct Columns
// ============================================================================

// NewStructColumn builds a Struct column of the given length whose fields
// are the given columns, in order. Every field must have exactly length rows.
// Field names may repeat.
func NewStructColumn(name string, length int, fields []*Column) (*Column, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: struct column '%s' needs at least one field", ErrCompute, name)
	}

	arrs := make([]arrow.Array, len(fields))
	afields := make([]arrow.Field, len(fields))
	for i, f := range fields {
		if f.Len() != length {
			return nil, fmt.Errorf("%w: struct field '%s' has length %d, expected %d",
				ErrCompute, f.Name(), f.Len(), length)
		}
		arrs[i] = f.Arrow()
		afields[i] = arrow.Field{Name: f.Name(), Type: f.Arrow().DataType(), Nullable: true}
	}

	st, err := array.NewStructArrayWithFields(arrs, afields)
	if err != nil {
		return nil, fmt.Errorf("%w: building struct column '%s': %v", ErrCompute, name, err)
	}
	return newColumnOwned(name, st)
}

// StructFields returns the fields of a Struct column as columns, or nil if
// the column is not a struct.
func (c *Column) StructFields() []*Column {
	st, ok := c.arr.(*array.Struct)
	if !ok {
		return nil
	}
	out := make([]*Column, st.NumField())
	for i := range out {
		child := st.Field(i)
		child.Retain()
		out[i] = &Column{name: c.field.Fields[i].Name, field: c.field.Fields[i], arr: child}
	}
	return out
}

// StructField returns the first struct field with the given name
func (c *Column) StructField(name string) (*Column, error) {
	if c.DType() != Struct {
		return nil, fmt.Errorf("%w: column '%s' is %s, not a struct", ErrSchema, c.name, c.DType())
	}
	for _, f := range c.StructFields() {
		if f.Name() == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: struct field '%s' not found in '%s'", ErrColumnNotFound, name, c.name)
}
