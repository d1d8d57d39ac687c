package dsl

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// DType represents the data type of a Column
type DType uint8

const (
	// Null type
	Null DType = iota

	// Numeric types
	Float64
	Float32
	Int64
	Int32
	UInt64
	UInt32

	// Other types
	Bool
	String

	// Nested types
	Struct // Struct with named fields
)

// String returns the string representation of the DType
func (d DType) String() string {
	switch d {
	case Null:
		return "Null"
	case Float64:
		return "Float64"
	case Float32:
		return "Float32"
	case Int64:
		return "Int64"
	case Int32:
		return "Int32"
	case UInt64:
		return "UInt64"
	case UInt32:
		return "UInt32"
	case Bool:
		return "Bool"
	case String:
		return "String"
	case Struct:
		return "Struct"
	default:
		return fmt.Sprintf("Unknown(%d)", d)
	}
}

// IsNumeric returns true if the dtype is a numeric type
func (d DType) IsNumeric() bool {
	switch d {
	case Float64, Float32, Int64, Int32, UInt64, UInt32:
		return true
	default:
		return false
	}
}

// IsFloat returns true if the dtype is a floating point type
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// IsInteger returns true if the dtype is an integer type
func (d DType) IsInteger() bool {
	switch d {
	case Int64, Int32, UInt64, UInt32:
		return true
	default:
		return false
	}
}

// IsSigned returns true if the dtype is a signed numeric type
func (d DType) IsSigned() bool {
	switch d {
	case Float64, Float32, Int64, Int32:
		return true
	default:
		return false
	}
}

// bitWidth returns the width in bits of a numeric dtype, 0 otherwise
func (d DType) bitWidth() int {
	switch d {
	case Float64, Int64, UInt64:
		return 64
	case Float32, Int32, UInt32:
		return 32
	default:
		return 0
	}
}

// ============================================================================
// Field
// ============================================================================

// Field describes one named slot of a schema without any data.
// Fields is only populated for Struct fields.
type Field struct {
	Name   string
	DType  DType
	Fields []Field
}

// NewField creates a field for a non-nested dtype
func NewField(name string, dtype DType) Field {
	return Field{Name: name, DType: dtype}
}

// NewStructField creates a Struct field from its children
func NewStructField(name string, fields []Field) Field {
	return Field{Name: name, DType: Struct, Fields: append([]Field(nil), fields...)}
}

// WithName returns a copy of the field under a different name
func (f Field) WithName(name string) Field {
	f.Name = name
	return f
}

// Equal reports whether two fields have the same name and type, recursively
func (f Field) Equal(other Field) bool {
	if f.Name != other.Name || !f.sameType(other) {
		return false
	}
	return true
}

// sameType compares types only, including nested field names and types
func (f Field) sameType(other Field) bool {
	if f.DType != other.DType || len(f.Fields) != len(other.Fields) {
		return false
	}
	for i := range f.Fields {
		if !f.Fields[i].Equal(other.Fields[i]) {
			return false
		}
	}
	return true
}

// TypeString renders the field type, including struct children
func (f Field) TypeString() string {
	if f.DType != Struct {
		return f.DType.String()
	}
	parts := make([]string, len(f.Fields))
	for i, child := range f.Fields {
		parts[i] = fmt.Sprintf("%s: %s", child.Name, child.TypeString())
	}
	return "Struct{" + strings.Join(parts, ", ") + "}"
}

func (f Field) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.TypeString())
}

// ============================================================================
// Schema
// ============================================================================

// Schema represents the ordered fields of a Frame
type Schema struct {
	fields []Field
}

// NewSchema creates a new schema, rejecting duplicate names
func NewSchema(fields ...Field) (*Schema, error) {
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if seen[f.Name] {
			return nil, fmt.Errorf("%w: duplicate column name: %s", ErrSchema, f.Name)
		}
		seen[f.Name] = true
	}

	return &Schema{fields: append([]Field(nil), fields...)}, nil
}

// Len returns the number of columns in the schema
func (s *Schema) Len() int {
	return len(s.fields)
}

// Fields returns a copy of the schema fields
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Names returns the column names
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// Get returns the field for a column name
func (s *Schema) Get(name string) (Field, bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// String returns a string representation of the schema
func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString("Schema{\n")
	for _, f := range s.fields {
		fmt.Fprintf(&sb, "  %s\n", f)
	}
	sb.WriteString("}")
	return sb.String()
}

// ============================================================================
// Arrow Type Mapping
// ============================================================================

// dtypeToArrowType converts a Field to an Arrow DataType
func dtypeToArrowType(f Field) (arrow.DataType, error) {
	switch f.DType {
	case Null:
		return arrow.Null, nil
	case Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case UInt64:
		return arrow.PrimitiveTypes.Uint64, nil
	case UInt32:
		return arrow.PrimitiveTypes.Uint32, nil
	case Bool:
		return arrow.FixedWidthTypes.Boolean, nil
	case String:
		return arrow.BinaryTypes.String, nil
	case Struct:
		children := make([]arrow.Field, len(f.Fields))
		for i, child := range f.Fields {
			dt, err := dtypeToArrowType(child)
			if err != nil {
				return nil, fmt.Errorf("struct field %s: %w", child.Name, err)
			}
			children[i] = arrow.Field{Name: child.Name, Type: dt, Nullable: true}
		}
		return arrow.StructOf(children...), nil
	default:
		return nil, fmt.Errorf("%w: unsupported dtype: %s", ErrSchema, f.DType)
	}
}

// arrowTypeToField converts an Arrow DataType to a Field with the given name
func arrowTypeToField(name string, dt arrow.DataType) (Field, error) {
	switch dt.ID() {
	case arrow.NULL:
		return NewField(name, Null), nil
	case arrow.FLOAT64:
		return NewField(name, Float64), nil
	case arrow.FLOAT32:
		return NewField(name, Float32), nil
	case arrow.INT64:
		return NewField(name, Int64), nil
	case arrow.INT32:
		return NewField(name, Int32), nil
	case arrow.UINT64:
		return NewField(name, UInt64), nil
	case arrow.UINT32:
		return NewField(name, UInt32), nil
	case arrow.BOOL:
		return NewField(name, Bool), nil
	case arrow.STRING:
		return NewField(name, String), nil
	case arrow.STRUCT:
		st := dt.(*arrow.StructType)
		children := make([]Field, st.NumFields())
		for i, af := range st.Fields() {
			child, err := arrowTypeToField(af.Name, af.Type)
			if err != nil {
				return Field{}, err
			}
			children[i] = child
		}
		return NewStructField(name, children), nil
	default:
		return Field{}, fmt.Errorf("%w: unsupported Arrow type: %s", ErrSchema, dt)
	}
}
