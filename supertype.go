package dsl

import "fmt"

// SuperType returns the smallest dtype both a and b can be cast to without
// losing information, or false if there is none.
//
// Rules:
//   - Null unifies with anything
//   - Bool widens into any numeric type and into String
//   - integers of the same signedness widen to the larger width
//   - mixed signedness widens to the next signed width (UInt64 with a signed
//     integer goes to Float64)
//   - a float with any other numeric goes to Float64
//   - anything primitive with String goes to String
//   - Struct only unifies with Struct
func SuperType(a, b DType) (DType, bool) {
	if a == b {
		return a, true
	}
	if a == Null {
		return b, true
	}
	if b == Null {
		return a, true
	}

	if a == Struct || b == Struct {
		return Null, false
	}

	if a == String || b == String {
		return String, true
	}

	if a == Bool {
		return b, true
	}
	if b == Bool {
		return a, true
	}

	// Both numeric from here on
	if a.IsFloat() || b.IsFloat() {
		return Float64, true
	}

	if a.IsSigned() == b.IsSigned() {
		if a.bitWidth() >= b.bitWidth() {
			return a, true
		}
		return b, true
	}

	// Mixed signedness
	unsigned := a
	if a.IsSigned() {
		unsigned = b
	}
	if unsigned == UInt32 {
		return Int64, true
	}
	return Float64, true
}

// superTypeField unifies two fields, recursing into struct children by
// position. The result takes the name of a.
func superTypeField(a, b Field) (Field, error) {
	if a.DType == Struct && b.DType == Struct {
		if len(a.Fields) != len(b.Fields) {
			return Field{}, fmt.Errorf("%w: %s and %s", ErrNoSupertype, a.TypeString(), b.TypeString())
		}
		children := make([]Field, len(a.Fields))
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				return Field{}, fmt.Errorf("%w: %s and %s", ErrNoSupertype, a.TypeString(), b.TypeString())
			}
			child, err := superTypeField(a.Fields[i], b.Fields[i])
			if err != nil {
				return Field{}, err
			}
			children[i] = child
		}
		return NewStructField(a.Name, children), nil
	}

	if a.DType == Null {
		return b.WithName(a.Name), nil
	}
	if b.DType == Null {
		return a, nil
	}

	st, ok := SuperType(a.DType, b.DType)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s and %s", ErrNoSupertype, a.TypeString(), b.TypeString())
	}
	return NewField(a.Name, st), nil
}

// superTypeOfFields folds fields left to right into one supertype field
// named after the first input.
func superTypeOfFields(fields []Field) (Field, error) {
	if len(fields) == 0 {
		return Field{}, fmt.Errorf("%w: cannot determine supertype of zero inputs", ErrSchema)
	}
	st := fields[0]
	for _, f := range fields[1:] {
		var err error
		st, err = superTypeField(st, f)
		if err != nil {
			return Field{}, err
		}
	}
	return st, nil
}
