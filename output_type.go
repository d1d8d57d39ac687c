package dsl

import (
	"fmt"
)

// OutputTypeResolver predicts the output field of a function from its input
// fields, before any data exists. Implementations must be pure.
type OutputTypeResolver interface {
	ResolveField(fields []Field) (Field, error)
}

// MapFieldsResolver adapts a plain function to OutputTypeResolver
type MapFieldsResolver func(fields []Field) (Field, error)

// ResolveField calls fn(fields)
func (fn MapFieldsResolver) ResolveField(fields []Field) (Field, error) {
	return fn(fields)
}

// SuperTypeResolver returns a resolver whose output is named after the
// first input and typed as the left-to-right supertype of all inputs.
func SuperTypeResolver() OutputTypeResolver {
	return MapFieldsResolver(superTypeOfFields)
}

// cumFoldDType returns the resolver for the cumulative builders. The output
// is a Struct with one child per snapshot, in snapshot order, each named
// after its source input and typed as the supertype of all inputs.
//
// fields holds the node's inputs in node order. When hasAcc is true the last
// field is the initial accumulator; it produces the first snapshot only if
// includeInit is also true.
func cumFoldDType(hasAcc, includeInit bool) OutputTypeResolver {
	return MapFieldsResolver(func(fields []Field) (Field, error) {
		if len(fields) == 0 {
			return Field{}, fmt.Errorf("%w: cumulative fold has no inputs", ErrSchema)
		}

		st, err := superTypeOfFields(fields)
		if err != nil {
			return Field{}, err
		}

		snapshots := fields
		if hasAcc {
			acc := fields[len(fields)-1]
			snapshots = fields[:len(fields)-1]
			if includeInit {
				snapshots = append([]Field{acc}, snapshots...)
			}
		}
		if len(snapshots) == 0 {
			return Field{}, fmt.Errorf("%w: `cum_fold` produced no snapshots", ErrSchema)
		}

		children := make([]Field, len(snapshots))
		for i, f := range snapshots {
			children[i] = st.WithName(f.Name)
		}
		return NewStructField(snapshots[0].Name, children), nil
	})
}
