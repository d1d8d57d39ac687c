package dsl

import "errors"

// Sentinel errors. Functions wrap them with context, so callers should
// match with errors.Is.
var (
	// ErrCompute is returned when a computation cannot be carried out,
	// either while building an expression or while evaluating it.
	ErrCompute = errors.New("compute error")

	// ErrSchema is returned when an output schema cannot be resolved.
	ErrSchema = errors.New("schema error")

	// ErrNoSupertype is returned when two dtypes have no common supertype.
	ErrNoSupertype = errors.New("no common supertype")

	// ErrColumnNotFound is returned when a referenced column does not exist.
	ErrColumnNotFound = errors.New("column not found")
)
