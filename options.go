package dsl

import (
	"strings"
)

// ============================================================================
// Apply Options
// ============================================================================

// ApplyOptions states how a function wants to see its input with respect
// to groups.
type ApplyOptions uint8

const (
	// GroupWise functions must be applied to each group separately
	GroupWise ApplyOptions = iota

	// ElementWise functions may be applied to all groups at once, since each
	// output row depends only on the same input row
	ElementWise
)

func (a ApplyOptions) String() string {
	switch a {
	case GroupWise:
		return "GroupWise"
	case ElementWise:
		return "ElementWise"
	default:
		return "?"
	}
}

// ============================================================================
// Function Flags
// ============================================================================

// FunctionFlags is a bitset of evaluation-policy flags
type FunctionFlags uint8

const (
	// FlagInputWildcardExpansion expands wildcard and multi-column inputs
	// into the function's input list instead of calling it once per column
	FlagInputWildcardExpansion FunctionFlags = 1 << iota

	// FlagReturnsScalar marks functions whose output may be a single value
	// per group
	FlagReturnsScalar

	// FlagAllowEmptyInputs permits the function to be planned with zero
	// inputs after expansion
	FlagAllowEmptyInputs

	// FlagAllowRename lets the function choose its own output name instead
	// of inheriting the first input's name
	FlagAllowRename
)

var flagNames = []struct {
	flag FunctionFlags
	name string
}{
	{FlagInputWildcardExpansion, "INPUT_WILDCARD_EXPANSION"},
	{FlagReturnsScalar, "RETURNS_SCALAR"},
	{FlagAllowEmptyInputs, "ALLOW_EMPTY_INPUTS"},
	{FlagAllowRename, "ALLOW_RENAME"},
}

// DefaultFunctionFlags returns the empty flag set
func DefaultFunctionFlags() FunctionFlags {
	return 0
}

// Set returns f with flag added
func (f FunctionFlags) Set(flag FunctionFlags) FunctionFlags { return f | flag }

// Clear returns f with flag removed
func (f FunctionFlags) Clear(flag FunctionFlags) FunctionFlags { return f &^ flag }

// Contains reports whether every bit of flag is set in f
func (f FunctionFlags) Contains(flag FunctionFlags) bool { return f&flag == flag }

func (f FunctionFlags) String() string {
	if f == 0 {
		return "NONE"
	}
	var parts []string
	for _, fn := range flagNames {
		if f.Contains(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ============================================================================
// Cast Options
// ============================================================================

// CastOptions tells the planner whether inputs must be cast before the
// function runs.
type CastOptions uint8

const (
	// CastNone leaves inputs as they are
	CastNone CastOptions = iota

	// CastToSupertypes casts all inputs to their common supertype
	CastToSupertypes
)

func (c CastOptions) String() string {
	switch c {
	case CastNone:
		return "None"
	case CastToSupertypes:
		return "Supertypes"
	default:
		return "?"
	}
}

// ============================================================================
// Function Options
// ============================================================================

// FunctionOptions is the evaluation policy attached to every function node.
// The planner and executor read it; the function itself never does.
type FunctionOptions struct {
	CollectGroups ApplyOptions
	Flags         FunctionFlags
	CastOptions   CastOptions

	// FmtStr is the name printed for the node in plans
	FmtStr string
}

// DefaultFunctionOptions returns GroupWise options with no flags and no cast
func DefaultFunctionOptions() FunctionOptions {
	return FunctionOptions{
		CollectGroups: GroupWise,
		Flags:         DefaultFunctionFlags(),
		CastOptions:   CastNone,
	}
}

// IsElementWise reports whether the function may run over all groups at once
func (o FunctionOptions) IsElementWise() bool {
	return o.CollectGroups == ElementWise
}

// ReturnsScalar reports whether FlagReturnsScalar is set
func (o FunctionOptions) ReturnsScalar() bool {
	return o.Flags.Contains(FlagReturnsScalar)
}

// AllowRename reports whether FlagAllowRename is set
func (o FunctionOptions) AllowRename() bool {
	return o.Flags.Contains(FlagAllowRename)
}

func (o FunctionOptions) String() string {
	return o.FmtStr + "[" + o.CollectGroups.String() + ", " + o.Flags.String() + ", cast=" + o.CastOptions.String() + "]"
}
