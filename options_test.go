package dsl

import (
	"testing"
)

func TestFunctionFlags_SetClearContains(t *testing.T) {
	f := DefaultFunctionFlags()
	if f != 0 {
		t.Fatalf("default flags = %v, want NONE", f)
	}

	f = f.Set(FlagInputWildcardExpansion).Set(FlagAllowRename)
	if !f.Contains(FlagInputWildcardExpansion) || !f.Contains(FlagAllowRename) {
		t.Errorf("flags %v missing a set bit", f)
	}
	if f.Contains(FlagReturnsScalar) {
		t.Errorf("flags %v unexpectedly contain RETURNS_SCALAR", f)
	}
	if !f.Contains(FlagInputWildcardExpansion | FlagAllowRename) {
		t.Errorf("Contains should accept a combined mask")
	}

	f = f.Clear(FlagAllowRename)
	if f.Contains(FlagAllowRename) {
		t.Errorf("ALLOW_RENAME still set after Clear")
	}

	// Clearing an unset flag is a no-op
	if got := f.Clear(FlagReturnsScalar); got != f {
		t.Errorf("Clear of unset flag changed %v to %v", f, got)
	}
}

func TestFunctionFlags_String(t *testing.T) {
	tests := []struct {
		flags FunctionFlags
		want  string
	}{
		{0, "NONE"},
		{FlagReturnsScalar, "RETURNS_SCALAR"},
		{FlagInputWildcardExpansion | FlagAllowEmptyInputs, "INPUT_WILDCARD_EXPANSION|ALLOW_EMPTY_INPUTS"},
		{FlagAllowRename | FlagInputWildcardExpansion, "INPUT_WILDCARD_EXPANSION|ALLOW_RENAME"},
	}
	for _, tt := range tests {
		if got := tt.flags.String(); got != tt.want {
			t.Errorf("FunctionFlags(%d).String() = %q, want %q", uint8(tt.flags), got, tt.want)
		}
	}
}

func TestDefaultFunctionOptions(t *testing.T) {
	o := DefaultFunctionOptions()
	if o.CollectGroups != GroupWise {
		t.Errorf("CollectGroups = %v, want GroupWise", o.CollectGroups)
	}
	if o.Flags != 0 {
		t.Errorf("Flags = %v, want NONE", o.Flags)
	}
	if o.CastOptions != CastNone {
		t.Errorf("CastOptions = %v, want None", o.CastOptions)
	}
	if o.IsElementWise() || o.ReturnsScalar() || o.AllowRename() {
		t.Errorf("default options report a policy: %s", o)
	}
}

func TestFunctionOptions_String(t *testing.T) {
	o := FunctionOptions{
		CollectGroups: ElementWise,
		Flags:         FlagInputWildcardExpansion,
		CastOptions:   CastToSupertypes,
		FmtStr:        "coalesce",
	}
	want := "coalesce[ElementWise, INPUT_WILDCARD_EXPANSION, cast=Supertypes]"
	if got := o.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestBuilderOptions(t *testing.T) {
	all, err := AllHorizontal(Col("a"))
	if err != nil {
		t.Fatal(err)
	}
	maxE, err := MaxHorizontal(Col("a"))
	if err != nil {
		t.Fatal(err)
	}
	sum, err := SumHorizontal(true, Col("a"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		opts    FunctionOptions
		groups  ApplyOptions
		flags   FunctionFlags
		cast    CastOptions
		fmtName string
	}{
		{"fold", Fold(Lit(0), CombineFunc(addCombine), Col("a")).Options, GroupWise,
			FlagInputWildcardExpansion | FlagReturnsScalar, CastNone, "fold"},
		{"reduce", Reduce(CombineFunc(addCombine), Col("a")).Options, GroupWise,
			FlagInputWildcardExpansion | FlagReturnsScalar, CastNone, "reduce"},
		{"cum_reduce", CumReduce(CombineFunc(addCombine), Col("a")).Options, GroupWise,
			FlagInputWildcardExpansion | FlagReturnsScalar, CastNone, "cum_reduce"},
		{"cum_fold", CumFold(Lit(0), CombineFunc(addCombine), false, Col("a")).Options, GroupWise,
			FlagInputWildcardExpansion | FlagReturnsScalar, CastNone, "cum_fold"},
		{"all_horizontal", all.Options, GroupWise,
			FlagInputWildcardExpansion | FlagAllowEmptyInputs, CastNone, "all_horizontal"},
		{"max_horizontal", maxE.Options, ElementWise,
			FlagInputWildcardExpansion | FlagAllowRename, CastNone, "max_horizontal"},
		{"sum_horizontal", sum.Options, ElementWise,
			FlagInputWildcardExpansion, CastNone, "sum_horizontal"},
		{"coalesce", Coalesce(Col("a")).Options, ElementWise,
			FlagInputWildcardExpansion, CastToSupertypes, "coalesce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.CollectGroups != tt.groups {
				t.Errorf("CollectGroups = %v, want %v", tt.opts.CollectGroups, tt.groups)
			}
			if tt.opts.Flags != tt.flags {
				t.Errorf("Flags = %v, want %v", tt.opts.Flags, tt.flags)
			}
			if tt.opts.CastOptions != tt.cast {
				t.Errorf("CastOptions = %v, want %v", tt.opts.CastOptions, tt.cast)
			}
			if tt.opts.FmtStr != tt.fmtName {
				t.Errorf("FmtStr = %q, want %q", tt.opts.FmtStr, tt.fmtName)
			}
		})
	}
}
