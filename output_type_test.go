package dsl

import (
	"errors"
	"testing"
)

func TestMapFieldsResolver(t *testing.T) {
	calls := 0
	r := MapFieldsResolver(func(fields []Field) (Field, error) {
		calls++
		return NewField("n", UInt32), nil
	})
	got, err := r.ResolveField([]Field{NewField("a", Int64)})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewField("n", UInt32)) || calls != 1 {
		t.Errorf("got %s after %d calls", got, calls)
	}
}

func TestSuperTypeResolver(t *testing.T) {
	got, err := SuperTypeResolver().ResolveField([]Field{
		NewField("x", Int32),
		NewField("y", Int64),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewField("x", Int64)) {
		t.Errorf("got %s, want x: Int64", got)
	}

	// Resolution is pure: same input, same answer
	again, _ := SuperTypeResolver().ResolveField([]Field{NewField("x", Int32), NewField("y", Int64)})
	if !again.Equal(got) {
		t.Errorf("second resolution %s differs from %s", again, got)
	}
}

func TestCumFoldDType_Reduce(t *testing.T) {
	fields := []Field{NewField("a", Int32), NewField("b", Int64), NewField("c", Int32)}
	got, err := cumFoldDType(false, false).ResolveField(fields)
	if err != nil {
		t.Fatal(err)
	}
	want := NewStructField("a", []Field{
		NewField("a", Int64),
		NewField("b", Int64),
		NewField("c", Int64),
	})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCumFoldDType_FoldExcludesInit(t *testing.T) {
	// node order: exprs..., acc
	fields := []Field{NewField("a", Int64), NewField("b", Int64), NewField("acc", Float64)}
	got, err := cumFoldDType(true, false).ResolveField(fields)
	if err != nil {
		t.Fatal(err)
	}
	want := NewStructField("a", []Field{
		NewField("a", Float64),
		NewField("b", Float64),
	})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCumFoldDType_FoldIncludesInit(t *testing.T) {
	fields := []Field{NewField("a", Int64), NewField("b", Int64), NewField("acc", Int64)}
	got, err := cumFoldDType(true, true).ResolveField(fields)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "acc" {
		t.Errorf("struct name = %q, want acc", got.Name)
	}
	names := make([]string, len(got.Fields))
	for i, f := range got.Fields {
		names[i] = f.Name
	}
	if len(names) != 3 || names[0] != "acc" || names[1] != "a" || names[2] != "b" {
		t.Errorf("children = %v, want [acc a b]", names)
	}
}

func TestCumFoldDType_Errors(t *testing.T) {
	if _, err := cumFoldDType(false, false).ResolveField(nil); !errors.Is(err, ErrSchema) {
		t.Errorf("no inputs: got %v, want ErrSchema", err)
	}
	if _, err := cumFoldDType(true, false).ResolveField([]Field{NewField("acc", Int64)}); !errors.Is(err, ErrSchema) {
		t.Errorf("acc only without init: got %v, want ErrSchema", err)
	}
	got, err := cumFoldDType(true, true).ResolveField([]Field{NewField("acc", Int64)})
	if err != nil {
		t.Fatalf("acc only with init: %v", err)
	}
	if len(got.Fields) != 1 || got.Fields[0].Name != "acc" {
		t.Errorf("got %s, want one acc field", got)
	}
	if _, err := cumFoldDType(false, false).ResolveField([]Field{NewField("a", Int64), NewField("s", String), NewStructField("x", nil)}); !errors.Is(err, ErrNoSupertype) {
		t.Errorf("inputs without a supertype: got %v, want ErrNoSupertype", err)
	}
}
