package dsl

import (
	"errors"
	"testing"
)

func TestSuperType(t *testing.T) {
	tests := []struct {
		a, b DType
		want DType
		ok   bool
	}{
		{Int64, Int64, Int64, true},
		{Null, Float32, Float32, true},
		{Int32, Null, Int32, true},
		{Int32, Int64, Int64, true},
		{UInt32, UInt64, UInt64, true},
		{Int32, UInt32, Int64, true},
		{UInt64, Int64, Float64, true},
		{Int64, Float32, Float64, true},
		{Float32, Float32, Float32, true},
		{Bool, Int32, Int32, true},
		{Float64, Bool, Float64, true},
		{Bool, String, String, true},
		{Int64, String, String, true},
		{Struct, Int64, Null, false},
	}
	for _, tt := range tests {
		got, ok := SuperType(tt.a, tt.b)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("SuperType(%s, %s) = (%s, %v), want (%s, %v)", tt.a, tt.b, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSuperType_Symmetric(t *testing.T) {
	types := []DType{Null, Float64, Float32, Int64, Int32, UInt64, UInt32, Bool, String}
	for _, a := range types {
		for _, b := range types {
			ab, ok1 := SuperType(a, b)
			ba, ok2 := SuperType(b, a)
			if ab != ba || ok1 != ok2 {
				t.Errorf("SuperType(%s, %s) = %s, SuperType(%s, %s) = %s", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestSuperTypeOfFields_NamedAfterFirst(t *testing.T) {
	got, err := superTypeOfFields([]Field{
		NewField("a", Int32),
		NewField("b", Float32),
		NewField("c", Null),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := NewField("a", Float64)
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSuperTypeOfFields_NullFirst(t *testing.T) {
	got, err := superTypeOfFields([]Field{NewField("n", Null), NewField("x", Int32)})
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(NewField("n", Int32)) {
		t.Errorf("got %s, want n: Int32", got)
	}
}

func TestSuperTypeOfFields_Empty(t *testing.T) {
	_, err := superTypeOfFields(nil)
	if !errors.Is(err, ErrSchema) {
		t.Errorf("got %v, want ErrSchema", err)
	}
}

func TestSuperTypeField_Struct(t *testing.T) {
	a := NewStructField("s", []Field{NewField("x", Int32), NewField("y", Bool)})
	b := NewStructField("t", []Field{NewField("x", Int64), NewField("y", Null)})

	got, err := superTypeField(a, b)
	if err != nil {
		t.Fatal(err)
	}
	want := NewStructField("s", []Field{NewField("x", Int64), NewField("y", Bool)})
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}

	c := NewStructField("u", []Field{NewField("z", Int32), NewField("y", Bool)})
	if _, err := superTypeField(a, c); !errors.Is(err, ErrNoSupertype) {
		t.Errorf("mismatched child names: got %v, want ErrNoSupertype", err)
	}
	if _, err := superTypeField(a, NewField("i", Int64)); !errors.Is(err, ErrNoSupertype) {
		t.Errorf("struct with Int64: got %v, want ErrNoSupertype", err)
	}
}
