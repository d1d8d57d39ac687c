package dsl

import (
	"context"
	"testing"
)

func addCombine(acc, next *Column) (*Column, error) {
	return acc.Add(context.Background(), next)
}

func foldFrame() *Frame {
	return MustFrame(
		NewColumnI64("a", []int64{1, 2}),
		NewColumnI64("b", []int64{10, 20}),
		NewColumnI64("c", []int64{100, 200}),
	)
}

func assertInt64s(t *testing.T, c *Column, want []int64) {
	t.Helper()
	if c.Len() != len(want) {
		t.Fatalf("column '%s' has %d rows, want %d", c.Name(), c.Len(), len(want))
	}
	got := c.Int64()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column '%s' row %d: got %v, want %v", c.Name(), i, got[i], want[i])
		}
	}
}

func structFieldNames(c *Column) []string {
	fields := c.StructFields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name()
	}
	return names
}

// a=[1,null,3] b=[null,2,null] c=[9,9,9]
func sparseFrame() *Frame {
	return MustFrame(
		NewColumnI64WithNulls("a", []int64{1, 0, 3}, []bool{true, false, true}),
		NewColumnI64WithNulls("b", []int64{0, 2, 0}, []bool{false, true, false}),
		NewColumnI64("c", []int64{9, 9, 9}),
	)
}

// p=[T,T,F,null] q=[T,null,T,null]
func boolFrame() *Frame {
	return MustFrame(
		NewColumnBoolWithNulls("p", []bool{true, true, false, false}, []bool{true, true, true, false}),
		NewColumnBoolWithNulls("q", []bool{true, false, true, false}, []bool{true, false, true, false}),
	)
}

func evalExpr(t *testing.T, expr Expr, frame *Frame) *Column {
	t.Helper()
	got, err := Evaluate(context.Background(), expr, frame)
	if err != nil {
		t.Fatalf("Evaluate(%s): %v", expr, err)
	}
	return got
}

// mustExpr unwraps a builder result: mustExpr(t)(SumHorizontal(true, All()))
func mustExpr(t *testing.T) func(*FunctionExpr, error) *FunctionExpr {
	return func(e *FunctionExpr, err error) *FunctionExpr {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return e
	}
}

func assertValues(t *testing.T, c *Column, want []interface{}) {
	t.Helper()
	if c.Len() != len(want) {
		t.Fatalf("column '%s' has %d rows, want %d", c.Name(), c.Len(), len(want))
	}
	for i, w := range want {
		if got := c.Get(i); got != w {
			t.Errorf("column '%s' row %d: got %v (%T), want %v (%T)", c.Name(), i, got, got, w, w)
		}
	}
}
