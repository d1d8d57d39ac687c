package dsl

import (
	"context"
	"errors"
	"math"
	"testing"
)

// ============================================================================
// Constructors
// ============================================================================

func TestHorizontal_EmptyInputsRejected(t *testing.T) {
	builders := map[string]func() (*FunctionExpr, error){
		"all":  func() (*FunctionExpr, error) { return AllHorizontal() },
		"any":  func() (*FunctionExpr, error) { return AnyHorizontal() },
		"max":  func() (*FunctionExpr, error) { return MaxHorizontal() },
		"min":  func() (*FunctionExpr, error) { return MinHorizontal() },
		"sum":  func() (*FunctionExpr, error) { return SumHorizontal(true) },
		"mean": func() (*FunctionExpr, error) { return MeanHorizontal(false) },
	}
	for name, build := range builders {
		e, err := build()
		if e != nil || !errors.Is(err, ErrCompute) {
			t.Errorf("%s: got (%v, %v), want ErrCompute", name, e, err)
			continue
		}
		want := "compute error: cannot return empty fold because the number of output rows is unknown"
		if err.Error() != want {
			t.Errorf("%s: error = %q, want %q", name, err.Error(), want)
		}
	}
}

func TestCoalesce_EmptyFailsAtEvaluation(t *testing.T) {
	e := Coalesce()
	if e == nil {
		t.Fatal("Coalesce() returned nil")
	}
	if _, err := Evaluate(context.Background(), e, sparseFrame()); !errors.Is(err, ErrCompute) {
		t.Errorf("got %v, want ErrCompute", err)
	}
}

func TestHorizontal_String(t *testing.T) {
	sum := mustExpr(t)(SumHorizontal(true, Col("a"), Col("b")))
	if got, want := sum.String(), `sum_horizontal(col("a"), col("b"), ignore_nulls=true)`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got, want := Coalesce(Col("a"), Lit(0)).String(), `coalesce(col("a"), lit(0))`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

// ============================================================================
// Evaluation
// ============================================================================

func TestCoalesce_FirstNonNull(t *testing.T) {
	got := evalExpr(t, Coalesce(Col("a"), Col("b"), Col("c")), sparseFrame())
	if got.Name() != "a" || got.DType() != Int64 {
		t.Errorf("got %s, want a: Int64", got)
	}
	assertValues(t, got, []interface{}{int64(1), int64(2), int64(3)})
}

func TestCoalesce_AllNullRow(t *testing.T) {
	got := evalExpr(t, Coalesce(Col("a"), Col("b")), sparseFrame())
	assertValues(t, got, []interface{}{int64(1), int64(2), int64(3)})

	got = evalExpr(t, Coalesce(Col("b"), Lit(nil)), sparseFrame())
	assertValues(t, got, []interface{}{nil, int64(2), nil})
}

func TestCoalesce_Supertype(t *testing.T) {
	frame := MustFrame(
		NewColumnI64WithNulls("x", []int64{1, 0}, []bool{true, false}),
		NewColumnF64("y", []float64{0.5, 1.5}),
	)
	got := evalExpr(t, Coalesce(Col("x"), Col("y")), frame)
	if got.DType() != Float64 {
		t.Fatalf("dtype = %s, want Float64", got.DType())
	}
	assertValues(t, got, []interface{}{1.0, 1.5})
}

func TestSumHorizontal_IgnoreNulls(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(SumHorizontal(true, Col("a"), Col("b"), Col("c"))), sparseFrame())
	if got.Name() != "a" || got.DType() != Int64 {
		t.Errorf("got %s, want a: Int64", got)
	}
	assertValues(t, got, []interface{}{int64(10), int64(11), int64(12)})
}

func TestSumHorizontal_PropagateNulls(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(SumHorizontal(false, Col("a"), Col("c"))), sparseFrame())
	assertValues(t, got, []interface{}{int64(10), nil, int64(12)})
}

func TestSumHorizontal_Bool(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(SumHorizontal(true, Col("p"), Col("q"))), boolFrame())
	if got.DType() != UInt32 {
		t.Fatalf("dtype = %s, want UInt32", got.DType())
	}
	assertValues(t, got, []interface{}{uint32(2), uint32(1), uint32(1), uint32(0)})
}

func TestSumHorizontal_Wildcard(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(SumHorizontal(true, All())), sparseFrame())
	assertValues(t, got, []interface{}{int64(10), int64(11), int64(12)})
}

func TestMaxMinHorizontal(t *testing.T) {
	maxCol := evalExpr(t, mustExpr(t)(MaxHorizontal(Col("a"), Col("b"), Col("c"))), sparseFrame())
	if maxCol.Name() != "max" {
		t.Errorf("name = %q, want max", maxCol.Name())
	}
	assertValues(t, maxCol, []interface{}{int64(9), int64(9), int64(9)})

	minCol := evalExpr(t, mustExpr(t)(MinHorizontal(Col("a"), Col("b"), Col("c"))), sparseFrame())
	if minCol.Name() != "min" {
		t.Errorf("name = %q, want min", minCol.Name())
	}
	assertValues(t, minCol, []interface{}{int64(1), int64(2), int64(3)})
}

func TestMaxHorizontal_AllNullRow(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(MaxHorizontal(Col("a"), Col("b"))), sparseFrame())
	assertValues(t, got, []interface{}{int64(1), int64(2), int64(3)})

	got = evalExpr(t, mustExpr(t)(MaxHorizontal(Col("b"))), sparseFrame())
	assertValues(t, got, []interface{}{nil, int64(2), nil})
}

func TestMaxHorizontal_MixedTypes(t *testing.T) {
	frame := MustFrame(
		NewColumnI32("x", []int32{1, 5}),
		NewColumnF64("y", []float64{2.5, 1}),
	)
	got := evalExpr(t, mustExpr(t)(MaxHorizontal(Col("x"), Col("y"))), frame)
	if got.DType() != Float64 {
		t.Fatalf("dtype = %s, want Float64", got.DType())
	}
	assertValues(t, got, []interface{}{2.5, 5.0})
}

func TestMinHorizontal_Strings(t *testing.T) {
	frame := MustFrame(
		NewColumnString("x", []string{"a", "z"}),
		NewColumnString("y", []string{"b", "c"}),
	)
	got := evalExpr(t, mustExpr(t)(MinHorizontal(Col("x"), Col("y"))), frame)
	assertValues(t, got, []interface{}{"a", "c"})
}

func TestMeanHorizontal(t *testing.T) {
	got := evalExpr(t, mustExpr(t)(MeanHorizontal(true, Col("a"), Col("b"), Col("c"))), sparseFrame())
	if got.DType() != Float64 {
		t.Fatalf("dtype = %s, want Float64", got.DType())
	}
	assertValues(t, got, []interface{}{5.0, 5.5, 6.0})

	got = evalExpr(t, mustExpr(t)(MeanHorizontal(false, Col("a"), Col("c"))), sparseFrame())
	assertValues(t, got, []interface{}{5.0, nil, 6.0})
}

func TestMeanHorizontal_Float32(t *testing.T) {
	frame := MustFrame(
		NewColumnF32("x", []float32{1, 2}),
		NewColumnF32("y", []float32{2, 3}),
	)
	got := evalExpr(t, mustExpr(t)(MeanHorizontal(false, Col("x"), Col("y"))), frame)
	if got.DType() != Float32 {
		t.Fatalf("dtype = %s, want Float32", got.DType())
	}
	vals := got.Float64()
	if math.Abs(vals[0]-1.5) > 1e-6 || math.Abs(vals[1]-2.5) > 1e-6 {
		t.Errorf("got %v, want [1.5 2.5]", vals)
	}
}

func TestAllAnyHorizontal_Kleene(t *testing.T) {
	all := evalExpr(t, mustExpr(t)(AllHorizontal(Col("p"), Col("q"))), boolFrame())
	if all.Name() != "all" || all.DType() != Bool {
		t.Errorf("got %s, want all: Bool", all)
	}
	assertValues(t, all, []interface{}{true, nil, false, nil})

	anyCol := evalExpr(t, mustExpr(t)(AnyHorizontal(Col("p"), Col("q"))), boolFrame())
	if anyCol.Name() != "any" {
		t.Errorf("name = %q, want any", anyCol.Name())
	}
	assertValues(t, anyCol, []interface{}{true, true, true, nil})
}

func TestAllAnyHorizontal_EmptyExpansion(t *testing.T) {
	all := evalExpr(t, mustExpr(t)(AllHorizontal(Cols())), sparseFrame())
	if all.Name() != "all" {
		t.Errorf("name = %q, want all", all.Name())
	}
	assertValues(t, all, []interface{}{true, true, true})

	anyCol := evalExpr(t, mustExpr(t)(AnyHorizontal(Cols())), sparseFrame())
	assertValues(t, anyCol, []interface{}{false, false, false})

	f, err := OutputField(mustExpr(t)(AllHorizontal(Cols())), sparseFrame().Schema())
	if err != nil {
		t.Fatal(err)
	}
	if !f.Equal(NewField("all", Bool)) {
		t.Errorf("OutputField = %s, want all: Bool", f)
	}
}

func TestSumHorizontal_EmptyExpansion(t *testing.T) {
	_, err := Evaluate(context.Background(), mustExpr(t)(SumHorizontal(true, Cols())), sparseFrame())
	if !errors.Is(err, ErrCompute) {
		t.Errorf("got %v, want ErrCompute", err)
	}
}

func TestAllHorizontal_RejectsNumeric(t *testing.T) {
	_, err := Evaluate(context.Background(), mustExpr(t)(AllHorizontal(Col("a"))), sparseFrame())
	if !errors.Is(err, ErrSchema) {
		t.Errorf("got %v, want ErrSchema", err)
	}
}

func TestHorizontalOutputField(t *testing.T) {
	tests := []struct {
		name   string
		fn     HorizontalFunction
		fields []Field
		want   Field
	}{
		{"sum ints", SumHorizontalFn, []Field{NewField("a", Int32), NewField("b", Int64)}, NewField("a", Int64)},
		{"sum bools", SumHorizontalFn, []Field{NewField("a", Bool), NewField("b", Bool)}, NewField("a", UInt32)},
		{"sum nulls", SumHorizontalFn, []Field{NewField("a", Null)}, NewField("a", Int64)},
		{"mean ints", MeanHorizontalFn, []Field{NewField("a", Int32)}, NewField("a", Float64)},
		{"mean f32", MeanHorizontalFn, []Field{NewField("a", Float32), NewField("b", Float32)}, NewField("a", Float32)},
		{"max", MaxHorizontalFn, []Field{NewField("a", Int32), NewField("b", UInt32)}, NewField("max", Int64)},
		{"min", MinHorizontalFn, []Field{NewField("a", String)}, NewField("min", String)},
		{"coalesce", CoalesceFn, []Field{NewField("a", Null), NewField("b", Float32)}, NewField("a", Float32)},
		{"any", AnyHorizontalFn, []Field{NewField("a", Bool), NewField("b", Null)}, NewField("any", Bool)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := horizontalOutputField(tt.fn, tt.fields)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := horizontalOutputField(SumHorizontalFn, []Field{NewField("s", String)}); !errors.Is(err, ErrSchema) {
		t.Errorf("sum of strings: got %v, want ErrSchema", err)
	}
	if _, err := horizontalOutputField(MaxHorizontalFn, []Field{NewField("b", Bool)}); !errors.Is(err, ErrSchema) {
		t.Errorf("max of bools: got %v, want ErrSchema", err)
	}
}
