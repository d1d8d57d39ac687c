package dsl

import (
	"errors"
	"testing"
)

func TestExpandExpr(t *testing.T) {
	schema := foldFrame().Schema()

	out, err := expandExpr(All(), schema)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 || out[2].(*ColExpr).Name != "c" {
		t.Errorf("All() expanded to %v", out)
	}

	out, err = expandExpr(Cols("c", "a"), schema)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 || out[0].(*ColExpr).Name != "c" {
		t.Errorf("Cols(c, a) expanded to %v", out)
	}

	if _, err := expandExpr(Cols("zz"), schema); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("got %v, want ErrColumnNotFound", err)
	}

	out, err = expandExpr(Col("a").Add(Lit(1)), schema)
	if err != nil || len(out) != 1 {
		t.Errorf("non-wildcard expanded to %v, %v", out, err)
	}
}

func TestOutputField(t *testing.T) {
	schema := sparseFrame().Schema()
	tests := []struct {
		name string
		expr Expr
		want Field
	}{
		{"column", Col("a"), NewField("a", Int64)},
		{"literal", Lit(1.5), NewField("literal", Float64)},
		{"alias", Col("a").Alias("x"), NewField("x", Int64)},
		{"cast", Col("a").Cast(Float32), NewField("a", Float32)},
		{"arith", Col("a").Add(Lit(0.5)), NewField("a", Float64)},
		{"compare", Col("a").Gt(Col("b")), NewField("a", Bool)},
		{"is_null", Col("b").IsNull(), NewField("b", Bool)},
		{"coalesce", Coalesce(Lit(nil), Col("c")), NewField("literal", Int64)},
		{"mean", mustExpr(t)(MeanHorizontal(true, All())), NewField("a", Float64)},
		{"reduce", Reduce(CombineFunc(addCombine), Cols("b", "c")), NewField("b", Int64)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := OutputField(tt.expr, schema)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOutputField_Errors(t *testing.T) {
	schema := sparseFrame().Schema()
	if _, err := OutputField(Col("zz"), schema); !errors.Is(err, ErrColumnNotFound) {
		t.Errorf("missing column: got %v", err)
	}
	if _, err := OutputField(All(), schema); !errors.Is(err, ErrCompute) {
		t.Errorf("wildcard: got %v", err)
	}
	if _, err := OutputField(mustExpr(t)(SumHorizontal(true, Cols())), schema); !errors.Is(err, ErrCompute) {
		t.Errorf("empty sum: got %v", err)
	}
}

func TestOutputSchema(t *testing.T) {
	schema := sparseFrame().Schema()
	out, err := OutputSchema(schema, All(), mustExpr(t)(MaxHorizontal(All())))
	if err != nil {
		t.Fatal(err)
	}
	names := out.Names()
	if len(names) != 4 || names[3] != "max" {
		t.Errorf("names = %v", names)
	}

	if _, err := OutputSchema(schema, Col("a"), Col("a")); !errors.Is(err, ErrSchema) {
		t.Errorf("duplicate output: got %v, want ErrSchema", err)
	}
}
