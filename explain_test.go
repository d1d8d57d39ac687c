package dsl

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestExplainTree_Horizontal(t *testing.T) {
	schema := sparseFrame().Schema()
	sum := mustExpr(t)(SumHorizontal(true, Col("a"), Col("b")))
	node := ExplainTree(sum, schema)

	if node.Kind != "function" || node.Label != "sum_horizontal" {
		t.Errorf("node = %s %s", node.Kind, node.Label)
	}
	if node.Output != "a: Int64" {
		t.Errorf("output = %q, want a: Int64", node.Output)
	}
	if node.Options == nil || node.Options.CollectGroups != "ElementWise" {
		t.Fatalf("options = %+v", node.Options)
	}
	if node.Options.IgnoreNulls == nil || !*node.Options.IgnoreNulls {
		t.Errorf("ignore_nulls not reported")
	}
	if len(node.Inputs) != 2 || node.Inputs[1].Kind != "column" || node.Inputs[1].Label != "b" {
		t.Errorf("inputs = %+v", node.Inputs)
	}
}

func TestExplainJSON(t *testing.T) {
	schema := foldFrame().Schema()
	out, err := ExplainJSON(CumReduce(CombineFunc(addCombine), All()), schema)
	if err != nil {
		t.Fatal(err)
	}

	var node struct {
		Kind    string `json:"kind"`
		Label   string `json:"label"`
		Output  string `json:"output"`
		Options struct {
			CollectGroups string   `json:"collect_groups"`
			Flags         []string `json:"flags"`
			Cast          string   `json:"cast"`
		} `json:"options"`
	}
	if err := json.Unmarshal(out, &node); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if node.Kind != "anonymous_function" || node.Label != "cum_reduce" {
		t.Errorf("node = %s %s", node.Kind, node.Label)
	}
	if node.Options.CollectGroups != "GroupWise" || node.Options.Cast != "None" {
		t.Errorf("options = %+v", node.Options)
	}
	flags := strings.Join(node.Options.Flags, "|")
	if flags != "INPUT_WILDCARD_EXPANSION|RETURNS_SCALAR" {
		t.Errorf("flags = %s", flags)
	}
	if !strings.HasPrefix(node.Output, "a: Struct{a: Int64") {
		t.Errorf("output = %q", node.Output)
	}
}

func TestExplain_Text(t *testing.T) {
	expr := Coalesce(Col("a"), Lit(0)).Alias("filled")
	got := Explain(expr, sparseFrame().Schema())
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	if lines[0] != "alias filled -> filled: Int64" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "  function coalesce [ElementWise, INPUT_WILDCARD_EXPANSION, cast=Supertypes] -> a: Int64" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[3] != "    literal lit(0) -> literal: Int64" {
		t.Errorf("line 3 = %q", lines[3])
	}
}

func TestExplainTree_NoSchema(t *testing.T) {
	node := ExplainTree(Col("a").Gt(Lit(1)), nil)
	if node.Output != "" {
		t.Errorf("output = %q, want empty without schema", node.Output)
	}
	if node.Kind != "binary" || node.Label != ">" {
		t.Errorf("node = %s %s", node.Kind, node.Label)
	}
}
