package dsl

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// ExplainNode is the serializable form of one expression node
type ExplainNode struct {
	Kind    string         `json:"kind"`
	Label   string         `json:"label"`
	Options *ExplainOption `json:"options,omitempty"`
	Output  string         `json:"output,omitempty"`
	Inputs  []*ExplainNode `json:"inputs,omitempty"`
}

// ExplainOption is the serializable form of FunctionOptions
type ExplainOption struct {
	CollectGroups string   `json:"collect_groups"`
	Flags         []string `json:"flags"`
	Cast          string   `json:"cast"`
	IgnoreNulls   *bool    `json:"ignore_nulls,omitempty"`
}

// ============================================================================
// Explain
// ============================================================================

// ExplainTree builds the explain tree for expr. When schema is non-nil each
// node carries its predicted output field.
func ExplainTree(expr Expr, schema *Schema) *ExplainNode {
	node := &ExplainNode{Label: expr.String()}
	if schema != nil {
		if f, err := OutputField(expr, schema); err == nil {
			node.Output = f.String()
		}
	}

	switch e := expr.(type) {
	case *ColExpr:
		node.Kind, node.Label = "column", e.Name
	case *ColsExpr:
		node.Kind = "columns"
	case *WildcardExpr:
		node.Kind = "wildcard"
	case *LitExpr:
		node.Kind = "literal"
	case *AliasExpr:
		node.Kind, node.Label = "alias", e.AliasName
		node.Inputs = explainInputs([]Expr{e.Inner}, schema)
	case *CastExpr:
		node.Kind, node.Label = "cast", e.TargetType.String()
		node.Inputs = explainInputs([]Expr{e.Inner}, schema)
	case *BinaryOpExpr:
		node.Kind, node.Label = "binary", e.Op.String()
		node.Inputs = explainInputs([]Expr{e.Left, e.Right}, schema)
	case *IsNullExpr:
		node.Kind, node.Label = "is_null", "is_null"
		node.Inputs = explainInputs([]Expr{e.Input}, schema)
	case *IsNotNullExpr:
		node.Kind, node.Label = "is_not_null", "is_not_null"
		node.Inputs = explainInputs([]Expr{e.Input}, schema)
	case *AnonymousFunctionExpr:
		node.Kind, node.Label = "anonymous_function", e.Options.FmtStr
		node.Options = explainOptions(e.Options)
		node.Inputs = explainInputs(e.Inputs, schema)
	case *FunctionExpr:
		node.Kind, node.Label = "function", e.Options.FmtStr
		node.Options = explainOptions(e.Options)
		if e.Function == SumHorizontalFn || e.Function == MeanHorizontalFn {
			ignore := e.IgnoreNulls
			node.Options.IgnoreNulls = &ignore
		}
		node.Inputs = explainInputs(e.Inputs, schema)
	default:
		node.Kind = fmt.Sprintf("%T", expr)
	}
	return node
}

func explainInputs(inputs []Expr, schema *Schema) []*ExplainNode {
	out := make([]*ExplainNode, len(inputs))
	for i, in := range inputs {
		out[i] = ExplainTree(in, schema)
	}
	return out
}

func explainOptions(o FunctionOptions) *ExplainOption {
	flags := []string{}
	for _, fn := range flagNames {
		if o.Flags.Contains(fn.flag) {
			flags = append(flags, fn.name)
		}
	}
	return &ExplainOption{
		CollectGroups: o.CollectGroups.String(),
		Flags:         flags,
		Cast:          o.CastOptions.String(),
	}
}

// ExplainJSON renders the explain tree of expr as indented JSON
func ExplainJSON(expr Expr, schema *Schema) ([]byte, error) {
	return json.MarshalIndent(ExplainTree(expr, schema), "", "  ")
}

// Explain renders the explain tree of expr as indented text, one node per line
func Explain(expr Expr, schema *Schema) string {
	var sb strings.Builder
	describeNode(&sb, ExplainTree(expr, schema), 0)
	return sb.String()
}

// describeNode writes a node and its inputs
func describeNode(sb *strings.Builder, n *ExplainNode, indent int) {
	prefix := strings.Repeat("  ", indent)
	fmt.Fprintf(sb, "%s%s %s", prefix, n.Kind, n.Label)
	if n.Options != nil {
		fmt.Fprintf(sb, " [%s, %s, cast=%s]", n.Options.CollectGroups, strings.Join(n.Options.Flags, "|"), n.Options.Cast)
	}
	if n.Output != "" {
		fmt.Fprintf(sb, " -> %s", n.Output)
	}
	sb.WriteString("\n")
	for _, in := range n.Inputs {
		describeNode(sb, in, indent+1)
	}
}
