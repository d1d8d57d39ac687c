package dsl

import (
	"fmt"
	"strings"
)

// Expr represents a lazy expression that can be evaluated on a Frame
type Expr interface {
	// String returns a string representation of the expression
	String() string

	// Clone creates a deep copy of the expression
	Clone() Expr

	// columns returns all column names referenced by this expression
	columns() []string

	// exprType returns the type of expression (for pattern matching)
	exprType() exprKind
}

type exprKind int

const (
	exprCol exprKind = iota
	exprCols
	exprWildcard
	exprLit
	exprAlias
	exprBinaryOp
	exprCast
	exprIsNull
	exprIsNotNull
	exprAnonymousFunction
	exprFunction
)

// ============================================================================
// Column Expression
// ============================================================================

// ColExpr represents a column reference
type ColExpr struct {
	Name string
}

// Col creates a column reference expression
func Col(name string) *ColExpr {
	return &ColExpr{Name: name}
}

func (e *ColExpr) String() string     { return fmt.Sprintf("col(%q)", e.Name) }
func (e *ColExpr) Clone() Expr        { return &ColExpr{Name: e.Name} }
func (e *ColExpr) columns() []string  { return []string{e.Name} }
func (e *ColExpr) exprType() exprKind { return exprCol }

// Arithmetic operations on columns
func (e *ColExpr) Add(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAdd, Right: other} }
func (e *ColExpr) Sub(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpSub, Right: other} }
func (e *ColExpr) Mul(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpMul, Right: other} }
func (e *ColExpr) Div(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpDiv, Right: other} }

// Comparison operations
func (e *ColExpr) Gt(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpGt, Right: other} }
func (e *ColExpr) Lt(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpLt, Right: other} }
func (e *ColExpr) Eq(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpEq, Right: other} }
func (e *ColExpr) Neq(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpNeq, Right: other} }
func (e *ColExpr) Gte(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpGte, Right: other} }
func (e *ColExpr) Lte(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpLte, Right: other} }

// Logical operations
func (e *ColExpr) And(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAnd, Right: other} }
func (e *ColExpr) Or(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpOr, Right: other} }

// Alias renames the column
func (e *ColExpr) Alias(name string) *AliasExpr {
	return &AliasExpr{Inner: e, AliasName: name}
}

// Cast converts to a different type
func (e *ColExpr) Cast(dtype DType) *CastExpr {
	return &CastExpr{Inner: e, TargetType: dtype}
}

// Null handling operations
func (e *ColExpr) IsNull() *IsNullExpr       { return &IsNullExpr{Input: e} }
func (e *ColExpr) IsNotNull() *IsNotNullExpr { return &IsNotNullExpr{Input: e} }

// ============================================================================
// Multi-Column Expressions
// ============================================================================

// ColsExpr selects several named columns at once. It expands into one
// column reference per name.
type ColsExpr struct {
	Names []string
}

// Cols creates a multi-column selection
func Cols(names ...string) *ColsExpr {
	return &ColsExpr{Names: append([]string(nil), names...)}
}

func (e *ColsExpr) String() string {
	quoted := make([]string, len(e.Names))
	for i, n := range e.Names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "cols(" + strings.Join(quoted, ", ") + ")"
}
func (e *ColsExpr) Clone() Expr        { return Cols(e.Names...) }
func (e *ColsExpr) columns() []string  { return append([]string(nil), e.Names...) }
func (e *ColsExpr) exprType() exprKind { return exprCols }

// WildcardExpr selects every column of the input frame
type WildcardExpr struct{}

// All returns an expression that selects all columns (*)
func All() *WildcardExpr {
	return &WildcardExpr{}
}

func (e *WildcardExpr) String() string     { return "*" }
func (e *WildcardExpr) Clone() Expr        { return &WildcardExpr{} }
func (e *WildcardExpr) columns() []string  { return nil } // means all
func (e *WildcardExpr) exprType() exprKind { return exprWildcard }

// ============================================================================
// Literal Expression
// ============================================================================

// LitExpr represents a literal value. A nil Value is a null literal.
type LitExpr struct {
	Value interface{}
}

// Lit creates a literal value expression
func Lit(value interface{}) *LitExpr {
	return &LitExpr{Value: value}
}

func (e *LitExpr) String() string {
	if e.Value == nil {
		return "lit(null)"
	}
	return fmt.Sprintf("lit(%v)", e.Value)
}
func (e *LitExpr) Clone() Expr        { return &LitExpr{Value: e.Value} }
func (e *LitExpr) columns() []string  { return nil }
func (e *LitExpr) exprType() exprKind { return exprLit }

// Alias renames the literal
func (e *LitExpr) Alias(name string) *AliasExpr {
	return &AliasExpr{Inner: e, AliasName: name}
}

// ============================================================================
// Alias Expression
// ============================================================================

// AliasExpr wraps an expression with a new name
type AliasExpr struct {
	Inner     Expr
	AliasName string
}

func (e *AliasExpr) String() string     { return fmt.Sprintf("%s.alias(%q)", e.Inner, e.AliasName) }
func (e *AliasExpr) Clone() Expr        { return &AliasExpr{Inner: e.Inner.Clone(), AliasName: e.AliasName} }
func (e *AliasExpr) columns() []string  { return e.Inner.columns() }
func (e *AliasExpr) exprType() exprKind { return exprAlias }

// ============================================================================
// Binary Operation Expression
// ============================================================================

// BinaryOp represents binary operation types
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpGt
	OpLt
	OpEq
	OpNeq
	OpGte
	OpLte
	OpAnd
	OpOr
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpGt:
		return ">"
	case OpLt:
		return "<"
	case OpEq:
		return "=="
	case OpNeq:
		return "!="
	case OpGte:
		return ">="
	case OpLte:
		return "<="
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	default:
		return "?"
	}
}

func (op BinaryOp) isComparison() bool {
	switch op {
	case OpGt, OpLt, OpEq, OpNeq, OpGte, OpLte:
		return true
	default:
		return false
	}
}

func (op BinaryOp) isLogical() bool {
	return op == OpAnd || op == OpOr
}

// BinaryOpExpr represents a binary operation between two expressions
type BinaryOpExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (e *BinaryOpExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

func (e *BinaryOpExpr) Clone() Expr {
	return &BinaryOpExpr{Left: e.Left.Clone(), Op: e.Op, Right: e.Right.Clone()}
}

func (e *BinaryOpExpr) columns() []string {
	cols := e.Left.columns()
	cols = append(cols, e.Right.columns()...)
	return cols
}

func (e *BinaryOpExpr) exprType() exprKind { return exprBinaryOp }

// Chainable operations on BinaryOpExpr
func (e *BinaryOpExpr) And(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAnd, Right: other} }
func (e *BinaryOpExpr) Or(other Expr) *BinaryOpExpr  { return &BinaryOpExpr{Left: e, Op: OpOr, Right: other} }
func (e *BinaryOpExpr) Add(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpAdd, Right: other} }
func (e *BinaryOpExpr) Mul(other Expr) *BinaryOpExpr { return &BinaryOpExpr{Left: e, Op: OpMul, Right: other} }
func (e *BinaryOpExpr) Alias(name string) *AliasExpr { return &AliasExpr{Inner: e, AliasName: name} }

// ============================================================================
// Cast Expression
// ============================================================================

// CastExpr represents a type cast
type CastExpr struct {
	Inner      Expr
	TargetType DType
}

func (e *CastExpr) String() string {
	return fmt.Sprintf("%s.cast(%s)", e.Inner, e.TargetType)
}

func (e *CastExpr) Clone() Expr {
	return &CastExpr{Inner: e.Inner.Clone(), TargetType: e.TargetType}
}

func (e *CastExpr) columns() []string  { return e.Inner.columns() }
func (e *CastExpr) exprType() exprKind { return exprCast }

func (e *CastExpr) Alias(name string) *AliasExpr {
	return &AliasExpr{Inner: e, AliasName: name}
}

// ============================================================================
// IsNull / IsNotNull Expressions
// ============================================================================

// IsNullExpr checks if values are null
type IsNullExpr struct {
	Input Expr
}

func (e *IsNullExpr) String() string     { return fmt.Sprintf("%s.is_null()", e.Input) }
func (e *IsNullExpr) Clone() Expr        { return &IsNullExpr{Input: e.Input.Clone()} }
func (e *IsNullExpr) columns() []string  { return e.Input.columns() }
func (e *IsNullExpr) exprType() exprKind { return exprIsNull }

// IsNotNullExpr checks if values are not null
type IsNotNullExpr struct {
	Input Expr
}

func (e *IsNotNullExpr) String() string     { return fmt.Sprintf("%s.is_not_null()", e.Input) }
func (e *IsNotNullExpr) Clone() Expr        { return &IsNotNullExpr{Input: e.Input.Clone()} }
func (e *IsNotNullExpr) columns() []string  { return e.Input.columns() }
func (e *IsNotNullExpr) exprType() exprKind { return exprIsNotNull }

// ============================================================================
// Helper Functions
// ============================================================================

func cloneExprs(exprs []Expr) []Expr {
	if exprs == nil {
		return nil
	}
	out := make([]Expr, len(exprs))
	for i, e := range exprs {
		out[i] = e.Clone()
	}
	return out
}

func exprsColumns(exprs []Expr) []string {
	var cols []string
	for _, e := range exprs {
		cols = append(cols, e.columns()...)
	}
	return cols
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
