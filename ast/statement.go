package ast

import "github.com/gabereiser/lazysql/sql"

// ExprNode is the tagged union of expression AST nodes.
type ExprNode interface {
	Pos() int
}

type baseNode struct{ pos int }

func (b baseNode) Pos() int { return b.pos }

// Literal is a literal scalar (number, string, null, boolean).
type Literal struct {
	baseNode
	Value sql.Value
}

// Identifier is a (possibly qualified) column reference, e.g. `t.col`.
type Identifier struct {
	baseNode
	Qualifier string
	Name      string
}

// Star is `*` or `t.*` in a projection list.
type Star struct {
	baseNode
	Qualifier string
}

// BinaryExpr covers + - * / % = != < <= > >= AND OR.
type BinaryExpr struct {
	baseNode
	Op    string
	Left  ExprNode
	Right ExprNode
}

// UnaryExpr covers unary `-` and `NOT`.
type UnaryExpr struct {
	baseNode
	Op      string
	Operand ExprNode
}

// FuncCall is a function call, with optional DISTINCT and FILTER(WHERE ...)
// modifiers (valid only on aggregate functions).
type FuncCall struct {
	baseNode
	Name     string
	Args     []ExprNode
	Star     bool // COUNT(*)
	Distinct bool
	Filter   ExprNode
}

// Cast is CAST(expr AS type).
type Cast struct {
	baseNode
	Expr   ExprNode
	Target string
}

// WhenClause is one WHEN ... THEN ... arm of a CASE expression.
type WhenClause struct {
	Cond   ExprNode
	Result ExprNode
}

// CaseExpr covers both simple (Operand != nil) and searched CASE forms.
type CaseExpr struct {
	baseNode
	Operand ExprNode
	Whens   []WhenClause
	Else    ExprNode
}

// Between is `expr [NOT] BETWEEN low AND high`.
type Between struct {
	baseNode
	Expr     ExprNode
	Low      ExprNode
	High     ExprNode
	Negated  bool
}

// InExpr is `expr [NOT] IN (list)` or `expr [NOT] IN (subquery)`.
type InExpr struct {
	baseNode
	Expr     ExprNode
	List     []ExprNode
	Subquery *SelectStatement
	Negated  bool
}

// ExistsExpr is `[NOT] EXISTS (subquery)`.
type ExistsExpr struct {
	baseNode
	Subquery *SelectStatement
	Negated  bool
}

// IsNullExpr is `expr IS [NOT] NULL`.
type IsNullExpr struct {
	baseNode
	Expr    ExprNode
	Negated bool
}

// LikeExpr is `expr [NOT] LIKE pattern`.
type LikeExpr struct {
	baseNode
	Expr    ExprNode
	Pattern ExprNode
	Negated bool
}

// Interval is `INTERVAL value UNIT`, valid only as an operand of binary +/-
// against a date/timestamp; the parser enforces that context.
type Interval struct {
	baseNode
	Value ExprNode
	Unit  string
}

// Subquery wraps a nested SelectStatement used as a scalar/row expression.
type Subquery struct {
	baseNode
	Select *SelectStatement
}

// SelectItem is one projection entry: an expression plus an optional
// explicit alias.
type SelectItem struct {
	Expr  ExprNode
	Alias string
}

// TableRef is a FROM/JOIN table reference: a base-table name, a CTE name
// (resolved at plan time), or a derived table (parenthesized SELECT, alias
// required).
type TableRef struct {
	Name     string
	Alias    string
	Subquery *SelectStatement
	Pos      int
}

// JoinClause is one JOIN entry. Kind is one of INNER, LEFT, RIGHT, FULL,
// POSITIONAL. On is nil for POSITIONAL.
type JoinClause struct {
	Kind  string
	Table *TableRef
	On    ExprNode
	Pos   int
}

// OrderByItem is one ORDER BY term.
type OrderByItem struct {
	Expr       ExprNode
	Desc       bool
	NullsFirst *bool // nil means the default placement (nulls lead)
}

// CTEDefinition is one named subquery of a WITH clause. A CTE may reference
// only CTEs appearing earlier in the same With list.
type CTEDefinition struct {
	Name  string
	Query *SelectStatement
}

// SetOp chains a UNION / UNION ALL onto a SelectStatement.
type SetOp struct {
	All   bool
	Right *SelectStatement
}

// SelectStatement is the parsed AST root for one SELECT.
type SelectStatement struct {
	With       []CTEDefinition
	Distinct   bool
	Projection []SelectItem
	From       *TableRef
	Joins      []JoinClause
	Where      ExprNode
	GroupBy    []ExprNode
	Having     ExprNode
	OrderBy    []OrderByItem
	Limit      *int
	Offset     *int
	SetOp      *SetOp
}
