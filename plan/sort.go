package plan

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// SortKey is one ORDER BY term, lowered from ast.OrderByItem with
// NullsFirst resolved to its effective default when not explicit
// (null-low in ASC, null-high in DESC).
type SortKey struct {
	Expr       ast.ExprNode
	Desc       bool
	NullsFirst bool
}

// Sort buffers all input and orders it by Keys with a stable multi-key
// sort: later terms only break ties left by earlier ones, and a later
// term's values are evaluated only for rows still tied on the earlier terms,
// at most once per row (memoized).
type Sort struct {
	Child Node
	Keys  []SortKey
	Sch   sql.Schema
}

func (s *Sort) Schema() sql.Schema { return s.Sch }
func (s *Sort) Children() []Node   { return []Node{s.Child} }

// RandomShuffle implements ORDER BY RANDOM()/RAND(): a Fisher-Yates
// shuffle of the buffered input.
type RandomShuffle struct {
	Child Node
	Sch   sql.Schema
}

func (r *RandomShuffle) Schema() sql.Schema { return r.Sch }
func (r *RandomShuffle) Children() []Node   { return []Node{r.Child} }
