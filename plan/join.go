package plan

import (
	"github.com/gabereiser/lazysql/ast"
	"github.com/gabereiser/lazysql/sql"
)

// JoinKind is one of the four ON-joined semantics: INNER, LEFT, RIGHT,
// FULL.
type JoinKind int

const (
	JoinInner JoinKind = iota
	JoinLeft
	JoinRight
	JoinFull
)

func (k JoinKind) String() string {
	switch k {
	case JoinLeft:
		return "LEFT"
	case JoinRight:
		return "RIGHT"
	case JoinFull:
		return "FULL"
	default:
		return "INNER"
	}
}

// JoinKeyPair is one equi-join conjunct `Left = Right`, with each operand
// resolved to the child it is evaluated against.
type JoinKeyPair struct {
	Left  ast.ExprNode
	Right ast.ExprNode
}

// HashJoin builds a multimap from Right (the inner/build side) keyed by
// Keys, then probes with Left (the outer/streamed side). Chosen by
// Builder whenever the ON expression lowers to a pure AND-chain of
// equalities.
type HashJoin struct {
	Left  Node
	Right Node
	Kind  JoinKind
	Keys  []JoinKeyPair
	Sch   sql.Schema
}

func (j *HashJoin) Schema() sql.Schema { return j.Sch }
func (j *HashJoin) Children() []Node   { return []Node{j.Left, j.Right} }

// NestedLoopJoin is the fallback for non-equi or otherwise complex ON
// expressions: both inputs are buffered and the Cartesian product is
// filtered by On.
type NestedLoopJoin struct {
	Left  Node
	Right Node
	Kind  JoinKind
	On    ast.ExprNode
	Sch   sql.Schema
}

func (j *NestedLoopJoin) Schema() sql.Schema { return j.Sch }
func (j *NestedLoopJoin) Children() []Node   { return []Node{j.Left, j.Right} }

// PositionalJoin pairs Left[i] with Right[i], null-padding the shorter
// side once the longer side is exhausted.
type PositionalJoin struct {
	Left  Node
	Right Node
	Sch   sql.Schema
}

func (j *PositionalJoin) Schema() sql.Schema { return j.Sch }
func (j *PositionalJoin) Children() []Node   { return []Node{j.Left, j.Right} }
