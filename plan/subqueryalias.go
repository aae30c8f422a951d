package plan

import "github.com/gabereiser/lazysql/sql"

// SubqueryAlias is a derived table: a parenthesized SelectStatement planned
// once at its syntactic position in FROM and consumed as a single-use
// stream, qualified under Alias.
type SubqueryAlias struct {
	Alias string
	Child Node
	Sch   sql.Schema
}

func (s *SubqueryAlias) Schema() sql.Schema { return s.Sch }
func (s *SubqueryAlias) Children() []Node   { return []Node{s.Child} }
