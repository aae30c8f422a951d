package plan

import "github.com/gabereiser/lazysql/sql"

// Distinct hashes the stable textual form of each projected row, emitting
// only the first occurrence of each distinct tuple.
type Distinct struct {
	Child Node
	Sch   sql.Schema
}

func (d *Distinct) Schema() sql.Schema { return d.Sch }
func (d *Distinct) Children() []Node   { return []Node{d.Child} }
