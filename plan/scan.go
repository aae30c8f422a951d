package plan

import "github.com/gabereiser/lazysql/sql"

// Scan is a leaf node reading from a base table, CTE materialization, or
// derived-table source. Hints is the pushdown envelope computed by Builder
// by walking the consuming operators upward.
type Scan struct {
	TableName string
	Alias     string
	Source    sql.DataSource
	Hints     sql.ScanHints
	Sch       sql.Schema
}

func (s *Scan) Schema() sql.Schema  { return s.Sch }
func (s *Scan) Children() []Node    { return nil }

// QualifiedName is the table's effective name for column qualification:
// the alias if one was given, else the table name.
func (s *Scan) QualifiedName() string {
	if s.Alias != "" {
		return s.Alias
	}
	return s.TableName
}
