// Package plan lowers a parsed SelectStatement into a tree of physical
// operator nodes, one file per node kind; rowexec walks this tree to
// build the executing row stream.
package plan

import "github.com/gabereiser/lazysql/sql"

// Node is a physical plan node. It carries its own resolved output schema
// and its children, so rowexec can build bottom-up without re-resolving
// names.
type Node interface {
	Schema() sql.Schema
	Children() []Node
}

func childSchemas(children []Node) []sql.Schema {
	schemas := make([]sql.Schema, len(children))
	for i, c := range children {
		schemas[i] = c.Schema()
	}
	return schemas
}
