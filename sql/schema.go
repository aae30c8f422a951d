package sql

import "strings"

// Column describes one column of a Schema: its name and declared type tag.
// Type is advisory (used by CAST target validation and EXPLAIN-style
// diagnostics); the engine does not enforce it on every cell read.
type Column struct {
	Name string
	Type Kind
}

// Schema is an ordered list of columns, the shape a Row or a table exposes.
type Schema []Column

// IndexOf returns the position of name in the schema, case-insensitively,
// or -1 if absent. Every name lookup (CTE, table, function, column) goes
// through NormalizeIdent plus a single comparison site.
func (s Schema) IndexOf(name string) int {
	name = NormalizeIdent(name)
	for i, c := range s {
		if NormalizeIdent(c.Name) == name {
			return i
		}
	}
	return -1
}

func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// NormalizeIdent is the single case-folding function used for CTE lookup,
// table lookup, function lookup, and column lookup.
func NormalizeIdent(name string) string {
	return strings.ToLower(name)
}
