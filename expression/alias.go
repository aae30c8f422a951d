package expression

import (
	"strings"

	"github.com/gabereiser/lazysql/ast"
)

// DefaultAlias synthesizes the default output column name for a projection
// item with no explicit AS:
//   - bare column -> column name
//   - function call F(a, b) -> f_a_b (name lowercased, identifier args
//     joined by _; non-identifier args contribute no suffix)
//   - aggregate F(x) -> f_x (COUNT(*) -> count_all)
//   - bare operation -> "expr"
//   - numeric/string literal -> its textual form
func DefaultAlias(n ast.ExprNode) string {
	switch e := n.(type) {
	case *ast.Identifier:
		return e.Name
	case *ast.Star:
		if e.Qualifier != "" {
			return e.Qualifier + ".*"
		}
		return "*"
	case *ast.FuncCall:
		name := strings.ToLower(e.Name)
		if e.Star {
			return name + "_all"
		}
		parts := []string{name}
		for _, a := range e.Args {
			if id, ok := a.(*ast.Identifier); ok {
				parts = append(parts, id.Name)
			}
		}
		return strings.Join(parts, "_")
	case *ast.Literal:
		return e.Value.Text()
	default:
		return "expr"
	}
}
