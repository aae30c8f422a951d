package expression

import (
	"regexp"
	"strings"
)

// likeToRegex translates a SQL LIKE pattern (`%` = any run, `_` = any one
// character) into an anchored regular expression, escaping every other
// character literally.
func likeToRegex(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
