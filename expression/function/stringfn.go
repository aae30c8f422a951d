package function

import (
	"strconv"
	"strings"

	"github.com/gabereiser/lazysql/sql"
)

func fnUpper(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	return sql.String(strings.ToUpper(args[0].Text())), nil
}

func fnLower(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	return sql.String(strings.ToLower(args[0].Text())), nil
}

func fnConcat(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return sql.Null(), nil
		}
		b.WriteString(a.Text())
	}
	return sql.String(b.String()), nil
}

func fnLength(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	return sql.Int(int64(len([]rune(args[0].Text())))), nil
}

// fnSubstring implements SUBSTRING(str, start[, length]), 1-based. A
// non-positive start is a descriptive error rather than a silent clamp.
func fnSubstring(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	startF, ok := args[1].Float64()
	if !ok {
		return sql.Value{}, sql.ErrArgumentValue.New("start position must be numeric")
	}
	start := int(startF)
	if start < 1 {
		return sql.Value{}, sql.ErrArgumentValue.New("start position must be a positive integer, got " + strconv.Itoa(start))
	}
	runes := []rune(args[0].Text())
	if start > len(runes) {
		return sql.String(""), nil
	}
	end := len(runes)
	if len(args) == 3 && !args[2].IsNull() {
		lf, _ := args[2].Float64()
		l := int(lf)
		if l < 0 {
			l = 0
		}
		if start-1+l < end {
			end = start - 1 + l
		}
	}
	return sql.String(string(runes[start-1 : end])), nil
}

func fnTrim(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() {
		return sql.Null(), nil
	}
	return sql.String(strings.TrimSpace(args[0].Text())), nil
}

func fnReplace(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	for _, a := range args {
		if a.IsNull() {
			return sql.Null(), nil
		}
	}
	return sql.String(strings.ReplaceAll(args[0].Text(), args[1].Text(), args[2].Text())), nil
}

func fnLeft(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	nf, _ := args[1].Float64()
	n := int(nf)
	runes := []rune(args[0].Text())
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return sql.String(string(runes[:n])), nil
}

func fnRight(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	nf, _ := args[1].Float64()
	n := int(nf)
	runes := []rune(args[0].Text())
	if n < 0 {
		n = 0
	}
	if n > len(runes) {
		n = len(runes)
	}
	return sql.String(string(runes[len(runes)-n:])), nil
}

func fnInstr(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	idx := strings.Index(args[0].Text(), args[1].Text())
	return sql.Int(int64(idx + 1)), nil
}
