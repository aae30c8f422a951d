package function

import (
	"regexp"
	"strconv"

	"github.com/gabereiser/lazysql/sql"
)

// fnRegexpSubstr implements REGEXP_SUBSTR(str, pattern[, position[, occurrence]]).
func fnRegexpSubstr(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	re, err := regexp.Compile(args[1].Text())
	if err != nil {
		return sql.Value{}, sql.ErrArgumentValue.New("invalid regular expression: " + err.Error())
	}
	position, occurrence := regexPositionOccurrence(args, 2, 3, 1)
	runes := []rune(args[0].Text())
	if position < 1 || position > len(runes)+1 {
		return sql.Value{}, sql.ErrArgumentValue.New("position out of range: " + strconv.Itoa(position))
	}
	subject := string(runes[position-1:])
	matches := re.FindAllString(subject, -1)
	if occurrence < 1 || occurrence > len(matches) {
		return sql.Null(), nil
	}
	return sql.String(matches[occurrence-1]), nil
}

// fnRegexpReplace implements REGEXP_REPLACE(str, pattern, replacement[, position[, occurrence]]).
// occurrence=0 (the default) replaces every match from position onward.
func fnRegexpReplace(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() || args[2].IsNull() {
		return sql.Null(), nil
	}
	re, err := regexp.Compile(args[1].Text())
	if err != nil {
		return sql.Value{}, sql.ErrArgumentValue.New("invalid regular expression: " + err.Error())
	}
	position, occurrence := regexPositionOccurrence(args, 3, 4, 0)
	runes := []rune(args[0].Text())
	if position < 1 || position > len(runes)+1 {
		return sql.Value{}, sql.ErrArgumentValue.New("position out of range: " + strconv.Itoa(position))
	}
	prefix := string(runes[:position-1])
	subject := string(runes[position-1:])
	replacement := args[2].Text()

	if occurrence == 0 {
		return sql.String(prefix + re.ReplaceAllString(subject, replacement)), nil
	}

	count := 0
	result := re.ReplaceAllStringFunc(subject, func(m string) string {
		count++
		if count == occurrence {
			return re.ReplaceAllString(m, replacement)
		}
		return m
	})
	return sql.String(prefix + result), nil
}

func regexPositionOccurrence(args []sql.Value, posIdx, occIdx, defaultOcc int) (int, int) {
	position := 1
	occurrence := defaultOcc
	if len(args) > posIdx && !args[posIdx].IsNull() {
		f, _ := args[posIdx].Float64()
		position = int(f)
	}
	if len(args) > occIdx && !args[occIdx].IsNull() {
		f, _ := args[occIdx].Float64()
		occurrence = int(f)
	}
	return position, occurrence
}
