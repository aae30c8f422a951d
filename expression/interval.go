package expression

import (
	"time"

	"github.com/gabereiser/lazysql/sql"
)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ApplyInterval implements date ± INTERVAL n UNIT: a
// date-typed operand (exactly "YYYY-MM-DD") preserves that format, a
// timestamp preserves ISO-8601 with millisecond precision.
func ApplyInterval(base sql.Value, sign int, amount float64, unit string) (sql.Value, error) {
	if base.IsNull() {
		return sql.Null(), nil
	}
	text := base.Text()
	dateOnly := len(text) == len("2006-01-02")

	var t time.Time
	var err error
	if dateOnly {
		t, err = time.Parse("2006-01-02", text)
	} else {
		t, err = parseTimestamp(text)
	}
	if err != nil {
		return sql.Value{}, sql.ErrCast.New(base.Kind().String(), "date/timestamp", err.Error())
	}

	amt := int(amount) * sign
	switch unit {
	case "DAY":
		t = t.AddDate(0, 0, amt)
	case "MONTH":
		t = t.AddDate(0, amt, 0)
	case "YEAR":
		t = t.AddDate(amt, 0, 0)
	case "HOUR":
		t = t.Add(time.Duration(amt) * time.Hour)
	case "MINUTE":
		t = t.Add(time.Duration(amt) * time.Minute)
	case "SECOND":
		t = t.Add(time.Duration(amt) * time.Second)
	default:
		return sql.Value{}, sql.ErrUnsupportedFeature.New("interval unit " + unit)
	}

	if dateOnly {
		return sql.DateTime(t.Format("2006-01-02")), nil
	}
	return sql.DateTime(t.UTC().Format("2006-01-02T15:04:05.000Z")), nil
}

func parseTimestamp(text string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, text)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
