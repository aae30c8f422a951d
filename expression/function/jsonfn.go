package function

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/gabereiser/lazysql/sql"
)

func jsonText(v sql.Value) (string, error) {
	switch v.Kind() {
	case sql.KindString, sql.KindDateTime:
		return v.AsString(), nil
	case sql.KindJSON:
		b, err := json.Marshal(v.AsJSON())
		if err != nil {
			return "", sql.ErrArgumentValue.New("value is not valid JSON: " + err.Error())
		}
		return string(b), nil
	default:
		return v.Text(), nil
	}
}

// fnJSONValue implements JSON_VALUE(json, path): extracts a scalar.
func fnJSONValue(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	text, err := jsonText(args[0])
	if err != nil {
		return sql.Value{}, err
	}
	result := gjson.Get(text, args[1].Text())
	if !result.Exists() {
		return sql.Null(), nil
	}
	switch result.Type {
	case gjson.Number:
		return sql.Float(result.Float()), nil
	case gjson.True, gjson.False:
		return sql.Bool(result.Bool()), nil
	case gjson.Null:
		return sql.Null(), nil
	default:
		return sql.String(result.String()), nil
	}
}

// fnJSONQuery implements JSON_QUERY(json, path): extracts an object/array,
// returned as a nested JSON value rather than a flattened scalar.
func fnJSONQuery(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if args[0].IsNull() || args[1].IsNull() {
		return sql.Null(), nil
	}
	text, err := jsonText(args[0])
	if err != nil {
		return sql.Value{}, err
	}
	result := gjson.Get(text, args[1].Text())
	if !result.Exists() || !(result.IsObject() || result.IsArray()) {
		return sql.Null(), nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(result.Raw), &v); err != nil {
		return sql.Value{}, sql.ErrArgumentValue.New("malformed JSON at path: " + err.Error())
	}
	return sql.JSON(v), nil
}

// fnJSONObject implements JSON_OBJECT(k1, v1, k2, v2, ...).
func fnJSONObject(ctx *sql.Context, args []sql.Value) (sql.Value, error) {
	if len(args)%2 != 0 {
		return sql.Value{}, sql.ErrArgumentValue.New("JSON_OBJECT requires an even number of key/value arguments")
	}
	obj := make(map[string]interface{}, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key := args[i].Text()
		val := args[i+1]
		if val.IsNull() {
			obj[key] = nil
			continue
		}
		if val.Kind() == sql.KindJSON {
			obj[key] = val.AsJSON()
			continue
		}
		obj[key] = val.Text()
	}
	return sql.JSON(obj), nil
}
