package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabereiser/lazysql/sql"
)

func TestJSONValueAndQuery(t *testing.T) {
	ctx := sql.NewEmptyContext()
	doc := sql.String(`{"name":"ada","tags":["a","b"],"meta":{"age":30}}`)

	v, err := fnJSONValue(ctx, []sql.Value{doc, sql.String("name")})
	require.NoError(t, err)
	assert.Equal(t, "ada", v.Text())

	v, err = fnJSONValue(ctx, []sql.Value{doc, sql.String("meta.age")})
	require.NoError(t, err)
	assert.Equal(t, 30.0, v.AsFloat())

	v, err = fnJSONValue(ctx, []sql.Value{doc, sql.String("missing")})
	require.NoError(t, err)
	assert.True(t, v.IsNull())

	v, err = fnJSONQuery(ctx, []sql.Value{doc, sql.String("meta")})
	require.NoError(t, err)
	assert.Equal(t, sql.KindJSON, v.Kind())

	v, err = fnJSONQuery(ctx, []sql.Value{doc, sql.String("name")})
	require.NoError(t, err)
	assert.True(t, v.IsNull())
}

func TestJSONObject(t *testing.T) {
	ctx := sql.NewEmptyContext()

	v, err := fnJSONObject(ctx, []sql.Value{sql.String("a"), sql.Int(1), sql.String("b"), sql.Null()})
	require.NoError(t, err)
	obj, ok := v.AsJSON().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "1", obj["a"])
	assert.Nil(t, obj["b"])

	_, err = fnJSONObject(ctx, []sql.Value{sql.String("a")})
	require.Error(t, err)
}
