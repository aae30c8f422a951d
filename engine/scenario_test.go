package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"

	"github.com/gabereiser/lazysql/memory"
	"github.com/gabereiser/lazysql/sql"
)

type fixtureTable struct {
	Columns []string        `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

type fixtureScenario struct {
	Name    string                   `yaml:"name"`
	Query   string                   `yaml:"query"`
	Want    []map[string]interface{} `yaml:"want"`
	WantErr []string                 `yaml:"wantErr"`
}

type fixtureFile struct {
	Tables    map[string]fixtureTable `yaml:"tables"`
	Scenarios []fixtureScenario       `yaml:"scenarios"`
}

func loadFixture(t *testing.T, path string) fixtureFile {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var f fixtureFile
	require.NoError(t, yaml.Unmarshal(raw, &f))
	return f
}

func fixtureValue(raw interface{}) sql.Value {
	switch v := raw.(type) {
	case nil:
		return sql.Null()
	case bool:
		return sql.Bool(v)
	case int:
		return sql.Int(int64(v))
	case int64:
		return sql.Int(v)
	case float64:
		return sql.Float(v)
	case string:
		return sql.String(v)
	default:
		return sql.Null()
	}
}

func fixtureEngine(t *testing.T, f fixtureFile, cached bool) *Engine {
	t.Helper()
	e := New(Config{})
	for name, tbl := range f.Tables {
		schema := make(sql.Schema, len(tbl.Columns))
		for i, c := range tbl.Columns {
			schema[i] = sql.Column{Name: c}
		}
		rows := make([][]sql.Value, len(tbl.Rows))
		for ri, raw := range tbl.Rows {
			require.Len(t, raw, len(tbl.Columns), "table %s row %d", name, ri+1)
			vals := make([]sql.Value, len(raw))
			for ci, cell := range raw {
				vals[ci] = fixtureValue(cell)
			}
			rows[ri] = vals
		}
		var src sql.DataSource = memory.NewTable(name, schema, rows)
		if cached {
			src = CachedDataSource(src)
		}
		e.RegisterTable(name, src)
	}
	return e
}

// TestScenarios runs every declarative scenario twice, once against plain
// in-memory sources and once against cached ones. The expectations are
// identical in both configurations, which doubles as the invariant that
// caching never changes a query's result.
func TestScenarios(t *testing.T) {
	f := loadFixture(t, "testdata/scenarios.yaml")
	for _, variant := range []struct {
		label  string
		cached bool
	}{
		{"plain", false},
		{"cached", true},
	} {
		for _, sc := range f.Scenarios {
			sc := sc
			t.Run(variant.label+"/"+sc.Name, func(t *testing.T) {
				e := fixtureEngine(t, f, variant.cached)
				ctx := e.NewContext(nil)
				rows, err := e.Query(ctx, sc.Query)

				if len(sc.WantErr) > 0 {
					require.Error(t, err)
					for _, want := range sc.WantErr {
						require.Contains(t, err.Error(), want)
					}
					return
				}

				require.NoError(t, err)
				require.Len(t, rows, len(sc.Want))
				for i, wantRow := range sc.Want {
					for col, rawWant := range wantRow {
						got, ok := rows[i][col]
						require.True(t, ok, "row %d missing column %q", i+1, col)
						want := fixtureValue(rawWant)
						if want.IsNull() {
							require.True(t, got.IsNull(), "row %d column %q: want null, got %v", i+1, col, got.Text())
							continue
						}
						require.Equal(t, want.Text(), got.Text(), "row %d column %q", i+1, col)
					}
				}
			})
		}
	}
}
