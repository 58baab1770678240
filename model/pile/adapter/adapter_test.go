package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/fluxmesh/errs"
)

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()
	assert.Equal(t, []string{"csv", "json", "yaml"}, registry.Formats())
	actual, err := registry.Lookup("JSON")
	require.NoError(t, err)
	assert.EqualValues(t, "json", actual.Format())
	_, err = registry.Lookup("parquet")
	assert.ErrorIs(t, err, errs.ErrLookup)
}

func TestNewTable(t *testing.T) {
	records := []Record{
		{"name": "a", "id": "1", "created_at": "t1"},
		{"id": "2", "status": "DONE"},
	}
	table := NewTable(records)
	assert.Equal(t, []string{"id", "created_at", "name", "status"}, table.Columns)
	assert.Equal(t, [][]interface{}{{"1", "t1", "a", nil}, {"2", nil, nil, "DONE"}}, table.Rows)
	assert.Equal(t, records, table.Records())
}

func TestCSV(t *testing.T) {
	records := []Record{
		{"id": "1", "count": 3, "tags": []interface{}{"x"}},
		{"id": "2", "count": 1.5},
	}
	data, err := (&CSV{}).Export(records)
	require.NoError(t, err)
	assert.EqualValues(t, "id,count,tags\n1,3,\"[\"\"x\"\"]\"\n2,1.5,\n", string(data))

	decoded, err := (&CSV{}).Import(data)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"id": "1", "count": "3", "tags": `["x"]`}, {"id": "2", "count": "1.5"}}, decoded)
}

func TestStructured(t *testing.T) {
	records := []Record{{"id": "1", "name": "a"}}
	for _, adapter := range []Adapter{&JSON{}, &YAML{}} {
		t.Run(adapter.Format(), func(t *testing.T) {
			data, err := adapter.Export(records)
			require.NoError(t, err)
			decoded, err := adapter.Import(data)
			require.NoError(t, err)
			assert.Equal(t, records, decoded)
		})
	}
	data, err := (&JSON{}).Export(nil)
	require.NoError(t, err)
	assert.EqualValues(t, "[]", string(data))
}
