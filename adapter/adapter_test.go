package adapter_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/tagrender/adapter"
	"github.com/byte4ever/tagrender/record"
)

func get(tb testing.TB, m *record.Map, key string) record.Value {
	tb.Helper()

	v, ok := m.Get(key)
	require.True(tb, ok, "missing key %q in %v", key, m.Keys())

	return v
}

func TestKindOf_extensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, adapter.YAML, adapter.KindOf("a/b.yml"))
	assert.Equal(t, adapter.YAML, adapter.KindOf("b.YAML"))
	assert.Equal(t, adapter.JSON, adapter.KindOf("b.json"))
	assert.Equal(t, adapter.CSV, adapter.KindOf("rows.csv"))
	assert.Equal(t, adapter.Record, adapter.KindOf("data.txt"))
	assert.Equal(t, adapter.Record, adapter.KindOf("data"))
	assert.Equal(t, "rows", adapter.Label("dir/rows.csv"))
}

func TestFromYAML_shape(t *testing.T) {
	t.Parallel()

	in := `
title: Report
count: 3
ratio: 0.5
enabled: true
nothing:
server:
  host: db1
  port: 5432
items:
  - name: a
    qty: 1
  - name: b
    qty: 2
tags: [x, y]
`

	m, err := adapter.FromYAML(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(
		t,
		[]string{"title", "count", "ratio", "enabled", "nothing", "server", "#items", "#tags"},
		m.Keys(),
	)
	assert.Equal(t, record.String("Report"), get(t, m, "title"))
	assert.Equal(t, record.String("3"), get(t, m, "count"))
	assert.Equal(t, record.String("0.5"), get(t, m, "ratio"))
	assert.Equal(t, record.String("true"), get(t, m, "enabled"))
	assert.Equal(t, record.String(""), get(t, m, "nothing"))

	host, ok := m.Lookup("server.host")
	require.True(t, ok)
	assert.Equal(t, record.String("db1"), host)

	items, ok := get(t, m, "#items").(record.List)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, []string{"name", "qty"}, items[0].Keys())
	assert.Equal(t, record.String("b"), get(t, items[1], "name"))

	tags, ok := get(t, m, "#tags").(record.List)
	require.True(t, ok)
	require.Len(t, tags, 2)
	assert.Equal(t, record.String("y"), get(t, tags[1], adapter.ScalarItemKey))
}

func TestFromYAML_multi_document_merge(t *testing.T) {
	t.Parallel()

	m, err := adapter.FromYAML(strings.NewReader("a: 1\nb: 2\n---\nb: 3\n"))
	require.NoError(t, err)

	assert.Equal(t, record.String("1"), get(t, m, "a"))
	assert.Equal(t, record.String("3"), get(t, m, "b"))
}

func TestFromYAML_not_a_mapping(t *testing.T) {
	t.Parallel()

	_, err := adapter.FromYAML(strings.NewReader("- a\n- b\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, adapter.ErrNotMapping)
}

func TestFromJSON_shape(t *testing.T) {
	t.Parallel()

	in := `{"b": 12345678901234567890, "a": {"x": "y"}, "rows": [{"k": 1}, {"k": 2}]}`

	m, err := adapter.FromJSON(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []string{"#rows", "a", "b"}, m.Keys())
	assert.Equal(t, record.String("12345678901234567890"), get(t, m, "b"))

	rows, ok := get(t, m, "#rows").(record.List)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, record.String("2"), get(t, rows[1], "k"))
}

func TestFromJSON_nested_lists_sort_by_stored_key(t *testing.T) {
	t.Parallel()

	in := `{"order": {"zeta": "1", "items": [{"sku": "a"}], "alpha": "2"}}`

	m, err := adapter.FromJSON(strings.NewReader(in))
	require.NoError(t, err)

	order, ok := get(t, m, "order").(*record.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"#items", "alpha", "zeta"}, order.Keys())
}

func TestFromJSON_errors(t *testing.T) {
	t.Parallel()

	_, err := adapter.FromJSON(strings.NewReader(`[1, 2]`))
	assert.ErrorIs(t, err, adapter.ErrNotMapping)

	_, err = adapter.FromJSON(strings.NewReader(`{"a":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding json data")
}

func TestFromCSV_rows(t *testing.T) {
	t.Parallel()

	m, err := adapter.FromCSV(
		strings.NewReader("name, qty\nbolt,4\nnut\n"), "parts",
	)
	require.NoError(t, err)

	rows, ok := get(t, m, "#parts").(record.List)
	require.True(t, ok)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "qty"}, rows[0].Keys())
	assert.Equal(t, record.String("4"), get(t, rows[0], "qty"))
	assert.Equal(t, record.String(""), get(t, rows[1], "qty"))
}

func TestFromCSV_empty_input(t *testing.T) {
	t.Parallel()

	_, err := adapter.FromCSV(strings.NewReader(""), "x")
	assert.ErrorIs(t, err, adapter.ErrMissingHeader)
}

func TestDecode_dispatch(t *testing.T) {
	t.Parallel()

	m, err := adapter.Decode(adapter.Record, "", strings.NewReader("k: v\n"))
	require.NoError(t, err)
	assert.Equal(t, record.String("v"), get(t, m, "k"))

	_, err = adapter.Decode(adapter.Kind("toml"), "", strings.NewReader(""))
	assert.ErrorIs(t, err, adapter.ErrUnsupportedKind)
}
