package record_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/tagrender/record"
)

func str(tb testing.TB, m *record.Map, key string) string {
	tb.Helper()

	v, ok := m.Get(key)
	require.True(tb, ok, "missing key %q", key)

	s, ok := v.(record.String)
	require.True(tb, ok, "key %q is %T", key, v)

	return string(s)
}

func list(tb testing.TB, m *record.Map, key string) record.List {
	tb.Helper()

	v, ok := m.Get(key)
	require.True(tb, ok, "missing key %q", key)

	ls, ok := v.(record.List)
	require.True(tb, ok, "key %q is %T", key, v)

	return ls
}

func TestRead_key_values(t *testing.T) {
	t.Parallel()

	m := record.Read("k1: v1\nk2: v2\n")

	assert.Equal(t, []string{"k1", "k2"}, m.Keys())
	assert.Equal(t, "v1", str(t, m, "k1"))
	assert.Equal(t, "v2", str(t, m, "k2"))
}

func TestRead_separator_rules(t *testing.T) {
	t.Parallel()

	m := record.Read(
		"url: http://example.com:8080/x\n" +
			"time:\t12:30\n" +
			"empty:\n" +
			"  padded  :   spaced value  \r\n",
	)

	assert.Equal(t, "http://example.com:8080/x", str(t, m, "url"))
	assert.Equal(t, "12:30", str(t, m, "time"))
	assert.Equal(t, "", str(t, m, "empty"))
	assert.Equal(t, "spaced value", str(t, m, "padded"))
}

func TestRead_line_without_separator(t *testing.T) {
	t.Parallel()

	m := record.Read("k: v\njust a line\nabc:def\n")

	assert.Equal(t, "", str(t, m, "just a line"))
	assert.Equal(t, "", str(t, m, "abc:def"))
}

func TestRead_last_assignment_wins(t *testing.T) {
	t.Parallel()

	m := record.Read("a: 1\nb: 2\na: 3\n")

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	assert.Equal(t, "3", str(t, m, "a"))
}

func TestRead_iteration_groups(t *testing.T) {
	t.Parallel()

	m := record.Read("//@#grp\n\nk: 1\n\nk: 2\n")

	assert.Equal(t, []string{"#grp"}, m.Keys())

	groups := list(t, m, "#grp")
	require.Len(t, groups, 2)
	assert.Equal(t, "1", str(t, groups[0], "k"))
	assert.Equal(t, "2", str(t, groups[1], "k"))
}

func TestRead_iteration_multi_key_groups(t *testing.T) {
	t.Parallel()

	m := record.Read(
		"//@#people\n" +
			"name: Ann\n" +
			"age: 31\n" +
			"\n\n\n" +
			"name: Bob\n" +
			"age: 42\n" +
			"//@#empty\n" +
			"\n",
	)

	people := list(t, m, "#people")
	require.Len(t, people, 2)
	assert.Equal(t, []string{"name", "age"}, people[1].Keys())
	assert.Equal(t, "Bob", str(t, people[1], "name"))

	assert.Empty(t, list(t, m, "#empty"))
}

func TestRead_block(t *testing.T) {
	t.Parallel()

	m := record.Read(
		"title: Doc\n" +
			"\n" +
			"//@body\n" +
			"first: not a pair\n" +
			"\n" +
			"  indented\n" +
			"\n" +
			"\n" +
			"//@tail\n" +
			"//@#rows\n" +
			"x: 1\n",
	)

	assert.Equal(t, []string{"title", "body", "tail", "#rows"}, m.Keys())
	assert.Equal(t, "Doc", str(t, m, "title"))
	assert.Equal(t, "first: not a pair\n\n  indented\n", str(t, m, "body"))
	assert.Equal(t, "", str(t, m, "tail"))
	assert.Len(t, list(t, m, "#rows"), 1)
}

func TestRead_block_at_end_of_input(t *testing.T) {
	t.Parallel()

	m := record.Read("//@text\nline one\nline two")

	assert.Equal(t, "line one\nline two\n", str(t, m, "text"))
}

func TestRead_header_inside_group_is_a_sibling(t *testing.T) {
	t.Parallel()

	m := record.Read(
		"//@#outer\n" +
			"a: 1\n" +
			"//@#inner\n" +
			"b: 2\n",
	)

	outer := list(t, m, "#outer")
	require.Len(t, outer, 1)
	assert.Equal(t, []string{"a"}, outer[0].Keys())
	assert.Len(t, list(t, m, "#inner"), 1)
}

func TestRead_leading_blank_lines(t *testing.T) {
	t.Parallel()

	m := record.Read("\n\n  \nk: v\n")

	assert.Equal(t, "v", str(t, m, "k"))
}

func TestRead_pairs_after_blank_line(t *testing.T) {
	t.Parallel()

	m := record.Read("a: 1\n\nb: 2\n")

	assert.Equal(t, []string{"a", "b"}, m.Keys())
}

func TestRead_empty_input(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, record.Read("").Len())
}

func TestReadFrom_reader(t *testing.T) {
	t.Parallel()

	m, err := record.ReadFrom(strings.NewReader("k: v\n"))
	require.NoError(t, err)
	assert.Equal(t, "v", str(t, m, "k"))
}

func TestLookup_dotted_path(t *testing.T) {
	t.Parallel()

	server := record.NewMap()
	server.Set("host", record.String("db1"))

	m := record.NewMap()
	m.Set("server", server)
	m.Set("a.b", record.String("exact"))

	v, ok := m.Lookup("server.host")
	require.True(t, ok)
	assert.Equal(t, record.String("db1"), v)

	v, ok = m.Lookup("a.b")
	require.True(t, ok)
	assert.Equal(t, record.String("exact"), v)

	_, ok = m.Lookup("server.port")
	assert.False(t, ok)

	_, ok = m.Lookup("server.host.x")
	assert.False(t, ok)
}

func TestMerge_later_wins(t *testing.T) {
	t.Parallel()

	dst := record.Read("a: 1\nb: 2\n")
	record.Merge(dst, record.Read("b: 3\nc: 4\n"))

	assert.Equal(t, []string{"a", "b", "c"}, dst.Keys())
	assert.Equal(t, "3", str(t, dst, "b"))
}

func TestMerge_nil_maps(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		record.Merge(nil, record.Read("a: 1\n"))
	})

	dst := record.Read("a: 1\n")
	record.Merge(dst, nil)

	assert.Equal(t, []string{"a"}, dst.Keys())
}

func TestMarshalJSON_keeps_order(t *testing.T) {
	t.Parallel()

	m := record.Read("z: 1\na: \"q\"\n//@#g\nk: v\n")

	raw, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":"1","a":"\"q\"","#g":[{"k":"v"}]}`, string(raw))
	assert.True(t, strings.HasPrefix(string(raw), `{"z":`))
}
