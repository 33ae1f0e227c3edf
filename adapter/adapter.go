package adapter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"

	"github.com/byte4ever/tagrender/record"
)

// Sentinel errors for programmatic error handling.
var (
	ErrNotMapping      = errors.New("top-level document is not a mapping")
	ErrUnsupportedKind = errors.New("unsupported data kind")
	ErrMissingHeader   = errors.New("csv input has no header row")
)

// Kind names a data file syntax.
type Kind string

const (
	Record Kind = "record"
	YAML   Kind = "yaml"
	JSON   Kind = "json"
	CSV    Kind = "csv"
)

// ScalarItemKey is the key under which a scalar sequence
// item is stored once wrapped in a mapping.
const ScalarItemKey = "value"

// KindOf guesses the syntax of path from its extension.
// Unknown extensions are read as record text.
func KindOf(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".json":
		return JSON
	case ".csv":
		return CSV
	default:
		return Record
	}
}

// Label is the iteration label a CSV file contributes:
// its base name without extension.
func Label(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Decode reads in as kind. label is only used by CSV.
func Decode(kind Kind, label string, in io.Reader) (*record.Map, error) {
	switch kind {
	case Record:
		return record.ReadFrom(in)
	case YAML:
		return FromYAML(in)
	case JSON:
		return FromJSON(in)
	case CSV:
		return FromCSV(in, label)
	default:
		return nil, fmt.Errorf(
			"%w: %q", ErrUnsupportedKind, kind,
		)
	}
}

// FromYAML decodes every document of a YAML stream and
// merges them in order. Key order is preserved.
func FromYAML(in io.Reader) (*record.Map, error) {
	const errCtx = "decoding yaml data"

	decoder := yaml.NewDecoder(in, yaml.UseOrderedMap())
	out := record.NewMap()

	for {
		var doc any

		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if doc == nil {
			continue
		}

		mp, ok := toMap(doc)
		if !ok {
			return nil, fmt.Errorf(
				"%s: %w (got %T)", errCtx, ErrNotMapping, doc,
			)
		}

		record.Merge(out, mp)
	}

	return out, nil
}

// FromJSON decodes one JSON object. Entries are stored
// in lexical order of their stored key, "#"-prefixed
// lists included, since JSON objects carry no order of
// their own once decoded.
func FromJSON(in io.Reader) (*record.Map, error) {
	const errCtx = "decoding json data"

	decoder := json.NewDecoder(in)
	decoder.UseNumber()

	var doc any
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	mp, ok := toMap(doc)
	if !ok {
		return nil, fmt.Errorf(
			"%s: %w (got %T)", errCtx, ErrNotMapping, doc,
		)
	}

	return mp, nil
}

// FromCSV turns a CSV table into {"#label": rows}, one
// mapping per row keyed by the header. Short rows get
// empty values for their missing columns.
func FromCSV(in io.Reader, label string) (*record.Map, error) {
	const errCtx = "decoding csv data"

	rd := csv.NewReader(in)
	rd.FieldsPerRecord = -1

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf(
			"%s: %w", errCtx, ErrMissingHeader,
		)
	}

	header := rows[0]
	items := make(record.List, 0, len(rows)-1)

	for _, row := range rows[1:] {
		item := record.NewMap()

		for idx, col := range header {
			val := ""
			if idx < len(row) {
				val = row[idx]
			}

			item.Set(strings.TrimSpace(col), record.String(val))
		}

		items = append(items, item)
	}

	out := record.NewMap()
	out.Set(iterationKey(label), items)

	return out, nil
}

func iterationKey(key string) string {
	if strings.HasPrefix(key, "#") {
		return key
	}

	return "#" + key
}

type entry struct {
	key string
	val any
}

// entries lists the pairs of any decoded mapping shape.
func entries(v any) ([]entry, bool) {
	switch mp := v.(type) {
	case yaml.MapSlice:
		out := make([]entry, 0, len(mp))
		for _, it := range mp {
			out = append(out, entry{key: scalar(it.Key), val: it.Value})
		}

		return out, true

	case map[string]any:
		out := make([]entry, 0, len(mp))
		for key, val := range mp {
			out = append(out, entry{key: key, val: val})
		}

		sortEntries(out)

		return out, true

	case map[any]any:
		out := make([]entry, 0, len(mp))
		for key, val := range mp {
			out = append(out, entry{key: scalar(key), val: val})
		}

		sortEntries(out)

		return out, true

	default:
		return nil, false
	}
}

// sortEntries orders entries by the key they are stored
// under, so a list "rows" sorts as "#rows".
func sortEntries(ents []entry) {
	sort.Slice(ents, func(i, j int) bool {
		return ents[i].storedKey() < ents[j].storedKey()
	})
}

func (en entry) storedKey() string {
	if _, ok := en.val.([]any); ok {
		return iterationKey(en.key)
	}

	return en.key
}

func toMap(v any) (*record.Map, bool) {
	ents, ok := entries(v)
	if !ok {
		return nil, false
	}

	out := record.NewMap()

	for _, en := range ents {
		switch val := en.val.(type) {
		case []any:
			out.Set(en.storedKey(), toList(val))
		default:
			if nested, ok := toMap(val); ok {
				out.Set(en.key, nested)

				continue
			}

			out.Set(en.key, record.String(scalar(val)))
		}
	}

	return out, true
}

func toList(items []any) record.List {
	out := make(record.List, 0, len(items))

	for _, it := range items {
		if mp, ok := toMap(it); ok {
			out = append(out, mp)

			continue
		}

		wrapped := record.NewMap()

		if nested, ok := it.([]any); ok {
			wrapped.Set(iterationKey(ScalarItemKey), toList(nested))
		} else {
			wrapped.Set(ScalarItemKey, record.String(scalar(it)))
		}

		out = append(out, wrapped)
	}

	return out
}

func scalar(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
