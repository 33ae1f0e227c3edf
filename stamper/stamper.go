package stamper

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/tagrender/record"
)

// Load reads stamp files and merges them into a single
// map, later files winning. Each line is "KEY VALUE" with
// the first space as delimiter. Lines without a space are
// silently skipped.
func Load(files []string) (map[string]interface{}, error) {
	const errCtx = "loading stamps"

	stamps := make(map[string]interface{})

	for _, sf := range files {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		for _, line := range strings.Split(
			string(content), "\n",
		) {
			parts := strings.SplitN(
				strings.TrimSuffix(line, "\r"), " ", 2,
			)
			if len(parts) == 2 {
				stamps[parts[0]] = parts[1]
			}
		}
	}

	return stamps, nil
}

// Expand substitutes {KEY} placeholders in text. Unknown
// keys are preserved as-is; text with an unbalanced brace
// is returned unchanged.
func Expand(text string, stamps map[string]interface{}) string {
	tpl, err := fasttemplate.NewTemplate(text, "{", "}")
	if err != nil {
		return text
	}

	return tpl.ExecuteStringStd(stamps)
}

// Record turns stamps into record entries, keys in
// lexical order.
func Record(stamps map[string]interface{}) *record.Map {
	keys := make([]string, 0, len(stamps))
	for key := range stamps {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	out := record.NewMap()

	for _, key := range keys {
		out.Set(key, record.String(fmt.Sprint(stamps[key])))
	}

	return out
}
