package format

import (
	"html"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasttemplate"

	"github.com/byte4ever/tagrender/record"
)

// Default is the label of plain substitution.
const Default = "="

// Func transforms a resolved value. arg is the trimmed
// text that followed the type inside the tag, rec the
// record the value was found in.
type Func func(value string, arg string, rec *record.Map) string

// Registry maps labels to transforms. Register every
// label before the first render call.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry with the built-in
// transforms.
func NewRegistry() *Registry {
	rg := &Registry{funcs: make(map[string]Func)}

	rg.Register(Default, Identity)
	rg.Register("h", Escape)
	rg.Register("u", func(v, _ string, _ *record.Map) string {
		return strings.ToUpper(v)
	})
	rg.Register("l", func(v, _ string, _ *record.Map) string {
		return strings.ToLower(v)
	})
	rg.Register("j", Quote)
	rg.Register("f", Expand)

	return rg
}

// Register adds or replaces the transform of label.
func (rg *Registry) Register(label string, fn Func) {
	rg.funcs[label] = fn
}

// Labels lists registered labels in lexical order.
func (rg *Registry) Labels() []string {
	out := make([]string, 0, len(rg.funcs))
	for lb := range rg.funcs {
		out = append(out, lb)
	}

	sort.Strings(out)

	return out
}

// Lookup returns the transform of label, or the default
// transform when label is unknown.
func (rg *Registry) Lookup(label string) Func {
	if fn, ok := rg.funcs[label]; ok {
		return fn
	}

	if fn, ok := rg.funcs[Default]; ok {
		return fn
	}

	return Identity
}

// Apply runs the transform of label on value.
func (rg *Registry) Apply(
	label string,
	value string,
	arg string,
	rec *record.Map,
) string {
	return rg.Lookup(label)(value, arg, rec)
}

// Identity returns value unchanged.
func Identity(value string, _ string, _ *record.Map) string {
	return value
}

// Escape escapes value for HTML and XML.
func Escape(value string, _ string, _ *record.Map) string {
	return html.EscapeString(value)
}

// Quote renders value as a JSON string literal.
func Quote(value string, _ string, _ *record.Map) string {
	raw, err := json.Marshal(value)
	if err != nil {
		return value
	}

	return string(raw)
}

// Expand substitutes {key} placeholders in value with
// the string entries of rec. Unknown placeholders are
// kept as they are, and a value with an unbalanced brace
// is returned untouched.
func Expand(value string, _ string, rec *record.Map) string {
	tpl, err := fasttemplate.NewTemplate(value, "{", "}")
	if err != nil {
		return value
	}

	vars := make(map[string]interface{}, rec.Len())

	for _, key := range rec.Keys() {
		v, _ := rec.Get(key)
		if s, ok := v.(record.String); ok {
			vars[key] = string(s)
		}
	}

	return tpl.ExecuteStringStd(vars)
}
