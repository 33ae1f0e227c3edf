package tagtype

import (
	"errors"
	"fmt"
	"sort"
)

// Default is the name of the dialect used when none is
// requested.
const Default = "default"

// ErrUnknownTagType is returned by Lookup for names that
// were never registered.
var ErrUnknownTagType = errors.New("unknown tag type")

// Pair is a head/tail marker couple.
type Pair struct {
	Head string
	Tail string
}

// TagType is one dialect of template syntax.
type TagType struct {
	Name         string
	Value        Pair
	Iteration    Pair
	Fallback     Pair
	RemoveIndent bool
}

// Markers returns every distinct marker of the dialect.
func (tt TagType) Markers() []string {
	seen := make(map[string]struct{}, 6)

	var out []string

	for _, mk := range []string{
		tt.Value.Head, tt.Value.Tail,
		tt.Iteration.Head, tt.Iteration.Tail,
		tt.Fallback.Head, tt.Fallback.Tail,
	} {
		if _, ok := seen[mk]; ok || mk == "" {
			continue
		}

		seen[mk] = struct{}{}
		out = append(out, mk)
	}

	return out
}

// Registry maps dialect names to tag types. It is not
// safe for concurrent mutation: register everything
// before the first render call.
type Registry struct {
	types map[string]TagType
}

// NewRegistry returns a registry holding the built-in
// dialects.
func NewRegistry() *Registry {
	rg := &Registry{types: make(map[string]TagType)}

	for _, tt := range builtins() {
		rg.types[tt.Name] = tt
	}

	return rg
}

func builtins() []TagType {
	return []TagType{
		{
			Name:         Default,
			Value:        Pair{"<%", "%>"},
			Iteration:    Pair{"<%#", "#%>"},
			Fallback:     Pair{"<%?", "?%>"},
			RemoveIndent: true,
		},
		{
			Name:         "brace",
			Value:        Pair{"{{", "}}"},
			Iteration:    Pair{"{{#", "#}}"},
			Fallback:     Pair{"{{?", "?}}"},
			RemoveIndent: true,
		},
		{
			Name:      "bracket",
			Value:     Pair{"[[", "]]"},
			Iteration: Pair{"[[#", "#]]"},
			Fallback:  Pair{"[[?", "?]]"},
		},
		{
			Name:         "comment",
			Value:        Pair{"/*%", "%*/"},
			Iteration:    Pair{"/*#", "#*/"},
			Fallback:     Pair{"/*?", "?*/"},
			RemoveIndent: true,
		},
	}
}

// Lookup returns the dialect registered under name. An
// empty name selects Default.
func (rg *Registry) Lookup(name string) (TagType, error) {
	if name == "" {
		name = Default
	}

	tt, ok := rg.types[name]
	if !ok {
		return TagType{}, fmt.Errorf(
			"%w: %q", ErrUnknownTagType, name,
		)
	}

	return tt, nil
}

// Names lists registered dialects in lexical order.
func (rg *Registry) Names() []string {
	out := make([]string, 0, len(rg.types))
	for name := range rg.types {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// Register validates def and adds it, replacing any
// dialect of the same name.
func (rg *Registry) Register(def Definition) error {
	return rg.RegisterAll([]Definition{def})
}

// RegisterAll validates every definition before adding
// any of them, so a bad entry leaves the registry
// untouched.
func (rg *Registry) RegisterAll(defs []Definition) error {
	const errCtx = "registering tag types"

	types := make([]TagType, 0, len(defs))

	for _, def := range defs {
		tt, err := def.TagType()
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		types = append(types, tt)
	}

	for _, tt := range types {
		rg.types[tt.Name] = tt
	}

	return nil
}
