package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/tagrender/format"
	"github.com/byte4ever/tagrender/record"
	"github.com/byte4ever/tagrender/tagtree"
	"github.com/byte4ever/tagrender/tagtype"
)

// Sentinel errors for data that breaks the record
// contract.
var (
	ErrIterationTypeMismatch = errors.New("iteration data is not a list of mappings")
	ErrValueTypeMismatch     = errors.New("value data is not a string")
)

// Renderer bundles the tag-type and format registries.
type Renderer struct {
	TagTypes *tagtype.Registry
	Formats  *format.Registry
}

// New returns a renderer. Nil registries are replaced by
// the built-in ones.
func New(tagTypes *tagtype.Registry, formats *format.Registry) *Renderer {
	if tagTypes == nil {
		tagTypes = tagtype.NewRegistry()
	}

	if formats == nil {
		formats = format.NewRegistry()
	}

	return &Renderer{TagTypes: tagTypes, Formats: formats}
}

// Parse builds the tag tree of text in the named dialect.
func (rn *Renderer) Parse(text string, tagTypeName string) (*tagtree.Tree, error) {
	tt, err := rn.TagTypes.Lookup(tagTypeName)
	if err != nil {
		return nil, err
	}

	return tagtree.Parse(text, tt, rn.Formats.Labels())
}

// Render parses text and renders it against rec.
func (rn *Renderer) Render(
	text string,
	tagTypeName string,
	rec *record.Map,
) (string, error) {
	const errCtx = "rendering template"

	tr, err := rn.Parse(text, tagTypeName)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := rn.RenderTree(tr, rec)
	if err != nil {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return out, nil
}

// RenderTree renders an already parsed tree.
// A nil tree renders as empty output.
func (rn *Renderer) RenderTree(tr *tagtree.Tree, rec *record.Map) (string, error) {
	if tr == nil || len(tr.Nodes) == 0 {
		return "", nil
	}

	if rec == nil {
		rec = record.NewMap()
	}

	wk := walker{tree: tr, formats: rn.Formats}

	var sb strings.Builder
	if err := wk.children(&sb, tagtree.Root, rec, 0); err != nil {
		return "", err
	}

	return sb.String(), nil
}

type walker struct {
	tree    *tagtree.Tree
	formats *format.Registry
}

func (wk *walker) node(
	sb *strings.Builder,
	id tagtree.NodeID,
	rec *record.Map,
	depth int,
) error {
	nd := wk.tree.Node(id)

	// depth counts open tags as the parser does; leaves sit
	// one below their tag and never count.
	if nd.Kind != tagtree.Leaf && depth > tagtree.MaxDepth {
		return tagtree.ErrNestingTooDeep
	}

	switch nd.Kind {
	case tagtree.Leaf:
		sb.WriteString(nd.Text)

		return nil

	case tagtree.Value:
		return wk.value(sb, id, rec, depth)

	case tagtree.Iteration:
		return wk.iteration(sb, id, rec, depth)

	case tagtree.Fallback:
		ok, err := wk.resolvable(id, rec, depth)
		if err != nil || !ok {
			return err
		}

		return wk.iteration(sb, id, rec, depth)

	default:
		return fmt.Errorf("unknown node kind %s", nd.Kind)
	}
}

func (wk *walker) children(
	sb *strings.Builder,
	id tagtree.NodeID,
	rec *record.Map,
	depth int,
) error {
	for _, ch := range wk.tree.Node(id).Children {
		if err := wk.node(sb, ch, rec, depth+1); err != nil {
			return err
		}
	}

	return nil
}

func (wk *walker) value(
	sb *strings.Builder,
	id tagtree.NodeID,
	rec *record.Map,
	depth int,
) error {
	nd := wk.tree.Node(id)

	var inner strings.Builder
	if err := wk.children(&inner, id, rec, depth); err != nil {
		return err
	}

	raw, ok, err := lookupString(rec, nd.Type)
	if err != nil {
		return err
	}

	if !ok {
		sb.WriteString("[" + nd.Type + "]")

		return nil
	}

	sb.WriteString(wk.formats.Apply(
		nd.Format, raw, strings.TrimSpace(inner.String()), rec,
	))

	return nil
}

func (wk *walker) iteration(
	sb *strings.Builder,
	id tagtree.NodeID,
	rec *record.Map,
	depth int,
) error {
	nd := wk.tree.Node(id)

	if nd.Type == "" {
		return wk.children(sb, id, rec, depth)
	}

	items, err := iterationData(rec, nd.Type)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := wk.children(sb, id, item, depth); err != nil {
			return err
		}
	}

	return nil
}

// resolvable reports whether some value tag under id
// resolves to non-empty text against rec.
func (wk *walker) resolvable(
	id tagtree.NodeID,
	rec *record.Map,
	depth int,
) (bool, error) {
	nd := wk.tree.Node(id)

	if nd.Kind != tagtree.Leaf && depth > tagtree.MaxDepth {
		return false, tagtree.ErrNestingTooDeep
	}

	switch nd.Kind {
	case tagtree.Value:
		val, ok := rec.Lookup(nd.Type)
		if !ok {
			return false, nil
		}

		s, ok := val.(record.String)

		return ok && s != "", nil

	case tagtree.Iteration, tagtree.Fallback:
		if nd.Type == "" {
			return wk.anyResolvable(nd.Children, rec, depth)
		}

		items, err := iterationData(rec, nd.Type)
		if err != nil {
			return false, err
		}

		for _, item := range items {
			ok, err := wk.anyResolvable(nd.Children, item, depth)
			if err != nil || ok {
				return ok, err
			}
		}

		return false, nil

	default:
		return false, nil
	}
}

func (wk *walker) anyResolvable(
	ids []tagtree.NodeID,
	rec *record.Map,
	depth int,
) (bool, error) {
	for _, ch := range ids {
		ok, err := wk.resolvable(ch, rec, depth+1)
		if err != nil || ok {
			return ok, err
		}
	}

	return false, nil
}

func lookupString(rec *record.Map, key string) (string, bool, error) {
	val, ok := rec.Lookup(key)
	if !ok {
		return "", false, nil
	}

	s, ok := val.(record.String)
	if !ok {
		return "", false, fmt.Errorf(
			"%w: %q holds %T", ErrValueTypeMismatch, key, val,
		)
	}

	return string(s), true, nil
}

// iterationData returns the list stored under "#"+typ.
// A dotted type looks the list up in a nested map, so
// "order.items" reads "#items" of map "order".
func iterationData(rec *record.Map, typ string) (record.List, error) {
	key := "#" + typ

	val, ok := rec.Get(key)
	if !ok {
		if idx := strings.LastIndex(typ, "."); idx > 0 {
			if parent, found := rec.Lookup(typ[:idx]); found {
				if pm, isMap := parent.(*record.Map); isMap {
					val, ok = pm.Get("#" + typ[idx+1:])
				}
			}
		}
	}

	if !ok {
		return nil, nil
	}

	items, ok := val.(record.List)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %q holds %T", ErrIterationTypeMismatch, key, val,
		)
	}

	return items, nil
}
