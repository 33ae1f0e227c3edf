package tagtree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/tagrender/tagtype"
)

// MaxDepth bounds how many tags may be open at once.
const MaxDepth = 256

// ErrNestingTooDeep is returned when a template opens more
// than MaxDepth tags without closing them.
var ErrNestingTooDeep = errors.New("tag nesting too deep")

// Parser builds trees for one dialect. It may be reused
// for any number of templates.
type Parser struct {
	tagType tagtype.TagType
	labels  []string
	lexer   *Lexer
	heads   map[string]Kind
	tails   map[string][]Kind
}

// NewParser prepares a parser for tt. labels are the
// format labels a value tag may start with.
func NewParser(tt tagtype.TagType, labels []string) *Parser {
	ps := &Parser{
		tagType: tt,
		labels:  append([]string(nil), labels...),
		heads:   make(map[string]Kind, 3),
		tails:   make(map[string][]Kind, 3),
	}

	pairs := []struct {
		kind Kind
		pair tagtype.Pair
	}{
		{Value, tt.Value},
		{Iteration, tt.Iteration},
		{Fallback, tt.Fallback},
	}

	for _, pr := range pairs {
		if pr.pair.Head != "" {
			if _, ok := ps.heads[pr.pair.Head]; !ok {
				ps.heads[pr.pair.Head] = pr.kind
			}
		}

		if pr.pair.Tail != "" {
			ps.tails[pr.pair.Tail] = append(ps.tails[pr.pair.Tail], pr.kind)
		}
	}

	mks := make([]marker, 0, 6)

	for _, lit := range tt.Markers() {
		mks = append(mks, marker{
			literal:       lit,
			absorbNewline: tt.RemoveIndent && ps.blockOnlyTail(lit),
		})
	}

	ps.lexer = compile(mks)

	return ps
}

// blockOnlyTail reports whether lit closes iteration or
// fallback tags and never a value tag.
func (ps *Parser) blockOnlyTail(lit string) bool {
	kinds, ok := ps.tails[lit]
	if !ok {
		return false
	}

	for _, kd := range kinds {
		if kd == Value {
			return false
		}
	}

	return true
}

// Tokenize normalizes and scans src the way Parse does.
func (ps *Parser) Tokenize(src string) []Token {
	if ps.tagType.RemoveIndent {
		src = Normalize(src, ps.tagType)
	}

	return ps.lexer.Tokenize(src)
}

// Parse builds the tag tree of src. Unclosed tags at the
// end of input are kept as they are. A tail marker that
// does not close the innermost open tag is kept as
// literal text.
func (ps *Parser) Parse(src string) (*Tree, error) {
	const errCtx = "parsing template"

	tr := newTree()
	stack := []NodeID{Root}

	for idx, tok := range ps.Tokenize(src) {
		top := stack[len(stack)-1]

		if tok.Marker {
			lit := strings.TrimRight(tok.Text, "\r\n")

			if len(stack) > 1 && ps.closes(lit, tr.Node(top).Kind) {
				stack = stack[:len(stack)-1]

				continue
			}

			if kind, ok := ps.heads[lit]; ok {
				if len(stack) > MaxDepth {
					return nil, fmt.Errorf(
						"%s: token %d: %w (limit %d)",
						errCtx, idx, ErrNestingTooDeep, MaxDepth,
					)
				}

				id := tr.add(Node{Kind: kind})
				tr.attach(top, id, ps.labels)
				stack = append(stack, id)

				continue
			}
		}

		id := tr.add(Node{Kind: Leaf, Text: tok.Text})
		tr.attach(top, id, ps.labels)
	}

	return tr, nil
}

func (ps *Parser) closes(lit string, kind Kind) bool {
	for _, kd := range ps.tails[lit] {
		if kd == kind {
			return true
		}
	}

	return false
}

// Parse is a one-shot helper around NewParser.
func Parse(
	src string,
	tt tagtype.TagType,
	labels []string,
) (*Tree, error) {
	return NewParser(tt, labels).Parse(src)
}
