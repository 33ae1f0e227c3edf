package tagtree

import (
	"regexp"
	"sort"
	"strings"
)

// Token is a literal text span or a marker occurrence.
// Concatenating the Text of every token of a scan gives
// back the scanned source.
type Token struct {
	Text   string
	Marker bool
}

// Lexer splits text on a fixed marker alphabet.
type Lexer struct {
	re *regexp.Regexp
}

type marker struct {
	literal string
	// absorbNewline makes the marker swallow one line
	// break that directly follows it.
	absorbNewline bool
}

// NewLexer compiles markers into a single alternation.
// Longer markers are tried first so that a marker sharing
// a prefix with a shorter one wins at the same position.
func NewLexer(markers []string) *Lexer {
	mks := make([]marker, 0, len(markers))
	for _, mk := range markers {
		mks = append(mks, marker{literal: mk})
	}

	return compile(mks)
}

func compile(mks []marker) *Lexer {
	mks = append([]marker(nil), mks...)

	out := mks[:0]

	for _, mk := range mks {
		if mk.literal != "" {
			out = append(out, mk)
		}
	}

	if len(out) == 0 {
		return &Lexer{}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].literal) > len(out[j].literal)
	})

	alts := make([]string, 0, len(out))

	for _, mk := range out {
		alt := regexp.QuoteMeta(mk.literal)
		if mk.absorbNewline {
			alt += `(?:\r?\n)?`
		}

		alts = append(alts, alt)
	}

	return &Lexer{re: regexp.MustCompile(strings.Join(alts, "|"))}
}

// Tokenize scans src. Empty literal runs are never
// emitted.
func (lx *Lexer) Tokenize(src string) []Token {
	if lx.re == nil {
		if src == "" {
			return nil
		}

		return []Token{{Text: src}}
	}

	var tokens []Token

	last := 0

	for _, loc := range lx.re.FindAllStringIndex(src, -1) {
		if loc[0] > last {
			tokens = append(tokens, Token{Text: src[last:loc[0]]})
		}

		tokens = append(tokens, Token{
			Text:   src[loc[0]:loc[1]],
			Marker: true,
		})

		last = loc[1]
	}

	if last < len(src) {
		tokens = append(tokens, Token{Text: src[last:]})
	}

	return tokens
}

// Tokenize is a one-shot helper around NewLexer.
func Tokenize(src string, markers []string) []Token {
	return NewLexer(markers).Tokenize(src)
}
