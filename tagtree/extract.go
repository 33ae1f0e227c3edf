package tagtree

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	valueTypeRe     = regexp.MustCompile(`^\s*(\S+)`)
	iterationTypeRe = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_.\-]*):`)
	lineRestRe      = regexp.MustCompile(`^[ \t]*(?:\r?\n)?`)
	blankLineRe     = regexp.MustCompile(`^[ \t]*\r?\n`)
)

// ExtractType peels the type label off the first text
// child of a node of the given kind. It returns the type
// and the text left over for the leaf.
//
// Value nodes take the first non-whitespace run.
// Iteration and fallback nodes take an "identifier:"
// prefix that is followed by whitespace or the end of
// the leaf; blanks up to and including one line break
// after the colon are dropped. Without such a prefix the
// type is empty and only a whitespace-only first line is
// dropped.
func ExtractType(kind Kind, text string) (string, string) {
	switch kind {
	case Value:
		loc := valueTypeRe.FindStringSubmatchIndex(text)
		if loc == nil {
			return "", text
		}

		return text[loc[2]:loc[3]], text[loc[1]:]

	case Iteration, Fallback:
		loc := iterationTypeRe.FindStringSubmatchIndex(text)
		if loc != nil {
			rest := text[loc[1]:]

			if rest == "" || startsWithSpace(rest) {
				rest = rest[len(lineRestRe.FindString(rest)):]

				return text[loc[2]:loc[3]], rest
			}
		}

		return "", text[len(blankLineRe.FindString(text)):]

	default:
		return "", text
	}
}

// ExtractFormat peels a format label off the front of a
// value tag. Punctuation labels such as "=" are taken as
// soon as they match. Labels containing letters or digits
// need whitespace and a following type, so "<%h name%>"
// selects label h while "<%h %>" is a tag typed h.
func ExtractFormat(text string, labels []string) (string, string) {
	sorted := append([]string(nil), labels...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})

	for _, lb := range sorted {
		if lb == "" || !strings.HasPrefix(text, lb) {
			continue
		}

		rest := text[len(lb):]

		if isPunct(lb) {
			return lb, rest
		}

		if startsWithSpace(rest) && strings.TrimSpace(rest) != "" {
			return lb, rest
		}
	}

	return "", text
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)

	return unicode.IsSpace(r)
}

func isPunct(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}

	return true
}
