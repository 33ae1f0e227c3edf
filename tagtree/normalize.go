package tagtree

import (
	"regexp"
	"sort"
	"strings"

	"github.com/byte4ever/tagrender/tagtype"
)

// Normalize removes the horizontal whitespace in front of
// iteration and fallback markers that open a line. The
// line break after a block tail is not touched here: the
// lexer of a RemoveIndent dialect absorbs it into the
// tail token. Normalize is idempotent.
func Normalize(src string, tt tagtype.TagType) string {
	re := indentPattern(tt)
	if re == nil {
		return src
	}

	return re.ReplaceAllString(src, "${1}")
}

func indentPattern(tt tagtype.TagType) *regexp.Regexp {
	var mks []string

	for _, mk := range []string{
		tt.Iteration.Head, tt.Iteration.Tail,
		tt.Fallback.Head, tt.Fallback.Tail,
	} {
		if mk != "" {
			mks = append(mks, mk)
		}
	}

	if len(mks) == 0 {
		return nil
	}

	sort.SliceStable(mks, func(i, j int) bool {
		return len(mks[i]) > len(mks[j])
	})

	for idx, mk := range mks {
		mks[idx] = regexp.QuoteMeta(mk)
	}

	return regexp.MustCompile(
		`(?m)^[ \t]+(` + strings.Join(mks, "|") + `)`,
	)
}
