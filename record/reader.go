package record

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var headerRe = regexp.MustCompile(`^//@(#?)(\S+)$`)

type mode int

const (
	modeBase mode = iota
	modeKeyValue
	modeBlock
	modeIteration
)

// frame is one entry of the reader's handler stack.
type frame struct {
	mode   mode
	label  string
	target *Map
	lines  []string
	groups List
}

type reader struct {
	root  *Map
	stack []*frame
	line  int
}

// Read parses record text. It never fails: a pair line
// without a separator becomes a key with an empty value.
func Read(text string) *Map {
	rd := &reader{root: NewMap()}
	rd.stack = []*frame{{mode: modeBase, target: rd.root}}

	text = strings.TrimSuffix(text, "\n")
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			rd.line++
			rd.handle(strings.TrimSuffix(line, "\r"))
		}
	}

	for len(rd.stack) > 1 {
		rd.pop()
	}

	return rd.root
}

// ReadFrom reads all of in and parses it with Read.
func ReadFrom(in io.Reader) (*Map, error) {
	const errCtx = "reading record"

	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return Read(string(raw)), nil
}

func (rd *reader) top() *frame {
	return rd.stack[len(rd.stack)-1]
}

func (rd *reader) push(fr *frame) {
	rd.stack = append(rd.stack, fr)
}

func (rd *reader) handle(line string) {
	fr := rd.top()
	blank := strings.TrimSpace(line) == ""
	label, iter, header := parseHeader(line)

	switch fr.mode {
	case modeBase:
		switch {
		case blank:
		case header && iter:
			rd.push(&frame{
			mode:   modeIteration,
			label:  label,
			groups: List{},
		})
		case header:
			rd.push(&frame{mode: modeBlock, label: label})
		default:
			rd.push(&frame{mode: modeKeyValue, target: fr.target})
			rd.handle(line)
		}

	case modeKeyValue:
		switch {
		case blank:
			rd.pop()
		case header:
			rd.pop()
			rd.handle(line)
		default:
			key, val := rd.splitPair(line)
			fr.target.Set(key, String(val))
		}

	case modeBlock:
		if header {
			rd.pop()
			rd.handle(line)

			return
		}

		fr.lines = append(fr.lines, line)

	case modeIteration:
		switch {
		case blank:
		case header:
			rd.pop()
			rd.handle(line)
		default:
			rd.push(&frame{mode: modeKeyValue, target: NewMap()})
			rd.handle(line)
		}
	}
}

// pop closes the innermost frame and stores what it
// collected in the frame below.
func (rd *reader) pop() {
	fr := rd.top()
	rd.stack = rd.stack[:len(rd.stack)-1]
	parent := rd.top()

	switch fr.mode {
	case modeKeyValue:
		if parent.mode == modeIteration && fr.target.Len() > 0 {
			parent.groups = append(parent.groups, fr.target)
		}

	case modeBlock:
		rd.enclosing().Set(fr.label, String(blockText(fr.lines)))

	case modeIteration:
		rd.enclosing().Set("#"+fr.label, fr.groups)
	}
}

// enclosing returns the mapping that receives a closed
// block or iteration.
func (rd *reader) enclosing() *Map {
	for idx := len(rd.stack) - 1; idx >= 0; idx-- {
		if rd.stack[idx].target != nil {
			return rd.stack[idx].target
		}
	}

	return rd.root
}

func (rd *reader) splitPair(line string) (string, string) {
	for idx := 0; idx < len(line); idx++ {
		if line[idx] != ':' {
			continue
		}

		next, _ := utf8.DecodeRuneInString(line[idx+1:])
		if idx+1 == len(line) || unicode.IsSpace(next) {
			return strings.TrimSpace(line[:idx]),
				strings.TrimSpace(line[idx+1:])
		}
	}

	slog.Debug(
		"record line has no separator",
		"line", rd.line,
		"text", line,
	)

	return strings.TrimSpace(line), ""
}

func parseHeader(line string) (string, bool, bool) {
	sm := headerRe.FindStringSubmatch(strings.TrimRight(line, " \t"))
	if sm == nil {
		return "", false, false
	}

	return sm[2], sm[1] == "#", true
}

// blockText joins block lines, keeping at most one
// trailing line break.
func blockText(lines []string) string {
	end := len(lines)
	for end > 0 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}

	if end == 0 {
		return ""
	}

	return strings.Join(lines[:end], "\n") + "\n"
}
