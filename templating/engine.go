package templating

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/byte4ever/tagrender/adapter"
	"github.com/byte4ever/tagrender/digester"
	"github.com/byte4ever/tagrender/format"
	"github.com/byte4ever/tagrender/record"
	"github.com/byte4ever/tagrender/render"
	"github.com/byte4ever/tagrender/stamper"
	"github.com/byte4ever/tagrender/tagtype"
)

// Sentinel errors for malformed flags.
var (
	ErrBadVariable = errors.New("variable must be NAME=value")
	ErrBadImport   = errors.New("import must be NAME=filename")
)

// Engine renders template files against data files.
type Engine struct {
	// TagType names the dialect; empty selects the default.
	TagType string
	// TagTypesFile is an optional YAML or JSON file with
	// extra dialect definitions.
	TagTypesFile   string
	StampInfoFiles []string
	DataFiles      []string
	// Encoding of every input and of the output, as an
	// IANA or WHATWG name. Empty means UTF-8.
	Encoding string
	// Digest keeps a .digest sidecar next to the output
	// and skips the write when nothing changed.
	Digest  bool
	Formats *format.Registry
}

// Expand renders the template at tplPath and writes the
// result to outPath. Empty paths mean stdin and stdout.
// If executable is true the output file receives mode
// 0777 instead of 0666.
func (en *Engine) Expand(
	tplPath string,
	outPath string,
	vars []string,
	imports []string,
	executable bool,
) error {
	const errCtx = "expanding template"

	enc, err := en.encoding()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	rn, err := en.renderer()
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	rec, err := en.loadRecord(rn, enc, vars, imports)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tpl, err := readInput(tplPath, enc)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	out, err := rn.Render(string(tpl), en.TagType, rec)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	slog.Debug(
		"rendered template",
		"template", tplPath,
		"tag_type", en.TagType,
		"bytes", len(out),
	)

	encoded, err := encodeOutput(out, enc)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := en.writeOutput(outPath, encoded, executable); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// LoadRecord builds the record a template is rendered
// against.
func (en *Engine) LoadRecord(
	vars []string,
	imports []string,
) (*record.Map, error) {
	const errCtx = "loading record"

	enc, err := en.encoding()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	rn, err := en.renderer()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return en.loadRecord(rn, enc, vars, imports)
}

// loadRecord merges every data layer.
//
// Processing order:
//  1. Load stamp files; stamps form the base layer.
//  2. Merge each data file in order.
//  3. For each variable NAME=VALUE, expand VALUE against
//     stamps using single-brace tags, then store it as
//     both "NAME" and "variables.NAME".
//  4. For each import NAME=filename, render the file
//     against the record so far, expand the result
//     against stamps, and store it as "imports.NAME".
func (en *Engine) loadRecord(
	rn *render.Renderer,
	enc encoding.Encoding,
	vars []string,
	imports []string,
) (*record.Map, error) {
	const errCtx = "loading record"

	stamps, err := stamper.Load(en.StampInfoFiles)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	rec := stamper.Record(stamps)

	if err := en.mergeDataFiles(rec, enc); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := resolveVars(vars, stamps, rec); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := en.resolveImports(
		rn, enc, imports, stamps, rec,
	); err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return rec, nil
}

func (en *Engine) mergeDataFiles(
	rec *record.Map,
	enc encoding.Encoding,
) error {
	const errCtx = "merging data files"

	for _, df := range en.DataFiles {
		raw, err := readInput(df, enc)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		kind := adapter.KindOf(df)

		data, err := adapter.Decode(
			kind, adapter.Label(df), bytes.NewReader(raw),
		)
		if err != nil {
			return fmt.Errorf(
				"%s: %s: %w", errCtx, df, err,
			)
		}

		slog.Debug(
			"merged data file",
			"path", df,
			"kind", kind,
			"keys", data.Len(),
		)

		record.Merge(rec, data)
	}

	return nil
}

func resolveVars(
	vars []string,
	stamps map[string]interface{},
	rec *record.Map,
) error {
	const errCtx = "resolving variables"

	for _, vr := range vars {
		parts := strings.SplitN(vr, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf(
				"%s: %w, got %s", errCtx, ErrBadVariable, vr,
			)
		}

		val := record.String(stamper.Expand(parts[1], stamps))

		rec.Set(parts[0], val)
		rec.Set("variables."+parts[0], val)
	}

	return nil
}

func (en *Engine) resolveImports(
	rn *render.Renderer,
	enc encoding.Encoding,
	imports []string,
	stamps map[string]interface{},
	rec *record.Map,
) error {
	const errCtx = "resolving imports"

	for _, im := range imports {
		parts := strings.SplitN(im, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf(
				"%s: %w, got %s", errCtx, ErrBadImport, im,
			)
		}

		content, err := readInput(parts[1], enc)
		if err != nil {
			return fmt.Errorf(
				"%s: reading %s: %w", errCtx, parts[1], err,
			)
		}

		val, err := rn.Render(string(content), en.TagType, rec)
		if err != nil {
			return fmt.Errorf(
				"%s: rendering %s: %w", errCtx, parts[1], err,
			)
		}

		rec.Set(
			"imports."+parts[0],
			record.String(stamper.Expand(val, stamps)),
		)
	}

	return nil
}

// DumpRecord writes the merged record as indented JSON.
func (en *Engine) DumpRecord(
	out io.Writer,
	vars []string,
	imports []string,
) error {
	const errCtx = "dumping record"

	rec, err := en.LoadRecord(vars, imports)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if _, err := out.Write(append(raw, '\n')); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func (en *Engine) renderer() (*render.Renderer, error) {
	const errCtx = "configuring tag types"

	tagTypes := tagtype.NewRegistry()

	if en.TagTypesFile != "" {
		fi, err := os.Open(en.TagTypesFile) //nolint:gosec // path from CLI flag
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		defer fi.Close() //nolint:errcheck // best-effort close

		defs, err := tagtype.LoadDefinitions(fi)
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if err := tagTypes.RegisterAll(defs); err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}
	}

	return render.New(tagTypes, en.Formats), nil
}

// encoding resolves the configured encoding. A nil
// result means UTF-8 pass-through.
func (en *Engine) encoding() (encoding.Encoding, error) {
	const errCtx = "selecting encoding"

	switch strings.ToLower(en.Encoding) {
	case "", "utf-8", "utf8":
		return nil, nil
	}

	enc, err := htmlindex.Get(en.Encoding)
	if err != nil {
		return nil, fmt.Errorf(
			"%s: %q: %w", errCtx, en.Encoding, err,
		)
	}

	return enc, nil
}

// readInput reads path, or stdin when path is empty, and
// decodes it to UTF-8.
func readInput(path string, enc encoding.Encoding) ([]byte, error) {
	const errCtx = "reading input"

	var in io.Reader = os.Stdin

	if path != "" {
		fi, err := os.Open(path) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		defer fi.Close() //nolint:errcheck // best-effort close

		in = fi
	}

	if enc != nil {
		in = transform.NewReader(in, enc.NewDecoder())
	}

	content, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return content, nil
}

func encodeOutput(out string, enc encoding.Encoding) ([]byte, error) {
	const errCtx = "encoding output"

	if enc == nil {
		return []byte(out), nil
	}

	raw, _, err := transform.Bytes(enc.NewEncoder(), []byte(out))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	return raw, nil
}

// writeOutput writes content to outPath, or stdout when
// outPath is empty.
func (en *Engine) writeOutput(
	outPath string,
	content []byte,
	executable bool,
) error {
	const errCtx = "writing output"

	if outPath == "" {
		if _, err := os.Stdout.Write(content); err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return nil
	}

	if en.Digest {
		same, err := digester.Unchanged(outPath, content)
		if err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		if same {
			slog.Info(
				"output unchanged, skipping write",
				"path", outPath,
			)

			return nil
		}
	}

	var perm os.FileMode = 0o666
	if executable {
		perm = 0o777
	}

	if err := os.WriteFile(outPath, content, perm); err != nil { //nolint:gosec // path from CLI flag
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if en.Digest {
		if err := digester.SaveDigest(outPath); err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}
	}

	return nil
}
