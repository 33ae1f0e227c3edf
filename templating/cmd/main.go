// Binary tagrender renders a template against stamp files,
// data files and explicit variables.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/byte4ever/tagrender/templating"
)

type arrayFlags []string

func (af *arrayFlags) String() string {
	return ""
}

func (af *arrayFlags) Set(value string) error {
	*af = append(*af, value)
	return nil
}

func run() error {
	const errCtx = "tagrender"

	var (
		stampInfoFile arrayFlags
		dataFile      arrayFlags
		variable      arrayFlags
		imports       arrayFlags
	)

	var (
		output       string
		tpl          string
		tagType      string
		tagTypesFile string
		encodingName string
		executable   bool
		digest       bool
		dumpRecord   bool
		verbose      bool
	)

	flag.Var(
		&stampInfoFile,
		"stamp_info_file",
		"Stamp info file path (repeatable)",
	)

	flag.Var(
		&dataFile,
		"data",
		"Data file path: .yaml, .yml, .json, .csv or record text (repeatable)",
	)

	flag.Var(
		&variable,
		"variable",
		"Variable in NAME=VALUE format (repeatable)",
	)

	flag.Var(
		&imports,
		"imports",
		"Import in NAME=filename format, rendered into imports.NAME (repeatable)",
	)

	flag.StringVar(
		&output, "output", "",
		"Output file path (stdout if empty)",
	)

	flag.StringVar(
		&tpl, "template", "",
		"Input template file path (stdin if empty)",
	)

	flag.StringVar(
		&tagType, "tag_type", "default",
		"Tag dialect: default, brace, bracket, comment or one from -tag_types_file",
	)

	flag.StringVar(
		&tagTypesFile, "tag_types_file", "",
		"YAML or JSON file with extra tag dialect definitions",
	)

	flag.StringVar(
		&encodingName, "encoding", "",
		"Encoding of inputs and output (UTF-8 if empty)",
	)

	flag.BoolVar(
		&executable, "executable", false,
		"Set executable bit on output file",
	)

	flag.BoolVar(
		&digest, "digest", false,
		"Keep a .digest sidecar and skip unchanged writes",
	)

	flag.BoolVar(
		&dumpRecord, "dump_record", false,
		"Print the merged record as JSON instead of rendering",
	)

	flag.BoolVar(
		&verbose, "verbose", false,
		"Enable debug logging",
	)

	flag.Parse()

	if verbose {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	en := templating.Engine{
		TagType:        tagType,
		TagTypesFile:   tagTypesFile,
		StampInfoFiles: stampInfoFile,
		DataFiles:      dataFile,
		Encoding:       encodingName,
		Digest:         digest,
	}

	if dumpRecord {
		if err := en.DumpRecord(
			os.Stdout, variable, imports,
		); err != nil {
			return fmt.Errorf(
				"%s: %w", errCtx, err,
			)
		}

		return nil
	}

	if err := en.Expand(
		tpl, output, variable, imports, executable,
	); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}
