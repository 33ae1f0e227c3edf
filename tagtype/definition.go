package tagtype

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// Sentinel errors carried by ConfigError.
var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidPair   = errors.New("marker pair must hold two non-empty strings")
	ErrAmbiguousHead = errors.New("head marker used by more than one tag kind")
)

// ConfigError reports a tag-type definition that cannot
// be registered.
type ConfigError struct {
	TagName string
	Field   string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.TagName != "" {
		return fmt.Sprintf(
			"tag type %q: field %s: %v",
			e.TagName, e.Field, e.Err,
		)
	}

	return fmt.Sprintf("tag type: field %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Definition is the settings-file shape of a TagType.
type Definition struct {
	TagName      string   `yaml:"tag_name"`
	Tag          []string `yaml:"tag"`
	IterationTag []string `yaml:"iteration_tag"`
	FallbackTag  []string `yaml:"fallback_tag"`
	RemoveIndent bool     `yaml:"remove_indent"`
}

// TagType validates the definition and converts it.
func (def Definition) TagType() (TagType, error) {
	if def.TagName == "" {
		return TagType{}, &ConfigError{
			Field: "tag_name",
			Err:   ErrMissingField,
		}
	}

	fields := []struct {
		name string
		raw  []string
	}{
		{"tag", def.Tag},
		{"iteration_tag", def.IterationTag},
		{"fallback_tag", def.FallbackTag},
	}

	pairs := make([]Pair, 0, len(fields))

	for _, fd := range fields {
		if fd.raw == nil {
			return TagType{}, &ConfigError{
				TagName: def.TagName,
				Field:   fd.name,
				Err:     ErrMissingField,
			}
		}

		if len(fd.raw) != 2 || fd.raw[0] == "" || fd.raw[1] == "" {
			return TagType{}, &ConfigError{
				TagName: def.TagName,
				Field:   fd.name,
				Err:     ErrInvalidPair,
			}
		}

		pairs = append(pairs, Pair{
			Head: fd.raw[0],
			Tail: fd.raw[1],
		})
	}

	if pairs[0].Head == pairs[1].Head ||
		pairs[0].Head == pairs[2].Head ||
		pairs[1].Head == pairs[2].Head {
		return TagType{}, &ConfigError{
			TagName: def.TagName,
			Field:   "tag",
			Err:     ErrAmbiguousHead,
		}
	}

	return TagType{
		Name:         def.TagName,
		Value:        pairs[0],
		Iteration:    pairs[1],
		Fallback:     pairs[2],
		RemoveIndent: def.RemoveIndent,
	}, nil
}

// LoadDefinitions decodes a settings document holding
// either one definition or a list of them. JSON input is
// accepted as well since it is valid YAML.
func LoadDefinitions(in io.Reader) ([]Definition, error) {
	const errCtx = "loading tag type definitions"

	raw, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	var defs []Definition
	if err := yaml.Unmarshal(raw, &defs); err == nil {
		return defs, nil
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf(
			"%s: decoding yaml: %w", errCtx, err,
		)
	}

	return []Definition{def}, nil
}
