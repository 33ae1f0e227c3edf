// Package tagtype holds the delimiter dialects a template may be written
// in. A TagType bundles the head/tail markers of value, iteration and
// fallback tags together with the indent trimming flag. The Registry is
// an explicit object created once at startup, optionally extended from a
// YAML or JSON settings file, and then passed to the parser read-only.
package tagtype
