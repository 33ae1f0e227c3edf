// Package adapter decodes YAML, JSON and CSV data into the record shape
// the renderer expects: nested mappings become *record.Map, sequences
// become a record.List stored under "#" plus their key, and scalars
// become record.String.
package adapter
