// Package format maps the short labels a value tag may start with to text
// transforms. "=" is plain substitution and the fallback for unknown
// labels; "h" escapes markup.
package format
