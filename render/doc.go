// Package render walks a tag tree against a record and produces text.
//
// Value tags resolve their type as a record key and run the value through
// the format registry; a missing key renders as "[type]". Typed iteration
// tags repeat their content once per mapping found under "#type", each
// repetition seeing only its own mapping. Untyped iteration tags group
// content without repeating it. Fallback tags behave like iteration tags
// but only produce output when at least one value tag inside them
// resolves to non-empty text.
//
// A Renderer holds the two registries. Configure them before the first
// call; rendering itself does not mutate anything.
package render
