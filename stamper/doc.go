// Package stamper reads stamp files, the "KEY VALUE" per line status
// files build systems emit, and substitutes single-brace {KEY}
// placeholders with their values. Stamps form the base layer of the data
// a template is rendered against.
package stamper
