// Package record holds the data a template is rendered against and the
// reader for the line-oriented record format.
//
// A record value is a String, an ordered *Map, or a List of maps. The
// text format has three kinds of lines:
//
//	key: value          pair in the current mapping
//	//@label           raw text block stored as a String under "label"
//	//@#label          groups of pairs, separated by blank lines,
//	                    stored as a List under "#label"
//
// Headers are never nested: a header inside an iteration group closes
// the group and the iteration.
package record
