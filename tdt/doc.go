// Package tdt implements the tag data translation core: a compiled,
// immutable scheme set and the pipeline that translates one EPC
// identifier between representation levels of a single coding scheme.
//
// The pipeline is entirely data driven. Scheme markup (see the markup
// package) declares, per (scheme, level, option): a prefix the
// identifier must start with, an anchored pattern whose capturing
// groups carry the field values, per-field codecs and validation, rules
// that derive additional fields, and the grammar that assembles the
// output string. Translation is: select the input triple, tokenize the
// identifier into named fields, run the input level's EXTRACT rules and
// the output level's FORMAT rules over the token map, re-encode tokens
// to bits when the target is BINARY, and walk the output grammar.
//
// A SchemeSet is immutable once built and safe for any number of
// concurrent Translate calls; each call allocates only its own token
// map and string buffers.
package tdt
