// Package block defines the core block data model: block instances, block
// type descriptors, and the read-only registry interface handlers use to
// look types up.
//
// # Attribute domain
//
// Attribute values are constrained to the JSON domain: string, float64,
// bool, nil, []any, and map[string]any. Normalize canonicalizes arbitrary
// Go values into that domain so equality and serialization behave the same
// no matter where a block came from (literal, parsed markup, remote fetch).
//
// # Registry
//
// Descriptors are immutable once registered. Handlers receive a Registry
// and never mutate it; tests build a Library per case with exactly the
// types under test.
package block
