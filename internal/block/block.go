package block

import (
	"encoding/json"
	"fmt"
)

// ReusableType is the wrapper block type that embeds a reusable block by
// reference instead of carrying content itself.
const ReusableType = "core/block"

// RefAttribute is the wrapper block attribute holding the referenced
// reusable record id.
const RefAttribute = "ref"

// Attributes is the attribute map of a block instance.
//
// Values live in the JSON domain: string, float64, bool, nil, []any, and
// map[string]any. Maps built from Go literals with other scalar types
// (int, float32, ...) must pass through Normalize before they are compared
// or serialized.
type Attributes map[string]any

// Block is a single editable unit of post content.
type Block struct {
	// ID is an opaque instance identifier, unique within a document.
	ID string `json:"id"`

	// Type references a registered block type, e.g. "core/paragraph".
	Type string `json:"type"`

	// Attributes hold the instance payload. May be nil.
	Attributes Attributes `json:"attributes,omitempty"`
}

// Clone returns a shallow copy of the attribute map. Nested arrays and
// objects are shared; handlers treat attribute values as immutable.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Overlay returns a copy of a with every key of b written over it.
// a and b are left untouched.
func (a Attributes) Overlay(b Attributes) Attributes {
	if len(b) == 0 {
		return a.Clone()
	}
	out := make(Attributes, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Normalize canonicalizes an attribute map into the JSON domain via a
// marshal/unmarshal round trip. Numbers become float64, typed slices and
// maps become []any and map[string]any. An empty or nil map normalizes
// to nil.
func Normalize(attrs Attributes) (Attributes, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(map[string]any(attrs))
	if err != nil {
		return nil, fmt.Errorf("normalize attributes: %w", err)
	}
	var out Attributes
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("normalize attributes: %w", err)
	}
	return out, nil
}

// MustNormalize is Normalize for literals in tests and fixtures.
// Panics on unmarshalable values.
func MustNormalize(attrs Attributes) Attributes {
	out, err := Normalize(attrs)
	if err != nil {
		panic(err)
	}
	return out
}
