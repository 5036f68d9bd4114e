// Package compiler turns CUE block-type definitions into the declarative
// half of a block type: name, title, attribute schema, transform targets.
// Behavior (merge and transform functions) is attached in Go by the
// library that owns the definitions.
package compiler

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// Definition is one compiled block-type definition.
type Definition struct {
	// Name is the canonical type name, e.g. "core/paragraph".
	Name string

	// Title is the human-readable label shown for the type.
	Title string

	// Attributes maps attribute names to their declared schema.
	Attributes map[string]Attribute

	// AttributeOrder lists attribute names in declaration order.
	AttributeOrder []string

	// TransformsTo lists target type names this type declares a
	// conversion toward, in declaration order.
	TransformsTo []string
}

// Attribute is the declared schema of a single block attribute.
type Attribute struct {
	// Kind is one of the JSON kinds: string, number, integer, boolean,
	// array, object.
	Kind string

	// Default is the attribute's default value, already decoded into the
	// JSON domain. Nil when no default is declared.
	Default any
}

// CompileSource evaluates CUE source and compiles every definition under
// the top-level "blocks" struct, in declaration order.
func CompileSource(filename string, src []byte) ([]Definition, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDefinitions(v.LookupPath(cue.ParsePath("blocks")))
}

// CompileDefinitions compiles each field of a struct of definitions.
func CompileDefinitions(v cue.Value) ([]Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.Exists() {
		return nil, &DefinitionError{
			Field:   "blocks",
			Message: "no blocks struct found",
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []Definition
	for iter.Next() {
		def, err := CompileDefinition(iter.Value())
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

// CompileDefinition parses a single CUE definition struct, e.g.:
//
//	{
//		name:  "core/paragraph"
//		title: "Paragraph"
//		attributes: content: {type: "string", default: ""}
//		transformsTo: ["core/heading"]
//	}
func CompileDefinition(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{Attributes: make(map[string]Attribute)}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &DefinitionError{
			Field:   "name",
			Message: "name is required",
			Pos:     v.Pos(),
		}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Name = name

	titleVal := v.LookupPath(cue.ParsePath("title"))
	if !titleVal.Exists() {
		return nil, &DefinitionError{
			Field:   "title",
			Message: "title is required",
			Pos:     v.Pos(),
		}
	}
	title, err := titleVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}
	def.Title = title

	if err := parseAttributes(v, def); err != nil {
		return nil, err
	}
	if err := parseTransformTargets(v, def); err != nil {
		return nil, err
	}

	return def, nil
}

// parseAttributes extracts the attribute schema. Attributes are optional;
// a type with none accepts any attribute map.
func parseAttributes(v cue.Value, def *Definition) error {
	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return nil
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		attrName := iter.Label()
		attrVal := iter.Value()

		kindVal := attrVal.LookupPath(cue.ParsePath("type"))
		if !kindVal.Exists() {
			return &DefinitionError{
				Field:   fmt.Sprintf("attributes.%s.type", attrName),
				Message: "attribute type is required",
				Pos:     attrVal.Pos(),
			}
		}
		kind, err := kindVal.String()
		if err != nil {
			return formatCUEError(err)
		}

		attr := Attribute{Kind: kind}

		defVal := attrVal.LookupPath(cue.ParsePath("default"))
		if defVal.Exists() {
			attr.Default, err = decodeDefault(defVal)
			if err != nil {
				return err
			}
		}

		def.Attributes[attrName] = attr
		def.AttributeOrder = append(def.AttributeOrder, attrName)
	}
	return nil
}

// parseTransformTargets extracts the declared conversion targets.
func parseTransformTargets(v cue.Value, def *Definition) error {
	targetsVal := v.LookupPath(cue.ParsePath("transformsTo"))
	if !targetsVal.Exists() {
		return nil
	}

	iter, err := targetsVal.List()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		target, err := iter.Value().String()
		if err != nil {
			return formatCUEError(err)
		}
		def.TransformsTo = append(def.TransformsTo, target)
	}
	return nil
}

// decodeDefault decodes a concrete CUE value into the JSON domain, so
// defaults compare equal to runtime attribute values.
func decodeDefault(v cue.Value) (any, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode default: %w", err)
	}
	return out, nil
}

// DefinitionError represents a compilation error with source position.
type DefinitionError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *DefinitionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &DefinitionError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
