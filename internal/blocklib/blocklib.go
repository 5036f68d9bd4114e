// Package blocklib ships the built-in block library: the core block types
// compiled from embedded CUE definitions, with merge and transform
// behavior bound in Go.
package blocklib

import (
	_ "embed"
	"fmt"

	"github.com/ptasker/gutenberg/internal/block"
	"github.com/ptasker/gutenberg/internal/compiler"
)

//go:embed blocks.cue
var blocksCUE []byte

// Built-in type names.
const (
	TypeParagraph = "core/paragraph"
	TypeHeading   = "core/heading"
	TypeQuote     = "core/quote"
	TypeCode      = "core/code"
)

// capability is the Go half of a block type: merge behavior plus one
// transform function per declared target.
type capability struct {
	merge      block.MergeFunc
	transforms map[string]func(block.Attributes) (block.Block, error)
}

// capabilities binds behavior to definitions by name.
var capabilities = map[string]capability{
	TypeParagraph: {merge: mergeContent},
	TypeHeading: {
		merge: mergeContent,
		transforms: map[string]func(block.Attributes) (block.Block, error){
			TypeParagraph: headingToParagraph,
		},
	},
	TypeQuote: {
		transforms: map[string]func(block.Attributes) (block.Block, error){
			TypeParagraph: quoteToParagraph,
		},
	},
	TypeCode:           {},
	block.ReusableType: {},
}

// New compiles the embedded definitions into the registry the CLI and
// scenario runner use.
func New() (*block.Library, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}

	descs := make([]*block.TypeDescriptor, 0, len(defs))
	for i := range defs {
		desc, err := descriptor(&defs[i])
		if err != nil {
			return nil, err
		}
		descs = append(descs, desc)
	}
	return block.NewLibrary(descs...)
}

// MustNew is New for main wiring and tests. Panics when the embedded
// definitions do not compile.
func MustNew() *block.Library {
	lib, err := New()
	if err != nil {
		panic(err)
	}
	return lib
}

// Definitions compiles and validates the embedded CUE definitions, in
// declaration order.
func Definitions() ([]compiler.Definition, error) {
	defs, err := compiler.CompileSource("blocks.cue", blocksCUE)
	if err != nil {
		return nil, fmt.Errorf("compile built-in blocks: %w", err)
	}
	for i := range defs {
		if errs := compiler.Validate(&defs[i]); len(errs) > 0 {
			return nil, fmt.Errorf("built-in definition %s: %w", defs[i].Name, errs[0])
		}
	}
	return defs, nil
}

// descriptor joins one definition with its capability entry. Every
// declared transform target must have a bound function.
func descriptor(def *compiler.Definition) (*block.TypeDescriptor, error) {
	caps := capabilities[def.Name]

	desc := &block.TypeDescriptor{
		Name:     def.Name,
		Title:    def.Title,
		Validate: compiler.Validator(def),
		Merge:    caps.merge,
	}
	for _, target := range def.TransformsTo {
		apply, ok := caps.transforms[target]
		if !ok {
			return nil, fmt.Errorf("block type %s: no transform bound for target %s", def.Name, target)
		}
		desc.Transforms = append(desc.Transforms, block.TransformRule{
			Targets: []string{target},
			Apply:   apply,
		})
	}
	return desc, nil
}

// mergeContent concatenates the text content of two adjacent blocks. The
// caller overlays the result onto the first block's attributes, so only
// the merged key is returned.
func mergeContent(a, b block.Attributes) block.Attributes {
	return block.Attributes{"content": stringAttr(a, "content") + stringAttr(b, "content")}
}

func headingToParagraph(attrs block.Attributes) (block.Block, error) {
	out := block.Attributes{"content": stringAttr(attrs, "content")}
	if align, ok := attrs["align"]; ok {
		out["align"] = align
	}
	return block.Block{Type: TypeParagraph, Attributes: out}, nil
}

func quoteToParagraph(attrs block.Attributes) (block.Block, error) {
	return block.Block{
		Type:       TypeParagraph,
		Attributes: block.Attributes{"content": stringAttr(attrs, "value")},
	}, nil
}

// stringAttr reads a string attribute, treating missing and non-string
// values as empty.
func stringAttr(attrs block.Attributes, name string) string {
	s, _ := attrs[name].(string)
	return s
}
