package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptasker/gutenberg/internal/block"
)

func TestValidateCleanDefinition(t *testing.T) {
	def := &Definition{
		Name:  "core/heading",
		Title: "Heading",
		Attributes: map[string]Attribute{
			"content": {Kind: "string", Default: ""},
			"level":   {Kind: "integer", Default: float64(2)},
		},
		AttributeOrder: []string{"content", "level"},
		TransformsTo:   []string{"core/paragraph"},
	}

	assert.Empty(t, Validate(def))
}

func TestValidateReportsAllErrors(t *testing.T) {
	def := &Definition{
		Name:  "Core Heading!",
		Title: "  ",
		Attributes: map[string]Attribute{
			"content": {Kind: "text"},
			"level":   {Kind: "integer", Default: "two"},
		},
		AttributeOrder: []string{"content", "level"},
		TransformsTo:   []string{"core/paragraph", "core/paragraph", "Bad Name"},
	}

	errs := Validate(def)

	codes := make(map[string]bool)
	for _, e := range errs {
		codes[e.Code] = true
	}
	assert.True(t, codes[ErrNameInvalid], "expected %s, got %v", ErrNameInvalid, errs)
	assert.True(t, codes[ErrTitleEmpty], "expected %s, got %v", ErrTitleEmpty, errs)
	assert.True(t, codes[ErrAttributeKindInvalid], "expected %s, got %v", ErrAttributeKindInvalid, errs)
	assert.True(t, codes[ErrDefaultKindMismatch], "expected %s, got %v", ErrDefaultKindMismatch, errs)
	assert.True(t, codes[ErrTransformTargetDup], "expected %s, got %v", ErrTransformTargetDup, errs)
	assert.True(t, codes[ErrTransformTargetInvalid], "expected %s, got %v", ErrTransformTargetInvalid, errs)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "title", Message: "title is required", Code: ErrTitleEmpty}
	assert.Equal(t, "[E102] title: title is required", err.Error())
}

func TestValidatorChecksDeclaredKinds(t *testing.T) {
	def := &Definition{
		Name:  "core/paragraph",
		Title: "Paragraph",
		Attributes: map[string]Attribute{
			"content": {Kind: "string"},
			"dropCap": {Kind: "boolean"},
		},
		AttributeOrder: []string{"content", "dropCap"},
	}
	validate := Validator(def)

	require.NoError(t, validate(block.Attributes{"content": "hello", "dropCap": true}))

	// Undeclared attributes pass through.
	require.NoError(t, validate(block.Attributes{"content": "hello", "customClass": 42}))

	// Nil counts as absent.
	require.NoError(t, validate(block.Attributes{"content": nil}))

	err := validate(block.Attributes{"content": 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `attribute "content"`)
	assert.Contains(t, err.Error(), "expected string")
}

func TestValidatorIntegerKind(t *testing.T) {
	def := &Definition{
		Name:           "core/heading",
		Title:          "Heading",
		Attributes:     map[string]Attribute{"level": {Kind: "integer"}},
		AttributeOrder: []string{"level"},
	}
	validate := Validator(def)

	// JSON decoding yields float64; integral values satisfy integer.
	require.NoError(t, validate(block.Attributes{"level": float64(3)}))
	require.NoError(t, validate(block.Attributes{"level": 3}))

	err := validate(block.Attributes{"level": 3.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected integer")
}

func TestValidatorNumberKind(t *testing.T) {
	def := &Definition{
		Name:           "core/spacer",
		Title:          "Spacer",
		Attributes:     map[string]Attribute{"height": {Kind: "number"}},
		AttributeOrder: []string{"height"},
	}
	validate := Validator(def)

	require.NoError(t, validate(block.Attributes{"height": 1.5}))
	require.NoError(t, validate(block.Attributes{"height": 100}))
	require.Error(t, validate(block.Attributes{"height": "tall"}))
}
