package compiler

import (
	"fmt"
	"math"
	"strings"

	"github.com/ptasker/gutenberg/internal/block"
)

// Definition validation error codes (E100-E199)
const (
	ErrNameInvalid            = "E101" // name missing or malformed
	ErrTitleEmpty             = "E102" // title must be non-empty
	ErrAttributeKindInvalid   = "E103" // unknown attribute kind
	ErrDefaultKindMismatch    = "E104" // default does not match declared kind
	ErrTransformTargetInvalid = "E105" // malformed transform target name
	ErrTransformTargetDup     = "E106" // target declared more than once
)

// ValidationError represents a definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled definition against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError

	if !block.ValidTypeName(def.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid type name %q, expected \"namespace/name\"", def.Name),
			Code:    ErrNameInvalid,
		})
	}

	if strings.TrimSpace(def.Title) == "" {
		errs = append(errs, ValidationError{
			Field:   "title",
			Message: "title is required and must be non-empty",
			Code:    ErrTitleEmpty,
		})
	}

	for _, attrName := range def.AttributeOrder {
		attr := def.Attributes[attrName]

		if !validKind(attr.Kind) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("attributes.%s.type", attrName),
				Message: fmt.Sprintf("invalid kind %q for attribute %q", attr.Kind, attrName),
				Code:    ErrAttributeKindInvalid,
			})
			continue
		}

		if attr.Default != nil && !kindMatches(attr.Kind, attr.Default) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("attributes.%s.default", attrName),
				Message: fmt.Sprintf("default %v is not a %s", attr.Default, attr.Kind),
				Code:    ErrDefaultKindMismatch,
			})
		}
	}

	seen := make(map[string]bool)
	for i, target := range def.TransformsTo {
		if !block.ValidTypeName(target) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("transformsTo[%d]", i),
				Message: fmt.Sprintf("invalid target type name %q", target),
				Code:    ErrTransformTargetInvalid,
			})
		}
		if seen[target] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("transformsTo[%d]", i),
				Message: fmt.Sprintf("duplicate target %q", target),
				Code:    ErrTransformTargetDup,
			})
		}
		seen[target] = true
	}

	return errs
}

// Validator builds the runtime attribute check for a definition: every
// declared attribute present in the map must match its declared kind.
// Undeclared attributes pass through untouched, and nil values count as
// absent.
func Validator(def *Definition) func(block.Attributes) error {
	// Copy so later mutation of the definition cannot change the check.
	schema := make(map[string]string, len(def.Attributes))
	for name, attr := range def.Attributes {
		schema[name] = attr.Kind
	}

	return func(attrs block.Attributes) error {
		for name, value := range attrs {
			kind, declared := schema[name]
			if !declared || value == nil {
				continue
			}
			if !kindMatches(kind, value) {
				return fmt.Errorf("attribute %q: expected %s, got %s", name, kind, kindOf(value))
			}
		}
		return nil
	}
}

// validKind reports whether a declared kind string is supported.
func validKind(kind string) bool {
	switch kind {
	case "string", "number", "integer", "boolean", "array", "object":
		return true
	}
	return false
}

// kindMatches reports whether a runtime value satisfies a declared kind.
func kindMatches(kind string, value any) bool {
	switch kind {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		return isNumeric(value)
	case "integer":
		switch n := value.(type) {
		case int, int64:
			return true
		case float64:
			return n == math.Trunc(n)
		}
		return false
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return false
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int64, float64:
		return true
	}
	return false
}

// kindOf names a runtime value's JSON kind for error messages.
func kindOf(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64:
		return "integer"
	case float64:
		if v == math.Trunc(v) {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
