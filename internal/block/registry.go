package block

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// MergeFunc combines the attributes of two adjacent blocks of the same
// type into the attributes of the surviving block. Implementations must
// not mutate either argument.
type MergeFunc func(a, b Attributes) Attributes

// TransformRule bridges blocks of one type into another type.
type TransformRule struct {
	// Targets lists the destination type names this rule can produce.
	Targets []string

	// Apply converts source attributes into a block of the matched target
	// type. The returned block carries no id; callers that keep the block
	// assign one.
	Apply func(attrs Attributes) (Block, error)
}

// TargetsType reports whether the rule can produce the named type.
func (r TransformRule) TargetsType(name string) bool {
	return slices.Contains(r.Targets, name)
}

// TypeDescriptor describes a registered block type. Descriptors are
// immutable after registration.
type TypeDescriptor struct {
	// Name is the namespaced type name, e.g. "core/paragraph".
	Name string

	// Title is the human-readable label.
	Title string

	// Validate checks an attribute map against the type's schema.
	// Nil means the type accepts any attributes.
	Validate func(attrs Attributes) error

	// Merge combines two adjacent blocks of this type. Nil when the type
	// does not support merging.
	Merge MergeFunc

	// Transforms are "to"-direction bridges in declaration order. The
	// first rule targeting a given type wins.
	Transforms []TransformRule
}

// TransformTo returns the first declared transform rule producing the
// named type, or false when no rule bridges to it.
func (d *TypeDescriptor) TransformTo(name string) (TransformRule, bool) {
	for _, rule := range d.Transforms {
		if rule.TargetsType(name) {
			return rule, true
		}
	}
	return TransformRule{}, false
}

// Registry is the read-only lookup surface injected into effect handlers.
type Registry interface {
	// Lookup returns the descriptor for a type name. Unregistered names
	// return a *NotFoundError.
	Lookup(name string) (*TypeDescriptor, error)

	// Names returns registered type names in registration order.
	Names() []string
}

// NotFoundError indicates a lookup for an unregistered block type.
type NotFoundError struct {
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("block type %q is not registered", e.Name)
}

// IsNotFound reports whether err wraps a registry NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// typeNamePattern matches namespaced block type names: lowercase
// alphanumerics and dashes, exactly one slash.
var typeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*/[a-z][a-z0-9-]*$`)

// ValidTypeName reports whether name is a well-formed namespaced type name.
func ValidTypeName(name string) bool {
	return typeNamePattern.MatchString(name)
}

// Library is an immutable in-memory Registry.
type Library struct {
	byName map[string]*TypeDescriptor
	order  []string
}

// NewLibrary builds a Library from descriptors. Registration order is
// preserved and observable through Names. Fails on malformed names and
// duplicate registrations.
func NewLibrary(descs ...*TypeDescriptor) (*Library, error) {
	lib := &Library{
		byName: make(map[string]*TypeDescriptor, len(descs)),
		order:  make([]string, 0, len(descs)),
	}
	for _, d := range descs {
		if !ValidTypeName(d.Name) {
			return nil, fmt.Errorf("register block type: invalid name %q", d.Name)
		}
		if _, dup := lib.byName[d.Name]; dup {
			return nil, fmt.Errorf("register block type: %q already registered", d.Name)
		}
		lib.byName[d.Name] = d
		lib.order = append(lib.order, d.Name)
	}
	return lib, nil
}

// Lookup implements Registry.
func (l *Library) Lookup(name string) (*TypeDescriptor, error) {
	d, ok := l.byName[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return d, nil
}

// Names implements Registry.
func (l *Library) Names() []string {
	return slices.Clone(l.order)
}
