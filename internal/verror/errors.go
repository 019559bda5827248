// Package verror defines the structured failures returned by validation.
//
// A validation call either produces a normalized tree or exactly one *Error.
// The error names the first violation found while walking the input in its
// deterministic order, together with the path of keys and indices at which
// it occurred.
package verror

import (
	"errors"
	"fmt"
)

// Kind categorizes validation failures.
type Kind string

const (
	// KindShapeMismatch: a value does not match any accepted shape for its
	// declared type, including unknown keys in closed objects.
	KindShapeMismatch Kind = "SHAPE_MISMATCH"

	// KindAmbiguousIdentity: a unique lookup names zero complete unique keys,
	// or two keys that claim different values for the same field.
	KindAmbiguousIdentity Kind = "AMBIGUOUS_IDENTITY"

	// KindInvalidEnumValue: a string outside a closed enumeration
	// (sort direction, relevance field, distinct field, ...).
	KindInvalidEnumValue Kind = "INVALID_ENUM_VALUE"

	// KindRelationCardinalityMismatch: a to-one shape used on a to-many
	// relation or vice versa.
	KindRelationCardinalityMismatch Kind = "RELATION_CARDINALITY_MISMATCH"

	// KindContradictoryMutation: a payload makes two incompatible claims
	// about the same relation.
	KindContradictoryMutation Kind = "CONTRADICTORY_MUTATION"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{
	KindShapeMismatch,
	KindAmbiguousIdentity,
	KindInvalidEnumValue,
	KindRelationCardinalityMismatch,
	KindContradictoryMutation,
}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Error is a validation failure at a specific input path.
type Error struct {
	// Kind identifies the error category.
	Kind Kind `json:"kind"`

	// Path locates the offending value inside the input tree.
	Path Path `json:"path"`

	// Message is a human-readable description.
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Path, e.Message)
}

// New creates an Error with a formatted message.
func New(kind Kind, path Path, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Path:    path.Clone(),
		Message: fmt.Sprintf(format, args...),
	}
}

// Shape creates a KindShapeMismatch error.
func Shape(path Path, format string, args ...any) *Error {
	return New(KindShapeMismatch, path, format, args...)
}

// Ambiguous creates a KindAmbiguousIdentity error.
func Ambiguous(path Path, format string, args ...any) *Error {
	return New(KindAmbiguousIdentity, path, format, args...)
}

// Enum creates a KindInvalidEnumValue error listing the accepted values.
func Enum(path Path, got any, allowed []string) *Error {
	return New(KindInvalidEnumValue, path, "invalid value %v, expected one of %v", got, allowed)
}

// Cardinality creates a KindRelationCardinalityMismatch error.
func Cardinality(path Path, format string, args ...any) *Error {
	return New(KindRelationCardinalityMismatch, path, format, args...)
}

// Contradiction creates a KindContradictoryMutation error.
func Contradiction(path Path, format string, args ...any) *Error {
	return New(KindContradictoryMutation, path, format, args...)
}

// UnknownKey reports a key that is not declared on a closed object.
func UnknownKey(path Path, key string, where string) *Error {
	return Shape(path.Key(key), "unknown key %q on %s", key, where)
}

// As extracts the *Error from err, following wrapped errors.
func As(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// KindOf returns the kind of err, or "" when err is not a validation error.
func KindOf(err error) Kind {
	if ve, ok := As(err); ok {
		return ve.Kind
	}
	return ""
}

// IsShapeMismatch returns true if the error is a shape mismatch.
// Uses errors.As to handle wrapped errors.
func IsShapeMismatch(err error) bool {
	return KindOf(err) == KindShapeMismatch
}

// IsAmbiguousIdentity returns true if the error is an ambiguous identity error.
func IsAmbiguousIdentity(err error) bool {
	return KindOf(err) == KindAmbiguousIdentity
}

// IsInvalidEnumValue returns true if the error is an invalid enum value error.
func IsInvalidEnumValue(err error) bool {
	return KindOf(err) == KindInvalidEnumValue
}

// IsRelationCardinalityMismatch returns true if the error is a relation
// cardinality mismatch.
func IsRelationCardinalityMismatch(err error) bool {
	return KindOf(err) == KindRelationCardinalityMismatch
}

// IsContradictoryMutation returns true if the error is a contradictory mutation.
func IsContradictoryMutation(err error) bool {
	return KindOf(err) == KindContradictoryMutation
}
