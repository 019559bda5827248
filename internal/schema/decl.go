package schema

import (
	"fmt"

	"github.com/roach88/querygate/internal/scalar"
)

// RelationKind is the cardinality of a relation seen from its owner.
type RelationKind uint8

const (
	ToOneRequired RelationKind = iota + 1
	ToOneOptional
	ToMany
)

// String renders the declaration notation of the kind.
func (k RelationKind) String() string {
	switch k {
	case ToOneRequired:
		return "one"
	case ToOneOptional:
		return "one?"
	case ToMany:
		return "many"
	default:
		return fmt.Sprintf("RelationKind(%d)", uint8(k))
	}
}

// ParseRelationKind parses "one", "one?" or "many".
func ParseRelationKind(s string) (RelationKind, bool) {
	switch s {
	case "one":
		return ToOneRequired, true
	case "one?":
		return ToOneOptional, true
	case "many":
		return ToMany, true
	default:
		return 0, false
	}
}

// Default describes how a field gets a value when a create omits it.
type Default string

const (
	DefaultNone      Default = ""
	DefaultCUID      Default = "cuid"
	DefaultNow       Default = "now"
	DefaultUpdatedAt Default = "updatedAt"
	DefaultValue     Default = "value"
)

// ParseDefault parses a default generator name. Any other non-empty
// string is not a generator.
func ParseDefault(s string) (Default, bool) {
	switch Default(s) {
	case DefaultNone, DefaultCUID, DefaultNow, DefaultUpdatedAt, DefaultValue:
		return Default(s), true
	default:
		return "", false
	}
}

// FieldDecl declares a scalar field.
type FieldDecl struct {
	Name    string
	Type    scalar.Type
	ID      bool
	Unique  bool
	Default Default
	// Value is the literal of a DefaultValue default.
	Value any
}

// RelationDecl declares a relation. The owning side of a to-one relation
// lists its local foreign-key Fields and the target fields they
// References. Inverse names the relation on the target when more than one
// relation connects the same pair of entities.
type RelationDecl struct {
	Name       string
	Target     string
	Kind       RelationKind
	Fields     []string
	References []string
	Inverse    string
}

// UniqueDecl declares a unique constraint over one or more fields. Name
// defaults to the member names joined with "_". Primary marks the
// compound primary key of an entity without a surrogate id.
type UniqueDecl struct {
	Name    string
	Fields  []string
	Primary bool
}

// EntityDecl declares one entity.
type EntityDecl struct {
	Name      string
	Fields    []FieldDecl
	Relations []RelationDecl
	Uniques   []UniqueDecl
	// Relevance lists the text fields eligible for relevance ordering.
	Relevance []string
}
