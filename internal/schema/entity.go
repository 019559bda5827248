package schema

import (
	"slices"
	"strings"

	"github.com/roach88/querygate/internal/scalar"
)

// Field is a scalar field of a built entity.
type Field struct {
	Name    string
	Type    scalar.Type
	ID      bool
	Unique  bool
	Default Default
	Value   any
}

// Generated reports whether the field has a default.
func (f *Field) Generated() bool {
	return f.Default != DefaultNone
}

// RequiredOnCreate reports whether a create must supply the field.
// Nullable, list and generated fields are optional.
func (f *Field) RequiredOnCreate() bool {
	return !f.Type.Nullable && !f.Type.List && !f.Generated()
}

// Relation is a linked relation of a built entity.
type Relation struct {
	Name       string
	Kind       RelationKind
	Owner      *Entity
	Target     *Entity
	Inverse    *Relation
	Fields     []string
	References []string
}

// ToOne reports whether the relation points at a single row.
func (r *Relation) ToOne() bool {
	return r.Kind == ToOneRequired || r.Kind == ToOneOptional
}

// ToMany reports whether the relation points at a set of rows.
func (r *Relation) ToMany() bool {
	return r.Kind == ToMany
}

// Optional reports whether a to-one relation may be absent.
func (r *Relation) Optional() bool {
	return r.Kind == ToOneOptional
}

// Owning reports whether the owner holds the foreign key.
func (r *Relation) Owning() bool {
	return len(r.Fields) > 0
}

// ForeignKeys returns the foreign-key fields that implement the relation
// together with the side that holds them: the owner for owning relations,
// the target otherwise. Each local field pairs with the referenced field
// at the same index.
func (r *Relation) ForeignKeys() (holder *Entity, fields, references []string) {
	if r.Owning() {
		return r.Owner, r.Fields, r.References
	}
	return r.Target, r.Inverse.Fields, r.Inverse.References
}

// UniqueKey is a single-field or compound unique key.
type UniqueKey struct {
	Name    string
	Fields  []string
	Primary bool
}

// Compound reports whether the key spans several fields.
func (k UniqueKey) Compound() bool {
	return len(k.Fields) > 1
}

// Has reports whether field is a member of the key.
func (k UniqueKey) Has(field string) bool {
	for _, f := range k.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (k UniqueKey) clone() UniqueKey {
	k.Fields = slices.Clone(k.Fields)
	return k
}

// Entity is a built, immutable entity.
type Entity struct {
	Name string

	fields      []*Field
	fieldByName map[string]*Field
	relations   []*Relation
	relByName   map[string]*Relation
	keys        []UniqueKey
	relevance   []string
	foreignKeys map[string]*Relation
}

// Field returns the scalar field called name.
func (e *Entity) Field(name string) (*Field, bool) {
	f, ok := e.fieldByName[name]
	return f, ok
}

// Relation returns the relation called name.
func (e *Entity) Relation(name string) (*Relation, bool) {
	r, ok := e.relByName[name]
	return r, ok
}

// Fields returns the scalar fields in declaration order. The slice is a
// copy; the fields it points to are shared and must not be modified.
func (e *Entity) Fields() []*Field {
	return slices.Clone(e.fields)
}

// Relations returns the relations in declaration order. The slice is a
// copy; the relations it points to are shared and must not be modified.
func (e *Entity) Relations() []*Relation {
	return slices.Clone(e.relations)
}

// UniqueKeys returns a copy of every unique key: single-field keys in field
// order, then compound keys in declaration order.
func (e *Entity) UniqueKeys() []UniqueKey {
	out := make([]UniqueKey, len(e.keys))
	for i, k := range e.keys {
		out[i] = k.clone()
	}
	return out
}

// UniqueKey returns the key called name.
func (e *Entity) UniqueKey(name string) (UniqueKey, bool) {
	for _, k := range e.keys {
		if k.Name == name {
			return k.clone(), true
		}
	}
	return UniqueKey{}, false
}

// PrimaryKey returns the id field key, or the primary compound key of an
// entity without one, or failing both the first unique key.
func (e *Entity) PrimaryKey() UniqueKey {
	for _, f := range e.fields {
		if f.ID {
			return UniqueKey{Name: f.Name, Fields: []string{f.Name}, Primary: true}
		}
	}
	for _, k := range e.keys {
		if k.Primary {
			return k.clone()
		}
	}
	return e.keys[0].clone()
}

// Relevance returns the fields eligible for relevance ordering.
func (e *Entity) Relevance() []string {
	return slices.Clone(e.relevance)
}

// ForeignKeyRelation returns the owning relation implemented by field,
// if field is a foreign key.
func (e *Entity) ForeignKeyRelation(field string) (*Relation, bool) {
	r, ok := e.foreignKeys[field]
	return r, ok
}

// ScalarNames returns the scalar field names in declaration order.
func (e *Entity) ScalarNames() []string {
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names
}

// InputName is the name of the input shape of kind on this entity, used
// in error messages ("BookmarkWhereInput").
func (e *Entity) InputName(kind string) string {
	return e.Name + kind
}

func keyName(fields []string) string {
	return strings.Join(fields, "_")
}
