package schema

import (
	"fmt"
	"slices"

	"github.com/roach88/querygate/internal/ir"
)

// Registry is the immutable, name-indexed set of built entities.
// Safe for concurrent use.
type Registry struct {
	entities map[string]*Entity
	names    []string
}

// Entity returns the entity called name.
func (r *Registry) Entity(name string) (*Entity, bool) {
	e, ok := r.entities[name]
	return e, ok
}

// MustEntity is like Entity but panics when name is unknown.
// Use only in tests or with names taken from the registry itself.
func (r *Registry) MustEntity(name string) *Entity {
	e, ok := r.entities[name]
	if !ok {
		panic(fmt.Sprintf("schema: unknown entity %q", name))
	}
	return e
}

// Names returns the entity names, sorted.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Entities returns the entities sorted by name.
func (r *Registry) Entities() []*Entity {
	out := make([]*Entity, len(r.names))
	for i, name := range r.names {
		out[i] = r.entities[name]
	}
	return out
}

// Describe renders the registry as a plain tree, the form printed by the
// CLI and hashed by Fingerprint.
func (r *Registry) Describe() map[string]any {
	out := make(map[string]any, len(r.names))
	for _, e := range r.Entities() {
		out[e.Name] = e.Describe()
	}
	return out
}

// Fingerprint is the content hash of Describe. Two registries with the
// same fingerprint validate identically.
func (r *Registry) Fingerprint() string {
	return ir.MustFingerprint(ir.DomainSchema, r.Describe())
}

// Describe renders the entity as a plain tree.
func (e *Entity) Describe() map[string]any {
	fields := make([]any, len(e.fields))
	for i, f := range e.fields {
		fd := map[string]any{"name": f.Name, "type": f.Type.String()}
		if f.ID {
			fd["id"] = true
		}
		if f.Unique {
			fd["unique"] = true
		}
		if f.Default != DefaultNone {
			fd["default"] = string(f.Default)
		}
		fields[i] = fd
	}

	relations := make([]any, len(e.relations))
	for i, r := range e.relations {
		rd := map[string]any{
			"name":    r.Name,
			"target":  r.Target.Name,
			"kind":    r.Kind.String(),
			"inverse": r.Inverse.Name,
		}
		if r.Owning() {
			rd["fields"] = stringsToAny(r.Fields)
			rd["references"] = stringsToAny(r.References)
		}
		relations[i] = rd
	}

	keys := make([]any, len(e.keys))
	for i, k := range e.keys {
		kd := map[string]any{"name": k.Name, "fields": stringsToAny(k.Fields)}
		if k.Primary {
			kd["primary"] = true
		}
		keys[i] = kd
	}

	out := map[string]any{
		"fields":    fields,
		"relations": relations,
		"keys":      keys,
	}
	if len(e.relevance) > 0 {
		out["relevance"] = stringsToAny(e.relevance)
	}
	return out
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
