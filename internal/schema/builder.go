package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/querygate/internal/scalar"
)

// DeclError reports an inconsistent declaration found while building.
type DeclError struct {
	Entity  string
	Member  string
	Message string
}

// Error implements the error interface.
func (e *DeclError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("entity %s: %s", e.Entity, e.Message)
	}
	return fmt.Sprintf("entity %s: %s: %s", e.Entity, e.Member, e.Message)
}

// Builder collects entity declarations and builds a Registry.
type Builder struct {
	decls []EntityDecl
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add appends declarations. Order does not matter: relation targets are
// resolved by name during Build.
func (b *Builder) Add(decls ...EntityDecl) *Builder {
	b.decls = append(b.decls, decls...)
	return b
}

// Build resolves every declaration into an immutable Registry.
// Returns every inconsistency found, joined with errors.Join.
func (b *Builder) Build() (*Registry, error) {
	l := &linker{arena: make(map[string]*Entity, len(b.decls))}

	l.allocate(b.decls)
	if err := l.err(); err != nil {
		return nil, err
	}
	l.link(b.decls)
	if err := l.err(); err != nil {
		return nil, err
	}
	l.check(b.decls)
	if err := l.err(); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(l.arena))
	for name := range l.arena {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Registry{entities: l.arena, names: names}, nil
}

// linker carries the arena and accumulated errors across the phases.
type linker struct {
	arena map[string]*Entity
	errs  []error
}

func (l *linker) fail(entity, member, format string, args ...any) {
	l.errs = append(l.errs, &DeclError{Entity: entity, Member: member, Message: fmt.Sprintf(format, args...)})
}

func (l *linker) err() error {
	return errors.Join(l.errs...)
}

// allocate creates every entity with its scalar fields and keys.
func (l *linker) allocate(decls []EntityDecl) {
	for _, d := range decls {
		if d.Name == "" {
			l.fail("?", "", "entity name is required")
			continue
		}
		if _, dup := l.arena[d.Name]; dup {
			l.fail(d.Name, "", "declared twice")
			continue
		}

		e := &Entity{
			Name:        d.Name,
			fieldByName: make(map[string]*Field, len(d.Fields)),
			relByName:   make(map[string]*Relation, len(d.Relations)),
			foreignKeys: make(map[string]*Relation),
			relevance:   append([]string(nil), d.Relevance...),
		}
		for _, fd := range d.Fields {
			if _, dup := e.fieldByName[fd.Name]; dup {
				l.fail(d.Name, fd.Name, "field declared twice")
				continue
			}
			f := &Field{
				Name:    fd.Name,
				Type:    fd.Type,
				ID:      fd.ID,
				Unique:  fd.Unique,
				Default: fd.Default,
				Value:   fd.Value,
			}
			e.fields = append(e.fields, f)
			e.fieldByName[f.Name] = f
			if f.ID || f.Unique {
				e.keys = append(e.keys, UniqueKey{Name: f.Name, Fields: []string{f.Name}, Primary: f.ID})
			}
		}
		for _, ud := range d.Uniques {
			name := ud.Name
			if name == "" {
				name = keyName(ud.Fields)
			}
			if _, exists := e.UniqueKey(name); exists {
				continue
			}
			e.keys = append(e.keys, UniqueKey{Name: name, Fields: append([]string(nil), ud.Fields...), Primary: ud.Primary})
		}
		l.arena[d.Name] = e
	}
}

// link binds relation targets and inverses through the arena.
func (l *linker) link(decls []EntityDecl) {
	for _, d := range decls {
		owner := l.arena[d.Name]
		for _, rd := range d.Relations {
			if _, clash := owner.fieldByName[rd.Name]; clash {
				l.fail(d.Name, rd.Name, "relation name clashes with a field")
				continue
			}
			if _, dup := owner.relByName[rd.Name]; dup {
				l.fail(d.Name, rd.Name, "relation declared twice")
				continue
			}
			target, ok := l.arena[rd.Target]
			if !ok {
				l.fail(d.Name, rd.Name, "unknown target entity %q", rd.Target)
				continue
			}
			r := &Relation{
				Name:       rd.Name,
				Kind:       rd.Kind,
				Owner:      owner,
				Target:     target,
				Fields:     append([]string(nil), rd.Fields...),
				References: append([]string(nil), rd.References...),
			}
			owner.relations = append(owner.relations, r)
			owner.relByName[r.Name] = r
		}
	}

	for _, d := range decls {
		owner := l.arena[d.Name]
		for _, rd := range d.Relations {
			r, ok := owner.relByName[rd.Name]
			if !ok || r.Owner != owner {
				continue
			}
			l.bindInverse(r, rd.Inverse)
		}
	}
}

func (l *linker) bindInverse(r *Relation, explicit string) {
	var candidates []*Relation
	for _, other := range r.Target.relations {
		if other == r || other.Target != r.Owner {
			continue
		}
		if explicit != "" && other.Name != explicit {
			continue
		}
		candidates = append(candidates, other)
	}

	switch len(candidates) {
	case 0:
		l.fail(r.Owner.Name, r.Name, "no inverse relation on %s", r.Target.Name)
	case 1:
		r.Inverse = candidates[0]
	default:
		l.fail(r.Owner.Name, r.Name, "ambiguous inverse relation on %s, name it explicitly", r.Target.Name)
	}
}

// check verifies foreign keys, keys and relevance lists.
func (l *linker) check(decls []EntityDecl) {
	for _, d := range decls {
		e := l.arena[d.Name]
		for _, r := range e.relations {
			l.checkRelation(e, r)
		}
		for _, k := range e.keys {
			for _, member := range k.Fields {
				f, ok := e.fieldByName[member]
				if !ok {
					l.fail(e.Name, k.Name, "unique key member %q is not a field", member)
					continue
				}
				if f.Type.List || f.Type.Kind == scalar.Json {
					l.fail(e.Name, k.Name, "unique key member %q has type %s", member, f.Type)
				}
			}
		}
		if len(e.keys) == 0 {
			l.fail(e.Name, "", "no unique key")
		}
		for _, name := range e.relevance {
			f, ok := e.fieldByName[name]
			if !ok {
				l.fail(e.Name, name, "relevance field is not a field")
				continue
			}
			if f.Type.Kind != scalar.String || f.Type.List {
				l.fail(e.Name, name, "relevance field must be a String, got %s", f.Type)
			}
		}
	}
}

func (l *linker) checkRelation(e *Entity, r *Relation) {
	inv := r.Inverse
	if inv.Inverse != r {
		l.fail(e.Name, r.Name, "inverse %s.%s points elsewhere", inv.Owner.Name, inv.Name)
		return
	}
	if r.Owning() == inv.Owning() {
		l.fail(e.Name, r.Name, "exactly one side of %s.%s must hold the foreign key", inv.Owner.Name, inv.Name)
		return
	}
	if !r.Owning() {
		return
	}
	if !r.ToOne() {
		l.fail(e.Name, r.Name, "only to-one relations can hold foreign keys")
		return
	}
	if len(r.Fields) != len(r.References) {
		l.fail(e.Name, r.Name, "%d fields reference %d target fields", len(r.Fields), len(r.References))
		return
	}

	referenced := false
	for _, k := range r.Target.keys {
		if sameMembers(k.Fields, r.References) {
			referenced = true
		}
	}
	if !referenced {
		l.fail(e.Name, r.Name, "references %v are not a unique key of %s", r.References, r.Target.Name)
	}

	for i, name := range r.Fields {
		f, ok := e.fieldByName[name]
		if !ok {
			l.fail(e.Name, r.Name, "foreign key %q is not a field", name)
			continue
		}
		ref, ok := r.Target.fieldByName[r.References[i]]
		if !ok {
			l.fail(e.Name, r.Name, "referenced field %q is not a field of %s", r.References[i], r.Target.Name)
			continue
		}
		if f.Type.Kind != ref.Type.Kind || f.Type.List {
			l.fail(e.Name, r.Name, "foreign key %q has type %s, %s.%s has %s", name, f.Type, r.Target.Name, ref.Name, ref.Type)
		}
		if f.Type.Nullable != r.Optional() {
			l.fail(e.Name, r.Name, "foreign key %q nullability must match relation kind %s", name, r.Kind)
		}
		if other, taken := e.foreignKeys[name]; taken {
			l.fail(e.Name, r.Name, "foreign key %q already implements %s", name, other.Name)
			continue
		}
		e.foreignKeys[name] = r
	}
}

func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	for _, y := range b {
		if !seen[y] {
			return false
		}
	}
	return true
}
