package queryir

import "github.com/roach88/querygate/internal/ir"

// FieldValue assigns a literal to a field.
type FieldValue struct {
	Field string
	Value ir.IRValue
}

// KeyMatch is one complete unique key of a lookup.
//
// For a single-field key Name is the field name and Values has one
// element. For a compound key Name is the key name (e.g. "url_userId") and
// Values holds every member in declaration order.
type KeyMatch struct {
	Name     string
	Compound bool
	Values   []FieldValue
}

// Value returns the value the key assigns to field.
func (k KeyMatch) Value(field string) (ir.IRValue, bool) {
	for _, fv := range k.Values {
		if fv.Field == field {
			return fv.Value, true
		}
	}
	return nil, false
}

// WhereUnique is a lookup that identifies at most one row.
//
// Keys holds at least one complete unique key, sorted by name. When
// several keys are present they never assign different values to the same
// field. Refine carries the remaining filter conditions, which narrow the
// match further without contributing to identity.
type WhereUnique struct {
	Keys   []KeyMatch
	Refine *Where
}

// Key returns the key match named name.
func (u *WhereUnique) Key(name string) (KeyMatch, bool) {
	for _, k := range u.Keys {
		if k.Name == name {
			return k, true
		}
	}
	return KeyMatch{}, false
}

// Wire renders the canonical input shape. Compound keys always appear
// under their key name.
func (u *WhereUnique) Wire() any {
	m := map[string]any{}
	u.Refine.wireInto(m)
	for _, k := range u.Keys {
		if !k.Compound {
			m[k.Name] = ir.Wire(k.Values[0].Value)
			continue
		}
		members := make(map[string]any, len(k.Values))
		for _, fv := range k.Values {
			members[fv.Field] = ir.Wire(fv.Value)
		}
		m[k.Name] = members
	}
	return m
}
