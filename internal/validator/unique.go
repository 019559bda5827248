package validator

import (
	"sort"
	"strings"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// WhereUnique validates a lookup that must identify at most one row of
// entity.
func (v *Validator) WhereUnique(entity string, input any) (*queryir.WhereUnique, error) {
	e, err := v.entity(entity)
	if err != nil {
		return nil, v.reject("whereUnique", entity, err)
	}
	u, err := v.whereUnique(e, input, nil)
	if err != nil {
		return nil, v.reject("whereUnique", entity, err)
	}
	return u, nil
}

// claim is a value a lookup assigns to a unique-key member.
type claim struct {
	value ir.IRValue
	path  verror.Path
	// raw is the original input of a flattened claim, replayed as a
	// refinement when the claim ends up outside every complete key.
	raw  any
	flat bool
}

// whereUnique resolves the unique keys a lookup supplies.
//
// Identity comes from named compound keys (`url_userId: {url, userId}`)
// and from bare or `{equals}` values on unique-key members. Every key whose
// members are all claimed is kept. A field claimed twice with different
// values, an incomplete named compound key, or a lookup with no complete
// key is an AmbiguousIdentity error. Everything else is a refinement
// filter.
func (v *Validator) whereUnique(e *schema.Entity, in any, path verror.Path) (*queryir.WhereUnique, error) {
	inputName := e.InputName("WhereUniqueInput")
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	claims := make(map[string]claim)
	addClaim := func(field string, c claim) error {
		if prev, ok := claims[field]; ok {
			if !ir.Equal(prev.value, c.value) {
				return verror.Ambiguous(c.path, "%s is identified as both %s and %s",
					field, describeValue(prev.value), describeValue(c.value))
			}
			if prev.flat && !c.flat {
				// The named key supersedes the flattened claim.
				claims[field] = c
			}
			return nil
		}
		claims[field] = c
		return nil
	}

	refine := make(map[string]any)
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)

		if k, ok := e.UniqueKey(key); ok && k.Compound() {
			if _, isField := e.Field(key); !isField {
				members, err := v.compoundKey(e, k, val, p)
				if err != nil {
					return nil, err
				}
				for _, fv := range members {
					if err := addClaim(fv.Field, claim{value: fv.Value, path: p.Key(fv.Field)}); err != nil {
						return nil, err
					}
				}
				continue
			}
		}

		if f, ok := e.Field(key); ok && isKeyMember(e, key) {
			if lit, ok := claimValue(val); ok {
				value, err := scalar.Literal(f.Type.NonNull(), lit, claimPath(val, p))
				if err != nil {
					return nil, err
				}
				if err := addClaim(key, claim{value: value, path: p, raw: val, flat: true}); err != nil {
					return nil, err
				}
				continue
			}
		}

		refine[key] = val
	}

	u := &queryir.WhereUnique{}
	used := make(map[string]bool)
	for _, k := range e.UniqueKeys() {
		complete := true
		for _, member := range k.Fields {
			if _, ok := claims[member]; !ok {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		match := queryir.KeyMatch{Name: k.Name, Compound: k.Compound()}
		for _, member := range k.Fields {
			match.Values = append(match.Values, queryir.FieldValue{Field: member, Value: claims[member].value})
			used[member] = true
		}
		u.Keys = append(u.Keys, match)
	}

	if len(u.Keys) == 0 {
		return nil, verror.Ambiguous(path, "%s needs at least one complete unique key: %s",
			inputName, strings.Join(keyNames(e), ", "))
	}
	sort.Slice(u.Keys, func(i, j int) bool { return u.Keys[i].Name < u.Keys[j].Name })

	for field, c := range claims {
		if !used[field] {
			refine[field] = c.raw
		}
	}
	if len(refine) > 0 {
		if u.Refine, err = v.where(e, refine, path, whereMode{}); err != nil {
			return nil, err
		}
	}
	return u, nil
}

// compoundKey validates the member object of a named compound key. Every
// member is required.
func (v *Validator) compoundKey(e *schema.Entity, k schema.UniqueKey, in any, path verror.Path) ([]queryir.FieldValue, error) {
	inputName := e.InputName(strings.ToUpper(k.Name[:1]) + k.Name[1:] + "CompoundUniqueInput")
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(obj) {
		if !k.Has(key) {
			return nil, verror.UnknownKey(path, key, inputName)
		}
	}

	values := make([]queryir.FieldValue, 0, len(k.Fields))
	for _, member := range k.Fields {
		val, ok := obj[member]
		if !ok {
			return nil, verror.Ambiguous(path, "compound key %s is missing %s", k.Name, member)
		}
		f, _ := e.Field(member)
		lit, err := scalar.Literal(f.Type.NonNull(), val, path.Key(member))
		if err != nil {
			return nil, err
		}
		values = append(values, queryir.FieldValue{Field: member, Value: lit})
	}
	return values, nil
}

// claimValue returns the literal of a bare value or of an object whose
// only operator is equals. Nulls never identify a row.
func claimValue(in any) (any, bool) {
	switch val := in.(type) {
	case nil, []any:
		return nil, false
	case map[string]any:
		eq, ok := val["equals"]
		if !ok || len(val) != 1 {
			return nil, false
		}
		switch eq.(type) {
		case nil, []any, map[string]any:
			return nil, false
		}
		return eq, true
	default:
		return val, true
	}
}

func claimPath(in any, path verror.Path) verror.Path {
	if _, ok := in.(map[string]any); ok {
		return path.Key("equals")
	}
	return path
}

func isKeyMember(e *schema.Entity, field string) bool {
	for _, k := range e.UniqueKeys() {
		if k.Has(field) {
			return true
		}
	}
	return false
}

func keyNames(e *schema.Entity) []string {
	keys := e.UniqueKeys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return names
}

func describeValue(v ir.IRValue) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return "?"
	}
	return string(b)
}
