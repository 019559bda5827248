package validator

import (
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

var (
	toOneFilterKeys  = map[string]bool{"is": true, "isNot": true}
	toManyFilterKeys = map[string]bool{"every": true, "some": true, "none": true}
)

// relationFilter validates the filter of a relation field.
func (v *Validator) relationFilter(r *schema.Relation, in any, path verror.Path) (queryir.Condition, error) {
	if r.ToMany() {
		return v.toManyFilter(r, in, path)
	}
	return v.toOneFilter(r, in, path)
}

// toManyFilter accepts {every?, some?, none?}. The to-one keys is and
// isNot are a cardinality mismatch.
func (v *Validator) toManyFilter(r *schema.Relation, in any, path verror.Path) (*queryir.ToManyFilter, error) {
	inputName := r.Target.InputName("ListRelationFilter")
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	f := &queryir.ToManyFilter{}
	for _, key := range sortedKeys(obj) {
		p := path.Key(key)
		if toOneFilterKeys[key] {
			return nil, verror.Cardinality(p, "%s is a to-many relation; use every, some or none instead of %s", r.Name, key)
		}
		if !toManyFilterKeys[key] {
			return nil, verror.UnknownKey(path, key, inputName)
		}

		w, err := v.where(r.Target, obj[key], p, whereMode{})
		if err != nil {
			return nil, err
		}
		switch key {
		case "every":
			f.Every = w
		case "some":
			f.Some = w
		case "none":
			f.None = w
		}
	}
	return f, nil
}

// toOneFilter accepts {is?, isNot?}, a bare filter of the related entity
// as shorthand for {is: filter}, and null on optional relations as
// shorthand for {is: null}.
func (v *Validator) toOneFilter(r *schema.Relation, in any, path verror.Path) (*queryir.ToOneFilter, error) {
	inputName := r.Target.InputName("RelationFilter")
	if in == nil {
		if !r.Optional() {
			return nil, verror.Shape(path, "relation %s is required and cannot be null", r.Name)
		}
		return &queryir.ToOneFilter{IsNull: true}, nil
	}

	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	explicit := len(obj) > 0
	for _, key := range sortedKeys(obj) {
		if toManyFilterKeys[key] {
			return nil, verror.Cardinality(path.Key(key), "%s is a to-one relation; use is or isNot instead of %s", r.Name, key)
		}
		if !toOneFilterKeys[key] {
			explicit = false
		}
	}

	if !explicit {
		w, err := v.where(r.Target, obj, path, whereMode{})
		if err != nil {
			return nil, err
		}
		return &queryir.ToOneFilter{Is: w}, nil
	}

	f := &queryir.ToOneFilter{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)

		if val == nil {
			if !r.Optional() {
				return nil, verror.Shape(p, "relation %s is required and cannot be null", r.Name)
			}
			if key == "is" {
				f.IsNull = true
			} else {
				f.IsNotNull = true
			}
			continue
		}

		w, err := v.where(r.Target, val, p, whereMode{})
		if err != nil {
			return nil, err
		}
		if key == "is" {
			f.Is = w
		} else {
			f.IsNot = w
		}
	}
	return f, nil
}
