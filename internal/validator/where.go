package validator

import (
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// whereMode selects the filter language of a where tree.
type whereMode struct {
	// scalarOnly rejects relation fields: nested updateMany and deleteMany
	// filters and having clauses only see the entity's own columns.
	scalarOnly bool
	// aggregates enables aggregate sub-filters on scalar fields.
	aggregates bool
}

func (m whereMode) inputName(e *schema.Entity) string {
	switch {
	case m.aggregates:
		return e.InputName("ScalarWhereWithAggregatesInput")
	case m.scalarOnly:
		return e.InputName("ScalarWhereInput")
	default:
		return e.InputName("WhereInput")
	}
}

// Where validates a filter over entity.
func (v *Validator) Where(entity string, input any) (*queryir.Where, error) {
	e, err := v.entity(entity)
	if err != nil {
		return nil, v.reject("where", entity, err)
	}
	w, err := v.where(e, input, nil, whereMode{})
	if err != nil {
		return nil, v.reject("where", entity, err)
	}
	return w, nil
}

// where validates a composite boolean filter.
//
// AND and NOT accept one filter or an array; OR requires an array. Every
// other key is a scalar field or a relation of e.
func (v *Validator) where(e *schema.Entity, in any, path verror.Path, mode whereMode) (*queryir.Where, error) {
	obj, err := object(in, path, mode.inputName(e))
	if err != nil {
		return nil, err
	}

	w := &queryir.Where{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)

		switch key {
		case "AND":
			if w.AND, err = v.whereGroup(e, val, p, mode, false); err != nil {
				return nil, err
			}
			continue
		case "OR":
			if w.OR, err = v.whereGroup(e, val, p, mode, true); err != nil {
				return nil, err
			}
			continue
		case "NOT":
			if w.NOT, err = v.whereGroup(e, val, p, mode, false); err != nil {
				return nil, err
			}
			continue
		}

		if f, ok := e.Field(key); ok {
			cond, err := scalar.Filter(f.Type, val, p, scalar.Options{Aggregates: mode.aggregates})
			if err != nil {
				return nil, err
			}
			w.Fields = append(w.Fields, queryir.FieldFilter{Field: key, Condition: cond})
			continue
		}

		if r, ok := e.Relation(key); ok && !mode.scalarOnly {
			cond, err := v.relationFilter(r, val, p)
			if err != nil {
				return nil, err
			}
			w.Fields = append(w.Fields, queryir.FieldFilter{Field: key, Condition: cond})
			continue
		}

		return nil, verror.UnknownKey(path, key, mode.inputName(e))
	}
	return w, nil
}

// whereGroup validates the members of AND, OR or NOT. The result is never
// nil, so an empty array stays distinguishable from an absent group.
func (v *Validator) whereGroup(e *schema.Entity, in any, path verror.Path, mode whereMode, arrayOnly bool) ([]*queryir.Where, error) {
	if _, isArray := in.([]any); !isArray && arrayOnly {
		return nil, verror.Shape(path, "expected an array of %s, got %s", mode.inputName(e), jsonType(in))
	}

	elems, paths := items(in, path)
	group := make([]*queryir.Where, 0, len(elems))
	for i, elem := range elems {
		w, err := v.where(e, elem, paths[i], mode)
		if err != nil {
			return nil, err
		}
		group = append(group, w)
	}
	return group, nil
}
