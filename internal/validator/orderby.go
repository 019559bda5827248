package validator

import (
	"slices"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// orderMode selects the order language.
type orderMode struct {
	// by is non-nil in a group-by query: plain fields must be grouped and
	// aggregates may be ordered on; relations and relevance are not
	// available.
	by []string
}

func (m orderMode) grouped() bool {
	return m.by != nil
}

// OrderBy validates a sort specification over entity: one entry or an
// array of entries, each with exactly one key.
func (v *Validator) OrderBy(entity string, input any) ([]queryir.OrderBy, error) {
	e, err := v.entity(entity)
	if err != nil {
		return nil, v.reject("orderBy", entity, err)
	}
	orders, err := v.orderBy(e, input, nil, orderMode{})
	if err != nil {
		return nil, v.reject("orderBy", entity, err)
	}
	return orders, nil
}

func (v *Validator) orderBy(e *schema.Entity, in any, path verror.Path, mode orderMode) ([]queryir.OrderBy, error) {
	elems, paths := items(in, path)
	orders := make([]queryir.OrderBy, 0, len(elems))
	for i, elem := range elems {
		o, err := v.orderEntry(e, elem, paths[i], mode)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// orderEntry validates one `{key: ...}` entry.
func (v *Validator) orderEntry(e *schema.Entity, in any, path verror.Path, mode orderMode) (queryir.OrderBy, error) {
	inputName := e.InputName("OrderByInput")
	if mode.grouped() {
		inputName = e.InputName("OrderByWithAggregationInput")
	}
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, verror.Shape(path, "each %s entry needs exactly one key, got %d; use an array for several keys", inputName, len(obj))
	}

	var key string
	for k := range obj {
		key = k
	}
	val := obj[key]
	p := path.Key(key)

	if mode.grouped() && slices.Contains(queryir.AggregateFuncs, key) {
		return aggregateOrder(e, key, val, p)
	}

	if key == "_relevance" && len(e.Relevance()) > 0 && !mode.grouped() {
		return relevanceOrder(e, val, p)
	}

	if f, ok := e.Field(key); ok {
		if mode.grouped() && !slices.Contains(mode.by, key) {
			return nil, verror.Shape(p, "%s must appear in by to be ordered on", key)
		}
		return fieldOrder(f, val, p)
	}

	if r, ok := e.Relation(key); ok && !mode.grouped() {
		return v.relationOrder(r, val, p)
	}

	return nil, verror.UnknownKey(path, key, inputName)
}

// fieldOrder accepts `asc|desc` or `{sort, nulls?}`. nulls is only legal
// on nullable fields.
func fieldOrder(f *schema.Field, in any, path verror.Path) (queryir.OrderBy, error) {
	if !f.Type.Orderable() {
		return nil, verror.Shape(path, "field %s of type %s cannot be ordered on", f.Name, f.Type)
	}

	if _, ok := in.(map[string]any); !ok {
		sort, err := scalar.Enum(in, path, sortDirections)
		if err != nil {
			return nil, err
		}
		return queryir.FieldOrder{Field: f.Name, Sort: sort}, nil
	}

	obj := in.(map[string]any)
	o := queryir.FieldOrder{Field: f.Name}
	for _, key := range sortedKeys(obj) {
		p := path.Key(key)
		var err error
		switch key {
		case "sort":
			o.Sort, err = scalar.Enum(obj[key], p, sortDirections)
		case "nulls":
			if !f.Type.Nullable {
				return nil, verror.Shape(p, "nulls is only allowed on nullable fields, %s is %s", f.Name, f.Type)
			}
			o.Nulls, err = scalar.Enum(obj[key], p, nullPlacements)
		default:
			return nil, verror.UnknownKey(path, key, "SortOrderInput")
		}
		if err != nil {
			return nil, err
		}
	}
	if o.Sort == "" {
		return nil, verror.Shape(path, "sort is required")
	}
	return o, nil
}

// relationOrder orders through a to-one relation by one entry of the
// related entity, or by the row count of a to-many relation.
func (v *Validator) relationOrder(r *schema.Relation, in any, path verror.Path) (queryir.OrderBy, error) {
	if r.ToMany() {
		inputName := r.Target.InputName("OrderByRelationAggregateInput")
		obj, err := object(in, path, inputName)
		if err != nil {
			return nil, err
		}
		for _, key := range sortedKeys(obj) {
			if key == queryir.AggCount {
				continue
			}
			if _, isField := r.Target.Field(key); isField {
				return nil, verror.Cardinality(path.Key(key), "%s is a to-many relation and can only be ordered by _count", r.Name)
			}
			return nil, verror.UnknownKey(path, key, inputName)
		}
		countVal, ok := obj[queryir.AggCount]
		if !ok {
			return nil, verror.Shape(path, "%s requires _count", inputName)
		}
		sort, err := scalar.Enum(countVal, path.Key(queryir.AggCount), sortDirections)
		if err != nil {
			return nil, err
		}
		return queryir.RelationCountOrder{Relation: r.Name, Sort: sort}, nil
	}

	if obj, ok := in.(map[string]any); ok {
		if _, hasCount := obj[queryir.AggCount]; hasCount {
			if _, isField := r.Target.Field(queryir.AggCount); !isField {
				return nil, verror.Cardinality(path.Key(queryir.AggCount), "%s is a to-one relation and cannot be ordered by _count", r.Name)
			}
		}
	}

	inner, err := v.orderEntry(r.Target, in, path, orderMode{})
	if err != nil {
		return nil, err
	}
	return queryir.RelationOrder{Relation: r.Name, Order: inner}, nil
}

// relevanceOrder validates `{fields, sort, search}`. fields must come
// from the entity's relevance allow-list.
func relevanceOrder(e *schema.Entity, in any, path verror.Path) (queryir.OrderBy, error) {
	inputName := e.InputName("OrderByRelevanceInput")
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	o := queryir.RelevanceOrder{}
	seen := map[string]bool{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)
		switch key {
		case "fields":
			elems, paths := items(val, p)
			if len(elems) == 0 {
				return nil, verror.Shape(p, "at least one relevance field is required")
			}
			for i, elem := range elems {
				name, err := scalar.Enum(elem, paths[i], e.Relevance())
				if err != nil {
					return nil, err
				}
				if !seen[name] {
					seen[name] = true
					o.Fields = append(o.Fields, name)
				}
			}
		case "sort":
			if o.Sort, err = scalar.Enum(val, p, sortDirections); err != nil {
				return nil, err
			}
		case "search":
			s, ok := val.(string)
			if !ok {
				return nil, verror.Shape(p, "expected string, got %s", jsonType(val))
			}
			o.Search = s
		default:
			return nil, verror.UnknownKey(path, key, inputName)
		}
	}

	for _, required := range []string{"fields", "sort", "search"} {
		if _, ok := obj[required]; !ok {
			return nil, verror.Shape(path, "%s requires %s", inputName, required)
		}
	}
	return o, nil
}

// aggregateOrder validates `{_avg: {field: sort}}` in a group-by query.
func aggregateOrder(e *schema.Entity, fn string, in any, path verror.Path) (queryir.OrderBy, error) {
	inputName := e.InputName(aggregateInputName(fn) + "OrderByAggregateInput")
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}
	if len(obj) != 1 {
		return nil, verror.Shape(path, "%s needs exactly one field, got %d", inputName, len(obj))
	}

	var field string
	for k := range obj {
		field = k
	}
	p := path.Key(field)
	f, ok := e.Field(field)
	if !ok {
		return nil, verror.UnknownKey(path, field, inputName)
	}
	if err := aggregateApplies(fn, f, p); err != nil {
		return nil, err
	}
	sort, err := scalar.Enum(obj[field], p, sortDirections)
	if err != nil {
		return nil, err
	}
	return queryir.AggregateOrder{Aggregate: fn, Field: field, Sort: sort}, nil
}
