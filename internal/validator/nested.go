package validator

import (
	"fmt"
	"slices"

	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// writeMode distinguishes nested writes inside a create payload from
// those inside an update payload.
type writeMode int

const (
	createWrite writeMode = iota
	updateWrite
)

// nestedOps lists the operations available per mode. The to-many-only
// operations are rejected on to-one relations as cardinality mismatches.
var (
	createOps     = []string{queryir.OpNameConnect, queryir.OpNameConnectOrCreate, queryir.OpNameCreate, queryir.OpNameCreateMany}
	updateOps     = []string{queryir.OpNameConnect, queryir.OpNameConnectOrCreate, queryir.OpNameCreate, queryir.OpNameCreateMany, queryir.OpNameDelete, queryir.OpNameDeleteMany, queryir.OpNameDisconnect, queryir.OpNameSet, queryir.OpNameUpdate, queryir.OpNameUpdateMany, queryir.OpNameUpsert}
	toManyOnlyOps = []string{queryir.OpNameCreateMany, queryir.OpNameDeleteMany, queryir.OpNameSet, queryir.OpNameUpdateMany}
)

func (m writeMode) ops() []string {
	if m == updateWrite {
		return updateOps
	}
	return createOps
}

func nestedInputName(r *schema.Relation, m writeMode) string {
	verb, card := "Create", "One"
	if m == updateWrite {
		verb = "Update"
	}
	if r.ToMany() {
		card = "Many"
	}
	return fmt.Sprintf("%s%sNested%sWithout%sInput", r.Target.Name, verb, card, capitalize(r.Inverse.Name))
}

// relationWrite validates the nested operations applied to relation r.
// A to-one relation takes at most one operation.
func (v *Validator) relationWrite(r *schema.Relation, in any, path verror.Path, m writeMode) (queryir.RelationWrite, error) {
	rw := queryir.RelationWrite{Relation: r.Name, Many: r.ToMany()}
	inputName := nestedInputName(r, m)
	obj, err := object(in, path, inputName)
	if err != nil {
		return rw, err
	}

	keys := sortedKeys(obj)
	for _, key := range keys {
		if !slices.Contains(m.ops(), key) {
			return rw, verror.UnknownKey(path, key, inputName)
		}
		if r.ToOne() && slices.Contains(toManyOnlyOps, key) {
			return rw, verror.Cardinality(path.Key(key), "%s is a to-one relation and does not take %s", r.Name, key)
		}
	}
	if r.ToOne() && len(keys) > 1 {
		return rw, verror.Contradiction(path.Key(keys[1]), "%s and %s cannot both apply to the single %s row", keys[0], keys[1], r.Name)
	}

	rw.Ops = make([]queryir.RelationOp, 0, len(keys))
	for _, key := range keys {
		op, err := v.nestedOp(r, key, obj[key], path.Key(key))
		if err != nil {
			return rw, err
		}
		rw.Ops = append(rw.Ops, op)
	}
	return rw, nil
}

func (v *Validator) nestedOp(r *schema.Relation, name string, in any, path verror.Path) (queryir.RelationOp, error) {
	switch name {
	case queryir.OpNameCreate:
		return v.nestedCreate(r, in, path)
	case queryir.OpNameCreateMany:
		return v.nestedCreateMany(r, in, path)
	case queryir.OpNameConnect:
		uniques, err := v.uniques(r, in, path)
		return queryir.NestedConnect{Where: uniques}, err
	case queryir.OpNameConnectOrCreate:
		return v.nestedConnectOrCreate(r, in, path)
	case queryir.OpNameUpsert:
		return v.nestedUpsert(r, in, path)
	case queryir.OpNameUpdate:
		return v.nestedUpdate(r, in, path)
	case queryir.OpNameUpdateMany:
		return v.nestedUpdateMany(r, in, path)
	case queryir.OpNameDelete:
		enabled, filter, uniques, err := v.nestedRemove(r, name, in, path)
		return queryir.NestedDelete{Enabled: enabled, Filter: filter, Where: uniques}, err
	case queryir.OpNameDisconnect:
		enabled, filter, uniques, err := v.nestedRemove(r, name, in, path)
		return queryir.NestedDisconnect{Enabled: enabled, Filter: filter, Where: uniques}, err
	case queryir.OpNameDeleteMany:
		return v.nestedDeleteMany(r, in, path)
	default: // set
		uniques, err := v.uniques(r, in, path)
		return queryir.NestedSet{Where: uniques}, err
	}
}

// spread yields the elements of a to-many operation (one element or an
// array) or the single element of a to-one operation.
func spread(r *schema.Relation, in any, path verror.Path) ([]any, []verror.Path) {
	if r.ToMany() {
		return items(in, path)
	}
	return []any{in}, []verror.Path{path}
}

func childNesting(r *schema.Relation, scalarOnly bool) nesting {
	return nesting{back: r.Inverse, scalarOnly: scalarOnly}
}

func (v *Validator) nestedCreate(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	elems, paths := spread(r, in, path)
	op := queryir.NestedCreate{Data: make([]*queryir.CreateData, 0, len(elems))}
	for i, elem := range elems {
		d, err := v.createData(r.Target, elem, paths[i], childNesting(r, false))
		if err != nil {
			return nil, err
		}
		op.Data = append(op.Data, d)
	}
	return op, nil
}

func (v *Validator) nestedCreateMany(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	inputName := r.Target.InputName(fmt.Sprintf("CreateManyWithout%sInputEnvelope", capitalize(r.Inverse.Name)))
	obj, err := envelope(in, path, inputName, []string{"data"}, "data", "skipDuplicates")
	if err != nil {
		return nil, err
	}
	op := queryir.NestedCreateMany{}
	elems, paths := items(obj["data"], path.Key("data"))
	op.Data = make([]*queryir.CreateData, 0, len(elems))
	for i, elem := range elems {
		d, err := v.createData(r.Target, elem, paths[i], childNesting(r, true))
		if err != nil {
			return nil, err
		}
		op.Data = append(op.Data, d)
	}
	if val, ok := obj["skipDuplicates"]; ok {
		b, err := boolean(val, path.Key("skipDuplicates"))
		if err != nil {
			return nil, err
		}
		op.SkipDuplicates = &b
	}
	return op, nil
}

// uniques validates the unique lookups of connect and set.
func (v *Validator) uniques(r *schema.Relation, in any, path verror.Path) ([]*queryir.WhereUnique, error) {
	elems, paths := spread(r, in, path)
	out := make([]*queryir.WhereUnique, 0, len(elems))
	for i, elem := range elems {
		u, err := v.whereUnique(r.Target, elem, paths[i])
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (v *Validator) nestedConnectOrCreate(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	inputName := r.Target.InputName(fmt.Sprintf("CreateOrConnectWithout%sInput", capitalize(r.Inverse.Name)))
	elems, paths := spread(r, in, path)
	op := queryir.NestedConnectOrCreate{Items: make([]queryir.ConnectOrCreateItem, 0, len(elems))}
	for i, elem := range elems {
		obj, err := envelope(elem, paths[i], inputName, []string{"where", "create"}, "where", "create")
		if err != nil {
			return nil, err
		}
		var item queryir.ConnectOrCreateItem
		if item.Where, err = v.whereUnique(r.Target, obj["where"], paths[i].Key("where")); err != nil {
			return nil, err
		}
		if item.Create, err = v.createData(r.Target, obj["create"], paths[i].Key("create"), childNesting(r, false)); err != nil {
			return nil, err
		}
		op.Items = append(op.Items, item)
	}
	return op, nil
}

// nestedUpsert validates upserts. To-many items identify the row with a
// unique lookup; the single to-one item may narrow it with a filter.
func (v *Validator) nestedUpsert(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	inputName := r.Target.InputName(fmt.Sprintf("UpsertWithout%sInput", capitalize(r.Inverse.Name)))
	required := []string{"create", "update"}
	if r.ToMany() {
		required = append(required, "where")
	}
	elems, paths := spread(r, in, path)
	op := queryir.NestedUpsert{Items: make([]queryir.UpsertItem, 0, len(elems))}
	for i, elem := range elems {
		p := paths[i]
		obj, err := envelope(elem, p, inputName, required, "where", "create", "update")
		if err != nil {
			return nil, err
		}
		var item queryir.UpsertItem
		if whereVal, ok := obj["where"]; ok {
			if r.ToMany() {
				item.Unique, err = v.whereUnique(r.Target, whereVal, p.Key("where"))
			} else {
				item.Filter, err = v.where(r.Target, whereVal, p.Key("where"), whereMode{})
			}
			if err != nil {
				return nil, err
			}
		}
		if item.Create, err = v.createData(r.Target, obj["create"], p.Key("create"), childNesting(r, false)); err != nil {
			return nil, err
		}
		if item.Update, err = v.updateData(r.Target, obj["update"], p.Key("update"), childNesting(r, false)); err != nil {
			return nil, err
		}
		op.Items = append(op.Items, item)
	}
	return op, nil
}

// nestedUpdate validates updates. A to-one update is bare data, or
// `{data, where?}` when it carries data and nothing else.
func (v *Validator) nestedUpdate(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	child := childNesting(r, false)
	if r.ToOne() {
		var item queryir.UpdateItem
		var err error
		obj, isObj := in.(map[string]any)
		if isObj && wrappedUpdate(obj) {
			if whereVal, ok := obj["where"]; ok {
				if item.Filter, err = v.where(r.Target, whereVal, path.Key("where"), whereMode{}); err != nil {
					return nil, err
				}
			}
			item.Data, err = v.updateData(r.Target, obj["data"], path.Key("data"), child)
		} else {
			item.Data, err = v.updateData(r.Target, in, path, child)
		}
		if err != nil {
			return nil, err
		}
		return queryir.NestedUpdate{Items: []queryir.UpdateItem{item}}, nil
	}

	inputName := r.Target.InputName(fmt.Sprintf("UpdateWithWhereUniqueWithout%sInput", capitalize(r.Inverse.Name)))
	elems, paths := items(in, path)
	op := queryir.NestedUpdate{Items: make([]queryir.UpdateItem, 0, len(elems))}
	for i, elem := range elems {
		obj, err := envelope(elem, paths[i], inputName, []string{"where", "data"}, "where", "data")
		if err != nil {
			return nil, err
		}
		var item queryir.UpdateItem
		if item.Unique, err = v.whereUnique(r.Target, obj["where"], paths[i].Key("where")); err != nil {
			return nil, err
		}
		if item.Data, err = v.updateData(r.Target, obj["data"], paths[i].Key("data"), child); err != nil {
			return nil, err
		}
		op.Items = append(op.Items, item)
	}
	return op, nil
}

func wrappedUpdate(obj map[string]any) bool {
	if _, ok := obj["data"]; !ok {
		return false
	}
	for key := range obj {
		if key != "data" && key != "where" {
			return false
		}
	}
	return true
}

func (v *Validator) nestedUpdateMany(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	inputName := r.Target.InputName(fmt.Sprintf("UpdateManyWithWhereWithout%sInput", capitalize(r.Inverse.Name)))
	elems, paths := items(in, path)
	op := queryir.NestedUpdateMany{Items: make([]queryir.UpdateManyItem, 0, len(elems))}
	for i, elem := range elems {
		obj, err := envelope(elem, paths[i], inputName, []string{"where", "data"}, "where", "data")
		if err != nil {
			return nil, err
		}
		var item queryir.UpdateManyItem
		if item.Where, err = v.where(r.Target, obj["where"], paths[i].Key("where"), whereMode{scalarOnly: true}); err != nil {
			return nil, err
		}
		if item.Data, err = v.updateData(r.Target, obj["data"], paths[i].Key("data"), childNesting(r, true)); err != nil {
			return nil, err
		}
		op.Items = append(op.Items, item)
	}
	return op, nil
}

// nestedRemove validates delete and disconnect. On a to-one relation the
// value is a boolean or a filter on the related row; a required relation
// cannot lose its row. On a to-many relation it is a list of unique
// lookups.
func (v *Validator) nestedRemove(r *schema.Relation, name string, in any, path verror.Path) (bool, *queryir.Where, []*queryir.WhereUnique, error) {
	if r.ToMany() {
		uniques, err := v.uniques(r, in, path)
		return false, nil, uniques, err
	}
	if !r.Optional() {
		return false, nil, nil, verror.Shape(path, "%s cannot %s the row of required relation %s", r.Owner.Name, name, r.Name)
	}
	if b, ok := in.(bool); ok {
		return b, nil, nil, nil
	}
	filter, err := v.where(r.Target, in, path, whereMode{})
	return false, filter, nil, err
}

func (v *Validator) nestedDeleteMany(r *schema.Relation, in any, path verror.Path) (queryir.RelationOp, error) {
	elems, paths := items(in, path)
	op := queryir.NestedDeleteMany{Where: make([]*queryir.Where, 0, len(elems))}
	for i, elem := range elems {
		w, err := v.where(r.Target, elem, paths[i], whereMode{scalarOnly: true})
		if err != nil {
			return nil, err
		}
		op.Where = append(op.Where, w)
	}
	return op, nil
}
