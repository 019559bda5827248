package validator

import (
	"fmt"
	"slices"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// nesting describes where a payload sits. back is the relation of the
// payload's entity that points at the enclosing write, nil at the top.
// scalarOnly payloads (createMany rows, updateMany data) take no nested
// relation writes.
type nesting struct {
	back       *schema.Relation
	scalarOnly bool
}

func (n nesting) createName(e *schema.Entity) string {
	switch {
	case n.back != nil && n.scalarOnly:
		return e.InputName(fmt.Sprintf("CreateManyWithout%sInput", capitalize(n.back.Name)))
	case n.back != nil:
		return e.InputName(fmt.Sprintf("CreateWithout%sInput", capitalize(n.back.Name)))
	case n.scalarOnly:
		return e.InputName("CreateManyInput")
	default:
		return e.InputName("CreateInput")
	}
}

func (n nesting) updateName(e *schema.Entity) string {
	switch {
	case n.back != nil && n.scalarOnly:
		return e.InputName(fmt.Sprintf("UpdateManyWithout%sInput", capitalize(n.back.Name)))
	case n.back != nil:
		return e.InputName(fmt.Sprintf("UpdateWithout%sInput", capitalize(n.back.Name)))
	case n.scalarOnly:
		return e.InputName("UpdateManyMutationInput")
	default:
		return e.InputName("UpdateInput")
	}
}

// implied rejects keys that the enclosing write already determines: the
// back relation itself and the foreign keys that implement it.
func (n nesting) implied(key string, path verror.Path) error {
	if n.back == nil {
		return nil
	}
	if key == n.back.Name {
		return verror.Contradiction(path.Key(key), "%s is implied by the enclosing %s write", key, n.back.Target.Name)
	}
	if n.back.Owning() {
		for _, fk := range n.back.Fields {
			if fk == key {
				return verror.Contradiction(path.Key(key), "%s is implied by the enclosing %s write through %s", key, n.back.Target.Name, n.back.Name)
			}
		}
	}
	return nil
}

// createData validates a create payload.
//
// Scalars go through the write-context rules of their type. A relation
// may be written through its foreign-key fields or through a nested
// write, not both, except for a connect naming the same row, which
// normalizes to the nested form.
func (v *Validator) createData(e *schema.Entity, in any, path verror.Path, n nesting) (*queryir.CreateData, error) {
	inputName := n.createName(e)
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	d := &queryir.CreateData{}
	assigned := map[string]ir.IRValue{}
	for _, key := range sortedKeys(obj) {
		if err := n.implied(key, path); err != nil {
			return nil, err
		}
		val := obj[key]
		p := path.Key(key)

		if f, ok := e.Field(key); ok {
			lit, err := scalar.WriteValue(f.Type, val, p)
			if err != nil {
				return nil, err
			}
			assigned[key] = lit
			continue
		}
		if r, ok := e.Relation(key); ok && !n.scalarOnly {
			rw, err := v.relationWrite(r, val, p, createWrite)
			if err != nil {
				return nil, err
			}
			d.Relations = append(d.Relations, rw)
			continue
		}
		return nil, verror.UnknownKey(path, key, inputName)
	}

	drop, err := foreignKeyConflicts(e, assigned, d.Relations, path)
	if err != nil {
		return nil, err
	}
	for _, key := range sortedKeys(anyMap(assigned)) {
		if !drop[key] {
			d.Fields = append(d.Fields, queryir.FieldValue{Field: key, Value: assigned[key]})
		}
	}

	for _, f := range e.Fields() {
		if !f.RequiredOnCreate() {
			continue
		}
		if _, ok := d.Field(f.Name); ok {
			continue
		}
		if r, ok := e.ForeignKeyRelation(f.Name); ok {
			if r == n.back {
				continue
			}
			if rw, ok := d.Relation(r.Name); ok && links(rw) {
				continue
			}
			return nil, verror.Shape(path.Key(f.Name), "%s requires %s or a nested %s write", inputName, f.Name, r.Name)
		}
		return nil, verror.Shape(path.Key(f.Name), "%s requires field %s", inputName, f.Name)
	}
	return d, nil
}

// links reports whether a nested write supplies the related row.
func links(rw queryir.RelationWrite) bool {
	for _, name := range []string{queryir.OpNameCreate, queryir.OpNameConnect, queryir.OpNameConnectOrCreate} {
		if _, ok := rw.Op(name); ok {
			return true
		}
	}
	return false
}

// foreignKeyConflicts checks every owning relation written both through
// foreign-key fields and a nested write. The only consistent combination
// is a single connect whose key names the same row; its foreign-key
// fields are returned for removal.
func foreignKeyConflicts(e *schema.Entity, assigned map[string]ir.IRValue, rws []queryir.RelationWrite, path verror.Path) (map[string]bool, error) {
	drop := map[string]bool{}
	for _, rw := range rws {
		r, _ := e.Relation(rw.Relation)
		if !r.Owning() {
			continue
		}
		var present []string
		for _, fk := range r.Fields {
			if _, ok := assigned[fk]; ok {
				present = append(present, fk)
			}
		}
		if len(present) == 0 {
			continue
		}
		if !sameRow(r, assigned, rw) {
			return nil, verror.Contradiction(path.Key(present[0]),
				"%s is set both directly and through the nested %s write", present[0], r.Name)
		}
		for _, fk := range present {
			drop[fk] = true
		}
	}
	return drop, nil
}

// sameRow reports whether rw is a lone connect whose unique key assigns
// every referenced field the value held by the matching foreign key.
func sameRow(r *schema.Relation, assigned map[string]ir.IRValue, rw queryir.RelationWrite) bool {
	if len(rw.Ops) != 1 {
		return false
	}
	connect, ok := rw.Ops[0].(queryir.NestedConnect)
	if !ok || len(connect.Where) != 1 {
		return false
	}
	u := connect.Where[0]
	for i, fk := range r.Fields {
		local, ok := assigned[fk]
		if !ok {
			return false
		}
		matched := false
		for _, k := range u.Keys {
			if val, ok := k.Value(r.References[i]); ok {
				if !ir.Equal(local, val) {
					return false
				}
				matched = true
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// updateData validates an update payload. Every field is optional and
// every scalar update normalizes to operator form.
func (v *Validator) updateData(e *schema.Entity, in any, path verror.Path, n nesting) (*queryir.UpdateData, error) {
	inputName := n.updateName(e)
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	d := &queryir.UpdateData{}
	var updates []queryir.FieldUpdate
	assigned := map[string]ir.IRValue{}
	for _, key := range sortedKeys(obj) {
		if err := n.implied(key, path); err != nil {
			return nil, err
		}
		val := obj[key]
		p := path.Key(key)

		if f, ok := e.Field(key); ok {
			fu, err := fieldUpdate(f, val, p)
			if err != nil {
				return nil, err
			}
			updates = append(updates, fu)
			if fu.Operator == queryir.OpSet {
				assigned[key] = fu.Value
			} else {
				assigned[key] = nil
			}
			continue
		}
		if r, ok := e.Relation(key); ok && !n.scalarOnly {
			rw, err := v.relationWrite(r, val, p, updateWrite)
			if err != nil {
				return nil, err
			}
			d.Relations = append(d.Relations, rw)
			continue
		}
		return nil, verror.UnknownKey(path, key, inputName)
	}

	drop, err := foreignKeyConflicts(e, assigned, d.Relations, path)
	if err != nil {
		return nil, err
	}
	for _, fu := range updates {
		if !drop[fu.Field] {
			d.Fields = append(d.Fields, fu)
		}
	}
	return d, nil
}

var numericOperators = []queryir.Operator{queryir.OpIncrement, queryir.OpDecrement, queryir.OpMultiply, queryir.OpDivide}

// fieldUpdate validates the update of one scalar field: a bare value, or
// an object with exactly one operator.
//
// Json columns take any bare document. The operator form applies to them
// only when the object's single key is set, so a document that is itself
// `{set: ...}` must be wrapped.
func fieldUpdate(f *schema.Field, in any, path verror.Path) (queryir.FieldUpdate, error) {
	fu := queryir.FieldUpdate{Field: f.Name, Operator: queryir.OpSet}
	obj, isObj := in.(map[string]any)

	if f.Type.Kind == scalar.Json && !f.Type.List {
		if setVal, ok := obj["set"]; isObj && ok && len(obj) == 1 {
			in = setVal
		}
		val, err := scalar.WriteValue(f.Type, in, path)
		fu.Value = val
		return fu, err
	}

	if !isObj {
		val, err := scalar.WriteValue(f.Type, in, path)
		fu.Value = val
		return fu, err
	}

	allowed := []string{string(queryir.OpSet)}
	switch {
	case f.Type.List:
		allowed = append(allowed, string(queryir.OpPush))
	case f.Type.Kind.Numeric():
		for _, op := range numericOperators {
			allowed = append(allowed, string(op))
		}
	}

	inputName := fmt.Sprintf("%sFieldUpdateOperationsInput", f.Type.Kind)
	switch len(obj) {
	case 0:
		return fu, verror.Shape(path, "%s needs exactly one operator", inputName)
	case 1:
	default:
		keys := sortedKeys(obj)
		return fu, verror.Contradiction(path.Key(keys[1]), "%s and %s cannot both apply to %s", keys[0], keys[1], f.Name)
	}

	key := sortedKeys(obj)[0]
	p := path.Key(key)
	if !slices.Contains(allowed, key) {
		return fu, verror.UnknownKey(path, key, inputName)
	}
	fu.Operator = queryir.Operator(key)

	var err error
	switch fu.Operator {
	case queryir.OpSet:
		fu.Value, err = scalar.WriteValue(f.Type, obj[key], p)
	case queryir.OpPush:
		var elems []ir.IRValue
		elems, err = scalar.ListLiteral(f.Type.Element(), obj[key], p, true)
		fu.Value = ir.IRArray(elems)
	default:
		fu.Value, err = scalar.Literal(f.Type.NonNull(), obj[key], p)
		if err == nil && fu.Operator == queryir.OpDivide && isZero(fu.Value) {
			err = verror.Shape(p, "division by zero")
		}
	}
	return fu, err
}

func isZero(v ir.IRValue) bool {
	switch n := v.(type) {
	case ir.IRInt:
		return n == 0
	case ir.IRFloat:
		return n == 0
	default:
		return false
	}
}

func anyMap(m map[string]ir.IRValue) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
