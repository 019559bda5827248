package validator

import (
	"strings"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// Selection kinds.
const (
	selectKind  = "select"
	includeKind = "include"
)

var toManyArgKeys = map[string]bool{
	"where": true, "orderBy": true, "cursor": true, "take": true, "skip": true, "distinct": true,
}

// selections validates the select and include keys of an envelope. The
// two are mutually exclusive at one level.
func (v *Validator) selections(e *schema.Entity, obj map[string]any, path verror.Path) (sel, inc *queryir.Selection, err error) {
	selVal, hasSelect := obj[selectKind]
	incVal, hasInclude := obj[includeKind]
	if hasSelect && hasInclude {
		return nil, nil, verror.Shape(path.Key(includeKind), "select and include cannot be used together")
	}
	if hasSelect {
		sel, err = v.selection(e, selVal, path.Key(selectKind), selectKind)
	}
	if hasInclude {
		inc, err = v.selection(e, incVal, path.Key(includeKind), includeKind)
	}
	return sel, inc, err
}

// selection validates a select or include tree. A select names scalar
// fields and relations; an include only relations. Both accept `_count`.
func (v *Validator) selection(e *schema.Entity, in any, path verror.Path, kind string) (*queryir.Selection, error) {
	inputName := e.InputName("Select")
	if kind == includeKind {
		inputName = e.InputName("Include")
	}
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	s := &queryir.Selection{Items: make([]queryir.SelectItem, 0, len(obj))}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)

		if key == queryir.AggCount {
			item, err := v.countSelection(e, val, p)
			if err != nil {
				return nil, err
			}
			s.Items = append(s.Items, item)
			continue
		}

		if _, ok := e.Field(key); ok && kind == selectKind {
			enabled, err := boolean(val, p)
			if err != nil {
				return nil, err
			}
			s.Items = append(s.Items, queryir.SelectItem{Name: key, Enabled: enabled})
			continue
		}

		if r, ok := e.Relation(key); ok {
			item := queryir.SelectItem{Name: key}
			if b, isBool := val.(bool); isBool {
				item.Enabled = b
			} else {
				args, err := v.relationArgs(r, val, p)
				if err != nil {
					return nil, err
				}
				item.Enabled = true
				item.Args = args
			}
			s.Items = append(s.Items, item)
			continue
		}

		return nil, verror.UnknownKey(path, key, inputName)
	}
	return s, nil
}

// relationArgs validates the nested arguments of a selected relation.
// To-one relations only take select and include.
func (v *Validator) relationArgs(r *schema.Relation, in any, path verror.Path) (*queryir.RelationArgs, error) {
	inputName := r.Target.InputName("DefaultArgs")
	if r.ToMany() {
		inputName = r.Owner.InputName(capitalize(r.Name) + "Args")
	}
	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	for _, key := range sortedKeys(obj) {
		if key == selectKind || key == includeKind {
			continue
		}
		if toManyArgKeys[key] {
			if !r.ToMany() {
				return nil, verror.Cardinality(path.Key(key), "%s is a to-one relation and does not take %s", r.Name, key)
			}
			continue
		}
		return nil, verror.UnknownKey(path, key, inputName)
	}

	a := &queryir.RelationArgs{}
	if a.Select, a.Include, err = v.selections(r.Target, obj, path); err != nil {
		return nil, err
	}
	if !r.ToMany() {
		return a, nil
	}

	page, err := v.paging(r.Target, obj, path)
	if err != nil {
		return nil, err
	}
	a.Where, a.OrderBy, a.Cursor, a.Take, a.Skip, a.Distinct = page.where, page.orderBy, page.cursor, page.take, page.skip, page.distinct
	return a, nil
}

// countSelection validates `_count: true` or `_count: {select: {relation:
// true | {where}}}`. Only to-many relations can be counted.
func (v *Validator) countSelection(e *schema.Entity, in any, path verror.Path) (queryir.SelectItem, error) {
	item := queryir.SelectItem{Name: queryir.AggCount}
	if b, ok := in.(bool); ok {
		item.Enabled = b
		return item, nil
	}

	inputName := e.InputName("CountOutputTypeDefaultArgs")
	obj, err := object(in, path, inputName)
	if err != nil {
		return item, err
	}
	for _, key := range sortedKeys(obj) {
		if key != selectKind {
			return item, verror.UnknownKey(path, key, inputName)
		}
	}
	selVal, ok := obj[selectKind]
	if !ok {
		return item, verror.Shape(path, "%s requires select", inputName)
	}

	p := path.Key(selectKind)
	selName := e.InputName("CountOutputTypeSelect")
	sel, err := object(selVal, p, selName)
	if err != nil {
		return item, err
	}

	count := &queryir.CountSelection{Relations: make([]queryir.CountRelation, 0, len(sel))}
	for _, key := range sortedKeys(sel) {
		rp := p.Key(key)
		r, ok := e.Relation(key)
		if !ok {
			return item, verror.UnknownKey(p, key, selName)
		}
		if !r.ToMany() {
			return item, verror.Cardinality(rp, "%s is a to-one relation and cannot be counted", r.Name)
		}

		cr := queryir.CountRelation{Relation: key}
		if b, isBool := sel[key].(bool); isBool {
			cr.Enabled = b
		} else {
			argName := e.InputName("Count" + capitalize(key) + "Args")
			args, err := object(sel[key], rp, argName)
			if err != nil {
				return item, err
			}
			for _, ak := range sortedKeys(args) {
				if ak != "where" {
					return item, verror.UnknownKey(rp, ak, argName)
				}
			}
			whereVal, ok := args["where"]
			if !ok {
				return item, verror.Shape(rp, "%s requires where", argName)
			}
			cr.Enabled = true
			if cr.Where, err = v.where(r.Target, whereVal, rp.Key("where"), whereMode{}); err != nil {
				return item, err
			}
		}
		count.Relations = append(count.Relations, cr)
	}
	item.Enabled = true
	item.Count = count
	return item, nil
}

// page holds the pagination keys shared by reads and relation args.
type page struct {
	where    *queryir.Where
	orderBy  []queryir.OrderBy
	cursor   *queryir.WhereUnique
	take     *int64
	skip     *int64
	distinct []string
}

// paging validates where, orderBy, cursor, take, skip and distinct when
// present in obj.
func (v *Validator) paging(e *schema.Entity, obj map[string]any, path verror.Path) (page, error) {
	var pg page
	var err error

	if val, ok := obj["cursor"]; ok {
		if pg.cursor, err = v.whereUnique(e, val, path.Key("cursor")); err != nil {
			return pg, err
		}
	}
	if val, ok := obj["distinct"]; ok {
		if pg.distinct, err = distinct(e, val, path.Key("distinct")); err != nil {
			return pg, err
		}
	}
	if val, ok := obj["orderBy"]; ok {
		if pg.orderBy, err = v.orderBy(e, val, path.Key("orderBy"), orderMode{}); err != nil {
			return pg, err
		}
	}
	if val, ok := obj["skip"]; ok {
		if pg.skip, err = count(val, path.Key("skip"), false); err != nil {
			return pg, err
		}
	}
	if val, ok := obj["take"]; ok {
		if pg.take, err = count(val, path.Key("take"), true); err != nil {
			return pg, err
		}
	}
	if val, ok := obj["where"]; ok {
		if pg.where, err = v.where(e, val, path.Key("where"), whereMode{}); err != nil {
			return pg, err
		}
	}
	return pg, nil
}

// distinct validates one scalar field name or an array of them.
func distinct(e *schema.Entity, in any, path verror.Path) ([]string, error) {
	elems, paths := items(in, path)
	out := make([]string, 0, len(elems))
	seen := map[string]bool{}
	for i, elem := range elems {
		name, err := scalar.Enum(elem, paths[i], e.ScalarNames())
		if err != nil {
			return nil, err
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out, nil
}

// count validates take, skip and limit. Only take may be negative, which
// pages backwards from a cursor.
func count(in any, path verror.Path, signed bool) (*int64, error) {
	lit, err := scalar.Literal(scalar.Type{Kind: scalar.Int}, in, path)
	if err != nil {
		return nil, err
	}
	n := int64(lit.(ir.IRInt))
	if n < 0 && !signed {
		return nil, verror.Shape(path, "must not be negative, got %d", n)
	}
	return &n, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
