package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/scalar"
	"github.com/roach88/querygate/internal/schema"
)

const (
	alwaysTrue  = "1 = 1"
	alwaysFalse = "0 = 1"
)

// compileWhere compiles a filter tree over alias to a WHERE fragment.
// CRITICAL: values are never interpolated, always parameterized.
func (q *compilation) compileWhere(e *schema.Entity, alias string, w *queryir.Where) (string, []any, error) {
	if w.IsEmpty() {
		return alwaysTrue, nil, nil
	}

	var parts []string
	var params []any
	add := func(sql string, ps []any) {
		parts = append(parts, sql)
		params = append(params, ps...)
	}

	for _, f := range w.Fields {
		sql, ps, err := q.compileCondition(e, alias, f.Field, f.Condition)
		if err != nil {
			return "", nil, fmt.Errorf("%s: %w", f.Field, err)
		}
		add(sql, ps)
	}
	for _, sub := range w.AND {
		sql, ps, err := q.compileWhere(e, alias, sub)
		if err != nil {
			return "", nil, err
		}
		add(sql, ps)
	}
	if w.OR != nil {
		var alts []string
		var altParams []any
		for _, sub := range w.OR {
			sql, ps, err := q.compileWhere(e, alias, sub)
			if err != nil {
				return "", nil, err
			}
			alts = append(alts, sql)
			altParams = append(altParams, ps...)
		}
		add(disjoin(alts), altParams)
	}
	for _, sub := range w.NOT {
		sql, ps, err := q.compileWhere(e, alias, sub)
		if err != nil {
			return "", nil, err
		}
		add("NOT ("+sql+")", ps)
	}
	return conjoin(parts), params, nil
}

// conjoin joins terms with AND; no terms is always true.
func conjoin(parts []string) string {
	switch len(parts) {
	case 0:
		return alwaysTrue
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " AND ") + ")"
	}
}

// disjoin joins terms with OR; no terms is always false.
func disjoin(parts []string) string {
	switch len(parts) {
	case 0:
		return alwaysFalse
	case 1:
		return parts[0]
	default:
		return "(" + strings.Join(parts, " OR ") + ")"
	}
}

func (q *compilation) compileCondition(e *schema.Entity, alias, name string, c queryir.Condition) (string, []any, error) {
	switch cond := c.(type) {
	case *queryir.ScalarFilter:
		if _, ok := e.Field(name); !ok {
			return "", nil, fmt.Errorf("unknown field")
		}
		return compileScalar(column(alias, name), cond)
	case *queryir.JSONFilter:
		return compileJSON(column(alias, name), cond)
	case *queryir.ListFilter:
		return compileList(column(alias, name), cond)
	case *queryir.ToOneFilter:
		r, ok := e.Relation(name)
		if !ok {
			return "", nil, fmt.Errorf("unknown relation")
		}
		return q.compileToOne(alias, r, cond)
	case *queryir.ToManyFilter:
		r, ok := e.Relation(name)
		if !ok {
			return "", nil, fmt.Errorf("unknown relation")
		}
		return q.compileToMany(alias, r, cond)
	default:
		return "", nil, fmt.Errorf("unsupported condition type: %T", c)
	}
}

// compileScalar compiles the operators of a scalar column. Insensitive mode
// compares lowercased text on both sides.
func compileScalar(col string, f *queryir.ScalarFilter) (string, []any, error) {
	var parts []string
	var params []any
	insensitive := f.Mode == scalar.ModeInsensitive

	lhs := col
	rhs := "?"
	if insensitive {
		lhs = "lower(" + col + ")"
		rhs = "lower(?)"
	}

	bind := func(v ir.IRValue) error {
		p, err := irValueToParam(v)
		if err != nil {
			return err
		}
		params = append(params, p)
		return nil
	}
	compare := func(op string, v ir.IRValue) error {
		if v == nil {
			return nil
		}
		if err := bind(v); err != nil {
			return err
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", lhs, op, rhs))
		return nil
	}

	if f.Equals != nil {
		if _, ok := f.Equals.(ir.IRNull); ok {
			parts = append(parts, col+" IS NULL")
		} else if err := compare("=", f.Equals); err != nil {
			return "", nil, err
		}
	}
	if f.In != nil {
		sql, err := membership(lhs, rhs, "IN", f.In, bind)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
	}
	if f.NotIn != nil {
		sql, err := membership(lhs, rhs, "NOT IN", f.NotIn, bind)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
	}
	for _, cmp := range []struct {
		op string
		v  ir.IRValue
	}{{"<", f.Lt}, {"<=", f.Lte}, {">", f.Gt}, {">=", f.Gte}} {
		if err := compare(cmp.op, cmp.v); err != nil {
			return "", nil, err
		}
	}
	for _, m := range []struct {
		render func(lhs, rhs string) string
		binds  int
		v      ir.IRValue
	}{
		{containsSQL, 1, f.Contains},
		{startsWithSQL, 1, f.StartsWith},
		{endsWithSQL, 3, f.EndsWith},
	} {
		if m.v == nil {
			continue
		}
		for i := 0; i < m.binds; i++ {
			if err := bind(m.v); err != nil {
				return "", nil, err
			}
		}
		parts = append(parts, m.render(lhs, rhs))
	}
	if f.Not != nil {
		sql, ps, err := compileScalar(col, f.Not)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "NOT ("+sql+")")
		params = append(params, ps...)
	}
	return conjoin(parts), params, nil
}

// membership renders IN and NOT IN. An empty IN matches nothing and an
// empty NOT IN matches everything.
func membership(lhs, rhs, op string, values []ir.IRValue, bind func(ir.IRValue) error) (string, error) {
	if len(values) == 0 {
		if op == "IN" {
			return alwaysFalse, nil
		}
		return alwaysTrue, nil
	}
	slots := make([]string, len(values))
	for i, v := range values {
		if err := bind(v); err != nil {
			return "", err
		}
		slots[i] = rhs
	}
	return fmt.Sprintf("%s %s (%s)", lhs, op, strings.Join(slots, ", ")), nil
}

func containsSQL(lhs, rhs string) string {
	return fmt.Sprintf("instr(%s, %s) > 0", lhs, rhs)
}

// startsWithSQL relies on instr returning the first match position.
func startsWithSQL(lhs, rhs string) string {
	return fmt.Sprintf("instr(%s, %s) = 1", lhs, rhs)
}

// endsWithSQL binds the needle three times; the empty needle matches.
func endsWithSQL(lhs, rhs string) string {
	return fmt.Sprintf("(%s = '' OR substr(%s, -length(%s)) = %s)", rhs, lhs, rhs, rhs)
}

// compileJSON compiles the operators of a JSON column. Without a path,
// equality compares the stored canonical document; with a path, operators
// apply to the SQL value json_extract yields.
func compileJSON(col string, f *queryir.JSONFilter) (string, []any, error) {
	var parts []string
	var params []any

	path, err := jsonPath(f.Path)
	if err != nil {
		return "", nil, err
	}
	extract := "json_extract(" + col + ", ?)"
	// every use of extract binds the path first
	bindPath := func() { params = append(params, path) }

	if f.Path == nil {
		for _, eq := range []struct {
			v      ir.IRValue
			negate bool
		}{{f.Equals, false}, {f.Not, true}} {
			if eq.v == nil {
				continue
			}
			sql, ps, err := documentEquals(col, eq.v)
			if err != nil {
				return "", nil, err
			}
			if eq.negate {
				sql = "NOT (" + sql + ")"
			}
			parts = append(parts, sql)
			params = append(params, ps...)
		}
	} else {
		for _, eq := range []struct {
			v      ir.IRValue
			negate bool
		}{{f.Equals, false}, {f.Not, true}} {
			if eq.v == nil {
				continue
			}
			var sql string
			bindPath()
			if _, ok := eq.v.(ir.IRNull); ok {
				sql = "json_type(" + col + ", ?) = 'null'"
			} else {
				p, err := jsonElementParam(eq.v)
				if err != nil {
					return "", nil, err
				}
				sql = extract + " = ?"
				params = append(params, p)
			}
			if eq.negate {
				sql = "NOT (" + sql + ")"
			}
			parts = append(parts, sql)
		}
	}

	insensitive := f.Mode == scalar.ModeInsensitive
	lhs, rhs := extract, "?"
	if insensitive {
		lhs, rhs = "lower("+extract+")", "lower(?)"
	}
	bindElem := func(v ir.IRValue) error {
		p, err := jsonElementParam(v)
		if err != nil {
			return err
		}
		params = append(params, p)
		return nil
	}

	for _, set := range []struct {
		op     string
		values []ir.IRValue
	}{{"IN", f.In}, {"NOT IN", f.NotIn}} {
		if set.values == nil {
			continue
		}
		if len(set.values) > 0 {
			bindPath()
		}
		sql, err := membership(extract, "?", set.op, set.values, bindElem)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
	}
	for _, cmp := range []struct {
		op string
		v  ir.IRValue
	}{{"<", f.Lt}, {"<=", f.Lte}, {">", f.Gt}, {">=", f.Gte}} {
		if cmp.v == nil {
			continue
		}
		bindPath()
		if err := bindElem(cmp.v); err != nil {
			return "", nil, err
		}
		parts = append(parts, fmt.Sprintf("%s %s ?", extract, cmp.op))
	}
	for _, m := range []struct {
		render func(lhs, rhs string) string
		binds  int
		v      ir.IRValue
	}{
		{containsSQL, 1, f.StringContains},
		{startsWithSQL, 1, f.StringStartsWith},
	} {
		if m.v == nil {
			continue
		}
		bindPath()
		if err := bindElem(m.v); err != nil {
			return "", nil, err
		}
		parts = append(parts, m.render(lhs, rhs))
	}
	if f.StringEndsWith != nil {
		// (? = '' OR substr(x, -length(?)) = ?) with x itself binding the path
		if err := bindElem(f.StringEndsWith); err != nil {
			return "", nil, err
		}
		bindPath()
		for i := 0; i < 2; i++ {
			if err := bindElem(f.StringEndsWith); err != nil {
				return "", nil, err
			}
		}
		parts = append(parts, endsWithSQL(lhs, rhs))
	}

	if f.ArrayContains != nil {
		elems := arrayElements(f.ArrayContains)
		var terms []string
		for _, elem := range elems {
			bindPath()
			if err := bindElem(elem); err != nil {
				return "", nil, err
			}
			terms = append(terms, "EXISTS (SELECT 1 FROM json_each("+col+", ?) WHERE value = ?)")
		}
		parts = append(parts, conjoin(terms))
	}
	for _, edge := range []struct {
		v     ir.IRValue
		index func(i, n int) string
	}{
		{f.ArrayStartsWith, func(i, _ int) string { return fmt.Sprintf("[%d]", i) }},
		{f.ArrayEndsWith, func(i, n int) string { return fmt.Sprintf("[#-%d]", n-i) }},
	} {
		if edge.v == nil {
			continue
		}
		elems := arrayElements(edge.v)
		var terms []string
		for i, elem := range elems {
			params = append(params, path+edge.index(i, len(elems)))
			if err := bindElem(elem); err != nil {
				return "", nil, err
			}
			terms = append(terms, extract+" = ?")
		}
		parts = append(parts, conjoin(terms))
	}
	return conjoin(parts), params, nil
}

// documentEquals compares a whole JSON column with a document or marker.
func documentEquals(col string, v ir.IRValue) (string, []any, error) {
	switch val := v.(type) {
	case ir.NullMarker:
		switch val {
		case ir.DbNull:
			return col + " IS NULL", nil, nil
		case ir.JsonNull:
			return col + " = ?", []any{jsonNullText}, nil
		default:
			return "(" + col + " IS NULL OR " + col + " = ?)", []any{jsonNullText}, nil
		}
	case ir.IRNull:
		return col + " IS NULL", nil, nil
	}
	text, err := jsonText(v)
	if err != nil {
		return "", nil, err
	}
	return col + " = ?", []any{text}, nil
}

// arrayElements treats a scalar operand as a one-element array.
func arrayElements(v ir.IRValue) []ir.IRValue {
	if arr, ok := v.(ir.IRArray); ok {
		return arr
	}
	return []ir.IRValue{v}
}

// compileList compiles the operators of a scalar list column, stored as a
// JSON array.
func compileList(col string, f *queryir.ListFilter) (string, []any, error) {
	var parts []string
	var params []any

	has := func(v ir.IRValue) (string, error) {
		p, err := jsonElementParam(v)
		if err != nil {
			return "", err
		}
		params = append(params, p)
		return "EXISTS (SELECT 1 FROM json_each(" + col + ") WHERE value = ?)", nil
	}

	if f.Equals != nil {
		text, err := jsonText(f.Equals)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, col+" = ?")
		params = append(params, text)
	}
	if f.Has != nil {
		sql, err := has(f.Has)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
	}
	for _, group := range []struct {
		values []ir.IRValue
		join   func([]string) string
	}{{f.HasEvery, conjoin}, {f.HasSome, disjoin}} {
		if group.values == nil {
			continue
		}
		var terms []string
		for _, v := range group.values {
			sql, err := has(v)
			if err != nil {
				return "", nil, err
			}
			terms = append(terms, sql)
		}
		parts = append(parts, group.join(terms))
	}
	if f.IsEmpty != nil {
		if *f.IsEmpty {
			parts = append(parts, "json_array_length("+col+") = 0")
		} else {
			parts = append(parts, "json_array_length("+col+") > 0")
		}
	}
	return conjoin(parts), params, nil
}

// joinCondition correlates the target rows of r under inner with the owner
// row under outer.
func joinCondition(r *schema.Relation, outer, inner string) string {
	_, fields, refs := r.ForeignKeys()
	terms := make([]string, len(fields))
	for i := range fields {
		if r.Owning() {
			terms[i] = column(inner, refs[i]) + " = " + column(outer, fields[i])
		} else {
			terms[i] = column(inner, fields[i]) + " = " + column(outer, refs[i])
		}
	}
	return strings.Join(terms, " AND ")
}

// related renders EXISTS over the target rows of r matching w. With
// negate, the inner filter is inverted (used by every).
func (q *compilation) related(outer string, r *schema.Relation, w *queryir.Where, negate bool) (string, []any, error) {
	inner := q.alias()
	cond := joinCondition(r, outer, inner)
	var params []any
	if !w.IsEmpty() || negate {
		sql, ps, err := q.compileWhere(r.Target, inner, w)
		if err != nil {
			return "", nil, err
		}
		if negate {
			sql = "NOT (" + sql + ")"
		}
		cond += " AND " + sql
		params = ps
	}
	return fmt.Sprintf("EXISTS (SELECT 1 FROM %s AS %s WHERE %s)", ident(r.Target.Name), inner, cond), params, nil
}

func (q *compilation) compileToOne(outer string, r *schema.Relation, f *queryir.ToOneFilter) (string, []any, error) {
	var parts []string
	var params []any

	if f.IsNull || f.IsNotNull {
		var sql string
		if r.Owning() {
			terms := make([]string, len(r.Fields))
			for i, fk := range r.Fields {
				terms[i] = column(outer, fk) + " IS NULL"
			}
			sql = strings.Join(terms, " AND ")
		} else {
			exists, _, err := q.related(outer, r, nil, false)
			if err != nil {
				return "", nil, err
			}
			sql = "NOT " + exists
		}
		if f.IsNotNull {
			sql = "NOT (" + sql + ")"
		}
		parts = append(parts, sql)
	}
	if f.Is != nil {
		sql, ps, err := q.related(outer, r, f.Is, false)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	if f.IsNot != nil {
		sql, ps, err := q.related(outer, r, f.IsNot, false)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "NOT "+sql)
		params = append(params, ps...)
	}
	return conjoin(parts), params, nil
}

// compileToMany renders some as EXISTS, none as NOT EXISTS and every as
// the absence of a related row failing the filter.
func (q *compilation) compileToMany(outer string, r *schema.Relation, f *queryir.ToManyFilter) (string, []any, error) {
	var parts []string
	var params []any
	for _, op := range []struct {
		w      *queryir.Where
		prefix string
		negate bool
	}{
		{f.Every, "NOT ", true},
		{f.None, "NOT ", false},
		{f.Some, "", false},
	} {
		if op.w == nil {
			continue
		}
		sql, ps, err := q.related(outer, r, op.w, op.negate)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, op.prefix+sql)
		params = append(params, ps...)
	}
	return conjoin(parts), params, nil
}
