package queryir

import "github.com/roach88/querygate/internal/ir"

// Condition is the filter applied to one field of an entity.
//
// This is a sealed interface - only types in this package implement it.
//
// Condition types:
//   - ScalarFilter: operators over a scalar column
//   - JSONFilter: operators over a JSON column
//   - ListFilter: operators over a scalar list column
//   - ToOneFilter: is / isNot over a to-one relation
//   - ToManyFilter: every / some / none over a to-many relation
type Condition interface {
	conditionNode() // Marker method - seals interface to this package
	Wire() any
}

// Where is a composite boolean filter over one entity.
//
// Semantics:
//
//	(Fields...) AND (AND...) AND (OR[0] OR OR[1] ...) AND NOT (NOT...)
//
// A nil group is absent and imposes no constraint. A non-nil empty group
// is kept as given: an empty OR matches nothing, an empty AND or NOT
// matches everything.
type Where struct {
	Fields []FieldFilter // sorted by field name
	AND    []*Where
	OR     []*Where
	NOT    []*Where
}

// FieldFilter pairs a field or relation name with its condition.
type FieldFilter struct {
	Field     string
	Condition Condition
}

// Field returns the condition on name, if any.
func (w *Where) Field(name string) (Condition, bool) {
	if w == nil {
		return nil, false
	}
	for _, f := range w.Fields {
		if f.Field == name {
			return f.Condition, true
		}
	}
	return nil, false
}

// IsEmpty reports whether w imposes no constraint at all.
func (w *Where) IsEmpty() bool {
	return w == nil || (len(w.Fields) == 0 && w.AND == nil && w.OR == nil && w.NOT == nil)
}

// Wire renders the canonical input shape.
func (w *Where) Wire() any {
	m := map[string]any{}
	w.wireInto(m)
	return m
}

func (w *Where) wireInto(m map[string]any) {
	if w == nil {
		return
	}
	for _, f := range w.Fields {
		m[f.Field] = f.Condition.Wire()
	}
	if w.AND != nil {
		m["AND"] = wireWheres(w.AND)
	}
	if w.OR != nil {
		m["OR"] = wireWheres(w.OR)
	}
	if w.NOT != nil {
		m["NOT"] = wireWheres(w.NOT)
	}
}

func wireWheres(ws []*Where) []any {
	out := make([]any, len(ws))
	for i, w := range ws {
		out[i] = w.Wire()
	}
	return out
}

// ScalarFilter is the operator set of a scalar column.
//
// A nil operator is absent. Equals holds ir.IRNull{} for `equals: null`.
// In and NotIn are nil when absent and may be empty when given.
//
// The aggregate sub-filters only appear in having clauses.
type ScalarFilter struct {
	Equals     ir.IRValue
	In         []ir.IRValue
	NotIn      []ir.IRValue
	Lt         ir.IRValue
	Lte        ir.IRValue
	Gt         ir.IRValue
	Gte        ir.IRValue
	Contains   ir.IRValue
	StartsWith ir.IRValue
	EndsWith   ir.IRValue
	Search     ir.IRValue
	Mode       string
	Not        *ScalarFilter

	Count *ScalarFilter
	Avg   *ScalarFilter
	Sum   *ScalarFilter
	Min   *ScalarFilter
	Max   *ScalarFilter
}

func (*ScalarFilter) conditionNode() {}

// HasAggregates reports whether any aggregate sub-filter is set.
func (f *ScalarFilter) HasAggregates() bool {
	return f.Count != nil || f.Avg != nil || f.Sum != nil || f.Min != nil || f.Max != nil
}

// HasPlainOperators reports whether any non-aggregate operator is set.
func (f *ScalarFilter) HasPlainOperators() bool {
	return f.Equals != nil || f.In != nil || f.NotIn != nil ||
		f.Lt != nil || f.Lte != nil || f.Gt != nil || f.Gte != nil ||
		f.Contains != nil || f.StartsWith != nil || f.EndsWith != nil ||
		f.Search != nil || f.Mode != "" || f.Not != nil
}

// Wire renders the canonical input shape.
func (f *ScalarFilter) Wire() any {
	m := map[string]any{}
	putValue(m, "equals", f.Equals)
	putList(m, "in", f.In)
	putList(m, "notIn", f.NotIn)
	putValue(m, "lt", f.Lt)
	putValue(m, "lte", f.Lte)
	putValue(m, "gt", f.Gt)
	putValue(m, "gte", f.Gte)
	putValue(m, "contains", f.Contains)
	putValue(m, "startsWith", f.StartsWith)
	putValue(m, "endsWith", f.EndsWith)
	putValue(m, "search", f.Search)
	if f.Mode != "" {
		m["mode"] = f.Mode
	}
	if f.Not != nil {
		m["not"] = f.Not.Wire()
	}
	putFilter(m, "_count", f.Count)
	putFilter(m, "_avg", f.Avg)
	putFilter(m, "_sum", f.Sum)
	putFilter(m, "_min", f.Min)
	putFilter(m, "_max", f.Max)
	return m
}

// JSONFilter is the operator set of a JSON column.
//
// Equals and Not compare whole documents (or the value at Path) and may
// hold a null marker. The string_* and array_* operators apply to the
// value at Path.
type JSONFilter struct {
	Path             []string
	Equals           ir.IRValue
	Not              ir.IRValue
	In               []ir.IRValue
	NotIn            []ir.IRValue
	Lt               ir.IRValue
	Lte              ir.IRValue
	Gt               ir.IRValue
	Gte              ir.IRValue
	StringContains   ir.IRValue
	StringStartsWith ir.IRValue
	StringEndsWith   ir.IRValue
	ArrayContains    ir.IRValue
	ArrayStartsWith  ir.IRValue
	ArrayEndsWith    ir.IRValue
	Mode             string
}

func (*JSONFilter) conditionNode() {}

// Wire renders the canonical input shape.
func (f *JSONFilter) Wire() any {
	m := map[string]any{}
	if f.Path != nil {
		path := make([]any, len(f.Path))
		for i, p := range f.Path {
			path[i] = p
		}
		m["path"] = path
	}
	putValue(m, "equals", f.Equals)
	putValue(m, "not", f.Not)
	putList(m, "in", f.In)
	putList(m, "notIn", f.NotIn)
	putValue(m, "lt", f.Lt)
	putValue(m, "lte", f.Lte)
	putValue(m, "gt", f.Gt)
	putValue(m, "gte", f.Gte)
	putValue(m, "string_contains", f.StringContains)
	putValue(m, "string_starts_with", f.StringStartsWith)
	putValue(m, "string_ends_with", f.StringEndsWith)
	putValue(m, "array_contains", f.ArrayContains)
	putValue(m, "array_starts_with", f.ArrayStartsWith)
	putValue(m, "array_ends_with", f.ArrayEndsWith)
	if f.Mode != "" {
		m["mode"] = f.Mode
	}
	return m
}

// ListFilter is the operator set of a scalar list column.
type ListFilter struct {
	Equals   ir.IRValue // ir.IRArray
	Has      ir.IRValue
	HasEvery []ir.IRValue
	HasSome  []ir.IRValue
	IsEmpty  *bool
}

func (*ListFilter) conditionNode() {}

// Wire renders the canonical input shape.
func (f *ListFilter) Wire() any {
	m := map[string]any{}
	putValue(m, "equals", f.Equals)
	putValue(m, "has", f.Has)
	putList(m, "hasEvery", f.HasEvery)
	putList(m, "hasSome", f.HasSome)
	if f.IsEmpty != nil {
		m["isEmpty"] = *f.IsEmpty
	}
	return m
}

// ToOneFilter constrains the related row of a to-one relation.
//
// IsNull and IsNotNull express `is: null` and `isNot: null` on optional
// relations; they exclude Is and IsNot respectively.
type ToOneFilter struct {
	Is        *Where
	IsNot     *Where
	IsNull    bool
	IsNotNull bool
}

func (*ToOneFilter) conditionNode() {}

// Wire renders the canonical input shape.
func (f *ToOneFilter) Wire() any {
	m := map[string]any{}
	switch {
	case f.IsNull:
		m["is"] = nil
	case f.Is != nil:
		m["is"] = f.Is.Wire()
	}
	switch {
	case f.IsNotNull:
		m["isNot"] = nil
	case f.IsNot != nil:
		m["isNot"] = f.IsNot.Wire()
	}
	return m
}

// ToManyFilter constrains the related rows of a to-many relation.
type ToManyFilter struct {
	Every *Where
	Some  *Where
	None  *Where
}

func (*ToManyFilter) conditionNode() {}

// Wire renders the canonical input shape.
func (f *ToManyFilter) Wire() any {
	m := map[string]any{}
	if f.Every != nil {
		m["every"] = f.Every.Wire()
	}
	if f.Some != nil {
		m["some"] = f.Some.Wire()
	}
	if f.None != nil {
		m["none"] = f.None.Wire()
	}
	return m
}

func putValue(m map[string]any, key string, v ir.IRValue) {
	if v != nil {
		m[key] = ir.Wire(v)
	}
}

func putList(m map[string]any, key string, vs []ir.IRValue) {
	if vs != nil {
		m[key] = wireList(vs)
	}
}

func putFilter(m map[string]any, key string, f *ScalarFilter) {
	if f != nil {
		m[key] = f.Wire()
	}
}

func wireList(vs []ir.IRValue) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = ir.Wire(v)
	}
	return out
}
