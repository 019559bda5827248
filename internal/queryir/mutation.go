package queryir

import "github.com/roach88/querygate/internal/ir"

// CreateData is a normalized create payload.
//
// Fields holds scalar assignments sorted by field name, including foreign
// keys given in unchecked form. Relations holds nested writes sorted by
// relation name. A relation never appears both as foreign-key fields and
// as a nested write.
type CreateData struct {
	Fields    []FieldValue
	Relations []RelationWrite
}

// Field returns the value assigned to name.
func (d *CreateData) Field(name string) (ir.IRValue, bool) {
	for _, fv := range d.Fields {
		if fv.Field == name {
			return fv.Value, true
		}
	}
	return nil, false
}

// Relation returns the nested write on name.
func (d *CreateData) Relation(name string) (RelationWrite, bool) {
	return findRelation(d.Relations, name)
}

// Wire renders the canonical input shape.
func (d *CreateData) Wire() any {
	m := make(map[string]any, len(d.Fields)+len(d.Relations))
	for _, fv := range d.Fields {
		m[fv.Field] = ir.Wire(fv.Value)
	}
	for _, rw := range d.Relations {
		m[rw.Relation] = rw.Wire()
	}
	return m
}

// Operator is a scalar update operator.
type Operator string

// Scalar update operators.
const (
	OpSet       Operator = "set"
	OpIncrement Operator = "increment"
	OpDecrement Operator = "decrement"
	OpMultiply  Operator = "multiply"
	OpDivide    Operator = "divide"
	OpPush      Operator = "push"
)

// FieldUpdate applies an operator to a field.
type FieldUpdate struct {
	Field    string
	Operator Operator
	Value    ir.IRValue
}

// UpdateData is a normalized update payload. Every field is optional.
type UpdateData struct {
	Fields    []FieldUpdate
	Relations []RelationWrite
}

// Field returns the update applied to name.
func (d *UpdateData) Field(name string) (FieldUpdate, bool) {
	for _, fu := range d.Fields {
		if fu.Field == name {
			return fu, true
		}
	}
	return FieldUpdate{}, false
}

// Relation returns the nested write on name.
func (d *UpdateData) Relation(name string) (RelationWrite, bool) {
	return findRelation(d.Relations, name)
}

// Wire renders the canonical input shape. Every scalar update appears in
// operator form, `{set: v}` for a bare replacement.
func (d *UpdateData) Wire() any {
	m := make(map[string]any, len(d.Fields)+len(d.Relations))
	for _, fu := range d.Fields {
		m[fu.Field] = map[string]any{string(fu.Operator): ir.Wire(fu.Value)}
	}
	for _, rw := range d.Relations {
		m[rw.Relation] = rw.Wire()
	}
	return m
}

// RelationWrite groups the nested operations applied to one relation.
// Many records the cardinality, which decides the wire shape of the ops.
type RelationWrite struct {
	Relation string
	Many     bool
	Ops      []RelationOp // sorted by Name
}

// Op returns the operation called name.
func (rw RelationWrite) Op(name string) (RelationOp, bool) {
	for _, op := range rw.Ops {
		if op.Name() == name {
			return op, true
		}
	}
	return nil, false
}

// Wire renders `{op: ...}` for every operation.
func (rw RelationWrite) Wire() any {
	m := make(map[string]any, len(rw.Ops))
	for _, op := range rw.Ops {
		m[op.Name()] = op.wire(rw.Many)
	}
	return m
}

func findRelation(rws []RelationWrite, name string) (RelationWrite, bool) {
	for _, rw := range rws {
		if rw.Relation == name {
			return rw, true
		}
	}
	return RelationWrite{}, false
}

// RelationOp is one nested relation operation.
//
// This is a sealed interface - only types in this package implement it.
// On to-many relations every list-valued operation is normalized to a
// slice, so a single nested create becomes a one-element Data slice.
type RelationOp interface {
	relationOp() // Marker method - seals interface to this package
	Name() string
	wire(many bool) any
}

// Nested operation names.
const (
	OpNameCreate          = "create"
	OpNameCreateMany      = "createMany"
	OpNameConnect         = "connect"
	OpNameConnectOrCreate = "connectOrCreate"
	OpNameUpsert          = "upsert"
	OpNameUpdate          = "update"
	OpNameUpdateMany      = "updateMany"
	OpNameDelete          = "delete"
	OpNameDeleteMany      = "deleteMany"
	OpNameDisconnect      = "disconnect"
	OpNameSet             = "set"
)

// NestedCreate creates related rows.
type NestedCreate struct {
	Data []*CreateData
}

func (NestedCreate) relationOp() {}
func (NestedCreate) Name() string { return OpNameCreate }
func (o NestedCreate) wire(many bool) any {
	if !many {
		return o.Data[0].Wire()
	}
	out := make([]any, len(o.Data))
	for i, d := range o.Data {
		out[i] = d.Wire()
	}
	return out
}

// NestedCreateMany bulk-creates related rows (to-many only).
type NestedCreateMany struct {
	Data           []*CreateData
	SkipDuplicates *bool
}

func (NestedCreateMany) relationOp() {}
func (NestedCreateMany) Name() string { return OpNameCreateMany }
func (o NestedCreateMany) wire(bool) any {
	data := make([]any, len(o.Data))
	for i, d := range o.Data {
		data[i] = d.Wire()
	}
	m := map[string]any{"data": data}
	if o.SkipDuplicates != nil {
		m["skipDuplicates"] = *o.SkipDuplicates
	}
	return m
}

// NestedConnect links existing rows.
type NestedConnect struct {
	Where []*WhereUnique
}

func (NestedConnect) relationOp() {}
func (NestedConnect) Name() string { return OpNameConnect }
func (o NestedConnect) wire(many bool) any {
	return wireUniques(o.Where, many)
}

// ConnectOrCreateItem links the row matching Where, creating it from
// Create when none exists.
type ConnectOrCreateItem struct {
	Where  *WhereUnique
	Create *CreateData
}

// NestedConnectOrCreate links or creates related rows.
type NestedConnectOrCreate struct {
	Items []ConnectOrCreateItem
}

func (NestedConnectOrCreate) relationOp() {}
func (NestedConnectOrCreate) Name() string { return OpNameConnectOrCreate }
func (o NestedConnectOrCreate) wire(many bool) any {
	items := make([]any, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]any{"where": it.Where.Wire(), "create": it.Create.Wire()}
	}
	if !many {
		return items[0]
	}
	return items
}

// UpsertItem updates the matching related row or creates one.
// Unique is used on to-many relations, Filter (optional) on to-one.
type UpsertItem struct {
	Unique *WhereUnique
	Filter *Where
	Create *CreateData
	Update *UpdateData
}

// NestedUpsert upserts related rows.
type NestedUpsert struct {
	Items []UpsertItem
}

func (NestedUpsert) relationOp() {}
func (NestedUpsert) Name() string { return OpNameUpsert }
func (o NestedUpsert) wire(many bool) any {
	items := make([]any, len(o.Items))
	for i, it := range o.Items {
		m := map[string]any{"create": it.Create.Wire(), "update": it.Update.Wire()}
		switch {
		case it.Unique != nil:
			m["where"] = it.Unique.Wire()
		case it.Filter != nil:
			m["where"] = it.Filter.Wire()
		}
		items[i] = m
	}
	if !many {
		return items[0]
	}
	return items
}

// UpdateItem updates related rows. Unique is used on to-many relations,
// Filter (optional) on to-one.
type UpdateItem struct {
	Unique *WhereUnique
	Filter *Where
	Data   *UpdateData
}

// NestedUpdate updates related rows.
type NestedUpdate struct {
	Items []UpdateItem
}

func (NestedUpdate) relationOp() {}
func (NestedUpdate) Name() string { return OpNameUpdate }
func (o NestedUpdate) wire(many bool) any {
	items := make([]any, len(o.Items))
	for i, it := range o.Items {
		m := map[string]any{"data": it.Data.Wire()}
		switch {
		case it.Unique != nil:
			m["where"] = it.Unique.Wire()
		case it.Filter != nil:
			m["where"] = it.Filter.Wire()
		}
		items[i] = m
	}
	if !many {
		return items[0]
	}
	return items
}

// UpdateManyItem updates every related row matching Where.
type UpdateManyItem struct {
	Where *Where
	Data  *UpdateData
}

// NestedUpdateMany bulk-updates related rows (to-many only).
type NestedUpdateMany struct {
	Items []UpdateManyItem
}

func (NestedUpdateMany) relationOp() {}
func (NestedUpdateMany) Name() string { return OpNameUpdateMany }
func (o NestedUpdateMany) wire(bool) any {
	items := make([]any, len(o.Items))
	for i, it := range o.Items {
		items[i] = map[string]any{"where": it.Where.Wire(), "data": it.Data.Wire()}
	}
	return items
}

// NestedDelete deletes related rows. On to-one relations it carries either
// Enabled or Filter; on to-many relations it carries Where.
type NestedDelete struct {
	Enabled bool
	Filter  *Where
	Where   []*WhereUnique
}

func (NestedDelete) relationOp() {}
func (NestedDelete) Name() string { return OpNameDelete }
func (o NestedDelete) wire(many bool) any {
	return wireToggle(o.Enabled, o.Filter, o.Where, many)
}

// NestedDeleteMany deletes every related row matching any filter.
type NestedDeleteMany struct {
	Where []*Where
}

func (NestedDeleteMany) relationOp() {}
func (NestedDeleteMany) Name() string { return OpNameDeleteMany }
func (o NestedDeleteMany) wire(bool) any {
	return wireWheres(o.Where)
}

// NestedDisconnect unlinks related rows without deleting them. Same shape
// as NestedDelete.
type NestedDisconnect struct {
	Enabled bool
	Filter  *Where
	Where   []*WhereUnique
}

func (NestedDisconnect) relationOp() {}
func (NestedDisconnect) Name() string { return OpNameDisconnect }
func (o NestedDisconnect) wire(many bool) any {
	return wireToggle(o.Enabled, o.Filter, o.Where, many)
}

// NestedSet replaces the related rows with exactly the matched ones.
type NestedSet struct {
	Where []*WhereUnique
}

func (NestedSet) relationOp() {}
func (NestedSet) Name() string { return OpNameSet }
func (o NestedSet) wire(bool) any {
	return wireUniques(o.Where, true)
}

func wireUniques(us []*WhereUnique, many bool) any {
	if !many {
		return us[0].Wire()
	}
	out := make([]any, len(us))
	for i, u := range us {
		out[i] = u.Wire()
	}
	return out
}

func wireToggle(enabled bool, filter *Where, where []*WhereUnique, many bool) any {
	if many {
		return wireUniques(where, true)
	}
	if filter != nil {
		return filter.Wire()
	}
	return enabled
}
