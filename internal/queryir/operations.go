package queryir

import "github.com/roach88/querygate/internal/ir"

// Args is the normalized argument envelope of one operation.
//
// This is a sealed interface - only types in this package implement it.
type Args interface {
	argsNode() // Marker method - seals interface to this package
	Wire() any
}

// Operation names, as accepted by the validator and the CLI.
const (
	OpFindMany   = "findMany"
	OpFindFirst  = "findFirst"
	OpFindUnique = "findUnique"
	OpCreate     = "create"
	OpCreateMany = "createMany"
	OpUpdate     = "update"
	OpUpdateMany = "updateMany"
	OpUpsert     = "upsert"
	OpDelete     = "delete"
	OpDeleteMany = "deleteMany"
	OpGroupBy    = "groupBy"
	OpAggregate  = "aggregate"
	OpCount      = "count"
)

// Operations lists every operation name.
var Operations = []string{
	OpFindMany, OpFindFirst, OpFindUnique,
	OpCreate, OpCreateMany,
	OpUpdate, OpUpdateMany, OpUpsert,
	OpDelete, OpDeleteMany,
	OpGroupBy, OpAggregate, OpCount,
}

// IsMutation reports whether op writes rows.
func IsMutation(op string) bool {
	switch op {
	case OpCreate, OpCreateMany, OpUpdate, OpUpdateMany, OpUpsert, OpDelete, OpDeleteMany:
		return true
	default:
		return false
	}
}

// FindArgs are the arguments of findMany and findFirst.
type FindArgs struct {
	Where    *Where
	OrderBy  []OrderBy
	Cursor   *WhereUnique
	Take     *int64
	Skip     *int64
	Distinct []string
	Select   *Selection
	Include  *Selection
}

func (*FindArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *FindArgs) Wire() any {
	m := map[string]any{}
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	if a.OrderBy != nil {
		m["orderBy"] = wireOrders(a.OrderBy)
	}
	if a.Cursor != nil {
		m["cursor"] = a.Cursor.Wire()
	}
	putInt(m, "take", a.Take)
	putInt(m, "skip", a.Skip)
	putStrings(m, "distinct", a.Distinct)
	putSelection(m, a.Select, a.Include)
	return m
}

// UniqueArgs are the arguments of findUnique and delete.
type UniqueArgs struct {
	Where   *WhereUnique
	Select  *Selection
	Include *Selection
}

func (*UniqueArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *UniqueArgs) Wire() any {
	m := map[string]any{"where": a.Where.Wire()}
	putSelection(m, a.Select, a.Include)
	return m
}

// CreateArgs are the arguments of create.
type CreateArgs struct {
	Data    *CreateData
	Select  *Selection
	Include *Selection
}

func (*CreateArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *CreateArgs) Wire() any {
	m := map[string]any{"data": a.Data.Wire()}
	putSelection(m, a.Select, a.Include)
	return m
}

// CreateManyArgs are the arguments of createMany. Rows carry scalar
// fields only.
type CreateManyArgs struct {
	Data           []*CreateData
	SkipDuplicates *bool
}

func (*CreateManyArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *CreateManyArgs) Wire() any {
	data := make([]any, len(a.Data))
	for i, d := range a.Data {
		data[i] = d.Wire()
	}
	m := map[string]any{"data": data}
	if a.SkipDuplicates != nil {
		m["skipDuplicates"] = *a.SkipDuplicates
	}
	return m
}

// UpdateArgs are the arguments of update.
type UpdateArgs struct {
	Where   *WhereUnique
	Data    *UpdateData
	Select  *Selection
	Include *Selection
}

func (*UpdateArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *UpdateArgs) Wire() any {
	m := map[string]any{"where": a.Where.Wire(), "data": a.Data.Wire()}
	putSelection(m, a.Select, a.Include)
	return m
}

// UpdateManyArgs are the arguments of updateMany. Data carries scalar
// updates only.
type UpdateManyArgs struct {
	Where *Where
	Data  *UpdateData
	Limit *int64
}

func (*UpdateManyArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *UpdateManyArgs) Wire() any {
	m := map[string]any{"data": a.Data.Wire()}
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	putInt(m, "limit", a.Limit)
	return m
}

// UpsertArgs are the arguments of upsert: update the row identified by
// Where if it exists, else create it.
type UpsertArgs struct {
	Where   *WhereUnique
	Create  *CreateData
	Update  *UpdateData
	Select  *Selection
	Include *Selection
}

func (*UpsertArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *UpsertArgs) Wire() any {
	m := map[string]any{
		"where":  a.Where.Wire(),
		"create": a.Create.Wire(),
		"update": a.Update.Wire(),
	}
	putSelection(m, a.Select, a.Include)
	return m
}

// DeleteManyArgs are the arguments of deleteMany.
type DeleteManyArgs struct {
	Where *Where
	Limit *int64
}

func (*DeleteManyArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *DeleteManyArgs) Wire() any {
	m := map[string]any{}
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	putInt(m, "limit", a.Limit)
	return m
}

// GroupByArgs are the arguments of groupBy.
type GroupByArgs struct {
	By         []string
	Where      *Where
	Having     *Where
	OrderBy    []OrderBy
	Take       *int64
	Skip       *int64
	Aggregates Aggregates
}

func (*GroupByArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *GroupByArgs) Wire() any {
	m := map[string]any{}
	putStrings(m, "by", a.By)
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	if a.Having != nil {
		m["having"] = a.Having.Wire()
	}
	if a.OrderBy != nil {
		m["orderBy"] = wireOrders(a.OrderBy)
	}
	putInt(m, "take", a.Take)
	putInt(m, "skip", a.Skip)
	a.Aggregates.wireInto(m)
	return m
}

// AggregateArgs are the arguments of aggregate.
type AggregateArgs struct {
	Where      *Where
	OrderBy    []OrderBy
	Cursor     *WhereUnique
	Take       *int64
	Skip       *int64
	Aggregates Aggregates
}

func (*AggregateArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *AggregateArgs) Wire() any {
	m := map[string]any{}
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	if a.OrderBy != nil {
		m["orderBy"] = wireOrders(a.OrderBy)
	}
	if a.Cursor != nil {
		m["cursor"] = a.Cursor.Wire()
	}
	putInt(m, "take", a.Take)
	putInt(m, "skip", a.Skip)
	a.Aggregates.wireInto(m)
	return m
}

// CountArgs are the arguments of count. Select is nil for a plain row
// count.
type CountArgs struct {
	Where   *Where
	OrderBy []OrderBy
	Cursor  *WhereUnique
	Take    *int64
	Skip    *int64
	Select  *AggregateSelect
}

func (*CountArgs) argsNode() {}

// Wire renders the canonical input shape.
func (a *CountArgs) Wire() any {
	m := map[string]any{}
	if a.Where != nil {
		m["where"] = a.Where.Wire()
	}
	if a.OrderBy != nil {
		m["orderBy"] = wireOrders(a.OrderBy)
	}
	if a.Cursor != nil {
		m["cursor"] = a.Cursor.Wire()
	}
	putInt(m, "take", a.Take)
	putInt(m, "skip", a.Skip)
	if a.Select != nil {
		m["select"] = a.Select.Wire()
	}
	return m
}

func putSelection(m map[string]any, sel, inc *Selection) {
	if sel != nil {
		m["select"] = sel.Wire()
	}
	if inc != nil {
		m["include"] = inc.Wire()
	}
}

// Fingerprint returns the domain-separated content hash of the wire form
// of args. Reads and writes hash in different domains.
func Fingerprint(op string, args Args) (string, error) {
	domain := ir.DomainRead
	if IsMutation(op) {
		domain = ir.DomainMutation
	}
	return ir.Fingerprint(domain, map[string]any{"op": op, "args": args.Wire()})
}

// Canonical returns the canonical JSON of the wire form of args.
func Canonical(args Args) ([]byte, error) {
	return ir.MarshalCanonical(args.Wire())
}
