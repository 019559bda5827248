package queryir

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Null placements for nullable columns.
const (
	NullsFirst = "first"
	NullsLast  = "last"
)

// OrderBy is one entry of a multi-key sort.
//
// This is a sealed interface - only types in this package implement it.
//
// OrderBy types:
//   - FieldOrder: a scalar column
//   - RelationOrder: a column reached through a to-one relation
//   - RelationCountOrder: the number of rows of a to-many relation
//   - RelevanceOrder: free-text match quality
//   - AggregateOrder: an aggregate of a column (group-by only)
//
// Entries compose as a stable sort: the first entry is the primary key,
// later entries break ties in order.
type OrderBy interface {
	orderNode() // Marker method - seals interface to this package
	Wire() any
}

// FieldOrder sorts by a scalar column. Nulls is empty unless given.
type FieldOrder struct {
	Field string
	Sort  string
	Nulls string
}

func (FieldOrder) orderNode() {}

// Wire renders `{field: sort}` or `{field: {sort, nulls}}`.
func (o FieldOrder) Wire() any {
	if o.Nulls == "" {
		return map[string]any{o.Field: o.Sort}
	}
	return map[string]any{o.Field: map[string]any{"sort": o.Sort, "nulls": o.Nulls}}
}

// RelationOrder sorts by an order entry of the related entity.
type RelationOrder struct {
	Relation string
	Order    OrderBy
}

func (RelationOrder) orderNode() {}

// Wire renders `{relation: <order>}`.
func (o RelationOrder) Wire() any {
	return map[string]any{o.Relation: o.Order.Wire()}
}

// RelationCountOrder sorts by the number of related rows.
type RelationCountOrder struct {
	Relation string
	Sort     string
}

func (RelationCountOrder) orderNode() {}

// Wire renders `{relation: {_count: sort}}`.
func (o RelationCountOrder) Wire() any {
	return map[string]any{o.Relation: map[string]any{"_count": o.Sort}}
}

// RelevanceOrder sorts by how well Fields match Search.
type RelevanceOrder struct {
	Fields []string
	Sort   string
	Search string
}

func (RelevanceOrder) orderNode() {}

// Wire renders `{_relevance: {fields, sort, search}}`.
func (o RelevanceOrder) Wire() any {
	fields := make([]any, len(o.Fields))
	for i, f := range o.Fields {
		fields[i] = f
	}
	return map[string]any{"_relevance": map[string]any{
		"fields": fields,
		"sort":   o.Sort,
		"search": o.Search,
	}}
}

// AggregateOrder sorts groups by an aggregate of a column.
// Aggregate is one of "_count", "_avg", "_sum", "_min", "_max".
type AggregateOrder struct {
	Aggregate string
	Field     string
	Sort      string
}

func (AggregateOrder) orderNode() {}

// Wire renders `{_avg: {field: sort}}`.
func (o AggregateOrder) Wire() any {
	return map[string]any{o.Aggregate: map[string]any{o.Field: o.Sort}}
}

func wireOrders(os []OrderBy) []any {
	out := make([]any, len(os))
	for i, o := range os {
		out[i] = o.Wire()
	}
	return out
}
