package queryir

// Selection is a select or include tree.
//
// Items are sorted by name. A scalar item carries only Enabled. A relation
// item carries Args when the caller passed nested arguments instead of a
// boolean. The `_count` item carries Count when it selects per-relation
// counts.
type Selection struct {
	Items []SelectItem
}

// SelectItem is one entry of a Selection.
type SelectItem struct {
	Name    string
	Enabled bool
	Args    *RelationArgs
	Count   *CountSelection
}

// Item returns the entry named name.
func (s *Selection) Item(name string) (SelectItem, bool) {
	if s == nil {
		return SelectItem{}, false
	}
	for _, it := range s.Items {
		if it.Name == name {
			return it, true
		}
	}
	return SelectItem{}, false
}

// Wire renders the canonical input shape.
func (s *Selection) Wire() any {
	m := make(map[string]any, len(s.Items))
	for _, it := range s.Items {
		switch {
		case it.Args != nil:
			m[it.Name] = it.Args.Wire()
		case it.Count != nil:
			m[it.Name] = it.Count.Wire()
		default:
			m[it.Name] = it.Enabled
		}
	}
	return m
}

// RelationArgs are the nested arguments of a selected relation. Only
// Select and Include apply to to-one relations.
type RelationArgs struct {
	Select   *Selection
	Include  *Selection
	Where    *Where
	OrderBy  []OrderBy
	Cursor   *WhereUnique
	Take     *int64
	Skip     *int64
	Distinct []string
}

// Wire renders the canonical input shape.
func (a *RelationArgs) Wire() any {
	m := map[string]any{}
	if a.Select != nil {
		m["select"] = a.Select.Wire()
	}
	if a.Include != nil {
		m["include"] = a.Include.Wire()
	}
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
	return m
}

// CountSelection selects counts of to-many relations.
type CountSelection struct {
	Relations []CountRelation // sorted by relation name
}

// CountRelation is one counted relation, optionally filtered.
type CountRelation struct {
	Relation string
	Enabled  bool
	Where    *Where
}

// Wire renders `{select: {relation: bool | {where}}}`.
func (c *CountSelection) Wire() any {
	sel := make(map[string]any, len(c.Relations))
	for _, r := range c.Relations {
		if r.Where != nil {
			sel[r.Relation] = map[string]any{"where": r.Where.Wire()}
			continue
		}
		sel[r.Relation] = r.Enabled
	}
	return map[string]any{"select": sel}
}

func putInt(m map[string]any, key string, v *int64) {
	if v != nil {
		m[key] = *v
	}
}

func putStrings(m map[string]any, key string, vs []string) {
	if vs == nil {
		return
	}
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	m[key] = out
}
