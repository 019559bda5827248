package queryir

// Aggregate function names.
const (
	AggCount = "_count"
	AggAvg   = "_avg"
	AggSum   = "_sum"
	AggMin   = "_min"
	AggMax   = "_max"
)

// AggregateFuncs lists the aggregate functions in wire order.
var AggregateFuncs = []string{AggCount, AggAvg, AggSum, AggMin, AggMax}

// AggregateSelect names the fields an aggregate function is computed over.
// All is only meaningful for _count and stands for `_all` (row count).
type AggregateSelect struct {
	All    bool
	Fields []string // sorted
}

// Wire renders `true` for a bare row count, otherwise `{_all?, field: true}`.
func (s *AggregateSelect) Wire() any {
	if s.All && len(s.Fields) == 0 {
		return true
	}
	m := make(map[string]any, len(s.Fields)+1)
	if s.All {
		m["_all"] = true
	}
	for _, f := range s.Fields {
		m[f] = true
	}
	return m
}

// Aggregates is the aggregate selection of a group-by or aggregate query.
type Aggregates struct {
	Count *AggregateSelect
	Avg   *AggregateSelect
	Sum   *AggregateSelect
	Min   *AggregateSelect
	Max   *AggregateSelect
}

// Get returns the selection for an aggregate function name.
func (a Aggregates) Get(fn string) *AggregateSelect {
	switch fn {
	case AggCount:
		return a.Count
	case AggAvg:
		return a.Avg
	case AggSum:
		return a.Sum
	case AggMin:
		return a.Min
	case AggMax:
		return a.Max
	default:
		return nil
	}
}

// IsEmpty reports whether no aggregate is selected.
func (a Aggregates) IsEmpty() bool {
	return a.Count == nil && a.Avg == nil && a.Sum == nil && a.Min == nil && a.Max == nil
}

func (a Aggregates) wireInto(m map[string]any) {
	for _, fn := range AggregateFuncs {
		if s := a.Get(fn); s != nil {
			m[fn] = s.Wire()
		}
	}
}
