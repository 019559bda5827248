package scalar

import (
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

// Mode values of string filters.
const (
	ModeDefault     = "default"
	ModeInsensitive = "insensitive"
)

var modes = []string{ModeDefault, ModeInsensitive}

// Options tunes filter parsing.
type Options struct {
	// Aggregates enables the _count/_avg/_sum/_min/_max sub-filters
	// accepted in having clauses.
	Aggregates bool
}

// Filter validates the filter of a field of type t and returns its
// normalized condition: a *queryir.ListFilter for list columns, a
// *queryir.JSONFilter for Json columns and a *queryir.ScalarFilter
// otherwise.
func Filter(t Type, v any, path verror.Path, opts Options) (queryir.Condition, error) {
	switch {
	case t.List:
		return ListFilter(t, v, path)
	case t.Kind == Json:
		return JSONFilter(t, v, path)
	default:
		return ScalarFilter(t, v, path, opts)
	}
}

// ScalarFilter validates a filter over a non-list, non-JSON column.
//
// A value that is not an object is shorthand for `{equals: value}`.
// Operators are visited in sorted key order so that the reported error is
// stable.
func ScalarFilter(t Type, v any, path verror.Path, opts Options) (*queryir.ScalarFilter, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		lit, err := Literal(t, v, path)
		if err != nil {
			return nil, err
		}
		return &queryir.ScalarFilter{Equals: lit}, nil
	}

	f := &queryir.ScalarFilter{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)
		var err error

		switch key {
		case "equals":
			f.Equals, err = Literal(t, val, p)
		case "in":
			f.In, err = ListLiteral(t, val, p, true)
		case "notIn":
			f.NotIn, err = ListLiteral(t, val, p, true)
		case "lt", "lte", "gt", "gte":
			if !t.Kind.Ordered() {
				return nil, unsupported(p, key, t)
			}
			var lit ir.IRValue
			lit, err = Literal(t.NonNull(), val, p)
			switch key {
			case "lt":
				f.Lt = lit
			case "lte":
				f.Lte = lit
			case "gt":
				f.Gt = lit
			case "gte":
				f.Gte = lit
			}
		case "contains", "startsWith", "endsWith":
			if t.Kind != String {
				return nil, unsupported(p, key, t)
			}
			var lit ir.IRValue
			lit, err = Literal(t.NonNull(), val, p)
			switch key {
			case "contains":
				f.Contains = lit
			case "startsWith":
				f.StartsWith = lit
			case "endsWith":
				f.EndsWith = lit
			}
		case "search":
			if t.Kind != String {
				return nil, unsupported(p, key, t)
			}
			var lit ir.IRValue
			lit, err = Literal(t.NonNull(), val, p)
			if err == nil {
				f.Search = ir.IRString(norm.NFC.String(string(lit.(ir.IRString))))
			}
		case "mode":
			if t.Kind != String {
				return nil, unsupported(p, key, t)
			}
			f.Mode, err = Enum(val, p, modes)
		case "not":
			f.Not, err = ScalarFilter(t, val, p, opts)
		case queryir.AggCount, queryir.AggAvg, queryir.AggSum, queryir.AggMin, queryir.AggMax:
			if !opts.Aggregates {
				return nil, verror.UnknownKey(path, key, filterName(t))
			}
			err = aggregateFilter(f, t, key, val, p)
		default:
			return nil, verror.UnknownKey(path, key, filterName(t))
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// aggregateFilter parses one aggregate sub-filter of a having clause.
// _count filters an Int; _avg a nullable Float; _sum, _min and _max a
// nullable value of the field's own kind.
func aggregateFilter(f *queryir.ScalarFilter, t Type, key string, val any, p verror.Path) error {
	var sub Type
	switch key {
	case queryir.AggCount:
		sub = Type{Kind: Int}
	case queryir.AggAvg:
		if !t.Summable() {
			return unsupported(p, key, t)
		}
		sub = Type{Kind: Float, Nullable: true}
	case queryir.AggSum:
		if !t.Summable() {
			return unsupported(p, key, t)
		}
		sub = Type{Kind: t.Kind, Nullable: true}
	case queryir.AggMin, queryir.AggMax:
		if !t.Comparable() {
			return unsupported(p, key, t)
		}
		sub = Type{Kind: t.Kind, Nullable: true}
	}

	parsed, err := ScalarFilter(sub, val, p, Options{})
	if err != nil {
		return err
	}
	switch key {
	case queryir.AggCount:
		f.Count = parsed
	case queryir.AggAvg:
		f.Avg = parsed
	case queryir.AggSum:
		f.Sum = parsed
	case queryir.AggMin:
		f.Min = parsed
	case queryir.AggMax:
		f.Max = parsed
	}
	return nil
}

func unsupported(path verror.Path, op string, t Type) error {
	return verror.Shape(path, "operator %s is not supported on %s", op, t)
}

func filterName(t Type) string {
	return fmt.Sprintf("%s filter", t)
}

// Enum validates that v is one of allowed and reports InvalidEnumValue
// otherwise.
func Enum(v any, path verror.Path, allowed []string) (string, error) {
	s, ok := v.(string)
	if !ok {
		if is, isIR := v.(ir.IRString); isIR {
			s, ok = string(is), true
		}
	}
	if !ok {
		return "", verror.Enum(path, v, allowed)
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", verror.Enum(path, s, allowed)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
