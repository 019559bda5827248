package validator

import (
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/schema"
	"github.com/roach88/querygate/internal/verror"
)

// aggregateInputName is the shape name prefix of an aggregate function:
// "_avg" becomes "Avg".
func aggregateInputName(fn string) string {
	switch fn {
	case queryir.AggCount:
		return "Count"
	case queryir.AggAvg:
		return "Avg"
	case queryir.AggSum:
		return "Sum"
	case queryir.AggMin:
		return "Min"
	case queryir.AggMax:
		return "Max"
	default:
		return ""
	}
}

// aggregateApplies reports whether fn can be computed over f: _avg and
// _sum need a numeric field, _min and _max a comparable one, and _count
// takes any field.
func aggregateApplies(fn string, f *schema.Field, path verror.Path) error {
	switch fn {
	case queryir.AggAvg, queryir.AggSum:
		if !f.Type.Summable() {
			return verror.Shape(path, "%s needs a numeric field, %s is %s", fn, f.Name, f.Type)
		}
	case queryir.AggMin, queryir.AggMax:
		if !f.Type.Comparable() {
			return verror.Shape(path, "%s needs a comparable field, %s is %s", fn, f.Name, f.Type)
		}
	}
	return nil
}

// aggregateSelect validates the selection of one aggregate function: a
// map from field name to boolean. `_count` also accepts `true` and the
// `_all` key for a row count. Disabled fields are dropped.
func aggregateSelect(e *schema.Entity, fn string, in any, path verror.Path) (*queryir.AggregateSelect, error) {
	inputName := e.InputName(aggregateInputName(fn) + "AggregateInput")

	if b, ok := in.(bool); ok && fn == queryir.AggCount {
		if !b {
			return &queryir.AggregateSelect{}, nil
		}
		return &queryir.AggregateSelect{All: true}, nil
	}

	obj, err := object(in, path, inputName)
	if err != nil {
		return nil, err
	}

	s := &queryir.AggregateSelect{}
	for _, key := range sortedKeys(obj) {
		p := path.Key(key)
		enabled, err := boolean(obj[key], p)
		if err != nil {
			return nil, err
		}

		if key == "_all" && fn == queryir.AggCount {
			s.All = enabled
			continue
		}

		f, ok := e.Field(key)
		if !ok {
			return nil, verror.UnknownKey(path, key, inputName)
		}
		if err := aggregateApplies(fn, f, p); err != nil {
			return nil, err
		}
		if enabled {
			s.Fields = append(s.Fields, key)
		}
	}
	return s, nil
}

// aggregates validates the _count/_avg/_sum/_min/_max keys of an
// envelope. Other keys are left to the caller.
func aggregates(e *schema.Entity, obj map[string]any, path verror.Path) (queryir.Aggregates, error) {
	var a queryir.Aggregates
	for _, fn := range queryir.AggregateFuncs {
		val, ok := obj[fn]
		if !ok {
			continue
		}
		s, err := aggregateSelect(e, fn, val, path.Key(fn))
		if err != nil {
			return a, err
		}
		switch fn {
		case queryir.AggCount:
			a.Count = s
		case queryir.AggAvg:
			a.Avg = s
		case queryir.AggSum:
			a.Sum = s
		case queryir.AggMin:
			a.Min = s
		case queryir.AggMax:
			a.Max = s
		}
	}
	return a, nil
}
