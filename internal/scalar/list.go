package scalar

import (
	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

// ListFilter validates a filter over a scalar list column.
//
// The accepted predicates are equals (whole list), has (contains one),
// hasEvery (contains all of), hasSome (contains any of) and isEmpty. A bare
// array is shorthand for `{equals: array}`.
func ListFilter(t Type, v any, path verror.Path) (*queryir.ListFilter, error) {
	if arr, ok := v.([]any); ok {
		elems, err := ListLiteral(t.Element(), arr, path, false)
		if err != nil {
			return nil, err
		}
		return &queryir.ListFilter{Equals: ir.IRArray(elems)}, nil
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, verror.Shape(path, "expected a list or a %s object", filterName(t))
	}

	f := &queryir.ListFilter{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)
		var err error

		switch key {
		case "equals":
			if isNull(val) && t.Nullable {
				f.Equals = ir.IRNull{}
				continue
			}
			var elems []ir.IRValue
			elems, err = ListLiteral(t.Element(), val, p, false)
			if err == nil {
				f.Equals = ir.IRArray(elems)
			}
		case "has":
			f.Has, err = Literal(t.Element(), val, p)
		case "hasEvery":
			f.HasEvery, err = ListLiteral(t.Element(), val, p, true)
		case "hasSome":
			f.HasSome, err = ListLiteral(t.Element(), val, p, true)
		case "isEmpty":
			b, ok := val.(bool)
			if !ok {
				return nil, verror.Shape(p, "expected boolean")
			}
			f.IsEmpty = &b
		default:
			return nil, verror.UnknownKey(path, key, filterName(t))
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}
