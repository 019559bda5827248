package scalar

import (
	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/nulls"
	"github.com/roach88/querygate/internal/queryir"
	"github.com/roach88/querygate/internal/verror"
)

// JSONFilter validates a filter over a Json column.
//
// An object is always read as an operator object; compare a whole
// document with `{equals: {...}}`. Any other value, including null and the
// null tokens, is shorthand for `{equals: value}` and goes through the
// filter-context null normalizer.
func JSONFilter(t Type, v any, path verror.Path) (*queryir.JSONFilter, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		val, err := nulls.Normalize(nulls.Filter, v, path)
		if err != nil {
			return nil, err
		}
		return &queryir.JSONFilter{Equals: val}, nil
	}

	f := &queryir.JSONFilter{}
	for _, key := range sortedKeys(obj) {
		val := obj[key]
		p := path.Key(key)
		var err error

		switch key {
		case "path":
			f.Path, err = jsonPath(val, p)
		case "equals":
			f.Equals, err = nulls.Normalize(nulls.Filter, val, p)
		case "not":
			f.Not, err = nulls.Normalize(nulls.Filter, val, p)
		case "in":
			f.In, err = jsonList(val, p)
		case "notIn":
			f.NotIn, err = jsonList(val, p)
		case "lt":
			f.Lt, err = jsonScalar(val, p)
		case "lte":
			f.Lte, err = jsonScalar(val, p)
		case "gt":
			f.Gt, err = jsonScalar(val, p)
		case "gte":
			f.Gte, err = jsonScalar(val, p)
		case "string_contains":
			f.StringContains, err = Literal(Type{Kind: String}, val, p)
		case "string_starts_with":
			f.StringStartsWith, err = Literal(Type{Kind: String}, val, p)
		case "string_ends_with":
			f.StringEndsWith, err = Literal(Type{Kind: String}, val, p)
		case "array_contains":
			f.ArrayContains, err = jsonDocument(val, p)
		case "array_starts_with":
			f.ArrayStartsWith, err = jsonDocument(val, p)
		case "array_ends_with":
			f.ArrayEndsWith, err = jsonDocument(val, p)
		case "mode":
			f.Mode, err = Enum(val, p, modes)
		default:
			return nil, verror.UnknownKey(path, key, filterName(t))
		}
		if err != nil {
			return nil, err
		}
	}
	return f, nil
}

// jsonPath accepts a list of keys or a single key.
func jsonPath(v any, path verror.Path) ([]string, error) {
	if s, ok := v.(string); ok {
		return []string{s}, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, verror.Shape(path, "expected a list of path keys")
	}
	out := make([]string, len(arr))
	for i, elem := range arr {
		s, ok := elem.(string)
		if !ok {
			return nil, verror.Shape(path.Index(i), "path keys must be strings")
		}
		out[i] = s
	}
	return out, nil
}

func jsonList(v any, path verror.Path) ([]ir.IRValue, error) {
	arr, ok := v.([]any)
	if !ok {
		val, err := nulls.Normalize(nulls.Filter, v, path)
		if err != nil {
			return nil, err
		}
		return []ir.IRValue{val}, nil
	}
	out := make([]ir.IRValue, len(arr))
	for i, elem := range arr {
		val, err := nulls.Normalize(nulls.Filter, elem, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

// jsonScalar accepts a number or a string for range comparisons.
func jsonScalar(v any, path verror.Path) (ir.IRValue, error) {
	val, err := ir.FromJSON(v)
	if err != nil {
		return nil, verror.Shape(path, "not a JSON value: %v", err)
	}
	switch val.(type) {
	case ir.IRInt, ir.IRFloat, ir.IRString:
		return val, nil
	default:
		return nil, verror.Shape(path, "expected a number or string, got %s", describe(val))
	}
}

// jsonDocument accepts any JSON value; null is the JSON literal here.
func jsonDocument(v any, path verror.Path) (ir.IRValue, error) {
	val, err := ir.FromJSON(v)
	if err != nil {
		return nil, verror.Shape(path, "not a JSON value: %v", err)
	}
	return val, nil
}
