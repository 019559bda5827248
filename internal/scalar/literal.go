package scalar

import (
	"fmt"
	"time"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/nulls"
	"github.com/roach88/querygate/internal/verror"
)

// Literal validates a single non-list, non-JSON value against t.
//
// null is accepted only when t is nullable and yields ir.IRNull{}.
// Integral numbers are accepted for Float and become ir.IRFloat.
// DateTime accepts RFC 3339 strings and time.Time values.
func Literal(t Type, v any, path verror.Path) (ir.IRValue, error) {
	if isNull(v) {
		if t.Nullable {
			return ir.IRNull{}, nil
		}
		return nil, verror.Shape(path, "null is not allowed for %s", t)
	}

	val, err := ir.FromJSON(v)
	if err != nil {
		return nil, verror.Shape(path, "expected %s: %v", t.Kind, err)
	}

	switch t.Kind {
	case String:
		if s, ok := val.(ir.IRString); ok {
			return s, nil
		}
	case Int:
		if n, ok := val.(ir.IRInt); ok {
			return n, nil
		}
	case Float:
		switch n := val.(type) {
		case ir.IRFloat:
			return n, nil
		case ir.IRInt:
			return ir.IRFloat(float64(n)), nil
		}
	case Boolean:
		if b, ok := val.(ir.IRBool); ok {
			return b, nil
		}
	case DateTime:
		switch d := val.(type) {
		case ir.IRTime:
			return d, nil
		case ir.IRString:
			ts, err := time.Parse(time.RFC3339Nano, string(d))
			if err != nil {
				return nil, verror.Shape(path, "expected DateTime in RFC 3339 format, got %q", string(d))
			}
			return ir.NewIRTime(ts), nil
		}
	case Json:
		return nil, verror.Shape(path, "Json values are not scalar literals")
	}
	return nil, verror.Shape(path, "expected %s, got %s", t.Kind, describe(val))
}

// ListLiteral validates an array of elements of t. A single non-array
// value is accepted as a one-element list when single is true.
func ListLiteral(t Type, v any, path verror.Path, single bool) ([]ir.IRValue, error) {
	arr, ok := v.([]any)
	if !ok {
		if !single {
			return nil, verror.Shape(path, "expected a list of %s", t.Element())
		}
		lit, err := Literal(t, v, path)
		if err != nil {
			return nil, err
		}
		return []ir.IRValue{lit}, nil
	}
	out := make([]ir.IRValue, len(arr))
	for i, elem := range arr {
		lit, err := Literal(t, elem, path.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = lit
	}
	return out, nil
}

// WriteValue validates a value assigned to a column of type t on a
// create or update path.
//
// Json columns go through the write-context null normalizer. List columns
// take an array of non-null elements. Everything else is a Literal.
func WriteValue(t Type, v any, path verror.Path) (ir.IRValue, error) {
	switch {
	case t.Kind == Json && !t.List:
		if isNull(v) && !t.Nullable {
			return nil, verror.Shape(path, "null is not allowed for %s", t)
		}
		return nulls.Normalize(nulls.Write, v, path)
	case t.List:
		if isNull(v) {
			if t.Nullable {
				return ir.IRNull{}, nil
			}
			return nil, verror.Shape(path, "null is not allowed for %s", t)
		}
		elems, err := ListLiteral(t.Element(), v, path, false)
		if err != nil {
			return nil, err
		}
		return ir.IRArray(elems), nil
	default:
		return Literal(t, v, path)
	}
}

func isNull(v any) bool {
	switch v.(type) {
	case nil, ir.IRNull:
		return true
	default:
		return false
	}
}

// describe names the JSON type of a value for error messages.
func describe(v ir.IRValue) string {
	switch v.(type) {
	case ir.IRString:
		return "string"
	case ir.IRInt:
		return "integer"
	case ir.IRFloat:
		return "number"
	case ir.IRBool:
		return "boolean"
	case ir.IRTime:
		return "timestamp"
	case ir.IRArray:
		return "array"
	case ir.IRObject:
		return "object"
	case ir.IRNull:
		return "null"
	case ir.NullMarker:
		return "null marker"
	default:
		return fmt.Sprintf("%T", v)
	}
}
