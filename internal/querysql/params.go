package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/scalar"
)

// TimeLayout is the storage form of DateTime columns. It is fixed width so
// that text comparison orders timestamps chronologically.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// jsonNullText is the stored document of a JsonNull column.
const jsonNullText = "null"

// ColumnValue converts a normalized value to the parameter bound for a
// column of type t.
//
// Scalar lists and JSON columns are stored as canonical JSON text. On a JSON
// column DbNull binds SQL NULL and JsonNull binds the document "null".
func ColumnValue(t scalar.Type, v ir.IRValue) (any, error) {
	if t.List || t.Kind == scalar.Json {
		switch val := v.(type) {
		case nil, ir.IRNull:
			return nil, nil
		case ir.NullMarker:
			if val == ir.JsonNull {
				return jsonNullText, nil
			}
			if val == ir.DbNull {
				return nil, nil
			}
			return nil, fmt.Errorf("null marker %s cannot be stored", val)
		}
		return jsonText(v)
	}
	return irValueToParam(v)
}

// irValueToParam converts a scalar IRValue to a driver parameter.
// Values are never interpolated into SQL text.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRFloat:
		return float64(val), nil
	case ir.IRBool:
		return bool(val), nil
	case ir.IRTime:
		return formatTime(val.Time()), nil
	case ir.IRNull, nil:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	case ir.NullMarker:
		return nil, fmt.Errorf("null marker %s cannot be used as SQL parameter directly", val)
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}

// jsonElementParam converts a value compared against the SQL value of a JSON
// element. SQLite hands scalar elements back as SQL values and composite
// elements as JSON text.
func jsonElementParam(v ir.IRValue) (any, error) {
	switch v.(type) {
	case ir.IRArray, ir.IRObject:
		return jsonText(v)
	default:
		return irValueToParam(v)
	}
}

// jsonText renders v as canonical JSON, with timestamps in TimeLayout.
func jsonText(v ir.IRValue) (string, error) {
	data, err := ir.MarshalCanonical(storageForm(v))
	if err != nil {
		return "", fmt.Errorf("encode JSON column: %w", err)
	}
	return string(data), nil
}

func storageForm(v ir.IRValue) ir.IRValue {
	switch val := v.(type) {
	case ir.IRTime:
		return ir.IRString(formatTime(val.Time()))
	case ir.IRArray:
		out := make(ir.IRArray, len(val))
		for i, elem := range val {
			out[i] = storageForm(elem)
		}
		return out
	case ir.IRObject:
		out := make(ir.IRObject, len(val))
		for k, elem := range val {
			out[k] = storageForm(elem)
		}
		return out
	default:
		return v
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored DateTime column.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		// Rows written by other tools may use plain RFC 3339.
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2.UTC(), nil
		}
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// jsonPath renders a JSON path for SQLite's json functions: `$."a"."b"`.
func jsonPath(segments []string) (string, error) {
	var b strings.Builder
	b.WriteString("$")
	for _, seg := range segments {
		if strings.ContainsAny(seg, `"`) {
			return "", fmt.Errorf("JSON path segment %q cannot contain a double quote", seg)
		}
		b.WriteString(`."`)
		b.WriteString(seg)
		b.WriteString(`"`)
	}
	return b.String(), nil
}

// ident quotes an SQL identifier.
func ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// column renders alias."name".
func column(alias, name string) string {
	return alias + "." + ident(name)
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
