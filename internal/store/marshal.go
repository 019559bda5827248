package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/querysql"
	"github.com/roach88/querygate/internal/scalar"
)

// Row is one stored row keyed by field name.
type Row map[string]ir.IRValue

// Wire renders the row in the plain shape printed by the CLI.
func (r Row) Wire() map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = ir.Wire(v)
	}
	return out
}

// unmarshalColumn converts a scanned column of type t back to an IRValue.
func unmarshalColumn(t scalar.Type, raw any) (ir.IRValue, error) {
	if raw == nil {
		return ir.IRNull{}, nil
	}
	if t.List {
		return unmarshalList(t.Element(), raw)
	}

	switch t.Kind {
	case scalar.String:
		return ir.IRString(text(raw)), nil
	case scalar.Int:
		n, ok := raw.(int64)
		if !ok {
			return nil, fmt.Errorf("expected integer, got %T", raw)
		}
		return ir.IRInt(n), nil
	case scalar.Float:
		switch n := raw.(type) {
		case float64:
			return ir.IRFloat(n), nil
		case int64:
			return ir.IRFloat(float64(n)), nil
		}
		return nil, fmt.Errorf("expected number, got %T", raw)
	case scalar.Boolean:
		switch b := raw.(type) {
		case int64:
			return ir.IRBool(b != 0), nil
		case bool:
			return ir.IRBool(b), nil
		}
		return nil, fmt.Errorf("expected boolean, got %T", raw)
	case scalar.DateTime:
		ts, err := querysql.ParseTime(text(raw))
		if err != nil {
			return nil, err
		}
		return ir.NewIRTime(ts), nil
	case scalar.Json:
		doc := text(raw)
		if doc == "null" {
			return ir.JsonNull, nil
		}
		return unmarshalDocument(doc)
	default:
		return nil, fmt.Errorf("unsupported column type %s", t)
	}
}

// unmarshalList parses a stored JSON array of elem values.
func unmarshalList(elem scalar.Type, raw any) (ir.IRValue, error) {
	doc, err := unmarshalDocument(text(raw))
	if err != nil {
		return nil, err
	}
	arr, ok := doc.(ir.IRArray)
	if !ok {
		return nil, fmt.Errorf("expected JSON array, got %T", doc)
	}
	if elem.Kind != scalar.DateTime {
		return arr, nil
	}
	out := make(ir.IRArray, len(arr))
	for i, v := range arr {
		s, ok := v.(ir.IRString)
		if !ok {
			return nil, fmt.Errorf("list[%d]: expected timestamp text, got %T", i, v)
		}
		ts, err := querysql.ParseTime(string(s))
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		out[i] = ir.NewIRTime(ts)
	}
	return out, nil
}

// unmarshalDocument parses JSON text, keeping integers exact via json.Number
// to avoid float64 precision loss for values > 2^53.
func unmarshalDocument(doc string) (ir.IRValue, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(doc)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("unmarshal JSON column: %w", err)
	}
	return ir.FromJSON(v)
}

func text(raw any) string {
	switch s := raw.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(raw)
	}
}
