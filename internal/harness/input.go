package harness

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseInput decodes an operation input written as JSON or YAML.
// Documents starting with '{' or '[' are read as JSON, everything else as
// YAML. Integers stay exact in both forms.
func ParseInput(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var v any
	if trimmed[0] == '{' || trimmed[0] == '[' {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("parse JSON input: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("parse JSON input: trailing data after document")
		}
	} else if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, fmt.Errorf("parse YAML input: %w", err)
	}
	return normalizeInput(v)
}

// normalizeInput converts decoded YAML or JSON into the plain shapes the
// validator accepts: map[string]any, []any, string, bool, int64, float64
// and nil.
func normalizeInput(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := normalizeInput(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v is not a string", k)
			}
			n, err := normalizeInput(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = n
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := normalizeInput(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s: %w", val, err)
		}
		return f, nil
	case int:
		return int64(val), nil
	case uint64:
		return float64(val), nil
	case nil, string, bool, int64, float64:
		return val, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %T", v)
	}
}
