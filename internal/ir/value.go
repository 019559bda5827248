package ir

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
	"unicode/utf16"
)

// IRValue is a sealed interface representing constrained value types.
// Only IRNull, IRString, IRInt, IRFloat, IRBool, IRTime, IRArray, IRObject
// and NullMarker implement this.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents an explicit null literal (relational null for scalar
// columns). JSON columns never carry IRNull; they carry a NullMarker instead.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value in the IR.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value in the IR.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat represents a non-integral number. It only appears inside JSON
// documents and aggregate filters.
type IRFloat float64

func (IRFloat) irValue() {}

// IRBool represents a boolean value in the IR.
type IRBool bool

func (IRBool) irValue() {}

// IRTime represents a timestamp. Always UTC.
type IRTime time.Time

func (IRTime) irValue() {}

// Time returns the underlying time.Time.
func (t IRTime) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON renders the timestamp as RFC 3339 with nanoseconds.
func (t IRTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time().UTC().Format(time.RFC3339Nano))
}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// NewIRTime creates an IRTime normalized to UTC.
func NewIRTime(t time.Time) IRTime {
	return IRTime(t.UTC())
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 byte order, which differs for astral planes.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering
// as required by RFC 8785 (Canonical JSON).
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// FromJSON converts a decoded JSON document (as produced by encoding/json or
// yaml.v3 into `any`) to an IRValue. Integral numbers become IRInt, other
// numbers IRFloat, and null becomes IRNull.
func FromJSON(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return IRFloat(float64(val)), nil
		}
		return IRInt(val), nil
	case float32:
		return numberFromFloat(float64(val)), nil
	case float64:
		return numberFromFloat(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return IRInt(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val, err)
		}
		return IRFloat(f), nil
	case time.Time:
		return NewIRTime(val), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// numberFromFloat keeps integral floats (the encoding/json default for every
// number) as IRInt so that 3 and 3.0 normalize identically. The upper bound
// is exclusive: float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
func numberFromFloat(f float64) IRValue {
	if f == math.Trunc(f) && f >= -(1<<63) && f < 1<<63 {
		return IRInt(int64(f))
	}
	return IRFloat(f)
}

// Wire converts an IRValue back to the plain Go shape accepted on input.
// Markers render as their wire tokens and timestamps as RFC 3339 strings.
func Wire(v IRValue) any {
	switch val := v.(type) {
	case nil, IRNull:
		return nil
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRFloat:
		return float64(val)
	case IRBool:
		return bool(val)
	case IRTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case NullMarker:
		return val.Token()
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Wire(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = Wire(elem)
		}
		return out
	default:
		return nil
	}
}

// Equal reports whether two IRValues are structurally identical.
// Markers are only equal to the same marker.
func Equal(a, b IRValue) bool {
	switch av := a.(type) {
	case nil:
		return b == nil
	case IRNull:
		_, ok := b.(IRNull)
		return ok
	case IRString:
		bv, ok := b.(IRString)
		return ok && av == bv
	case IRInt:
		switch bv := b.(type) {
		case IRInt:
			return av == bv
		case IRFloat:
			return float64(av) == float64(bv)
		}
		return false
	case IRFloat:
		switch bv := b.(type) {
		case IRFloat:
			return av == bv
		case IRInt:
			return float64(av) == float64(bv)
		}
		return false
	case IRBool:
		bv, ok := b.(IRBool)
		return ok && av == bv
	case IRTime:
		bv, ok := b.(IRTime)
		return ok && av.Time().Equal(bv.Time())
	case NullMarker:
		bv, ok := b.(NullMarker)
		return ok && av == bv
	case IRArray:
		bv, ok := b.(IRArray)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case IRObject:
		bv, ok := b.(IRObject)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, exists := bv[k]
			if !exists || !Equal(v, other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
