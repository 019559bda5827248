package ir

import (
	"encoding/json"
	"fmt"
)

// NullMarker is one of the three disjoint null concepts of JSON columns.
type NullMarker uint8

const (
	// DbNull: the column itself holds the relational null.
	DbNull NullMarker = iota + 1
	// JsonNull: the column holds a JSON document whose value is the literal null.
	JsonNull
	// AnyNull matches either of the above. Filter context only.
	AnyNull
)

// Wire tokens for the markers.
const (
	TokenDbNull   = "DbNull"
	TokenJsonNull = "JsonNull"
	TokenAnyNull  = "AnyNull"
)

func (NullMarker) irValue() {}

// Token returns the wire token of the marker.
func (m NullMarker) Token() string {
	switch m {
	case DbNull:
		return TokenDbNull
	case JsonNull:
		return TokenJsonNull
	case AnyNull:
		return TokenAnyNull
	default:
		return fmt.Sprintf("NullMarker(%d)", uint8(m))
	}
}

// String implements fmt.Stringer.
func (m NullMarker) String() string {
	return m.Token()
}

// MarshalJSON renders the marker as its wire token.
func (m NullMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Token())
}

// MarkerForToken returns the marker named by a wire token.
func MarkerForToken(token string) (NullMarker, bool) {
	switch token {
	case TokenDbNull:
		return DbNull, true
	case TokenJsonNull:
		return JsonNull, true
	case TokenAnyNull:
		return AnyNull, true
	default:
		return 0, false
	}
}
