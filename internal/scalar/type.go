// Package scalar defines the scalar column types and, for each of them,
// the operator set accepted when filtering a field of that type.
//
// Every function is pure. A filter either normalizes (bare values are
// expanded to `{equals: v}`) or fails with a shape mismatch that names the
// offending operator and the expected type.
package scalar

import "strings"

// Kind is the base type of a column.
type Kind uint8

const (
	String Kind = iota + 1
	Int
	Float
	Boolean
	DateTime
	Json
)

var kindNames = map[Kind]string{
	String:   "String",
	Int:      "Int",
	Float:    "Float",
	Boolean:  "Boolean",
	DateTime: "DateTime",
	Json:     "Json",
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ParseKind returns the kind named s ("String", "Int", ...).
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Ordered reports whether the kind accepts lt/lte/gt/gte.
func (k Kind) Ordered() bool {
	return k == String || k == Int || k == Float || k == DateTime
}

// Numeric reports whether the kind accepts arithmetic.
func (k Kind) Numeric() bool {
	return k == Int || k == Float
}

// Type is a column type: a kind plus the nullable and list modifiers.
type Type struct {
	Kind     Kind
	Nullable bool
	List     bool
}

// ParseType parses the schema notation: "String", "Int?", "String[]".
func ParseType(s string) (Type, bool) {
	var t Type
	switch {
	case strings.HasSuffix(s, "[]"):
		t.List = true
		s = strings.TrimSuffix(s, "[]")
	case strings.HasSuffix(s, "?"):
		t.Nullable = true
		s = strings.TrimSuffix(s, "?")
	}
	k, ok := ParseKind(s)
	if !ok {
		return Type{}, false
	}
	t.Kind = k
	return t, true
}

// String renders the schema notation of t.
func (t Type) String() string {
	s := t.Kind.String()
	if t.List {
		s += "[]"
	}
	if t.Nullable {
		s += "?"
	}
	return s
}

// Element returns the type of one list element.
func (t Type) Element() Type {
	return Type{Kind: t.Kind}
}

// NonNull returns t without the nullable modifier.
func (t Type) NonNull() Type {
	t.Nullable = false
	return t
}

// Orderable reports whether a field of this type can be sorted on.
func (t Type) Orderable() bool {
	return !t.List && t.Kind != Json
}

// Summable reports whether _avg and _sum apply.
func (t Type) Summable() bool {
	return !t.List && t.Kind.Numeric()
}

// Comparable reports whether _min and _max apply.
func (t Type) Comparable() bool {
	return !t.List && t.Kind != Json
}
