// Package nulls normalizes the three null concepts of JSON-valued fields.
//
// A JSON column can hold the relational null (DbNull), a JSON document whose
// value is the literal null (JsonNull), and in filters a caller may match
// either of the two (AnyNull). The wire carries them as the string tokens
// "DbNull", "JsonNull" and "AnyNull"; a bare null or an absent value means
// DbNull. Normalize maps every accepted input onto the disjoint markers of
// package ir and passes any other JSON value through as a document.
package nulls

import (
	"fmt"

	"github.com/roach88/querygate/internal/ir"
	"github.com/roach88/querygate/internal/verror"
)

// Context selects which tokens are legal.
type Context uint8

const (
	// Write is the context of create and update payloads.
	Write Context = iota + 1
	// Filter is the context of where and having clauses.
	Filter
)

// String implements fmt.Stringer.
func (c Context) String() string {
	switch c {
	case Write:
		return "write"
	case Filter:
		return "filter"
	default:
		return fmt.Sprintf("Context(%d)", uint8(c))
	}
}

// Normalize canonicalizes a JSON field value.
//
// nil and ir.IRNull map to DbNull. The tokens map to their markers, and a
// marker maps to itself, so Normalize is idempotent. AnyNull is rejected
// with a shape mismatch in the write context. Every other value is
// converted to its ir form unchanged.
func Normalize(ctx Context, v any, path verror.Path) (ir.IRValue, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return ir.DbNull, nil
	case ir.NullMarker:
		return checkMarker(ctx, val, path)
	case string:
		if m, ok := ir.MarkerForToken(val); ok {
			return checkMarker(ctx, m, path)
		}
	case ir.IRString:
		if m, ok := ir.MarkerForToken(string(val)); ok {
			return checkMarker(ctx, m, path)
		}
	}

	doc, err := ir.FromJSON(v)
	if err != nil {
		return nil, verror.Shape(path, "not a JSON value: %v", err)
	}
	return doc, nil
}

func checkMarker(ctx Context, m ir.NullMarker, path verror.Path) (ir.IRValue, error) {
	switch m {
	case ir.DbNull, ir.JsonNull:
		return m, nil
	case ir.AnyNull:
		if ctx == Filter {
			return m, nil
		}
		return nil, verror.Shape(path, "%s is only valid in filters, use one of %v", ir.TokenAnyNull, Tokens(ctx))
	default:
		return nil, verror.Shape(path, "unknown null marker %d", uint8(m))
	}
}

// Tokens returns the wire tokens accepted in ctx.
func Tokens(ctx Context) []string {
	if ctx == Filter {
		return []string{ir.TokenDbNull, ir.TokenJsonNull, ir.TokenAnyNull}
	}
	return []string{ir.TokenDbNull, ir.TokenJsonNull}
}
