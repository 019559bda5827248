// Package queryir defines the normalized representation produced by
// validation and consumed by query-execution collaborators.
//
// ARCHITECTURE:
//
// The validator turns an untrusted, untyped input tree into the values of
// this package. Backends never see raw input:
//
//	[wire JSON] → [validator] → [queryir] → [SQL renderer]
//	                                      → [other executors]
//
// Every node is an immutable value built fresh per call. Nothing in this
// package refers to the schema registry; names are plain strings that the
// validator has already checked.
//
// SEALED INTERFACES:
//
// Condition, OrderBy, RelationOp and Args are sealed interfaces using the
// marker method pattern. Only types in this package implement them, which
// gives backends exhaustive type switches:
//
//	switch c := cond.(type) {
//	case *ScalarFilter:
//	case *JSONFilter:
//	case *ListFilter:
//	case *ToOneFilter:
//	case *ToManyFilter:
//	}
//
// WIRE FORM:
//
// Every node has a Wire method that renders the canonical input shape of
// the node: bare filter values appear expanded (`{equals: v}`), single
// nested operations on to-many relations appear as one-element arrays,
// flattened compound keys appear under their key name. Feeding the wire
// form back into the validator yields an identical tree, so normalization
// is a fixed point. Fingerprint hashes the canonical JSON of the wire form.
//
// LITERALS:
//
// Literal values are ir.IRValue. JSON columns carry ir.NullMarker values
// for their null concepts and never ir.IRNull at the top level.
package queryir
