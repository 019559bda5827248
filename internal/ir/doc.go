// Package ir provides the literal value types carried by normalized query and
// mutation trees.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal. This keeps it the foundational layer
// with no circular dependencies.
//
// Key design constraints:
//   - IRValue is a sealed interface: only the types in this package implement it
//   - The three null concepts of JSON columns (DbNull, JsonNull, AnyNull) are
//     distinct NullMarker values and never compare equal to IRNull or each other
//   - Timestamps are normalized to UTC
//   - Canonical JSON (MarshalCanonical) is the only serialization used for
//     fingerprints and golden files
package ir
