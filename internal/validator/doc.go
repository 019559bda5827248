// Package validator turns untrusted operation inputs into normalized
// queryir trees.
//
// A Validator wraps an immutable schema.Registry. Every method takes an
// entity name and an untyped input tree, as decoded by encoding/json or
// yaml.v3 into `any`, and returns either the normalized arguments or a
// *verror.Error that names the kind of violation and the path at which it
// was found. Validation is single pass: the first violation aborts the
// whole input.
//
// Objects are closed: any key the entity does not declare is rejected.
// Keys are visited in sorted order, so the reported error for a given
// input never changes between runs.
//
// Every normalized tree renders back to input form with Wire, and
// validating that rendering again yields an identical tree.
package validator
