// Package schema holds the entity registry that drives validation.
//
// Entities refer to each other through relations, and those references
// are cyclic: a Bookmark filter reaches User, whose filter reaches
// Bookmark again. Declarations therefore name their relation targets as
// strings, and Builder.Build resolves every name in three phases:
//
//  1. Allocate: every entity gets a slot in a name-indexed arena.
//  2. Link: every relation is bound to the arena pointer of its target and
//     to its inverse relation on the target.
//  3. Check: foreign keys, compound keys and relevance lists are verified
//     against the linked graph.
//
// The resulting Registry is immutable. It is built once at startup, passed
// explicitly to whoever needs it, and is safe for unbounded concurrent use.
package schema
