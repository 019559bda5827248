// Package store is a SQLite reference store for validated operations.
//
// Tables are derived from the schema registry: one table per entity, one
// column per scalar field, unique keys as constraints and owning relations
// as foreign keys. Reads run through the querysql compiler, so every read
// the store executes is a single parameterized statement.
//
// # Column encoding
//
//   - DateTime: fixed width UTC text (querysql.TimeLayout)
//   - Boolean: INTEGER 0/1
//   - Json: canonical JSON text; DbNull is SQL NULL, JsonNull the text "null"
//   - scalar lists: canonical JSON array text, never NULL
//
// # Deterministic Query Results
//
// Every read orders by the primary key last, with COLLATE BINARY, so
// identical databases return identical rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
