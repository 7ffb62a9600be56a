/*
Package catalog persists the engine's schema metadata — databases,
collections and their column/index definitions, sequences, views and
macros (§4.1's catalog.otbx) — the same way pkg/storage/boltdb.go
persists Warren's cluster state: one bbolt file, one bucket per entity
kind, JSON-encoded values keyed by name.

The catalog is updated incrementally: pkg/engine calls the Store's
Put* and Drop* methods as each DDL statement is applied, and each call
commits its own bbolt transaction. Checkpoints do not rewrite it.
*/
package catalog
