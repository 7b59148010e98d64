// Package store provides a SQLite index of the graphical entities of
// loaded documents, used by the command line tools to query and group
// entities without reloading files.
//
// The index holds:
//   - Documents: one row per indexed path with version and encoding
//   - Entities: handle, type, layer, owner and containing layout or block
//   - Attributes: the first value of each group code of an entity
//
// # Ordering
//
// Every entity row carries seq, its position in layout tab order
// followed by block definition order. Entity queries order by seq ASC,
// grouped counts by count DESC and key ASC COLLATE BINARY, so results
// do not depend on insertion order.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Re-indexing a path cascades to its entities
package store
