// Package store persists titles and login sessions in SQLite and maintains a
// full-text index over title metadata. Index synchronization is owned by
// schema triggers: a title mutation and its index effect are a single
// transactional unit, so no reader can observe a title without its matching
// index entry.
package store
