// Package sqlite provides a SQLite-backed driven.CollectionStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Embeddings are stored as little-endian float32 blobs and
// similarity search is a cosine scan over the rows of one collection,
// narrowed in SQL by the source filter.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default the database is stored at ~/.docqa/data/index.db.
//
// # Atomicity
//
// Replace runs in a single transaction, so readers see either the previous
// chunk set or the new one. The database runs in WAL mode.
package sqlite
