// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package cryptstore implements the encrypted hierarchical store that
// backs one virtual mount.
//
// A store is a SQLite database held entirely in memory while open. The
// on-disk container is an age scrypt-sealed image of that database:
// Open decrypts the container with the passphrase-derived identity and
// deserializes it into a fresh in-memory connection; every mutating
// operation re-serializes the database and atomically rewrites the
// container (temp file + rename). The container bytes are never
// decodable without the passphrase, and a crash between flushes loses
// at most the operation in flight.
//
// The schema is two tables keyed by normalized path:
//
//	files(path PRIMARY KEY, content BLOB, size INTEGER, mtime INTEGER)
//	directories(path PRIMARY KEY, parent TEXT, mtime INTEGER)
//
// A path is either a file, a directory, or absent — never both. The
// root directory "/" always exists once a store is open. Ancestor
// directories are created implicitly on first write beneath them.
//
// The quota is enforced in the engine's own allocation unit: the page
// size is fixed at creation and max_page_count is derived from the
// configured quota on every open, so a write that would grow the
// database past the cap fails with SQLITE_FULL and rolls back.
package cryptstore
