// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package cryptstore

import "errors"

// Sentinel errors returned by store operations. Callers distinguish
// outcome kinds with errors.Is; anything not matching one of these is
// an underlying storage failure.
var (
	// ErrNotExist is returned when the path names nothing in the store.
	ErrNotExist = errors.New("cryptstore: path does not exist")

	// ErrExist is returned when a directory is requested at a path
	// already occupied by a file.
	ErrExist = errors.New("cryptstore: path already exists as a file")

	// ErrNotDirectory is returned when a directory operation hits a
	// file, including a file occupying an ancestor position.
	ErrNotDirectory = errors.New("cryptstore: not a directory")

	// ErrIsDirectory is returned when a file operation hits a directory.
	ErrIsDirectory = errors.New("cryptstore: is a directory")

	// ErrQuotaExceeded is returned when a write would grow the store
	// past its configured quota. The write is rolled back.
	ErrQuotaExceeded = errors.New("cryptstore: quota exceeded")

	// ErrBadPassphrase is returned by Open when the container exists
	// but the passphrase does not unseal it.
	ErrBadPassphrase = errors.New("cryptstore: wrong passphrase")

	// ErrClosed is returned by operations on a store that has been
	// closed or never opened.
	ErrClosed = errors.New("cryptstore: store is closed")
)
