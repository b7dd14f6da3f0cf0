// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for mount passphrases.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// locks it into physical RAM via mlock (preventing swap), and marks it
// excluded from core dumps via madvise(MADV_DONTDUMP). On Close, the
// memory is zeroed, unlocked, and unmapped.
//
// Because the memory is allocated outside the Go heap, the garbage
// collector never sees it and cannot copy or relocate it. A passphrase
// read at the mount prompt lives in a Buffer from the moment it leaves
// the terminal until the container key has been derived from it.
package secret
