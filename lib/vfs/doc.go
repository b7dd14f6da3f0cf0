// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package vfs unifies the real filesystem and any number of encrypted
// mounts behind one path-based API.
//
// A VFS value pairs a shared mount table with its own current working
// directory. Every operation resolves its path argument once — made
// absolute against the working directory, "." and ".." collapsed —
// and dispatches to either the os package or the encrypted store that
// owns the longest matching mount-point prefix.
//
// Clone returns a VFS sharing the mount table but with an independent
// working directory. Pipeline stages run against clones, which is why
// a cd inside a pipeline never moves the shell's own prompt: the
// non-effect is an explicit property of the clone, not an accident of
// process isolation.
package vfs
