// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package builtins implements the shell's internal commands. Every
// command is a thin wrapper: paths go through the invocation's VFS,
// bytes go through the invocation's streams, and the heavy lifting
// lives in lib/cryptstore, lib/vfs, and the compression/hash
// libraries.
package builtins
