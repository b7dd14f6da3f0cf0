// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package shell holds the command model shared by the REPL, the
// pipeline executor, and every builtin: the command registry, the
// session (the one explicitly-constructed context object threaded
// through the whole program), and the Invocation capability struct
// that gives a builtin its stdio, its filesystem view, and nothing
// else.
//
// Builtins never touch os.Stdin/os.Stdout and never call os filesystem
// primitives directly: streams come from the Invocation and paths go
// through the Invocation's VFS, so encrypted mounts and pipeline
// redirection are honored without the builtin knowing either exists.
package shell
