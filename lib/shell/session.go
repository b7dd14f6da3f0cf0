// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/vaultshell/vsh/lib/vfs"
)

// Session is the explicit context object for one shell instance. It is
// constructed in main and passed by reference into the REPL, the
// pipeline executor, and every builtin invocation — there are no
// package-level registries.
type Session struct {
	// Registry holds the builtins.
	Registry *Registry

	// FS is the shell's own view of the unified namespace. Pipeline
	// stages receive clones of it.
	FS *vfs.VFS

	// Logger receives operational messages.
	Logger *slog.Logger

	// Stdin, Stdout, Stderr are the shell's terminal streams. Single
	// (non-piped) commands run against these directly.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Color enables styled output for commands running on the
	// terminal. Pipeline stages always run with color off.
	Color bool

	// DefaultQuotaBytes is applied to mounts created without an
	// explicit quota.
	DefaultQuotaBytes int64

	// ScryptWorkFactor overrides the container key derivation cost.
	// Zero keeps the age default; tests lower it.
	ScryptWorkFactor int

	// interrupted is the cooperative cancellation flag. The SIGINT
	// handler sets it; long-running builtins poll it between blocking
	// steps and wind down when it flips.
	interrupted atomic.Bool
}

// Interrupt sets the cooperative cancellation flag.
func (s *Session) Interrupt() {
	s.interrupted.Store(true)
}

// Interrupted reports whether an interrupt is pending.
func (s *Session) Interrupted() bool {
	return s.interrupted.Load()
}

// ClearInterrupt resets the flag before the next prompt.
func (s *Session) ClearInterrupt() {
	s.interrupted.Store(false)
}

// Invocation is the capability struct handed to a builtin: its streams,
// its filesystem view, and its arguments. Builtins running as pipeline
// stages get pipe-backed streams and a cloned FS; builtins running
// directly get the session's terminal streams and the session's own FS.
type Invocation struct {
	// Session is the owning session. Mount-table mutations (mount,
	// unmount) and interrupt polling go through it.
	Session *Session

	// FS resolves every path argument.
	FS *vfs.VFS

	// Args are the arguments after the command name.
	Args []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Color is false whenever output is not the terminal (pipeline
	// stages, redirected stdout).
	Color bool
}
