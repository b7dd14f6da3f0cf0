// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"context"
	"fmt"
	"sort"
)

// Builtin is one shell-internal command.
type Builtin struct {
	// Name is the command name as typed by the user.
	Name string

	// Summary is a one-line description shown by help.
	Summary string

	// Usage is the argument synopsis (e.g. "cat [-n] FILE...").
	Usage string

	// Run executes the command. Streams, filesystem view, and session
	// access all come from the Invocation. A nil return is exit
	// status 0; any error is status 1 unless it is an *ExitError.
	Run func(ctx context.Context, inv *Invocation) error
}

// Registry maps command names to builtins. It is constructed once at
// startup and never mutated afterwards, so lookups are safe from
// concurrent pipeline stages.
type Registry struct {
	commands map[string]*Builtin
}

// NewRegistry builds a registry from a builtin list. Duplicate names
// are a programming error and panic at startup.
func NewRegistry(builtins []*Builtin) *Registry {
	commands := make(map[string]*Builtin, len(builtins))
	for _, builtin := range builtins {
		if _, dup := commands[builtin.Name]; dup {
			panic(fmt.Sprintf("shell: duplicate builtin %q", builtin.Name))
		}
		commands[builtin.Name] = builtin
	}
	return &Registry{commands: commands}
}

// Lookup returns the builtin registered under name.
func (r *Registry) Lookup(name string) (*Builtin, bool) {
	builtin, ok := r.commands[name]
	return builtin, ok
}

// Names returns all registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExitError signals that the shell loop should terminate with the
// given status. The exit builtin returns it; the REPL unwraps it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}
