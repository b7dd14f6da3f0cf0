// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/vfs"
)

// Executor runs command lines for a session: plain commands directly,
// pipelines as connected concurrent stages.
type Executor struct {
	registry *shell.Registry
	logger   *slog.Logger
}

// New creates an executor over a command registry.
func New(registry *shell.Registry, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Executor{registry: registry, logger: logger}
}

// Run executes one raw command line and returns its terminal status.
// An empty line is a successful no-op. A single-stage line runs
// directly against the session's streams with redirect support; a
// multi-stage line becomes a pipeline.
func (e *Executor) Run(ctx context.Context, line string, session *shell.Session) Status {
	stages := Split(line)
	switch len(stages) {
	case 0:
		return succeed()
	case 1:
		return e.runSingle(ctx, stages[0], session)
	default:
		return e.runPipeline(ctx, stages, session)
	}
}

// runSingle executes a non-piped command against the session's own
// streams and filesystem view, so cd and mount take durable effect.
func (e *Executor) runSingle(ctx context.Context, stage string, session *shell.Session) Status {
	tokens := shell.Tokenize(stage)
	if len(tokens) == 0 {
		return succeed()
	}
	tokens, redirects, err := shell.ParseRedirects(tokens)
	if err != nil {
		return fail(ExitFailure, "%v", err)
	}
	if len(tokens) == 0 {
		return fail(ExitFailure, "redirect without a command")
	}
	name, args := tokens[0], tokens[1:]

	inv := &shell.Invocation{
		Session: session,
		FS:      session.FS,
		Args:    args,
		Stdin:   session.Stdin,
		Stdout:  session.Stdout,
		Stderr:  session.Stderr,
		Color:   session.Color,
	}
	finish := shell.ApplyRedirects(inv, redirects)

	if builtin, ok := e.registry.Lookup(name); ok {
		runErr := builtin.Run(ctx, inv)
		flushErr := finish()

		var exitErr *shell.ExitError
		if errors.As(runErr, &exitErr) {
			return Status{Code: exitErr.Code, Exit: true}
		}
		if runErr != nil {
			return fail(ExitFailure, "%s: %v", name, runErr)
		}
		if flushErr != nil {
			return fail(ExitFailure, "%s: %v", name, flushErr)
		}
		return succeed()
	}

	return e.runExternal(ctx, name, args, inv, finish)
}

// runExternal executes a program outside the shell. A name containing
// a path separator is taken as a direct executable path; anything else
// is searched on PATH.
func (e *Executor) runExternal(ctx context.Context, name string, args []string, inv *shell.Invocation, finish func() error) Status {
	path := name
	if !strings.ContainsRune(name, os.PathSeparator) {
		found, err := exec.LookPath(name)
		if err != nil {
			finish()
			return fail(ExitNotFound, "%s: command not found", name)
		}
		path = found
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = inv.Stdin
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr
	if dir := realWorkingDir(inv.FS); dir != "" {
		cmd.Dir = dir
	}

	runErr := cmd.Run()
	flushErr := finish()

	status := statusFromWait(name, runErr)
	if status.Success() && flushErr != nil {
		return fail(ExitFailure, "%s: %v", name, flushErr)
	}
	return status
}

// stagePlan is the resolved form of one pipeline segment before
// anything is spawned.
type stagePlan struct {
	name    string
	args    []string
	builtin *shell.Builtin
	path    string // external program path; empty when not found
	missing bool

	stdin  io.Reader
	stdout io.Writer
	// owned are the pipe ends this stage must close when it finishes.
	// Builtin (and missing-program) stages close them in their own
	// goroutine; for external stages the parent closes its copies
	// right after the child starts, since the child holds duplicates.
	owned []*os.File
}

// runPipeline connects N >= 2 stages with OS pipes and reports the
// last stage's outcome.
func (e *Executor) runPipeline(ctx context.Context, stages []string, session *shell.Session) Status {
	plans := make([]*stagePlan, len(stages))
	for i, stage := range stages {
		tokens := shell.Tokenize(stage)
		if len(tokens) == 0 {
			return fail(ExitFailure, "empty pipeline stage")
		}
		plan := &stagePlan{name: tokens[0], args: tokens[1:]}
		if builtin, ok := e.registry.Lookup(plan.name); ok {
			plan.builtin = builtin
		} else if strings.ContainsRune(plan.name, os.PathSeparator) {
			plan.path = plan.name
		} else if found, err := exec.LookPath(plan.name); err == nil {
			plan.path = found
		} else {
			plan.missing = true
		}
		plans[i] = plan
	}

	// N-1 pipes connect adjacent stages. The outer ends are the
	// session's own streams.
	type pipePair struct{ read, write *os.File }
	pipes := make([]pipePair, len(plans)-1)
	for i := range pipes {
		read, write, err := os.Pipe()
		if err != nil {
			for _, p := range pipes[:i] {
				p.read.Close()
				p.write.Close()
			}
			return fail(ExitFailure, "creating pipe: %v", err)
		}
		pipes[i] = pipePair{read: read, write: write}
	}

	for i, plan := range plans {
		if i == 0 {
			plan.stdin = session.Stdin
		} else {
			plan.stdin = pipes[i-1].read
			plan.owned = append(plan.owned, pipes[i-1].read)
		}
		if i == len(plans)-1 {
			plan.stdout = session.Stdout
		} else {
			plan.stdout = pipes[i].write
			plan.owned = append(plan.owned, pipes[i].write)
		}
	}

	results := make([]Status, len(plans))
	cmds := make([]*exec.Cmd, len(plans))
	var wg sync.WaitGroup

	for i, plan := range plans {
		switch {
		case plan.builtin != nil:
			wg.Add(1)
			go func(i int, plan *stagePlan) {
				defer wg.Done()
				defer closeFiles(plan.owned)
				results[i] = e.runBuiltinStage(ctx, plan, session)
			}(i, plan)

		case plan.missing:
			wg.Add(1)
			go func(i int, plan *stagePlan) {
				defer wg.Done()
				defer closeFiles(plan.owned)
				results[i] = fail(ExitNotFound, "%s: command not found", plan.name)
			}(i, plan)

		default:
			cmd := exec.CommandContext(ctx, plan.path, plan.args...)
			cmd.Stdin = plan.stdin
			cmd.Stdout = plan.stdout
			cmd.Stderr = session.Stderr
			if dir := realWorkingDir(session.FS); dir != "" {
				cmd.Dir = dir
			}
			if err := cmd.Start(); err != nil {
				// Abort: drop every pipe end the parent still holds so
				// already-running stages see EOF and wind down, then
				// collect them before reporting.
				closeFiles(plan.owned)
				for _, later := range plans[i+1:] {
					closeFiles(later.owned)
				}
				for _, started := range cmds[:i] {
					if started != nil {
						started.Wait()
					}
				}
				wg.Wait()
				return fail(ExitFailure, "starting %s: %v", plan.name, err)
			}
			cmds[i] = cmd
			// The child owns duplicates of its pipe ends now.
			closeFiles(plan.owned)
		}
	}

	for i, cmd := range cmds {
		if cmd != nil {
			results[i] = statusFromWait(plans[i].name, cmd.Wait())
		}
	}
	wg.Wait()

	// Only the last stage's outcome is surfaced. A shell exit
	// requested inside a pipeline stage does not terminate the shell,
	// mirroring subshell behavior.
	final := results[len(results)-1]
	final.Exit = false
	return final
}

// runBuiltinStage executes one builtin inside a pipeline: pipe-backed
// streams, color off, and a cloned filesystem view so directory
// changes stay inside the stage.
func (e *Executor) runBuiltinStage(ctx context.Context, plan *stagePlan, session *shell.Session) Status {
	inv := &shell.Invocation{
		Session: session,
		FS:      session.FS.Clone(),
		Args:    plan.args,
		Stdin:   plan.stdin,
		Stdout:  plan.stdout,
		Stderr:  session.Stderr,
		Color:   false,
	}
	err := plan.builtin.Run(ctx, inv)
	var exitErr *shell.ExitError
	if errors.As(err, &exitErr) {
		return Status{Code: exitErr.Code}
	}
	if err != nil {
		return fail(ExitFailure, "%s: %v", plan.name, err)
	}
	return succeed()
}

// statusFromWait maps an exec.Cmd Run/Wait error onto a Status.
func statusFromWait(name string, err error) Status {
	if err == nil {
		return succeed()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return signaled(ws.Signal())
		}
		return Status{Code: exitErr.ExitCode()}
	}
	return fail(ExitFailure, "%s: %v", name, err)
}

// realWorkingDir returns the session working directory when it lives
// on the real filesystem. External programs cannot chdir into an
// encrypted mount, so a virtual working directory leaves cmd.Dir
// at the process default.
func realWorkingDir(fs *vfs.VFS) string {
	resolved := fs.Resolve(".")
	if resolved.Kind == vfs.Real {
		return resolved.Path
	}
	return ""
}

func closeFiles(files []*os.File) {
	for _, file := range files {
		file.Close()
	}
}
