// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"bytes"
	"fmt"

	"github.com/vaultshell/vsh/lib/vfs"
)

// Redirect is one parsed output redirection.
type Redirect struct {
	// Stdout and Stderr select which streams the redirect captures.
	Stdout bool
	Stderr bool

	// Append preserves existing target content.
	Append bool

	// Target is the path argument, resolved through the VFS at
	// execution time so redirects into encrypted mounts work.
	Target string
}

// redirect operator spellings, checked as whole tokens. The target is
// the following token.
var redirectOperators = map[string]Redirect{
	">":   {Stdout: true},
	">>":  {Stdout: true, Append: true},
	"2>":  {Stderr: true},
	"2>>": {Stderr: true, Append: true},
	"&>":  {Stdout: true, Stderr: true},
	"&>>": {Stdout: true, Stderr: true, Append: true},
}

// ParseRedirects strips redirection operators and their targets from a
// token list. Operators must be their own token, followed by a target
// token. Later redirects of the same stream override earlier ones.
func ParseRedirects(tokens []string) ([]string, []Redirect, error) {
	var clean []string
	var redirects []Redirect

	for i := 0; i < len(tokens); i++ {
		op, isOp := redirectOperators[tokens[i]]
		if !isOp {
			clean = append(clean, tokens[i])
			continue
		}
		if i+1 >= len(tokens) {
			return nil, nil, fmt.Errorf("redirect %q is missing a target", tokens[i])
		}
		op.Target = tokens[i+1]
		redirects = append(redirects, op)
		i++
	}
	return clean, redirects, nil
}

// capture buffers one redirected stream until the command finishes.
// The VFS write model is whole-content, so streaming through to the
// target as bytes arrive is not an option.
type capture struct {
	buf      bytes.Buffer
	appendTo bool
	target   string
}

func (c *capture) Write(p []byte) (int, error) {
	return c.buf.Write(p)
}

func (c *capture) flush(fs *vfs.VFS) error {
	content := c.buf.Bytes()
	if c.appendTo {
		existing, err := fs.ReadFile(c.target)
		if err == nil {
			content = append(existing, content...)
		} else if !vfs.IsNotExist(err) {
			return fmt.Errorf("reading redirect target %s: %w", c.target, err)
		}
	}
	if err := fs.WriteFile(c.target, content); err != nil {
		return fmt.Errorf("writing redirect target %s: %w", c.target, err)
	}
	return nil
}

// ApplyRedirects rewires an invocation's output streams into buffers.
// The returned finish function writes the captured bytes through the
// VFS and must be called exactly once, after the command returns —
// even when the command failed, matching the usual shell behavior of
// creating redirect targets regardless of command outcome.
func ApplyRedirects(inv *Invocation, redirects []Redirect) func() error {
	if len(redirects) == 0 {
		return func() error { return nil }
	}

	var captures []*capture
	for _, redirect := range redirects {
		c := &capture{appendTo: redirect.Append, target: redirect.Target}
		captures = append(captures, c)
		if redirect.Stdout {
			inv.Stdout = c
			inv.Color = false
		}
		if redirect.Stderr {
			inv.Stderr = c
		}
	}

	fs := inv.FS
	return func() error {
		var firstErr error
		for _, c := range captures {
			if err := c.flush(fs); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}
}
