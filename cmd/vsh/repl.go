// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vaultshell/vsh/lib/pipeline"
	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/vfs"
)

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	vaultCwdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
)

// repl reads command lines, dispatches them through the executor, and
// reports failures on stderr. It terminates on EOF or an exit request.
type repl struct {
	session     *shell.Session
	executor    *pipeline.Executor
	prompt      string
	historyPath string
	terminal    bool
}

// loop runs until exit and returns the shell's exit code.
func (r *repl) loop(ctx context.Context) (int, error) {
	var history io.WriteCloser
	if r.historyPath != "" {
		file, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			r.session.Logger.Warn("opening history file", "path", r.historyPath, "error", err)
		} else {
			history = file
			defer file.Close()
		}
	}

	reader := bufio.NewReader(r.session.Stdin)
	lastCode := 0
	for {
		r.session.ClearInterrupt()
		if r.terminal {
			fmt.Fprint(r.session.Stdout, r.renderPrompt())
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line == "" {
					if r.terminal {
						fmt.Fprintln(r.session.Stdout)
					}
					return lastCode, nil
				}
				// Run the final unterminated line, then exit.
			} else {
				return 0, fmt.Errorf("reading input: %w", err)
			}
		}

		line = strings.TrimRight(line, "\n")
		if history != nil && strings.TrimSpace(line) != "" {
			fmt.Fprintln(history, line)
		}

		status := r.executor.Run(ctx, line, r.session)
		if status.Message != "" {
			fmt.Fprintln(r.session.Stderr, "vsh:", status.Message)
		}
		lastCode = status.Code
		if status.Exit {
			return status.Code, nil
		}
		if err != nil {
			return lastCode, nil
		}
	}
}

// renderPrompt expands {cwd} in the prompt template. A working
// directory inside an encrypted mount is marked with a trailing
// asterisk and its own style.
func (r *repl) renderPrompt() string {
	cwd := r.session.FS.WorkingDir()
	inVault := r.session.FS.Resolve(".").Kind == vfs.Virtual
	if inVault {
		cwd += "*"
	}
	if !r.session.Color {
		return strings.ReplaceAll(r.prompt, "{cwd}", cwd)
	}
	if inVault {
		cwd = vaultCwdStyle.Render(cwd)
	}
	return promptStyle.Render(strings.ReplaceAll(r.prompt, "{cwd}", cwd))
}
