// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/vaultshell/vsh/lib/shell"
)

// interruptPollInterval is how often cooperative commands check the
// session's interrupt flag between blocking steps.
const interruptPollInterval = 150 * time.Millisecond

func sleepCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "sleep",
		Summary: "pause for a duration (interruptible)",
		Usage:   "sleep SECONDS",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) != 1 {
				return fmt.Errorf("usage: sleep SECONDS")
			}
			seconds, err := strconv.ParseFloat(inv.Args[0], 64)
			if err != nil || seconds < 0 {
				return fmt.Errorf("invalid duration %q", inv.Args[0])
			}

			deadline := time.Now().Add(time.Duration(seconds * float64(time.Second)))
			ticker := time.NewTicker(interruptPollInterval)
			defer ticker.Stop()
			for time.Now().Before(deadline) {
				if inv.Session.Interrupted() {
					return fmt.Errorf("interrupted")
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
			return nil
		},
	}
}

func helpCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "help",
		Summary: "list available commands",
		Usage:   "help",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			writer := tabwriter.NewWriter(inv.Stdout, 2, 4, 2, ' ', 0)
			for _, name := range inv.Session.Registry.Names() {
				builtin, _ := inv.Session.Registry.Lookup(name)
				fmt.Fprintf(writer, "%s\t%s\n", builtin.Name, builtin.Summary)
			}
			return writer.Flush()
		},
	}
}

func exitCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "exit",
		Summary: "leave the shell",
		Usage:   "exit [CODE]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			code := 0
			if len(inv.Args) > 0 {
				parsed, err := strconv.Atoi(inv.Args[0])
				if err != nil {
					return fmt.Errorf("invalid exit code %q", inv.Args[0])
				}
				code = parsed
			}
			return &shell.ExitError{Code: code}
		},
	}
}
