// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/vaultshell/vsh/lib/shell"
)

func echoCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "echo",
		Summary: "print arguments",
		Usage:   "echo [-n] [ARG...]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			args := inv.Args
			newline := true
			if len(args) > 0 && args[0] == "-n" {
				newline = false
				args = args[1:]
			}
			if _, err := io.WriteString(inv.Stdout, strings.Join(args, " ")); err != nil {
				return err
			}
			if newline {
				if _, err := io.WriteString(inv.Stdout, "\n"); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func catCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "cat",
		Summary: "concatenate files to stdout",
		Usage:   "cat [-n] [FILE...]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			numbered := false
			args := inv.Args
			if len(args) > 0 && args[0] == "-n" {
				numbered = true
				args = args[1:]
			}

			emit := func(reader io.Reader) error {
				if !numbered {
					_, err := io.Copy(inv.Stdout, reader)
					return err
				}
				scanner := bufio.NewScanner(reader)
				scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
				lineNo := 1
				for scanner.Scan() {
					if _, err := fmt.Fprintf(inv.Stdout, "%6d\t%s\n", lineNo, scanner.Text()); err != nil {
						return err
					}
					lineNo++
				}
				return scanner.Err()
			}

			if len(args) == 0 {
				return emit(inv.Stdin)
			}
			for _, path := range args {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}
				if err := emit(bytes.NewReader(content)); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func grepCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "grep",
		Summary: "print lines containing a fixed string",
		Usage:   "grep PATTERN [FILE...]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				return fmt.Errorf("usage: grep PATTERN [FILE...]")
			}
			pattern := inv.Args[0]
			files := inv.Args[1:]

			matched := false
			search := func(reader io.Reader, prefix string) error {
				scanner := bufio.NewScanner(reader)
				scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
				for scanner.Scan() {
					line := scanner.Text()
					if strings.Contains(line, pattern) {
						matched = true
						if _, err := fmt.Fprintf(inv.Stdout, "%s%s\n", prefix, line); err != nil {
							return err
						}
					}
				}
				return scanner.Err()
			}

			if len(files) == 0 {
				if err := search(inv.Stdin, ""); err != nil {
					return err
				}
			}
			for _, path := range files {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}
				prefix := ""
				if len(files) > 1 {
					prefix = path + ":"
				}
				if err := search(bytes.NewReader(content), prefix); err != nil {
					return err
				}
			}
			if !matched {
				return fmt.Errorf("no match")
			}
			return nil
		},
	}
}

func headCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "head",
		Summary: "print the first lines of input",
		Usage:   "head [-n COUNT] [FILE]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			count := 10
			args := inv.Args
			if len(args) >= 2 && args[0] == "-n" {
				parsed, err := strconv.Atoi(args[1])
				if err != nil || parsed < 0 {
					return fmt.Errorf("invalid line count %q", args[1])
				}
				count = parsed
				args = args[2:]
			}

			var reader io.Reader = inv.Stdin
			if len(args) > 0 {
				content, err := inv.FS.ReadFile(args[0])
				if err != nil {
					return describePathError(args[0], err)
				}
				reader = bytes.NewReader(content)
			}

			scanner := bufio.NewScanner(reader)
			scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
			for line := 0; line < count && scanner.Scan(); line++ {
				if _, err := fmt.Fprintln(inv.Stdout, scanner.Text()); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}
}

func wcCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "wc",
		Summary: "count lines, words, and bytes",
		Usage:   "wc [FILE...]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			report := func(content []byte, label string) error {
				lines := bytes.Count(content, []byte{'\n'})
				words := len(bytes.Fields(content))
				_, err := fmt.Fprintf(inv.Stdout, "%8d %8d %8d %s\n", lines, words, len(content), label)
				return err
			}

			if len(inv.Args) == 0 {
				content, err := io.ReadAll(inv.Stdin)
				if err != nil {
					return err
				}
				return report(content, "")
			}
			for _, path := range inv.Args {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}
				if err := report(content, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
