// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/vfs"
	"github.com/vaultshell/vsh/lib/vpath"
)

var dirStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)

func lsCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "ls",
		Summary: "list directory contents",
		Usage:   "ls [-l] [PATH]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			long := false
			args := inv.Args
			if len(args) > 0 && args[0] == "-l" {
				long = true
				args = args[1:]
			}
			target := "."
			if len(args) > 0 {
				target = args[0]
			}

			entries, err := inv.FS.ListDirectory(target)
			if err != nil {
				return describePathError(target, err)
			}

			if !long {
				for _, entry := range entries {
					name := entry.Name
					if entry.IsDir {
						name += "/"
						if inv.Color {
							name = dirStyle.Render(name)
						}
					}
					fmt.Fprintln(inv.Stdout, name)
				}
				return nil
			}

			writer := tabwriter.NewWriter(inv.Stdout, 2, 4, 2, ' ', 0)
			for _, entry := range entries {
				kind := "-"
				size := humanize.Bytes(uint64(entry.Size))
				if entry.IsDir {
					kind = "d"
					size = "-"
				}
				name := entry.Name
				if entry.IsDir && inv.Color {
					name = dirStyle.Render(name)
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
					kind, size, entry.ModTime.Format("2006-01-02 15:04"), name)
			}
			return writer.Flush()
		},
	}
}

func cdCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "cd",
		Summary: "change the working directory",
		Usage:   "cd [PATH]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			target := ""
			if len(inv.Args) > 0 {
				target = inv.Args[0]
			} else {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("no home directory: %w", err)
				}
				target = filepath.ToSlash(home)
			}
			if err := inv.FS.ChangeDirectory(target); err != nil {
				return describePathError(target, err)
			}
			return nil
		},
	}
}

func pwdCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "pwd",
		Summary: "print the working directory",
		Usage:   "pwd",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			_, err := fmt.Fprintln(inv.Stdout, inv.FS.WorkingDir())
			return err
		},
	}
}

func mkdirCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "mkdir",
		Summary: "create directories (with ancestors)",
		Usage:   "mkdir PATH...",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				return fmt.Errorf("usage: mkdir PATH...")
			}
			for _, path := range inv.Args {
				if err := inv.FS.CreateDirectory(path); err != nil {
					return describePathError(path, err)
				}
			}
			return nil
		},
	}
}

func rmCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "rm",
		Summary: "remove files and directories",
		Usage:   "rm [-r] PATH...",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			recursive := false
			args := inv.Args
			if len(args) > 0 && args[0] == "-r" {
				recursive = true
				args = args[1:]
			}
			if len(args) == 0 {
				return fmt.Errorf("usage: rm [-r] PATH...")
			}
			for _, path := range args {
				isDir, err := inv.FS.IsDirectory(path)
				if err != nil {
					return describePathError(path, err)
				}
				// Store directories always remove as a cascade; real
				// directories need the explicit flag.
				if isDir && !recursive && inv.FS.Resolve(path).Kind == vfs.Real {
					return fmt.Errorf("%s: is a directory (use -r)", path)
				}
				if err := inv.FS.Remove(path); err != nil {
					return describePathError(path, err)
				}
			}
			return nil
		},
	}
}

func cpCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "cp",
		Summary: "copy a file (across namespaces)",
		Usage:   "cp SOURCE DEST",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) != 2 {
				return fmt.Errorf("usage: cp SOURCE DEST")
			}
			source, dest := inv.Args[0], inv.Args[1]

			content, err := inv.FS.ReadFile(source)
			if err != nil {
				return describePathError(source, err)
			}
			if isDir, err := inv.FS.IsDirectory(dest); err == nil && isDir {
				dest = dest + "/" + vpath.Base(vpath.Normalize(source))
			}
			if err := inv.FS.WriteFile(dest, content); err != nil {
				return describePathError(dest, err)
			}
			return nil
		},
	}
}

func touchCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "touch",
		Summary: "create empty files or refresh timestamps",
		Usage:   "touch PATH...",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				return fmt.Errorf("usage: touch PATH...")
			}
			for _, path := range inv.Args {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					if !vfs.IsNotExist(err) {
						return describePathError(path, err)
					}
					content = nil
				}
				if err := inv.FS.WriteFile(path, content); err != nil {
					return describePathError(path, err)
				}
			}
			return nil
		},
	}
}

// describePathError keeps user-facing messages uniform across the two
// backends.
func describePathError(path string, err error) error {
	switch {
	case vfs.IsNotExist(err):
		return fmt.Errorf("%s: does not exist", path)
	case vfs.IsNotDirectory(err):
		return fmt.Errorf("%s: not a directory", path)
	default:
		return err
	}
}
