// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/vaultshell/vsh/lib/cryptstore"
	"github.com/vaultshell/vsh/lib/secret"
	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/vfs"
)

func mountCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "mount",
		Summary: "open an encrypted container as a virtual mount",
		Usage:   "mount NAME CONTAINER MOUNT_POINT [--quota-mb N] [--passphrase-file FILE]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			flags := pflag.NewFlagSet("mount", pflag.ContinueOnError)
			flags.SetOutput(inv.Stderr)
			quotaMB := flags.Int64("quota-mb", 0, "storage quota in MiB (0 = session default)")
			passphraseFile := flags.String("passphrase-file", "", "read the passphrase from FILE instead of prompting")
			if err := flags.Parse(inv.Args); err != nil {
				return err
			}
			args := flags.Args()
			if len(args) != 3 {
				return fmt.Errorf("usage: mount NAME CONTAINER MOUNT_POINT")
			}
			name, containerPath, mountPoint := args[0], args[1], args[2]

			// The container file itself must live on the real
			// filesystem — a store cannot nest inside another mount.
			resolved := inv.FS.Resolve(containerPath)
			if resolved.Kind != vfs.Real {
				return fmt.Errorf("%s: container path is inside mount %q", containerPath, resolved.Mount.Name)
			}

			var passphrase *secret.Buffer
			var err error
			if *passphraseFile != "" {
				passphrase, err = secret.ReadFromPath(*passphraseFile)
			} else {
				passphrase, err = secret.ReadPassphrase(fmt.Sprintf("passphrase for %s: ", name))
			}
			if err != nil {
				return err
			}
			defer passphrase.Close()

			quota := inv.Session.DefaultQuotaBytes
			if *quotaMB > 0 {
				quota = *quotaMB * 1024 * 1024
			}

			store, err := cryptstore.New(cryptstore.Config{
				ContainerPath:    resolved.Path,
				QuotaBytes:       quota,
				ScryptWorkFactor: inv.Session.ScryptWorkFactor,
				Logger:           inv.Session.Logger,
			})
			if err != nil {
				return err
			}
			if err := store.Open(passphrase); err != nil {
				if errors.Is(err, cryptstore.ErrBadPassphrase) {
					return fmt.Errorf("cannot unlock %s: wrong passphrase", containerPath)
				}
				return fmt.Errorf("cannot open %s: %w", containerPath, err)
			}

			mount := &vfs.Mount{Name: name, MountPoint: mountPoint, Store: store}
			if err := inv.FS.AddMount(mount); err != nil {
				store.Close()
				return err
			}
			fmt.Fprintf(inv.Stdout, "mounted %s at %s\n", name, mount.MountPoint)
			return nil
		},
	}
}

func unmountCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "unmount",
		Summary: "close a virtual mount",
		Usage:   "unmount NAME",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) != 1 {
				return fmt.Errorf("usage: unmount NAME")
			}
			return inv.FS.RemoveMount(inv.Args[0])
		},
	}
}

func mountsCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "mounts",
		Summary: "list virtual mounts and their usage",
		Usage:   "mounts",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			mounts := inv.FS.Mounts()
			if len(mounts) == 0 {
				fmt.Fprintln(inv.Stdout, "no mounts")
				return nil
			}

			writer := tabwriter.NewWriter(inv.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "NAME\tMOUNT POINT\tCONTAINER\tUSED\tQUOTA")
			for _, mount := range mounts {
				used, err := mount.Store.UsedSpace()
				if err != nil {
					return fmt.Errorf("%s: %w", mount.Name, err)
				}
				quota := "unlimited"
				if q := mount.Store.QuotaBytes(); q > 0 {
					quota = humanize.IBytes(uint64(q))
				}
				fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
					mount.Name, mount.MountPoint, mount.Store.ContainerPath(),
					humanize.IBytes(uint64(used)), quota)
			}
			return writer.Flush()
		},
	}
}
