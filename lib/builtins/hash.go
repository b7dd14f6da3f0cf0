// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"

	"github.com/vaultshell/vsh/lib/shell"
)

func checksumCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "checksum",
		Summary: "print the BLAKE3 digest of files or stdin",
		Usage:   "checksum [FILE...]",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				hasher := blake3.New()
				if _, err := io.Copy(hasher, inv.Stdin); err != nil {
					return err
				}
				_, err := fmt.Fprintf(inv.Stdout, "%s  -\n", hex.EncodeToString(hasher.Sum(nil)))
				return err
			}
			for _, path := range inv.Args {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}
				sum := blake3.Sum256(content)
				if _, err := fmt.Fprintf(inv.Stdout, "%s  %s\n", hex.EncodeToString(sum[:]), path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
