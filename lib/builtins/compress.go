// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/vaultshell/vsh/lib/shell"
)

func gzipCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "gzip",
		Summary: "compress a file to FILE.gz",
		Usage:   "gzip FILE...",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				return fmt.Errorf("usage: gzip FILE...")
			}
			for _, path := range inv.Args {
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}

				var compressed bytes.Buffer
				writer := gzip.NewWriter(&compressed)
				if _, err := writer.Write(content); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := writer.Close(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				if err := inv.FS.WriteFile(path+".gz", compressed.Bytes()); err != nil {
					return describePathError(path+".gz", err)
				}
				if err := inv.FS.Remove(path); err != nil {
					return describePathError(path, err)
				}
			}
			return nil
		},
	}
}

func gunzipCommand() *shell.Builtin {
	return &shell.Builtin{
		Name:    "gunzip",
		Summary: "decompress FILE.gz back to FILE",
		Usage:   "gunzip FILE.gz...",
		Run: func(ctx context.Context, inv *shell.Invocation) error {
			if len(inv.Args) == 0 {
				return fmt.Errorf("usage: gunzip FILE.gz...")
			}
			for _, path := range inv.Args {
				if !strings.HasSuffix(path, ".gz") {
					return fmt.Errorf("%s: does not end in .gz", path)
				}
				content, err := inv.FS.ReadFile(path)
				if err != nil {
					return describePathError(path, err)
				}

				reader, err := gzip.NewReader(bytes.NewReader(content))
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				decompressed, err := io.ReadAll(reader)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := reader.Close(); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}

				if err := inv.FS.WriteFile(strings.TrimSuffix(path, ".gz"), decompressed); err != nil {
					return err
				}
				if err := inv.FS.Remove(path); err != nil {
					return describePathError(path, err)
				}
			}
			return nil
		},
	}
}
