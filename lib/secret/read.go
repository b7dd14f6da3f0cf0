// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadPassphrase prompts on the controlling terminal and reads a
// passphrase with echo disabled. The returned buffer is mmap-backed
// (locked into RAM, excluded from core dumps) and must be closed by
// the caller. Returns an error if stdin is not a terminal or the
// passphrase is empty.
func ReadPassphrase(prompt string) (*Buffer, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("passphrase prompt requires a terminal (use --passphrase-file otherwise)")
	}

	fmt.Fprint(os.Stderr, prompt)
	line, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf("passphrase is empty")
	}

	// NewFromBytes copies into mmap-backed memory and zeros line.
	return NewFromBytes(line)
}

// ReadFromPath reads a passphrase from a file path. The returned buffer
// is mmap-backed and must be closed by the caller. Leading/trailing
// whitespace is trimmed before storing. Returns an error if the file is
// empty after trimming.
func ReadFromPath(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, fmt.Errorf("passphrase file %s is empty", path)
	}

	// NewFromBytes copies into mmap-backed memory and zeros trimmed.
	buffer, err := NewFromBytes(trimmed)
	// Zero remaining bytes (whitespace prefix/suffix) not covered by trimmed.
	Zero(data)
	if err != nil {
		return nil, err
	}
	return buffer, nil
}
