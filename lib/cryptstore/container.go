// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package cryptstore

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"filippo.io/age"
)

// seal encrypts a database image to the store's scrypt recipient and
// atomically replaces the container file. The temp file is created in
// the container's directory so the rename never crosses filesystems.
func seal(containerPath string, recipient age.Recipient, image []byte) error {
	dir := filepath.Dir(containerPath)
	temp, err := os.CreateTemp(dir, "."+filepath.Base(containerPath)+".*")
	if err != nil {
		return fmt.Errorf("creating temp container: %w", err)
	}
	tempPath := temp.Name()
	defer os.Remove(tempPath)

	if err := temp.Chmod(0o600); err != nil {
		temp.Close()
		return fmt.Errorf("restricting container permissions: %w", err)
	}

	writer, err := age.Encrypt(temp, recipient)
	if err != nil {
		temp.Close()
		return fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(image); err != nil {
		temp.Close()
		return fmt.Errorf("encrypting database image: %w", err)
	}
	if err := writer.Close(); err != nil {
		temp.Close()
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return fmt.Errorf("syncing container: %w", err)
	}
	if err := temp.Close(); err != nil {
		return fmt.Errorf("closing temp container: %w", err)
	}

	if err := os.Rename(tempPath, containerPath); err != nil {
		return fmt.Errorf("replacing container: %w", err)
	}
	return nil
}

// unseal decrypts a container file into a database image. A passphrase
// that does not match the container's scrypt stanza surfaces as
// ErrBadPassphrase; any other header or read failure is reported as a
// corrupt container.
func unseal(containerPath string, identity age.Identity) ([]byte, error) {
	file, err := os.Open(containerPath)
	if err != nil {
		return nil, fmt.Errorf("opening container: %w", err)
	}
	defer file.Close()

	reader, err := age.Decrypt(file, identity)
	if err != nil {
		var noMatch *age.NoIdentityMatchError
		if errors.As(err, &noMatch) {
			return nil, ErrBadPassphrase
		}
		return nil, fmt.Errorf("container %s is not a valid sealed store: %w", containerPath, err)
	}

	var image bytes.Buffer
	if _, err := io.Copy(&image, reader); err != nil {
		// age authenticates each chunk on read; a payload tampered
		// with or truncated mid-stream fails here.
		return nil, fmt.Errorf("reading sealed store %s: %w", containerPath, err)
	}
	return image.Bytes(), nil
}
