// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package builtins

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vaultshell/vsh/lib/shell"
	"github.com/vaultshell/vsh/lib/vfs"
)

// testWorkFactor keeps container key derivation fast in tests.
const testWorkFactor = 10

type harness struct {
	session *shell.Session
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	dir     string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	fs := vfs.New(nil)
	if err := fs.ChangeDirectory(dir); err != nil {
		t.Fatal(err)
	}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	session := &shell.Session{
		Registry:         shell.NewRegistry(Commands()),
		FS:               fs,
		Stdin:            strings.NewReader(""),
		Stdout:           stdout,
		Stderr:           stderr,
		ScryptWorkFactor: testWorkFactor,
	}
	t.Cleanup(func() {
		for _, name := range fs.MountNames() {
			fs.RemoveMount(name)
		}
	})
	return &harness{session: session, stdout: stdout, stderr: stderr, dir: dir}
}

// run executes one builtin by name with the session's streams.
func (h *harness) run(t *testing.T, name string, args ...string) error {
	t.Helper()
	builtin, ok := h.session.Registry.Lookup(name)
	if !ok {
		t.Fatalf("no builtin %q", name)
	}
	inv := &shell.Invocation{
		Session: h.session,
		FS:      h.session.FS,
		Args:    args,
		Stdin:   h.session.Stdin,
		Stdout:  h.session.Stdout,
		Stderr:  h.session.Stderr,
	}
	return builtin.Run(context.Background(), inv)
}

func (h *harness) mustRun(t *testing.T, name string, args ...string) {
	t.Helper()
	if err := h.run(t, name, args...); err != nil {
		t.Fatalf("%s %v: %v", name, args, err)
	}
}

// mountStore opens a fresh encrypted container at the given mount point
// using a passphrase file, so no terminal interaction is needed.
func (h *harness) mountStore(t *testing.T, name, mountPoint string) {
	t.Helper()
	passFile := filepath.Join(h.dir, name+".pass")
	if err := os.WriteFile(passFile, []byte("test-passphrase\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	container := filepath.Join(h.dir, name+".vault")
	h.mustRun(t, "mount", name, container, mountPoint, "--passphrase-file", passFile)
}

func TestEcho(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "echo", "hello", "world")
	if got := h.stdout.String(); got != "hello world\n" {
		t.Errorf("stdout = %q", got)
	}

	h.stdout.Reset()
	h.mustRun(t, "echo", "-n", "bare")
	if got := h.stdout.String(); got != "bare" {
		t.Errorf("stdout = %q", got)
	}
}

func TestCatAndTouch(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(filepath.Join(h.dir, "a.txt"), []byte("line1\nline2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "cat", "a.txt")
	if got := h.stdout.String(); got != "line1\nline2\n" {
		t.Errorf("cat = %q", got)
	}

	h.mustRun(t, "touch", "b.txt")
	if _, err := os.Stat(filepath.Join(h.dir, "b.txt")); err != nil {
		t.Errorf("touch did not create file: %v", err)
	}

	if err := h.run(t, "cat", "missing.txt"); err == nil {
		t.Error("cat missing file: expected error")
	}
}

func TestGrepAndWc(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(filepath.Join(h.dir, "words"), []byte("apple\nbanana\ncherry\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "grep", "an", "words")
	if got := h.stdout.String(); got != "banana\n" {
		t.Errorf("grep = %q", got)
	}
	if err := h.run(t, "grep", "zzz", "words"); err == nil {
		t.Error("grep with no match: expected error")
	}

	h.stdout.Reset()
	h.mustRun(t, "wc", "words")
	if !strings.Contains(h.stdout.String(), "3") {
		t.Errorf("wc = %q", h.stdout.String())
	}
}

func TestMkdirLsRm(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "mkdir", "docs")
	if err := os.WriteFile(filepath.Join(h.dir, "docs", "note"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "ls")
	if !strings.Contains(h.stdout.String(), "docs") {
		t.Errorf("ls = %q", h.stdout.String())
	}

	if err := h.run(t, "rm", "docs"); err == nil {
		t.Error("rm on directory without -r: expected error")
	}
	h.mustRun(t, "rm", "-r", "docs")
	if _, err := os.Stat(filepath.Join(h.dir, "docs")); !os.IsNotExist(err) {
		t.Errorf("directory still present after rm -r: %v", err)
	}
}

func TestMountRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.mountStore(t, "vault", "/secure")

	// Files written under the mount point land in the store, not on
	// the real filesystem.
	if err := h.session.FS.WriteFile("/secure/secret.txt", []byte("classified\n")); err != nil {
		t.Fatal(err)
	}
	h.mustRun(t, "cat", "/secure/secret.txt")
	if got := h.stdout.String(); !strings.HasSuffix(got, "classified\n") {
		t.Errorf("cat = %q", got)
	}

	h.stdout.Reset()
	h.mustRun(t, "mounts")
	if out := h.stdout.String(); !strings.Contains(out, "vault") || !strings.Contains(out, "/secure") {
		t.Errorf("mounts = %q", out)
	}

	h.mustRun(t, "unmount", "vault")
	if err := h.run(t, "cat", "/secure/secret.txt"); err == nil {
		t.Error("file still readable after unmount")
	}

	// Remounting the sealed container recovers the content.
	passFile := filepath.Join(h.dir, "vault.pass")
	container := filepath.Join(h.dir, "vault.vault")
	h.mustRun(t, "mount", "vault", container, "/secure", "--passphrase-file", passFile)
	h.stdout.Reset()
	h.mustRun(t, "cat", "/secure/secret.txt")
	if got := h.stdout.String(); got != "classified\n" {
		t.Errorf("cat after remount = %q", got)
	}
}

func TestMountRejectsVirtualContainerPath(t *testing.T) {
	h := newHarness(t)
	h.mountStore(t, "outer", "/secure")

	passFile := filepath.Join(h.dir, "outer.pass")
	err := h.run(t, "mount", "inner", "/secure/nested.vault", "/deeper", "--passphrase-file", passFile)
	if err == nil || !strings.Contains(err.Error(), "inside mount") {
		t.Errorf("expected nested-container rejection, got %v", err)
	}
}

func TestCpIntoMount(t *testing.T) {
	h := newHarness(t)
	h.mountStore(t, "vault", "/secure")
	if err := os.WriteFile(filepath.Join(h.dir, "plain.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "cp", "plain.txt", "/secure/copy.txt")
	content, err := h.session.FS.ReadFile("/secure/copy.txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "payload" {
		t.Errorf("copied content = %q", content)
	}
}

func TestChecksum(t *testing.T) {
	h := newHarness(t)
	if err := os.WriteFile(filepath.Join(h.dir, "data"), []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	h.mustRun(t, "checksum", "data")
	out := h.stdout.String()
	fields := strings.Fields(out)
	if len(fields) < 1 || len(fields[0]) != 64 {
		t.Errorf("checksum output = %q, want 64-char hex digest", out)
	}

	// Same content hashes the same regardless of location.
	h.mountStore(t, "vault", "/secure")
	if err := h.session.FS.WriteFile("/secure/data", []byte("abc")); err != nil {
		t.Fatal(err)
	}
	h.stdout.Reset()
	h.mustRun(t, "checksum", "/secure/data")
	if got := strings.Fields(h.stdout.String()); len(got) < 1 || got[0] != fields[0] {
		t.Errorf("digest differs across filesystems: %v vs %v", got, fields)
	}
}

func TestGzipRoundTrip(t *testing.T) {
	h := newHarness(t)
	original := []byte(strings.Repeat("compressible content\n", 50))
	if err := os.WriteFile(filepath.Join(h.dir, "big.txt"), original, 0o644); err != nil {
		t.Fatal(err)
	}

	h.mustRun(t, "gzip", "big.txt")
	if _, err := os.Stat(filepath.Join(h.dir, "big.txt")); !os.IsNotExist(err) {
		t.Error("gzip left the original in place")
	}

	h.mustRun(t, "gunzip", "big.txt.gz")
	content, err := os.ReadFile(filepath.Join(h.dir, "big.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, original) {
		t.Error("round trip altered content")
	}
}

func TestHelpListsCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun(t, "help")
	out := h.stdout.String()
	for _, name := range []string{"cat", "mount", "exit"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output missing %q", name)
		}
	}
}

func TestCommandsHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Commands() {
		if b.Name == "" || b.Summary == "" || b.Run == nil {
			t.Errorf("incomplete builtin %+v", b)
		}
		if seen[b.Name] {
			t.Errorf("duplicate builtin %q", b.Name)
		}
		seen[b.Name] = true
	}
}
