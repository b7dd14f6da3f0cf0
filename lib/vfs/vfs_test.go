// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vaultshell/vsh/lib/cryptstore"
	"github.com/vaultshell/vsh/lib/secret"
)

func openTestMount(t *testing.T, v *VFS, name, mountPoint string) *Mount {
	t.Helper()
	store, err := cryptstore.New(cryptstore.Config{
		ContainerPath:    filepath.Join(t.TempDir(), name+".age"),
		ScryptWorkFactor: 10,
	})
	if err != nil {
		t.Fatalf("cryptstore.New: %v", err)
	}
	passphrase, err := secret.NewFromBytes([]byte("test passphrase"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer passphrase.Close()
	if err := store.Open(passphrase); err != nil {
		t.Fatalf("store.Open: %v", err)
	}

	mount := &Mount{Name: name, MountPoint: mountPoint, Store: store}
	if err := v.AddMount(mount); err != nil {
		t.Fatalf("AddMount: %v", err)
	}
	t.Cleanup(func() { v.RemoveMount(name) })
	return mount
}

func TestResolveRealAndVirtual(t *testing.T) {
	v := New(nil)
	openTestMount(t, v, "secure", "/secure")

	resolved := v.Resolve("/secure/docs/a.txt")
	if resolved.Kind != Virtual {
		t.Fatalf("Kind = %v, want Virtual", resolved.Kind)
	}
	if resolved.RelPath != "/docs/a.txt" {
		t.Errorf("RelPath = %q, want %q", resolved.RelPath, "/docs/a.txt")
	}

	// Exact mount-point match re-roots at "/".
	if got := v.Resolve("/secure").RelPath; got != "/" {
		t.Errorf("RelPath for exact match = %q, want %q", got, "/")
	}

	// A sibling with the mount point as a string prefix is real.
	if got := v.Resolve("/securely/other").Kind; got != Real {
		t.Errorf("Kind for /securely/other = %v, want Real", got)
	}
	if got := v.Resolve("/tmp/x").Kind; got != Real {
		t.Errorf("Kind for /tmp/x = %v, want Real", got)
	}
}

func TestResolveLongestPrefixWins(t *testing.T) {
	v := New(nil)
	outer := openTestMount(t, v, "outer", "/secure")
	inner := openTestMount(t, v, "inner", "/secure/inner")

	resolved := v.Resolve("/secure/inner/file.txt")
	if resolved.Mount != inner {
		t.Fatalf("resolved to mount %q, want %q (deepest prefix)", resolved.Mount.Name, inner.Name)
	}
	if resolved.RelPath != "/file.txt" {
		t.Errorf("RelPath = %q, want %q", resolved.RelPath, "/file.txt")
	}

	if got := v.Resolve("/secure/other.txt").Mount; got != outer {
		t.Errorf("resolved to mount %q, want %q", got.Name, outer.Name)
	}
}

func TestMountRegistry(t *testing.T) {
	v := New(nil)
	openTestMount(t, v, "a", "/a")
	openTestMount(t, v, "b", "/b")

	if names := v.MountNames(); len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("MountNames = %v, want [a b]", names)
	}

	duplicate := &Mount{Name: "a", MountPoint: "/elsewhere", Store: nil}
	if err := v.AddMount(duplicate); !errors.Is(err, ErrMountExists) {
		t.Errorf("AddMount duplicate = %v, want ErrMountExists", err)
	}
	if err := v.RemoveMount("missing"); !errors.Is(err, ErrMountNotFound) {
		t.Errorf("RemoveMount(missing) = %v, want ErrMountNotFound", err)
	}
}

func TestVirtualFileOperations(t *testing.T) {
	v := New(nil)
	openTestMount(t, v, "secure", "/secure")

	content := []byte("sealed bytes")
	if err := v.WriteFile("/secure/notes/today.md", content); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := v.ReadFile("/secure/notes/today.md")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("ReadFile = %q, want %q", got, content)
	}

	entries, err := v.ListDirectory("/secure/notes")
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/secure/notes/today.md" {
		t.Errorf("ListDirectory = %+v, want one entry at /secure/notes/today.md", entries)
	}

	if err := v.Remove("/secure/notes"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	exists, err := v.Exists("/secure/notes/today.md")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Error("file survived directory removal")
	}
}

func TestRealFileOperations(t *testing.T) {
	v := New(nil)
	dir := t.TempDir()

	target := filepath.Join(dir, "sub", "real.txt")
	if err := v.WriteFile(target, []byte("plain")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("file not on the real filesystem: %v", err)
	}
	got, err := v.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "plain" {
		t.Errorf("ReadFile = %q, want %q", got, "plain")
	}

	entries, err := v.ListDirectory(filepath.Join(dir, "sub"))
	if err != nil {
		t.Fatalf("ListDirectory: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "real.txt" {
		t.Errorf("ListDirectory = %+v, want [real.txt]", entries)
	}
}

func TestChangeDirectory(t *testing.T) {
	v := New(nil)
	openTestMount(t, v, "secure", "/secure")
	if err := v.CreateDirectory("/secure/depths"); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}

	if err := v.ChangeDirectory("/secure/depths"); err != nil {
		t.Fatalf("ChangeDirectory: %v", err)
	}
	if v.WorkingDir() != "/secure/depths" {
		t.Errorf("WorkingDir = %q, want /secure/depths", v.WorkingDir())
	}

	// Relative resolution against the virtual working directory.
	if err := v.WriteFile("here.txt", []byte("x")); err != nil {
		t.Fatalf("WriteFile relative: %v", err)
	}
	exists, err := v.Exists("/secure/depths/here.txt")
	if err != nil || !exists {
		t.Errorf("relative write landed wrong: exists=%v err=%v", exists, err)
	}

	// A failed cd leaves the working directory alone.
	if err := v.ChangeDirectory("/secure/missing"); err == nil {
		t.Fatal("ChangeDirectory into missing directory succeeded")
	}
	if v.WorkingDir() != "/secure/depths" {
		t.Errorf("WorkingDir moved on failed cd: %q", v.WorkingDir())
	}

	if err := v.ChangeDirectory(".."); err != nil {
		t.Fatalf("ChangeDirectory(..): %v", err)
	}
	if v.WorkingDir() != "/secure" {
		t.Errorf("WorkingDir after .. = %q, want /secure", v.WorkingDir())
	}
}

func TestCloneIsolatesWorkingDirectory(t *testing.T) {
	v := New(nil)
	openTestMount(t, v, "secure", "/secure")
	if err := v.CreateDirectory("/secure/a"); err != nil {
		t.Fatalf("CreateDirectory: %v", err)
	}

	original := v.WorkingDir()
	clone := v.Clone()
	if err := clone.ChangeDirectory("/secure/a"); err != nil {
		t.Fatalf("clone ChangeDirectory: %v", err)
	}
	if v.WorkingDir() != original {
		t.Errorf("clone cd leaked into original: %q", v.WorkingDir())
	}

	// The mount table is shared: a mount added through the clone is
	// visible to the original.
	if _, ok := v.Mount("secure"); !ok {
		t.Error("mount not visible through original")
	}
	if _, ok := clone.Mount("secure"); !ok {
		t.Error("mount not visible through clone")
	}
}

func TestRemoveMountClosesStore(t *testing.T) {
	v := New(nil)
	store, err := cryptstore.New(cryptstore.Config{
		ContainerPath:    filepath.Join(t.TempDir(), "m.age"),
		ScryptWorkFactor: 10,
	})
	if err != nil {
		t.Fatalf("cryptstore.New: %v", err)
	}
	passphrase, _ := secret.NewFromBytes([]byte("pw"))
	defer passphrase.Close()
	if err := store.Open(passphrase); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := v.AddMount(&Mount{Name: "m", MountPoint: "/m", Store: store}); err != nil {
		t.Fatalf("AddMount: %v", err)
	}

	if err := v.RemoveMount("m"); err != nil {
		t.Fatalf("RemoveMount: %v", err)
	}
	if _, err := store.UsedSpace(); !errors.Is(err, cryptstore.ErrClosed) {
		t.Errorf("store still open after RemoveMount: %v", err)
	}
	if v.Resolve("/m/x").Kind != Real {
		t.Error("unmounted prefix still resolves as virtual")
	}
}
