// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package shell

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vaultshell/vsh/lib/vfs"
)

func TestParseRedirects(t *testing.T) {
	cases := []struct {
		tokens    []string
		wantClean []string
		wantRedir []Redirect
	}{
		{
			tokens:    []string{"echo", "hi"},
			wantClean: []string{"echo", "hi"},
		},
		{
			tokens:    []string{"echo", "hi", ">", "out.txt"},
			wantClean: []string{"echo", "hi"},
			wantRedir: []Redirect{{Stdout: true, Target: "out.txt"}},
		},
		{
			tokens:    []string{"cmd", ">>", "log", "2>", "errs"},
			wantClean: []string{"cmd"},
			wantRedir: []Redirect{
				{Stdout: true, Append: true, Target: "log"},
				{Stderr: true, Target: "errs"},
			},
		},
		{
			tokens:    []string{"cmd", "&>>", "all"},
			wantClean: []string{"cmd"},
			wantRedir: []Redirect{{Stdout: true, Stderr: true, Append: true, Target: "all"}},
		},
	}
	for _, c := range cases {
		clean, redirects, err := ParseRedirects(c.tokens)
		if err != nil {
			t.Errorf("ParseRedirects(%v): %v", c.tokens, err)
			continue
		}
		if !reflect.DeepEqual(clean, c.wantClean) {
			t.Errorf("ParseRedirects(%v) clean = %v, want %v", c.tokens, clean, c.wantClean)
		}
		if !reflect.DeepEqual(redirects, c.wantRedir) {
			t.Errorf("ParseRedirects(%v) redirects = %+v, want %+v", c.tokens, redirects, c.wantRedir)
		}
	}
}

func TestParseRedirectsMissingTarget(t *testing.T) {
	if _, _, err := ParseRedirects([]string{"echo", "hi", ">"}); err == nil {
		t.Error("expected error for trailing redirect operator")
	}
}

func testInvocation(t *testing.T) (*Invocation, string) {
	t.Helper()
	dir := t.TempDir()
	fs := vfs.New(nil)
	if err := fs.ChangeDirectory(dir); err != nil {
		t.Fatal(err)
	}
	return &Invocation{FS: fs, Stdout: io.Discard, Stderr: io.Discard}, dir
}

func TestApplyRedirectsStdout(t *testing.T) {
	inv, dir := testInvocation(t)
	finish := ApplyRedirects(inv, []Redirect{{Stdout: true, Target: "out.txt"}})

	io.WriteString(inv.Stdout, "hello\n")
	if err := finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "out.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "hello\n" {
		t.Errorf("content = %q", content)
	}
}

func TestApplyRedirectsAppend(t *testing.T) {
	inv, dir := testInvocation(t)
	if err := os.WriteFile(filepath.Join(dir, "log"), []byte("first\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	finish := ApplyRedirects(inv, []Redirect{{Stdout: true, Append: true, Target: "log"}})
	io.WriteString(inv.Stdout, "second\n")
	if err := finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "log"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "first\nsecond\n" {
		t.Errorf("content = %q", content)
	}
}

func TestApplyRedirectsCreatesEmptyTarget(t *testing.T) {
	inv, dir := testInvocation(t)
	finish := ApplyRedirects(inv, []Redirect{{Stdout: true, Target: "empty"}})
	if err := finish(); err != nil {
		t.Fatalf("finish: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "empty"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("size = %d, want 0", info.Size())
	}
}

func TestApplyRedirectsDisablesColor(t *testing.T) {
	inv, _ := testInvocation(t)
	inv.Color = true
	finish := ApplyRedirects(inv, []Redirect{{Stdout: true, Target: "x"}})
	defer finish()
	if inv.Color {
		t.Error("redirected stdout must disable color")
	}
}
