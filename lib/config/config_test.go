// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vsh.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompt == "" || cfg.Color != "auto" || cfg.LogLevel != "warn" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
prompt: "{cwd}> "
default_quota_mb: 64
color: never
mounts:
  - name: notes
    container: /home/me/notes.age
    mount_point: /notes
    quota_mb: 16
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Prompt != "{cwd}> " {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.DefaultQuotaMB != 64 {
		t.Errorf("DefaultQuotaMB = %d", cfg.DefaultQuotaMB)
	}
	if len(cfg.Mounts) != 1 || cfg.Mounts[0].Name != "notes" || cfg.Mounts[0].QuotaMB != 16 {
		t.Errorf("Mounts = %+v", cfg.Mounts)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad color", "color: sometimes", "color must be"},
		{"bad level", "log_level: loud", "log_level must be"},
		{"relative mount point", "mounts:\n  - name: a\n    container: /c.age\n    mount_point: rel", "must be absolute"},
		{"missing container", "mounts:\n  - name: a\n    mount_point: /a", "container is required"},
		{"duplicate names", "mounts:\n  - name: a\n    container: /c.age\n    mount_point: /a\n  - name: a\n    container: /d.age\n    mount_point: /b", "duplicate name"},
	}
	for _, c := range cases {
		path := writeConfig(t, c.content)
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), c.wantErr) {
			t.Errorf("%s: Load = %v, want error containing %q", c.name, err, c.wantErr)
		}
	}
}
