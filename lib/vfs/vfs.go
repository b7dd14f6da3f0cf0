// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vaultshell/vsh/lib/cryptstore"
	"github.com/vaultshell/vsh/lib/vpath"
)

// Kind says which namespace a resolved path belongs to.
type Kind int

const (
	// Real paths are delegated to the OS filesystem.
	Real Kind = iota
	// Virtual paths are delegated to an encrypted mount.
	Virtual
)

func (k Kind) String() string {
	if k == Virtual {
		return "virtual"
	}
	return "real"
}

// Resolved is the outcome of mapping one path argument. It is produced
// fresh on every resolution and never retained.
type Resolved struct {
	// Kind selects the backend.
	Kind Kind

	// Path is the full normalized absolute path.
	Path string

	// Mount is the owning mount. Nil for real paths.
	Mount *Mount

	// RelPath is Path with the mount-point prefix stripped and
	// re-rooted at "/". Empty for real paths.
	RelPath string
}

// VFS is one view of the unified namespace: a shared mount table plus
// this view's current working directory. The zero value is not usable;
// construct with New.
type VFS struct {
	table  *mountTable
	logger *slog.Logger
	cwd    string
}

// New creates a VFS with an empty mount table. The working directory
// starts at the process working directory, or "/" if that cannot be
// determined.
func New(logger *slog.Logger) *VFS {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cwd := "/"
	if wd, err := os.Getwd(); err == nil {
		cwd = vpath.Normalize(filepath.ToSlash(wd))
	}
	return &VFS{
		table:  newMountTable(),
		logger: logger,
		cwd:    cwd,
	}
}

// Clone returns a VFS sharing this one's mount table but owning an
// independent working directory. Directory changes made through the
// clone are invisible to the original; mounts and unmounts are shared.
func (v *VFS) Clone() *VFS {
	return &VFS{
		table:  v.table,
		logger: v.logger,
		cwd:    v.cwd,
	}
}

// AddMount registers an opened mount. The mount point is normalized.
// Mount names are unique; overlapping mount points are allowed, with
// the longest prefix winning at resolution time.
func (v *VFS) AddMount(mount *Mount) error {
	mount.MountPoint = vpath.Normalize(mount.MountPoint)
	if err := v.table.add(mount); err != nil {
		return err
	}
	v.logger.Info("mount added",
		"name", mount.Name,
		"mount_point", mount.MountPoint,
		"container", mount.Store.ContainerPath(),
	)
	return nil
}

// RemoveMount closes the named mount's store and drops it from the
// table. The table entry is removed even when the close fails, so a
// store that cannot flush does not wedge the namespace.
func (v *VFS) RemoveMount(name string) error {
	mount, err := v.table.remove(name)
	if err != nil {
		return err
	}
	closeErr := mount.Store.Close()
	v.logger.Info("mount removed", "name", name, "mount_point", mount.MountPoint)
	if closeErr != nil {
		return fmt.Errorf("vfs: closing store for mount %s: %w", name, closeErr)
	}
	return nil
}

// Mount looks up a mount by name.
func (v *VFS) Mount(name string) (*Mount, bool) { return v.table.get(name) }

// Mounts returns all mounts sorted by name.
func (v *VFS) Mounts() []*Mount { return v.table.list() }

// MountNames returns the registered mount names, sorted.
func (v *VFS) MountNames() []string {
	mounts := v.table.list()
	names := make([]string, len(mounts))
	for i, mount := range mounts {
		names[i] = mount.Name
	}
	return names
}

// WorkingDir returns this view's current working directory.
func (v *VFS) WorkingDir() string { return v.cwd }

// Resolve maps a path argument to its namespace. Relative paths are
// resolved against the working directory.
func (v *VFS) Resolve(path string) Resolved {
	full := vpath.Join(v.cwd, path)

	mount := v.table.match(full)
	if mount == nil {
		return Resolved{Kind: Real, Path: full}
	}

	rel := "/"
	if full != mount.MountPoint {
		rel = vpath.Normalize(strings.TrimPrefix(full, mount.MountPoint))
	}
	return Resolved{
		Kind:    Virtual,
		Path:    full,
		Mount:   mount,
		RelPath: rel,
	}
}

// ChangeDirectory moves the working directory after verifying that the
// target is a directory in its namespace. On failure the working
// directory is unchanged.
func (v *VFS) ChangeDirectory(path string) error {
	resolved := v.Resolve(path)
	isDir, err := v.isDirectory(resolved)
	if err != nil {
		return err
	}
	if !isDir {
		return fmt.Errorf("%s: %w", resolved.Path, cryptstore.ErrNotDirectory)
	}
	v.cwd = resolved.Path
	return nil
}

// Exists reports whether the path names anything in either namespace.
func (v *VFS) Exists(path string) (bool, error) {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.Exists(resolved.RelPath)
	}
	_, err := os.Stat(resolved.Path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// IsDirectory reports whether the path names a directory.
func (v *VFS) IsDirectory(path string) (bool, error) {
	return v.isDirectory(v.Resolve(path))
}

func (v *VFS) isDirectory(resolved Resolved) (bool, error) {
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.IsDirectory(resolved.RelPath)
	}
	info, err := os.Stat(resolved.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// Stat returns the listing row for one path.
func (v *VFS) Stat(path string) (vpath.FileInfo, error) {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		info, err := resolved.Mount.Store.Stat(resolved.RelPath)
		if err != nil {
			return vpath.FileInfo{}, err
		}
		info.Path = resolved.Path
		return info, nil
	}
	info, err := os.Stat(resolved.Path)
	if err != nil {
		return vpath.FileInfo{}, err
	}
	return vpath.FileInfo{
		Name:    vpath.Base(resolved.Path),
		Path:    resolved.Path,
		IsDir:   info.IsDir(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ReadFile returns the full content of a file in either namespace.
func (v *VFS) ReadFile(path string) ([]byte, error) {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.ReadFile(resolved.RelPath)
	}
	return os.ReadFile(resolved.Path)
}

// WriteFile creates or replaces a file. Missing ancestor directories
// are created in both namespaces, matching the store's implicit-parent
// rule.
func (v *VFS) WriteFile(path string, content []byte) error {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.WriteFile(resolved.RelPath, content)
	}
	if err := os.MkdirAll(filepath.Dir(resolved.Path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(resolved.Path, content, 0o644)
}

// CreateDirectory creates a directory and any missing ancestors.
func (v *VFS) CreateDirectory(path string) error {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.CreateDirectory(resolved.RelPath)
	}
	return os.MkdirAll(resolved.Path, 0o755)
}

// Remove deletes a file, or a directory with everything beneath it.
// Virtual directory removal cascades in the store; real directory
// removal uses os.RemoveAll for the same semantics.
func (v *VFS) Remove(path string) error {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		return resolved.Mount.Store.Remove(resolved.RelPath)
	}
	info, err := os.Stat(resolved.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return os.RemoveAll(resolved.Path)
	}
	return os.Remove(resolved.Path)
}

// ListDirectory returns the immediate children of a directory in
// either namespace, with paths reported in the unified namespace.
func (v *VFS) ListDirectory(path string) ([]vpath.FileInfo, error) {
	resolved := v.Resolve(path)
	if resolved.Kind == Virtual {
		entries, err := resolved.Mount.Store.ListDirectory(resolved.RelPath)
		if err != nil {
			return nil, err
		}
		for i := range entries {
			entries[i].Path = vpath.Join(resolved.Mount.MountPoint, strings.TrimPrefix(entries[i].Path, "/"))
		}
		return entries, nil
	}

	dirEntries, err := os.ReadDir(resolved.Path)
	if err != nil {
		return nil, err
	}
	entries := make([]vpath.FileInfo, 0, len(dirEntries))
	for _, entry := range dirEntries {
		info, err := entry.Info()
		if err != nil {
			// The entry vanished between ReadDir and Info.
			continue
		}
		entries = append(entries, vpath.FileInfo{
			Name:    entry.Name(),
			Path:    vpath.Join(resolved.Path, entry.Name()),
			IsDir:   entry.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return entries, nil
}

// IsNotExist reports whether err means "nothing at that path",
// regardless of which backend produced it.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, cryptstore.ErrNotExist)
}

// IsNotDirectory reports whether err means "expected a directory",
// regardless of which backend produced it.
func IsNotDirectory(err error) bool {
	return errors.Is(err, cryptstore.ErrNotDirectory) || errors.Is(err, syscall.ENOTDIR)
}
