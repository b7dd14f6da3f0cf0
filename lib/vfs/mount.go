// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package vfs

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vaultshell/vsh/lib/cryptstore"
	"github.com/vaultshell/vsh/lib/vpath"
)

var (
	// ErrMountExists is returned by AddMount when the name is taken.
	ErrMountExists = errors.New("vfs: mount name already in use")

	// ErrMountNotFound is returned by RemoveMount for an unknown name.
	ErrMountNotFound = errors.New("vfs: no such mount")
)

// Mount is a named binding between a mount-point path and an opened
// encrypted store. The store must already be open when the mount is
// registered; RemoveMount closes it.
type Mount struct {
	// Name uniquely identifies the mount in the table.
	Name string

	// MountPoint is the absolute path prefix the mount claims.
	MountPoint string

	// Store is the opened backing store.
	Store *cryptstore.Store
}

// mountTable is the process-wide mount registry, shared by a VFS and
// all of its clones. The lock exists because pipeline stages are
// goroutines in the same process: an unlocked map would be a data race
// the moment a stage runs mount or ls concurrently.
type mountTable struct {
	mu     sync.RWMutex
	mounts map[string]*Mount
}

func newMountTable() *mountTable {
	return &mountTable{mounts: make(map[string]*Mount)}
}

func (t *mountTable) add(mount *Mount) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, taken := t.mounts[mount.Name]; taken {
		return fmt.Errorf("%w: %s", ErrMountExists, mount.Name)
	}
	t.mounts[mount.Name] = mount
	return nil
}

func (t *mountTable) remove(name string) (*Mount, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	mount, ok := t.mounts[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMountNotFound, name)
	}
	delete(t.mounts, name)
	return mount, nil
}

func (t *mountTable) get(name string) (*Mount, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	mount, ok := t.mounts[name]
	return mount, ok
}

func (t *mountTable) list() []*Mount {
	t.mu.RLock()
	defer t.mu.RUnlock()
	mounts := make([]*Mount, 0, len(t.mounts))
	for _, mount := range t.mounts {
		mounts = append(mounts, mount)
	}
	sort.Slice(mounts, func(i, j int) bool { return mounts[i].Name < mounts[j].Name })
	return mounts
}

// match returns the mount owning path, if any. When mount points nest
// (say /secure and /secure/inner), the longest matching prefix wins,
// so the deepest mount takes precedence.
func (t *mountTable) match(path string) *Mount {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var best *Mount
	for _, mount := range t.mounts {
		if path != mount.MountPoint && !vpath.IsUnder(path, mount.MountPoint) {
			continue
		}
		if best == nil || len(mount.MountPoint) > len(best.MountPoint) {
			best = mount
		}
	}
	return best
}
