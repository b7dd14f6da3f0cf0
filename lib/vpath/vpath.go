// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

// Package vpath provides path normalization for the virtual namespace.
//
// Both the encrypted store and the virtual filesystem dispatcher speak
// the same path dialect: absolute, slash-separated, no trailing slash
// except for the root itself. The functions here are pure string
// manipulation — nothing touches the OS filesystem.
package vpath

import (
	"strings"
	"time"
)

// FileInfo is one directory-listing row, synthesized uniformly whether
// the underlying entry came from the OS filesystem or from an
// encrypted store.
type FileInfo struct {
	// Name is the final path element.
	Name string

	// Path is the full normalized path of the entry.
	Path string

	// IsDir reports whether the entry is a directory.
	IsDir bool

	// Size is the content length in bytes. Zero for directories.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// Normalize collapses a path to canonical form: non-empty, always
// beginning with "/", "." segments dropped, ".." segments popping one
// element (a no-op at the root), and no trailing "/" unless the result
// is exactly "/". Relative input is interpreted as rooted at "/".
//
// Normalize is idempotent: Normalize(Normalize(p)) == Normalize(p).
func Normalize(path string) string {
	segments := strings.Split(path, "/")
	stack := make([]string, 0, len(segments))
	for _, segment := range segments {
		switch segment {
		case "", ".":
			// Skip empty segments (doubled or leading/trailing
			// slashes) and current-directory markers.
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}
	if len(stack) == 0 {
		return "/"
	}
	return "/" + strings.Join(stack, "/")
}

// Join resolves path against base: absolute paths are normalized as-is,
// relative paths are appended to base first. Base must itself be an
// absolute path.
func Join(base, path string) string {
	if strings.HasPrefix(path, "/") {
		return Normalize(path)
	}
	return Normalize(base + "/" + path)
}

// Parent returns the containing directory of a normalized path.
// The parent of "/" is "" (the root has no parent).
func Parent(path string) string {
	if path == "/" {
		return ""
	}
	index := strings.LastIndexByte(path, '/')
	if index <= 0 {
		return "/"
	}
	return path[:index]
}

// Base returns the final element of a normalized path. Base("/") is "/".
func Base(path string) string {
	if path == "/" {
		return "/"
	}
	index := strings.LastIndexByte(path, '/')
	return path[index+1:]
}

// IsUnder reports whether path is strictly inside dir (not equal to it).
// Both arguments must be normalized.
func IsUnder(path, dir string) bool {
	if dir == "/" {
		return path != "/"
	}
	return strings.HasPrefix(path, dir+"/")
}

// ChildPrefix returns the string prefix shared by all entries strictly
// inside dir. Useful for prefix scans over the path primary key.
func ChildPrefix(dir string) string {
	if dir == "/" {
		return "/"
	}
	return dir + "/"
}
