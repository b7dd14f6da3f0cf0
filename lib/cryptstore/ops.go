// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package cryptstore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/vaultshell/vsh/lib/vpath"
)

// Exists reports whether the normalized path names a file or directory.
func (s *Store) Exists(path string) (bool, error) {
	path = vpath.Normalize(path)
	var found bool
	err := s.view(func(conn *sqlite.Conn) error {
		file, err := fileExists(conn, path)
		if err != nil {
			return err
		}
		if file {
			found = true
			return nil
		}
		dir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		found = dir
		return nil
	})
	return found, err
}

// IsDirectory reports whether the normalized path names a directory.
func (s *Store) IsDirectory(path string) (bool, error) {
	path = vpath.Normalize(path)
	var isDir bool
	err := s.view(func(conn *sqlite.Conn) error {
		var err error
		isDir, err = dirExists(conn, path)
		return err
	})
	return isDir, err
}

// Stat returns the listing row for a single path, or ErrNotExist.
func (s *Store) Stat(path string) (vpath.FileInfo, error) {
	path = vpath.Normalize(path)
	var info vpath.FileInfo
	err := s.view(func(conn *sqlite.Conn) error {
		found := false
		err := sqlitex.Execute(conn,
			"SELECT size, mtime FROM files WHERE path = ?",
			&sqlitex.ExecOptions{
				Args: []any{path},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					info = vpath.FileInfo{
						Name:    vpath.Base(path),
						Path:    path,
						Size:    stmt.ColumnInt64(0),
						ModTime: time.Unix(stmt.ColumnInt64(1), 0),
					}
					return nil
				},
			})
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		err = sqlitex.Execute(conn,
			"SELECT mtime FROM directories WHERE path = ?",
			&sqlitex.ExecOptions{
				Args: []any{path},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					info = vpath.FileInfo{
						Name:    vpath.Base(path),
						Path:    path,
						IsDir:   true,
						ModTime: time.Unix(stmt.ColumnInt64(0), 0),
					}
					return nil
				},
			})
		if err != nil {
			return err
		}
		if !found {
			return ErrNotExist
		}
		return nil
	})
	return info, err
}

// ListDirectory returns the immediate children of a directory, sorted
// by name with directories first. Returns ErrNotExist if the path names
// nothing and ErrNotDirectory if it names a file.
func (s *Store) ListDirectory(path string) ([]vpath.FileInfo, error) {
	path = vpath.Normalize(path)
	var entries []vpath.FileInfo
	err := s.view(func(conn *sqlite.Conn) error {
		isDir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		if !isDir {
			isFile, err := fileExists(conn, path)
			if err != nil {
				return err
			}
			if isFile {
				return ErrNotDirectory
			}
			return ErrNotExist
		}

		err = sqlitex.Execute(conn,
			"SELECT path, mtime FROM directories WHERE parent = ?",
			&sqlitex.ExecOptions{
				Args: []any{path},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					child := stmt.ColumnText(0)
					entries = append(entries, vpath.FileInfo{
						Name:    vpath.Base(child),
						Path:    child,
						IsDir:   true,
						ModTime: time.Unix(stmt.ColumnInt64(1), 0),
					})
					return nil
				},
			})
		if err != nil {
			return err
		}

		// Files carry no parent column; scan the path prefix and keep
		// direct children only.
		prefix := vpath.ChildPrefix(path)
		err = sqlitex.Execute(conn,
			"SELECT path, size, mtime FROM files WHERE substr(path, 1, ?) = ?",
			&sqlitex.ExecOptions{
				Args: []any{len(prefix), prefix},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					child := stmt.ColumnText(0)
					if strings.ContainsRune(child[len(prefix):], '/') {
						return nil
					}
					entries = append(entries, vpath.FileInfo{
						Name:    vpath.Base(child),
						Path:    child,
						Size:    stmt.ColumnInt64(1),
						ModTime: time.Unix(stmt.ColumnInt64(2), 0),
					})
					return nil
				},
			})
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ReadFile returns the content of a file. Returns ErrNotExist for an
// absent path and ErrIsDirectory for a directory.
func (s *Store) ReadFile(path string) ([]byte, error) {
	path = vpath.Normalize(path)
	var content []byte
	err := s.view(func(conn *sqlite.Conn) error {
		found := false
		err := sqlitex.Execute(conn,
			"SELECT content FROM files WHERE path = ?",
			&sqlitex.ExecOptions{
				Args: []any{path},
				ResultFunc: func(stmt *sqlite.Stmt) error {
					found = true
					content = make([]byte, stmt.ColumnLen(0))
					stmt.ColumnBytes(0, content)
					return nil
				},
			})
		if err != nil {
			return err
		}
		if found {
			return nil
		}
		isDir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		if isDir {
			return ErrIsDirectory
		}
		return ErrNotExist
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// WriteFile creates or replaces a file. Missing ancestor directories
// are created implicitly. Returns ErrIsDirectory if the path names a
// directory, ErrNotDirectory if an ancestor position is occupied by a
// file, and ErrQuotaExceeded when the write would exceed the quota
// (leaving prior content unchanged).
func (s *Store) WriteFile(path string, content []byte) error {
	path = vpath.Normalize(path)
	if path == "/" {
		return ErrIsDirectory
	}
	return s.mutate(func(conn *sqlite.Conn) error {
		isDir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		if isDir {
			return ErrIsDirectory
		}
		if err := ensureAncestors(conn, path); err != nil {
			return err
		}
		err = sqlitex.Execute(conn,
			`INSERT INTO files (path, content, size, mtime) VALUES (?, ?, ?, ?)
			 ON CONFLICT(path) DO UPDATE SET
			   content = excluded.content, size = excluded.size, mtime = excluded.mtime`,
			&sqlitex.ExecOptions{
				Args: []any{path, content, int64(len(content)), time.Now().Unix()},
			})
		return mapQuotaError(err)
	})
}

// CreateDirectory creates a directory, along with any missing
// ancestors. Idempotent when the path is already a directory; returns
// ErrExist when it is a file.
func (s *Store) CreateDirectory(path string) error {
	path = vpath.Normalize(path)
	return s.mutate(func(conn *sqlite.Conn) error {
		isDir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		if isDir {
			return nil
		}
		isFile, err := fileExists(conn, path)
		if err != nil {
			return err
		}
		if isFile {
			return ErrExist
		}
		if err := ensureAncestors(conn, path); err != nil {
			return err
		}
		return mapQuotaError(insertDirectory(conn, path))
	})
}

// Remove deletes a file, or a directory together with everything
// beneath it. Returns ErrNotExist if the path names nothing.
func (s *Store) Remove(path string) error {
	path = vpath.Normalize(path)
	return s.mutate(func(conn *sqlite.Conn) error {
		isFile, err := fileExists(conn, path)
		if err != nil {
			return err
		}
		if isFile {
			return sqlitex.Execute(conn,
				"DELETE FROM files WHERE path = ?",
				&sqlitex.ExecOptions{Args: []any{path}})
		}

		isDir, err := dirExists(conn, path)
		if err != nil {
			return err
		}
		if !isDir {
			return ErrNotExist
		}
		if path == "/" {
			return fmt.Errorf("cryptstore: cannot remove the root directory")
		}

		// Cascade by lexical prefix: every file and directory beneath
		// the removed path goes with it.
		prefix := vpath.ChildPrefix(path)
		err = sqlitex.Execute(conn,
			"DELETE FROM files WHERE substr(path, 1, ?) = ?",
			&sqlitex.ExecOptions{Args: []any{len(prefix), prefix}})
		if err != nil {
			return err
		}
		return sqlitex.Execute(conn,
			"DELETE FROM directories WHERE path = ? OR substr(path, 1, ?) = ?",
			&sqlitex.ExecOptions{Args: []any{path, len(prefix), prefix}})
	})
}

// UsedSpace returns the sum of all file sizes. Directory rows and
// storage overhead are not counted.
func (s *Store) UsedSpace() (int64, error) {
	var used int64
	err := s.view(func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			"SELECT COALESCE(SUM(size), 0) FROM files",
			&sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					used = stmt.ColumnInt64(0)
					return nil
				},
			})
	})
	return used, err
}

func fileExists(conn *sqlite.Conn, path string) (bool, error) {
	var found bool
	err := sqlitex.Execute(conn,
		"SELECT 1 FROM files WHERE path = ?",
		&sqlitex.ExecOptions{
			Args: []any{path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	return found, err
}

func dirExists(conn *sqlite.Conn, path string) (bool, error) {
	var found bool
	err := sqlitex.Execute(conn,
		"SELECT 1 FROM directories WHERE path = ?",
		&sqlitex.ExecOptions{
			Args: []any{path},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				return nil
			},
		})
	return found, err
}

func insertDirectory(conn *sqlite.Conn, path string) error {
	return sqlitex.Execute(conn,
		"INSERT INTO directories (path, parent, mtime) VALUES (?, ?, ?)",
		&sqlitex.ExecOptions{
			Args: []any{path, vpath.Parent(path), time.Now().Unix()},
		})
}

// ensureAncestors creates every missing directory above path. An
// ancestor position occupied by a file fails with ErrNotDirectory.
func ensureAncestors(conn *sqlite.Conn, path string) error {
	var missing []string
	for dir := vpath.Parent(path); dir != ""; dir = vpath.Parent(dir) {
		isDir, err := dirExists(conn, dir)
		if err != nil {
			return err
		}
		if isDir {
			break
		}
		isFile, err := fileExists(conn, dir)
		if err != nil {
			return err
		}
		if isFile {
			return fmt.Errorf("%w: %s", ErrNotDirectory, dir)
		}
		missing = append(missing, dir)
	}
	// Insert top-down so each row's parent exists when it is written.
	for i := len(missing) - 1; i >= 0; i-- {
		if err := mapQuotaError(insertDirectory(conn, missing[i])); err != nil {
			return err
		}
	}
	return nil
}
