// Copyright 2026 The Vsh Authors
// SPDX-License-Identifier: Apache-2.0

package cryptstore

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"filippo.io/age"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/vaultshell/vsh/lib/secret"
)

// pageSize is the SQLite page size fixed at container creation. The
// quota is expressed to the engine as max_page_count in this unit, so
// enforcement is approximate: the cap covers content, schema, and
// b-tree overhead together.
const pageSize = 4096

// minPageCount is the floor for max_page_count. Below this the schema
// itself cannot be created.
const minPageCount = 16

const schemaSQL = `
CREATE TABLE IF NOT EXISTS files (
	path    TEXT PRIMARY KEY,
	content BLOB NOT NULL,
	size    INTEGER NOT NULL,
	mtime   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS directories (
	path   TEXT PRIMARY KEY,
	parent TEXT NOT NULL,
	mtime  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS directories_parent ON directories(parent);
`

// Config holds the parameters for opening a store. ContainerPath is
// required; all other fields have defaults.
type Config struct {
	// ContainerPath is the filesystem path of the sealed container
	// file. The parent directory must exist. The file is created on
	// first open.
	ContainerPath string

	// QuotaBytes caps the total size of the database, expressed to
	// the engine as a page-count limit. Zero means unlimited.
	QuotaBytes int64

	// ScryptWorkFactor overrides the age scrypt work factor (log2 N).
	// Zero keeps the age default. Tests lower this to keep key
	// derivation fast.
	ScryptWorkFactor int

	// Logger receives operational messages. If nil, a no-op logger is
	// used.
	Logger *slog.Logger
}

// Store is one encrypted hierarchical file/directory store. All
// operations are safe for concurrent use; the in-memory SQLite
// connection is guarded by a single mutex, which also serializes the
// container flush that follows every mutation.
type Store struct {
	containerPath string
	quotaBytes    int64
	workFactor    int
	logger        *slog.Logger

	mu        sync.Mutex
	conn      *sqlite.Conn // nil when closed
	recipient age.Recipient
}

// New creates a store handle. No I/O happens until Open.
func New(cfg Config) (*Store, error) {
	if cfg.ContainerPath == "" {
		return nil, fmt.Errorf("cryptstore: ContainerPath is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		containerPath: cfg.ContainerPath,
		quotaBytes:    cfg.QuotaBytes,
		workFactor:    cfg.ScryptWorkFactor,
		logger:        logger,
	}, nil
}

// ContainerPath returns the sealed container file location.
func (s *Store) ContainerPath() string { return s.containerPath }

// QuotaBytes returns the configured quota (zero means unlimited).
func (s *Store) QuotaBytes() int64 { return s.quotaBytes }

// Open unseals the container (creating it if absent) and prepares the
// in-memory database: schema, quota cap, and the root directory. The
// passphrase is read once to derive the scrypt key material and is not
// retained; the caller keeps ownership of the buffer.
//
// An existing container that the passphrase does not unseal returns
// ErrBadPassphrase. A container that unseals but does not deserialize
// is reported as corrupt. Open on an already-open store is an error.
func (s *Store) Open(passphrase *secret.Buffer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return fmt.Errorf("cryptstore: %s is already open", s.containerPath)
	}

	// The age API takes the passphrase as a string; the heap copy is
	// brief and the mmap buffer remains the durable copy.
	recipient, err := age.NewScryptRecipient(passphrase.String())
	if err != nil {
		return fmt.Errorf("cryptstore: deriving recipient: %w", err)
	}
	if s.workFactor > 0 {
		recipient.SetWorkFactor(s.workFactor)
	}
	identity, err := age.NewScryptIdentity(passphrase.String())
	if err != nil {
		return fmt.Errorf("cryptstore: deriving identity: %w", err)
	}

	var image []byte
	created := false
	if _, err := os.Stat(s.containerPath); err == nil {
		image, err = unseal(s.containerPath, identity)
		if err != nil {
			return fmt.Errorf("cryptstore: %w", err)
		}
	} else if os.IsNotExist(err) {
		created = true
	} else {
		return fmt.Errorf("cryptstore: checking container: %w", err)
	}

	conn, err := sqlite.OpenConn(":memory:")
	if err != nil {
		return fmt.Errorf("cryptstore: opening engine: %w", err)
	}

	if err := s.initialize(conn, image); err != nil {
		conn.Close()
		return err
	}

	s.conn = conn
	s.recipient = recipient

	if created {
		// Flush immediately so the container file exists and a wrong
		// passphrase is detectable on the next open.
		if err := s.flushLocked(); err != nil {
			s.conn = nil
			conn.Close()
			return err
		}
	}

	s.logger.Info("store opened",
		"container", s.containerPath,
		"quota_bytes", s.quotaBytes,
		"created", created,
	)
	return nil
}

// initialize loads the image (if any), applies the quota cap, ensures
// the schema, and guarantees the root directory.
func (s *Store) initialize(conn *sqlite.Conn, image []byte) error {
	if len(image) > 0 {
		if err := conn.Deserialize("main", image); err != nil {
			return fmt.Errorf("cryptstore: container %s holds a corrupt database image: %w", s.containerPath, err)
		}
	} else {
		if err := sqlitex.ExecuteTransient(conn,
			fmt.Sprintf("PRAGMA page_size = %d", pageSize), nil); err != nil {
			return fmt.Errorf("cryptstore: setting page size: %w", err)
		}
	}

	if s.quotaBytes > 0 {
		pages := s.quotaBytes / pageSize
		if pages < minPageCount {
			pages = minPageCount
		}
		if err := sqlitex.ExecuteTransient(conn,
			fmt.Sprintf("PRAGMA max_page_count = %d", pages), nil); err != nil {
			return fmt.Errorf("cryptstore: applying quota: %w", err)
		}
	}

	if err := sqlitex.ExecuteScript(conn, schemaSQL, nil); err != nil {
		return fmt.Errorf("cryptstore: creating schema: %w", err)
	}

	err := sqlitex.Execute(conn,
		"INSERT OR IGNORE INTO directories (path, parent, mtime) VALUES ('/', '', unixepoch())", nil)
	if err != nil {
		return fmt.Errorf("cryptstore: ensuring root directory: %w", err)
	}
	return nil
}

// Close flushes and closes the store. Idempotent: closing a store that
// is not open returns nil.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}

	flushErr := s.flushLocked()
	closeErr := s.conn.Close()
	s.conn = nil
	s.recipient = nil

	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("cryptstore: closing engine: %w", closeErr)
	}
	s.logger.Info("store closed", "container", s.containerPath)
	return nil
}

// flushLocked serializes the database and rewrites the sealed
// container. Callers must hold s.mu.
func (s *Store) flushLocked() error {
	image, err := s.conn.Serialize("main")
	if err != nil {
		return fmt.Errorf("cryptstore: serializing database: %w", err)
	}
	if err := seal(s.containerPath, s.recipient, image); err != nil {
		s.logger.Error("container flush failed",
			"container", s.containerPath,
			"error", err,
		)
		return fmt.Errorf("cryptstore: flushing container: %w", err)
	}
	return nil
}

// mutate runs fn inside a savepoint while holding the store lock, then
// flushes the container on success. A failed fn (including a quota
// rejection) rolls back and leaves both the database and the container
// untouched.
func (s *Store) mutate(fn func(conn *sqlite.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}

	// The savepoint must be released before serialization, so the
	// transactional scope is an inner closure.
	err := func() (err error) {
		defer sqlitex.Save(s.conn)(&err)
		return fn(s.conn)
	}()
	if err != nil {
		return err
	}
	return s.flushLocked()
}

// view runs fn while holding the store lock, without flushing.
func (s *Store) view(fn func(conn *sqlite.Conn) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return ErrClosed
	}
	return fn(s.conn)
}

// mapQuotaError converts the engine's SQLITE_FULL into the typed quota
// sentinel; everything else passes through.
func mapQuotaError(err error) error {
	if err == nil {
		return nil
	}
	if sqlite.ErrCode(err) == sqlite.ResultFull {
		return ErrQuotaExceeded
	}
	return err
}
