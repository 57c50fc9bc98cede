package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps session entries in a single-file SQLite database. One row per
// (namespace, entry) pair.
type SQLiteStore struct {
	db        *sql.DB
	namespace string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS session_entries (
	namespace TEXT NOT NULL,
	entry     TEXT NOT NULL,
	value     BLOB NOT NULL,
	PRIMARY KEY (namespace, entry)
);`

// busy_timeout must come before journal_mode so the connection blocks while WAL is switched on.
const sqlitePragmas = "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

// OpenSQLiteStore opens (or creates) the database at path. Use ":memory:" for an ephemeral
// database; the pool is pinned to one connection in that case so every call sees the same data.
func OpenSQLiteStore(ctx context.Context, path, namespace string) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = path + sqlitePragmas
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: init schema: %v", ErrStoreUnavailable, err)
	}

	return &SQLiteStore{db: db, namespace: normalizeNamespace(namespace)}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(ctx context.Context, entry string) ([]byte, error) {
	var v []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM session_entries WHERE namespace = ? AND entry = ?`,
		s.namespace, entry,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return v, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLiteStore) put(ctx context.Context, ex execer, entry string, value []byte) error {
	var err error
	if len(value) == 0 {
		_, err = ex.ExecContext(ctx,
			`DELETE FROM session_entries WHERE namespace = ? AND entry = ?`,
			s.namespace, entry,
		)
	} else {
		_, err = ex.ExecContext(ctx,
			`INSERT INTO session_entries (namespace, entry, value) VALUES (?, ?, ?)
			 ON CONFLICT (namespace, entry) DO UPDATE SET value = excluded.value`,
			s.namespace, entry, value,
		)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) AccessToken(ctx context.Context) (string, error) {
	v, err := s.get(ctx, "access")
	return string(v), err
}

func (s *SQLiteStore) SetAccessToken(ctx context.Context, token string) error {
	return s.put(ctx, s.db, "access", []byte(token))
}

func (s *SQLiteStore) RefreshToken(ctx context.Context) (string, error) {
	v, err := s.get(ctx, "refresh")
	return string(v), err
}

func (s *SQLiteStore) SetRefreshToken(ctx context.Context, token string) error {
	return s.put(ctx, s.db, "refresh", []byte(token))
}

func (s *SQLiteStore) User(ctx context.Context) (*UserProfile, error) {
	v, err := s.get(ctx, "user")
	if err != nil || v == nil {
		return nil, err
	}
	return DecodeUser(v)
}

func (s *SQLiteStore) SetUser(ctx context.Context, u *UserProfile) error {
	if u == nil {
		return s.put(ctx, s.db, "user", nil)
	}
	data, err := EncodeUser(u)
	if err != nil {
		return err
	}
	return s.put(ctx, s.db, "user", data)
}

// WriteRecord replaces all three entries in one transaction.
func (s *SQLiteStore) WriteRecord(ctx context.Context, rec Record) error {
	var userData []byte
	if rec.User != nil {
		data, err := EncodeUser(rec.User)
		if err != nil {
			return err
		}
		userData = data
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer tx.Rollback()

	if err := s.put(ctx, tx, "access", []byte(rec.AccessToken)); err != nil {
		return err
	}
	if err := s.put(ctx, tx, "refresh", []byte(rec.RefreshToken)); err != nil {
		return err
	}
	if err := s.put(ctx, tx, "user", userData); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
