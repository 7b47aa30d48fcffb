// Package sqlite implements the storage port on SQLite via modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"chronodoc/internal/repository"

	_ "modernc.org/sqlite"
)

// Store implements repository.Store using a single SQLite database.
type Store struct {
	db *sql.DB
	session
}

var _ repository.Store = (*Store)(nil)

// New opens (or creates) the database at path and ensures the schema.
// ":memory:" gives a private in-memory database, used by tests.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer connection: SQLite serializes writers anyway, and one
	// connection keeps :memory: databases coherent across calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s := &Store{db: db, session: session{q: db}}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scheme TEXT NOT NULL,
		oid TEXT NOT NULL,
		version_ord INTEGER NOT NULL,
		correction_ord INTEGER NOT NULL,
		ver_from INTEGER NOT NULL,
		ver_to INTEGER,
		corr_from INTEGER NOT NULL,
		corr_to INTEGER,
		visibility TEXT NOT NULL,
		name TEXT NOT NULL,
		attributes TEXT NOT NULL DEFAULT '{}',
		UNIQUE (scheme, oid, version_ord, correction_ord)
	);

	CREATE TABLE IF NOT EXISTS nodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		node_scheme TEXT NOT NULL,
		node_oid TEXT NOT NULL,
		parent_id INTEGER REFERENCES nodes(id) ON DELETE CASCADE,
		depth INTEGER NOT NULL,
		sibling_ord INTEGER NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS node_positions (
		node_id INTEGER NOT NULL REFERENCES nodes(id) ON DELETE CASCADE,
		position_ord INTEGER NOT NULL,
		position_scheme TEXT NOT NULL,
		position_oid TEXT NOT NULL,
		PRIMARY KEY (node_id, position_ord)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_object ON documents(scheme, oid, ver_from);
	CREATE INDEX IF NOT EXISTS idx_documents_open ON documents(scheme, oid) WHERE ver_to IS NULL;
	CREATE INDEX IF NOT EXISTS idx_nodes_document ON nodes(document_id);
	CREATE INDEX IF NOT EXISTS idx_nodes_object ON nodes(node_scheme, node_oid);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Transact runs fn in one transaction. Any error from fn rolls back every
// write; storage failures surface as ErrStorageUnavailable.
func (s *Store) Transact(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&storeTx{session{q: tx}}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// storeTx exposes the session's read and write methods inside a transaction.
type storeTx struct {
	session
}

var _ repository.Tx = (*storeTx)(nil)

// querier abstracts *sql.DB and *sql.Tx so the same query code serves both.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session holds the connection handle the queries run against.
type session struct {
	q querier
}
