// Package store persists items and the audit trail in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"llmgate/internal/domain"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements domain.ItemStore using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection: SQLite serializes writers anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db, logger: logger}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS items (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL UNIQUE,
		description TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		action      TEXT NOT NULL,
		operation   TEXT,
		target      TEXT,
		result      TEXT,
		details     TEXT,
		created_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_time ON audit_log(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateItem inserts a new item. Names are unique; inserting a
// duplicate surfaces as domain.ConflictError.
func (s *SQLiteStore) CreateItem(ctx context.Context, name, description string) (domain.Item, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (name, description) VALUES (?, ?)`,
		name, description,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return domain.Item{}, &domain.ConflictError{Name: name}
		}
		return domain.Item{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Item{}, err
	}
	return domain.Item{ID: id, Name: name, Description: description}, nil
}

// GetItem returns nil with no error when the id does not exist; the
// caller decides how absence maps onto its interface.
func (s *SQLiteStore) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	var item domain.Item
	var description sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.Description = description.String
	return &item, nil
}

func (s *SQLiteStore) LogAudit(ctx context.Context, entry domain.AuditEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (action, operation, target, result, details)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Action, entry.Operation, entry.Target, entry.Result, entry.Details,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
