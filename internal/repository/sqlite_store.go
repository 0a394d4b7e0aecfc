package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/kevin-phan-25/pantrypal/internal/models"
)

// SQLiteStore holds one JSON document per account in SQLite. Writes follow
// the single-writer principle: one connection, one mutex, one transaction
// per Update, so a read-modify-write for an account can never interleave
// with another.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex // single writer
}

// NewSQLiteStore opens the database at dbPath and ensures the schema.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // Single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite store ready", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Accounts table: one pantry document per account
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		doc TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, accountID string) (*models.AccountDoc, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.NewAccountDoc(), nil
		}
		return nil, fmt.Errorf("failed to load account document: %w", err)
	}

	doc := models.NewAccountDoc()
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		return nil, fmt.Errorf("failed to parse account document: %w", err)
	}
	return doc, nil
}

func (s *SQLiteStore) Update(ctx context.Context, accountID string, fn func(doc *models.AccountDoc) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	doc := models.NewAccountDoc()
	var raw string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	switch {
	case err == sql.ErrNoRows:
		// First write for this account
	case err != nil:
		return fmt.Errorf("failed to load account document: %w", err)
	default:
		if err := json.Unmarshal([]byte(raw), doc); err != nil {
			return fmt.Errorf("failed to parse account document: %w", err)
		}
	}

	if err := fn(doc); err != nil {
		return err
	}

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal account document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO accounts (id, doc, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at
	`, accountID, string(updated), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to store account document: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) Accounts(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM accounts ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
