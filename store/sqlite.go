package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS translations (
	id              TEXT PRIMARY KEY,
	source_text     TEXT NOT NULL,
	target_lang     TEXT NOT NULL,
	translated_text TEXT NOT NULL,
	updated_at      INTEGER NOT NULL
);`

// SQLiteStore is a durable single-file translation store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create translations table: %w", err)
	}
	return nil
}

// Get retrieves a record.
func (s *SQLiteStore) Get(ctx context.Context, key string) (Record, bool, error) {
	var rec Record
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT source_text, target_lang, translated_text, updated_at FROM translations WHERE id = ?`,
		key,
	).Scan(&rec.SourceText, &rec.TargetLang, &rec.TranslatedText, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, &gotmemo.StoreError{Op: "get", Key: key, Cause: err}
	}
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	return rec, true, nil
}

// Put upserts a record.
func (s *SQLiteStore) Put(ctx context.Context, key string, rec Record) error {
	updated := rec.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO translations (id, source_text, target_lang, translated_text, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	source_text = excluded.source_text,
	target_lang = excluded.target_lang,
	translated_text = excluded.translated_text,
	updated_at = excluded.updated_at`,
		key, rec.SourceText, rec.TargetLang, rec.TranslatedText, updated.UnixNano(),
	)
	if err != nil {
		return &gotmemo.StoreError{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// Records returns all records ordered by key.
func (s *SQLiteStore) Records(ctx context.Context) ([]KeyedRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source_text, target_lang, translated_text, updated_at FROM translations ORDER BY id`)
	if err != nil {
		return nil, &gotmemo.StoreError{Op: "list", Cause: err}
	}
	defer rows.Close()

	var result []KeyedRecord
	for rows.Next() {
		var kr KeyedRecord
		var updated int64
		if err := rows.Scan(&kr.Key, &kr.Record.SourceText, &kr.Record.TargetLang, &kr.Record.TranslatedText, &updated); err != nil {
			return nil, &gotmemo.StoreError{Op: "list", Cause: err}
		}
		kr.Record.UpdatedAt = time.Unix(0, updated).UTC()
		result = append(result, kr)
	}
	if err := rows.Err(); err != nil {
		return nil, &gotmemo.StoreError{Op: "list", Cause: err}
	}
	return result, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Verify SQLiteStore implements Lister
var _ Lister = (*SQLiteStore)(nil)
