package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"bytebpe/internal/pkg/bytebpe/bpe"
)

func init() {
	Register("sqlite", func(ctx context.Context, path string) (Store, error) {
		return newSQLiteStore(ctx, path)
	})
}

type sqliteStore struct {
	db   *sql.DB
	path string
}

func newSQLiteStore(ctx context.Context, path string) (*sqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &sqliteStore{db: db, path: path}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *sqliteStore) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS merges (
			priority INTEGER PRIMARY KEY,
			left_id INTEGER NOT NULL,
			right_id INTEGER NOT NULL,
			token_id INTEGER NOT NULL UNIQUE,
			UNIQUE (left_id, right_id)
		)`,
		`CREATE TABLE IF NOT EXISTS vocab (
			token_id INTEGER PRIMARY KEY,
			bytes BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) Save(ctx context.Context, m *Model) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"meta", "merges", "vocab"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('version', ?)`, m.Version); err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	mergeStmt, err := tx.PrepareContext(ctx, `INSERT INTO merges (priority, left_id, right_id, token_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare merge insert: %w", err)
	}
	defer mergeStmt.Close()
	for i, mg := range m.Merges {
		if _, err = mergeStmt.ExecContext(ctx, i, mg.Pair.Left, mg.Pair.Right, mg.ID); err != nil {
			return fmt.Errorf("insert merge %d: %w", i, err)
		}
	}

	vocabStmt, err := tx.PrepareContext(ctx, `INSERT INTO vocab (token_id, bytes) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare vocab insert: %w", err)
	}
	defer vocabStmt.Close()
	for _, e := range m.Vocab {
		if _, err = vocabStmt.ExecContext(ctx, e.ID, e.Bytes); err != nil {
			return fmt.Errorf("insert vocab entry %d: %w", e.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit model: %w", err)
	}
	return nil
}

func (s *sqliteStore) Load(ctx context.Context) (*Model, error) {
	m := &Model{}
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'version'`).Scan(&m.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no model stored in %s", s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("query version: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT left_id, right_id, token_id FROM merges ORDER BY priority`)
	if err != nil {
		return nil, fmt.Errorf("query merges: %w", err)
	}
	for rows.Next() {
		var mg bpe.Merge
		if err := rows.Scan(&mg.Pair.Left, &mg.Pair.Right, &mg.ID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan merge: %w", err)
		}
		m.Merges = append(m.Merges, mg)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate merges: %w", err)
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `SELECT token_id, bytes FROM vocab ORDER BY token_id`)
	if err != nil {
		return nil, fmt.Errorf("query vocab: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e VocabEntry
		if err := rows.Scan(&e.ID, &e.Bytes); err != nil {
			return nil, fmt.Errorf("scan vocab entry: %w", err)
		}
		m.Vocab = append(m.Vocab, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vocab: %w", err)
	}
	return m, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
