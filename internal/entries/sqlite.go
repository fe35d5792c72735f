// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package entries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ManuGH/stbbridge/internal/config"
	_ "modernc.org/sqlite" // Pure Go driver
)

// SQLiteConfig defines SQLite operational parameters.
type SQLiteConfig struct {
	BusyTimeout  time.Duration
	MaxOpenConns int
}

// DefaultSQLiteConfig returns the settings used by Open.
func DefaultSQLiteConfig() SQLiteConfig {
	return SQLiteConfig{
		BusyTimeout:  5 * time.Second,
		MaxOpenConns: 4,
	}
}

// SQLite is a Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at path. PRAGMAs are set in
// the DSN so they apply to every pooled connection.
func OpenSQLite(path string, cfg SQLiteConfig) (*SQLite, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=synchronous(NORMAL)",
		path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open failed: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping failed: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: run migrations: %w", err)
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS config_entries (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		provider TEXT NOT NULL,
		country TEXT NOT NULL,
		username TEXT NOT NULL,
		identifier TEXT NOT NULL DEFAULT '',
		omit_channel_quality INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE (provider, username)
	);
	`)
	return err
}

const entryColumns = "id, title, provider, country, username, identifier, omit_channel_quality, created_at"

func (s *SQLite) Put(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			provider = excluded.provider,
			country = excluded.country,
			username = excluded.username,
			identifier = excluded.identifier,
			omit_channel_quality = excluded.omit_channel_quality
	`, e.ID, e.Title, string(e.Provider), e.Country, e.Username, e.Identifier,
		e.OmitChannelQuality, e.CreatedAt.UTC().Format(time.RFC3339))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyConfigured
		}
		return fmt.Errorf("put entry: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM config_entries WHERE id = ?", id)
	return scanEntry(row)
}

func (s *SQLite) Lookup(ctx context.Context, provider config.Provider, username string) (Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+entryColumns+" FROM config_entries WHERE provider = ? AND username = ?",
		string(provider), username)
	return scanEntry(row)
}

func (s *SQLite) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM config_entries ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM config_entries WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e        Entry
		provider string
		created  string
	)
	err := row.Scan(&e.ID, &e.Title, &provider, &e.Country, &e.Username, &e.Identifier, &e.OmitChannelQuality, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	e.Provider = config.Provider(provider)
	if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Entry{}, fmt.Errorf("scan entry: created_at: %w", err)
	}
	return e, nil
}
