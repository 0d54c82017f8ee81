package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultSQLitePath is used when no path is configured.
const DefaultSQLitePath = "agent_memory.db"

var sqliteSchema = []string{`CREATE TABLE IF NOT EXISTS seen_urls (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	url        TEXT NOT NULL,
	topic      TEXT NOT NULL,
	created_at TEXT NOT NULL,
	UNIQUE (url, topic)
)`, `CREATE TABLE IF NOT EXISTS synthesis_cache (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	topic      TEXT NOT NULL,
	persona    TEXT NOT NULL,
	report     TEXT NOT NULL,
	sources    TEXT,
	updated_at TEXT NOT NULL,
	UNIQUE (topic, persona)
)`}

// SQLiteStore keeps research memory in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: init schema: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) URLSeen(ctx context.Context, url, topic string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM seen_urls WHERE url = ? AND topic = ?`, url, NormKey(topic),
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: url seen: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) RecordURL(ctx context.Context, url, topic string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seen_urls (url, topic, created_at) VALUES (?, ?, ?)
		 ON CONFLICT (url, topic) DO NOTHING`,
		url, NormKey(topic), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("sqlite: record url: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SeenURLs(ctx context.Context, topic string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url FROM seen_urls WHERE topic = ? ORDER BY id`, NormKey(topic))
	if err != nil {
		return nil, fmt.Errorf("sqlite: seen urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("sqlite: scan url: %w", err)
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

func (s *SQLiteStore) CachedReport(ctx context.Context, topic, persona string) (*Report, error) {
	topic, persona = NormKey(topic), NormKey(persona)
	var report string
	var sources sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT report, sources FROM synthesis_cache WHERE topic = ? AND persona = ?`,
		topic, persona,
	).Scan(&report, &sources)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: cached report: %w", err)
	}
	return &Report{
		Topic:   topic,
		Persona: persona,
		Report:  report,
		Sources: decodeSources(sources.String, topic, persona),
	}, nil
}

func (s *SQLiteStore) PutReport(ctx context.Context, topic, persona, report string, sources []string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO synthesis_cache (topic, persona, report, sources, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (topic, persona) DO UPDATE SET
		   report = excluded.report,
		   sources = excluded.sources,
		   updated_at = excluded.updated_at`,
		NormKey(topic), NormKey(persona), report, encodeSources(sources),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("sqlite: put report: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
