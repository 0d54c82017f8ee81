package memory

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps research memory in PostgreSQL.
type PostgresStore struct {
	pool pgxPool
}

// ConnectPostgres creates a pgx pool and runs schema migrations.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Info("memory: postgres connected", slog.String("addr", config.ConnConfig.Host))
	return s, nil
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	entries, err := schemaFS.ReadDir("schema")
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		if _, err := s.pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("execute %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *PostgresStore) URLSeen(ctx context.Context, url, topic string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM seen_urls WHERE url = $1 AND topic = $2)`,
		url, NormKey(topic),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: url seen: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) RecordURL(ctx context.Context, url, topic string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO seen_urls (url, topic) VALUES ($1, $2)
		 ON CONFLICT (url, topic) DO NOTHING`,
		url, NormKey(topic),
	)
	if err != nil {
		return fmt.Errorf("postgres: record url: %w", err)
	}
	return nil
}

func (s *PostgresStore) SeenURLs(ctx context.Context, topic string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT url FROM seen_urls WHERE topic = $1 ORDER BY id`, NormKey(topic))
	if err != nil {
		return nil, fmt.Errorf("postgres: seen urls: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: scan urls: %w", err)
	}
	return urls, nil
}

func (s *PostgresStore) CachedReport(ctx context.Context, topic, persona string) (*Report, error) {
	topic, persona = NormKey(topic), NormKey(persona)
	var report, sources string
	err := s.pool.QueryRow(ctx,
		`SELECT report, COALESCE(sources, '') FROM synthesis_cache WHERE topic = $1 AND persona = $2`,
		topic, persona,
	).Scan(&report, &sources)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: cached report: %w", err)
	}
	return &Report{
		Topic:   topic,
		Persona: persona,
		Report:  report,
		Sources: decodeSources(sources, topic, persona),
	}, nil
}

func (s *PostgresStore) PutReport(ctx context.Context, topic, persona, report string, sources []string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO synthesis_cache (topic, persona, report, sources, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (topic, persona) DO UPDATE SET
		   report = EXCLUDED.report,
		   sources = EXCLUDED.sources,
		   updated_at = EXCLUDED.updated_at`,
		NormKey(topic), NormKey(persona), report, encodeSources(sources),
	)
	if err != nil {
		return fmt.Errorf("postgres: put report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
