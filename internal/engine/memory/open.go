package memory

import (
	"context"
	"log/slog"
)

// Open returns the PostgreSQL store when databaseURL is set and reachable,
// otherwise the SQLite store at sqlitePath.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if databaseURL != "" {
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err == nil {
			return pg, nil
		}
		slog.Warn("memory: postgres unavailable, falling back to sqlite", slog.Any("error", err))
	}

	s, err := OpenSQLite(sqlitePath)
	if err != nil {
		return nil, err
	}
	slog.Info("memory: sqlite opened", slog.String("path", sqlitePathOrDefault(sqlitePath)))
	return s, nil
}

func sqlitePathOrDefault(p string) string {
	if p == "" {
		return DefaultSQLitePath
	}
	return p
}
