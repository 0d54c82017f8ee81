// Package memory persists what research runs learn: the URLs successfully extracted
// per topic and the finished reports per (topic, persona).
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
)

// Report is a cached synthesis result.
type Report struct {
	Topic   string   `json:"topic"`
	Persona string   `json:"persona"`
	Report  string   `json:"report"`
	Sources []string `json:"sources"`
}

// Store is the durable record store. Every write is idempotent.
type Store interface {
	// URLSeen reports whether url was recorded for topic.
	URLSeen(ctx context.Context, url, topic string) (bool, error)
	// RecordURL inserts (url, topic); a repeated pair is a no-op.
	RecordURL(ctx context.Context, url, topic string) error
	// SeenURLs lists the URLs recorded for topic in insertion order.
	SeenURLs(ctx context.Context, topic string) ([]string, error)
	// CachedReport returns the report for (topic, persona), or nil when none is cached.
	CachedReport(ctx context.Context, topic, persona string) (*Report, error)
	// PutReport upserts the report for (topic, persona), replacing any previous one wholesale.
	PutReport(ctx context.Context, topic, persona, report string, sources []string) error
	Close() error
}

// NormKey case-folds a topic or persona for use as a storage key.
func NormKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// encodeSources renders the ordered source list as a JSON array.
func encodeSources(sources []string) string {
	if sources == nil {
		sources = []string{}
	}
	data, err := json.Marshal(sources)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeSources parses a stored source list. Malformed data degrades to an empty list.
func decodeSources(raw, topic, persona string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	var sources []string
	if err := json.Unmarshal([]byte(raw), &sources); err != nil {
		slog.Warn("memory: malformed cached sources, treating as empty",
			slog.String("topic", topic),
			slog.String("persona", persona),
			slog.Any("error", err),
		)
		return []string{}
	}
	if sources == nil {
		sources = []string{}
	}
	return sources
}
