package memory

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
	"github.com/redis/go-redis/v9"
)

// maxL1TTL bounds how long a process serves its own L1 copy of a report.
// Processes sharing Redis and the durable store see each other's upserts
// once their L1 entry lapses.
const maxL1TTL = 5 * time.Minute

// TieredStore fronts a durable Store with a report cache:
// L1 in-memory, L2 Redis. L1 is lost on restart, L2 survives it.
// Seen-URL calls pass straight through.
type TieredStore struct {
	Store

	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	l1TTL           time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewTieredStore wraps base. redisURL can be empty to disable L2.
func NewTieredStore(ctx context.Context, base Store, redisURL string, ttl time.Duration, maxEntries int) *TieredStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	t := &TieredStore{
		Store:           base,
		ttl:             ttl,
		l1TTL:           min(ttl, maxL1TTL),
		maxEntries:      maxEntries,
		cleanupInterval: 5 * time.Minute,
		stop:            make(chan struct{}),
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("memory: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := rdb.Ping(pingCtx).Err(); err != nil {
				slog.Warn("memory: redis unreachable, L2 disabled", slog.Any("error", err))
				_ = rdb.Close()
			} else {
				t.rdb = rdb
				slog.Info("memory: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	slog.Info("memory: report cache initialized",
		slog.Duration("ttl", ttl), slog.Duration("l1_ttl", t.l1TTL), slog.Bool("redis", t.rdb != nil), slog.Int("max_entries", maxEntries))

	go t.cleanupLoop()
	return t
}

// reportKey builds a deterministic cache key for (topic, persona).
func reportKey(topic, persona string) string {
	hash := sha256.Sum256([]byte(NormKey(topic) + "|" + NormKey(persona)))
	return fmt.Sprintf("gsn:report:%x", hash[:12])
}

// CachedReport tries L1, then L2, then the durable store. Lower-tier hits populate the upper tiers.
func (t *TieredStore) CachedReport(ctx context.Context, topic, persona string) (*Report, error) {
	key := reportKey(topic, persona)

	if val, ok := t.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			var r Report
			if json.Unmarshal(entry.data, &r) == nil {
				slog.Debug("memory: L1 hit", slog.String("key", key))
				engine.IncrReportCacheHit()
				return &r, nil
			}
		}
		t.l1.Delete(key) // expired or corrupt
	}

	if t.rdb != nil {
		data, err := t.rdb.Get(ctx, key).Bytes()
		if err == nil {
			var r Report
			if json.Unmarshal(data, &r) == nil {
				slog.Debug("memory: L2 hit", slog.String("key", key))
				engine.IncrReportCacheHit()
				t.storeL1(key, data)
				return &r, nil
			}
		}
	}

	r, err := t.Store.CachedReport(ctx, topic, persona)
	if err != nil {
		return nil, err
	}
	if r == nil {
		engine.IncrReportCacheMiss()
		return nil, nil
	}
	engine.IncrReportCacheHit()
	t.fill(ctx, key, r)
	return r, nil
}

// PutReport writes through to the durable store first, then replaces the cached copy.
func (t *TieredStore) PutReport(ctx context.Context, topic, persona, report string, sources []string) error {
	if err := t.Store.PutReport(ctx, topic, persona, report, sources); err != nil {
		return err
	}
	if sources == nil {
		sources = []string{}
	}
	t.fill(ctx, reportKey(topic, persona), &Report{
		Topic:   NormKey(topic),
		Persona: NormKey(persona),
		Report:  report,
		Sources: sources,
	})
	return nil
}

// Close stops the cleanup loop and closes Redis and the durable store.
func (t *TieredStore) Close() error {
	t.stopOnce.Do(func() { close(t.stop) })
	if t.rdb != nil {
		_ = t.rdb.Close()
	}
	return t.Store.Close()
}

func (t *TieredStore) fill(ctx context.Context, key string, r *Report) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	t.storeL1(key, data)
	if t.rdb != nil {
		if err := t.rdb.Set(ctx, key, data, t.ttl).Err(); err != nil {
			slog.Debug("memory: L2 set failed", slog.Any("error", err))
		}
	}
}

func (t *TieredStore) storeL1(key string, data []byte) {
	t.evictIfNeeded()
	t.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(t.l1TTL)})
}

// evictIfNeeded removes expired entries first, then the oldest, while L1 is at capacity.
func (t *TieredStore) evictIfNeeded() {
	if t.maxEntries <= 0 {
		return
	}

	count := 0
	t.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < t.maxEntries {
		return
	}

	now := time.Now()
	t.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			t.l1.Delete(key)
			count--
		}
		return count >= t.maxEntries
	})

	for count >= t.maxEntries {
		var oldestKey any
		oldestAt := now.Add(t.l1TTL + time.Hour)
		t.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		t.l1.Delete(oldestKey)
		count--
	}
}

func (t *TieredStore) cleanupLoop() {
	ticker := time.NewTicker(t.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			now := time.Now()
			t.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					t.l1.Delete(key)
				}
				return true
			})
		}
	}
}
