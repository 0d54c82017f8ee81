package engine

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/anatolykoptev/go-kit/env"
)

// ErrNoCredentials is returned when a rotator is built from an empty key list.
var ErrNoCredentials = errors.New("no LLM credentials configured")

// DefaultCredentialPrefix names the numbered key variables: GEMINI_API_KEY_1, GEMINI_API_KEY_2, ...
const DefaultCredentialPrefix = "GEMINI_API_KEY_"

// DiscoverCredentials reads <prefix>1, <prefix>2, ... from the environment.
// Discovery stops at the first missing index.
func DiscoverCredentials(prefix string) []string {
	if prefix == "" {
		prefix = DefaultCredentialPrefix
	}
	var keys []string
	for i := 1; ; i++ {
		key := env.Str(prefix+strconv.Itoa(i), "")
		if key == "" {
			break
		}
		keys = append(keys, key)
	}
	return keys
}

// Rotator cycles through an ordered credential list.
// The cursor always points at a valid index; Advance wraps modulo the list length.
type Rotator struct {
	mu   sync.Mutex
	keys []string
	idx  int
}

// NewRotator returns a rotator positioned at the first key.
func NewRotator(keys []string) (*Rotator, error) {
	if len(keys) == 0 {
		return nil, ErrNoCredentials
	}
	return &Rotator{keys: slices.Clone(keys)}, nil
}

// Current returns the credential at the cursor.
func (r *Rotator) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.keys[r.idx]
}

// Advance moves the cursor to the next credential and returns it.
// Exhausted keys are not skipped: they come round again after a full cycle.
func (r *Rotator) Advance() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idx = (r.idx + 1) % len(r.keys)
	slog.Debug("credentials: switched key", slog.Int("index", r.idx))
	return r.keys[r.idx]
}

// Index returns the cursor position.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idx
}

// Len returns the number of credentials.
func (r *Rotator) Len() int {
	return len(r.keys)
}

// Clone returns an independent rotator over the same keys with its cursor at 0.
// This is the per-run reset: each research run starts on a fresh clone, so
// the shared rotator's cursor is never moved back under a concurrent run.
func (r *Rotator) Clone() *Rotator {
	return &Rotator{keys: r.keys}
}
