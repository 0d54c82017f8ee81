package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	SearxngURL       string
	SearchTimeRange  string  // SearXNG time_range: day, month, year ("" = any)
	MaxSearchResults int     // candidate URLs kept per discovery
	SearchRPS        float64 // discovery rate limit (0 = unlimited)
	DirectDDG        bool    // enable DuckDuckGo direct scraper
	DirectStartpage  bool    // enable Startpage direct scraper

	LLMAPIBase           string
	LLMModel             string
	LLMMaxTokens         int
	AnalysisTemperature  float64
	SynthesisTemperature float64
	CredentialEnvPrefix  string
	MaxContentChars      int
	MinPageChars         int
	FetchTimeout         time.Duration
	TranscriptLanguages  []string
	HTTPClient           *http.Client
	BrowserClient        *BrowserClient // nil = direct scrapers disabled
}

// Defaults used when a Config field is left zero.
const (
	defaultMaxContentChars = 8000
	defaultMinPageChars    = 150
	defaultFetchTimeout    = 15 * time.Second
)

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, memory, research).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}

// MaxContentChars is the cap applied to extracted source text.
func MaxContentChars() int {
	if cfg.MaxContentChars > 0 {
		return cfg.MaxContentChars
	}
	return defaultMaxContentChars
}

// MinPageChars is the least amount of text a generic page must yield to count as usable.
func MinPageChars() int {
	if cfg.MinPageChars > 0 {
		return cfg.MinPageChars
	}
	return defaultMinPageChars
}

func fetchTimeout() time.Duration {
	if cfg.FetchTimeout > 0 {
		return cfg.FetchTimeout
	}
	return defaultFetchTimeout
}

// HTTPClient returns the shared API client, falling back to http.DefaultClient.
func HTTPClient() *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return http.DefaultClient
}
