// go_sentinel: topic research MCP server.
//
// Exposes the research, research_sources and research_personas tools.
// Reports are synthesized by an OpenAI-compatible LLM endpoint, rotating through
// GEMINI_API_KEY_1..N on quota exhaustion, and cached per topic and persona.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_sentinel/internal/engine"
	"github.com/anatolykoptev/go_sentinel/internal/engine/memory"
	"github.com/anatolykoptev/go_sentinel/internal/engine/research"
	"github.com/anatolykoptev/go_sentinel/internal/engine/sources"
	"github.com/anatolykoptev/go_sentinel/internal/researchserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	ctx := context.Background()
	c := initEngine()

	keys := engine.DiscoverCredentials(c.CredentialEnvPrefix)
	rot, err := engine.NewRotator(keys)
	if err != nil {
		slog.Error("startup failed", slog.String("prefix", c.CredentialEnvPrefix), slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("credentials loaded", slog.Int("keys", rot.Len()))

	base, err := memory.Open(ctx, env.Str("DATABASE_URL", ""), env.Str("SQLITE_PATH", memory.DefaultSQLitePath))
	if err != nil {
		slog.Error("memory store init failed", slog.Any("error", err))
		os.Exit(1)
	}
	store := memory.NewTieredStore(ctx, base, env.Str("REDIS_URL", ""),
		env.Duration("CACHE_TTL", 24*time.Hour), env.Int("CACHE_MAX_ENTRIES", 500))

	researcher, err := research.New(rot,
		engine.NewChatFactory(c.LLMAPIBase, c.LLMModel, c.LLMMaxTokens, &http.Client{Timeout: 90 * time.Second}),
		engine.NewDiscoverer(c.SearchRPS, c.MaxSearchResults, c.SearchTimeRange),
		sources.NewExtractor(),
		store,
		research.WithTemperatures(c.AnalysisTemperature, c.SynthesisTemperature),
	)
	if err != nil {
		slog.Error("researcher init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer store.Close()

	slog.Info("starting go_sentinel", slog.String("port", mcpPort))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_sentinel",
		Version: version,
	}, nil)

	researchserver.RegisterTools(server, researcher, store)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_sentinel",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 900 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	c := engine.Config{
		SearxngURL:           env.Str("SEARXNG_URL", "http://127.0.0.1:8888"),
		SearchTimeRange:      env.Str("SEARCH_TIME_RANGE", "day"),
		MaxSearchResults:     env.Int("MAX_SEARCH_RESULTS", 5),
		SearchRPS:            env.Float("SEARCH_RPS", 1),
		DirectDDG:            env.Str("DIRECT_DDG", "true") == "true",
		DirectStartpage:      env.Str("DIRECT_STARTPAGE", "false") == "true",
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:             env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 8192),
		AnalysisTemperature:  env.Float("LLM_ANALYSIS_TEMPERATURE", 0),
		SynthesisTemperature: env.Float("LLM_SYNTHESIS_TEMPERATURE", 0.1),
		CredentialEnvPrefix:  env.Str("LLM_API_KEY_PREFIX", engine.DefaultCredentialPrefix),
		MaxContentChars:      env.Int("MAX_CONTENT_CHARS", 8000),
		MinPageChars:         env.Int("MIN_PAGE_CHARS", 150),
		FetchTimeout:         env.Duration("FETCH_TIMEOUT", 15*time.Second),
		TranscriptLanguages:  env.List("TRANSCRIPT_LANGUAGES", "en"),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	if c.DirectDDG || c.DirectStartpage {
		bc, err := engine.NewBrowserClient(env.Str("WEBSHARE_API_KEY", ""))
		if err != nil {
			slog.Error("stealth client init failed", slog.Any("error", err))
		} else {
			c.BrowserClient = bc
			slog.Info("stealth browser client initialized")
		}
	}

	engine.Init(c)
	return c
}
