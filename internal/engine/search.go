package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"
)

// SearchSearXNG queries the SearXNG instance and returns raw results.
func SearchSearXNG(ctx context.Context, query, timeRange string) ([]SearxngResult, error) {
	u, err := url.Parse(cfg.SearxngURL + "/search")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	if timeRange != "" {
		q.Set("time_range", timeRange)
	}
	u.RawQuery = q.Encode()

	metrics.SearchRequests.Add(1)

	resp, err := RetryHTTP(ctx, DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", UserAgentBot)
		return HTTPClient().Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searxng status %d", resp.StatusCode)
	}

	var data searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, err
	}
	return data.Results, nil
}

// SearchDirect queries the enabled direct scrapers. Failures are non-fatal.
// DuckDuckGo results come before Startpage results.
func SearchDirect(ctx context.Context, query string) []SearxngResult {
	if cfg.BrowserClient == nil {
		return nil
	}
	var results []SearxngResult
	if cfg.DirectDDG {
		r, err := RetryDo(ctx, DefaultRetryConfig, func() ([]SearxngResult, error) {
			return SearchDDGDirect(ctx, cfg.BrowserClient, query, "wt-wt")
		})
		if err != nil {
			slog.Debug("ddg direct failed", slog.Any("error", err))
		}
		results = append(results, r...)
	}
	if cfg.DirectStartpage {
		r, err := SearchStartpageDirect(ctx, cfg.BrowserClient, query)
		if err != nil {
			slog.Debug("startpage direct failed", slog.Any("error", err))
		}
		results = append(results, r...)
	}
	return results
}

// CandidateURLs keeps well-formed http(s) URLs in result order, drops repeats
// and caps the list at limit (0 = no cap).
func CandidateURLs(results []SearxngResult, limit int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range results {
		u := CleanURL(r.URL)
		if !IsWebURL(u) || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Discoverer turns a topic into candidate source URLs, in search relevance order.
type Discoverer struct {
	limiter    *rate.Limiter
	maxResults int
	timeRange  string
	searxng    func(ctx context.Context, query, timeRange string) ([]SearxngResult, error)
	direct     func(ctx context.Context, query string) []SearxngResult
}

// NewDiscoverer creates a discoverer limited to rps searches per second (0 = unlimited).
func NewDiscoverer(rps float64, maxResults int, timeRange string) *Discoverer {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Discoverer{
		limiter:    rate.NewLimiter(limit, 1),
		maxResults: maxResults,
		timeRange:  timeRange,
		searxng:    SearchSearXNG,
		direct:     SearchDirect,
	}
}

// Discover searches for fresh non-PDF pages about topic.
// SearXNG results come first, direct scraper results after them.
func (d *Discoverer) Discover(ctx context.Context, topic string) ([]string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	query := topic + " -filetype:pdf"

	results, err := d.searxng(ctx, query, d.timeRange)
	if err != nil {
		slog.Warn("discover: searxng failed", slog.String("topic", topic), slog.Any("error", err))
	}
	results = append(results, d.direct(ctx, query)...)

	if len(results) == 0 && err != nil {
		return nil, fmt.Errorf("discover %q: %w", topic, err)
	}
	urls := CandidateURLs(results, d.maxResults)
	slog.Debug("discover: candidates", slog.String("topic", topic), slog.Int("count", len(urls)))
	return urls, nil
}
