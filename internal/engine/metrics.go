package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ResearchRuns       atomic.Int64
	ReportCacheHits    atomic.Int64
	ReportCacheMisses  atomic.Int64
	SearchRequests     atomic.Int64
	DirectDDGRequests  atomic.Int64
	StartpageRequests  atomic.Int64
	FetchRequests      atomic.Int64
	FetchErrors        atomic.Int64
	TranscriptRequests atomic.Int64
	PDFRequests        atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	QuotaRotations     atomic.Int64
	Summaries          atomic.Int64
	FallbackPasses     atomic.Int64
}

var metricKeys = []string{
	"research_runs", "report_cache_hits", "report_cache_misses",
	"search_requests", "direct_ddg_requests", "startpage_requests",
	"fetch_requests", "fetch_errors",
	"transcript_requests", "pdf_requests",
	"llm_calls", "llm_errors", "quota_rotations",
	"summaries", "fallback_passes",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"research_runs":       metrics.ResearchRuns.Load(),
		"report_cache_hits":   metrics.ReportCacheHits.Load(),
		"report_cache_misses": metrics.ReportCacheMisses.Load(),
		"search_requests":     metrics.SearchRequests.Load(),
		"direct_ddg_requests": metrics.DirectDDGRequests.Load(),
		"startpage_requests":  metrics.StartpageRequests.Load(),
		"fetch_requests":      metrics.FetchRequests.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"pdf_requests":        metrics.PDFRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"quota_rotations":     metrics.QuotaRotations.Load(),
		"summaries":           metrics.Summaries.Load(),
		"fallback_passes":     metrics.FallbackPasses.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrResearchRuns() { metrics.ResearchRuns.Add(1) }
func IncrReportCacheHit() { metrics.ReportCacheHits.Add(1) }
func IncrReportCacheMiss() { metrics.ReportCacheMisses.Add(1) }
func IncrTranscript() { metrics.TranscriptRequests.Add(1) }
func IncrPDF() { metrics.PDFRequests.Add(1) }
func IncrSummaries() { metrics.Summaries.Add(1) }
func IncrFallbackPasses() { metrics.FallbackPasses.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
