// Package research runs topic research end to end: cached report lookup, source
// discovery, per-source extraction and summarization with key failover, fallback to
// remembered sources, persona-framed synthesis and report caching.
package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
	"github.com/anatolykoptev/go_sentinel/internal/engine/memory"
)

// Result messages for runs that produce no synthesized report.
const (
	MsgNoInformation      = "No new or recoverable information was found to create a report."
	MsgSynthesisExhausted = "Failed to synthesize a report after exhausting all API keys."
	msgSynthesisErrorFmt  = "Error during final synthesis: %v"
)

const (
	defaultSynthesisTemp = 0.1
	slowRunThreshold     = 2 * time.Minute
)

// Discoverer returns candidate URLs for a topic in relevance order.
type Discoverer interface {
	Discover(ctx context.Context, topic string) ([]string, error)
}

// Extractor fetches the text of one source.
type Extractor interface {
	Fetch(ctx context.Context, url string) engine.Extraction
}

// Result is what a run hands back to the caller. Sources is never nil.
type Result struct {
	Report  string   `json:"report"`
	Sources []string `json:"sources"`
	Cached  bool     `json:"cached"`
}

// Researcher holds the collaborators shared by all runs.
// Each run works on its own clone of the credential rotator.
type Researcher struct {
	rot          *engine.Rotator
	newCompleter engine.CompleterFactory
	discover     Discoverer
	extract      Extractor
	store        memory.Store

	analysisTemp  float64
	synthesisTemp float64
}

// Option configures a Researcher.
type Option func(*Researcher)

// WithTemperatures sets the sampling temperature for summaries and for the final report.
func WithTemperatures(analysis, synthesis float64) Option {
	return func(r *Researcher) {
		r.analysisTemp = analysis
		r.synthesisTemp = synthesis
	}
}

// New creates a Researcher. A nil or empty rotator yields engine.ErrNoCredentials.
func New(rot *engine.Rotator, newCompleter engine.CompleterFactory, discover Discoverer, extract Extractor, store memory.Store, opts ...Option) (*Researcher, error) {
	if rot == nil || rot.Len() == 0 {
		return nil, engine.ErrNoCredentials
	}
	if newCompleter == nil || discover == nil || extract == nil || store == nil {
		return nil, errors.New("research: completer, discoverer, extractor and store are required")
	}
	r := &Researcher{
		rot:           rot,
		newCompleter:  newCompleter,
		discover:      discover,
		extract:       extract,
		store:         store,
		synthesisTemp: defaultSynthesisTemp,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// runState is owned by a single run.
type runState struct {
	topic     string
	blocks    []string
	sources   []string
	succeeded map[string]bool
}

// Run researches topic for persona. It always returns a well-formed Result.
func (r *Researcher) Run(ctx context.Context, topic, persona string) (res Result) {
	topic = strings.TrimSpace(topic)
	persona = strings.TrimSpace(persona)
	if persona == "" {
		persona = DefaultPersona
	}
	engine.IncrResearchRuns()

	_ = engine.TrackOperation(ctx, "research:"+topic, slowRunThreshold, func(ctx context.Context) error {
		res = r.run(ctx, topic, persona)
		return nil
	})
	return res
}

func (r *Researcher) run(ctx context.Context, topic, persona string) Result {
	cached, err := r.store.CachedReport(ctx, topic, persona)
	if err != nil {
		slog.Warn("research: cache read failed, treating as miss",
			slog.String("topic", topic), slog.String("persona", persona), slog.Any("error", err))
	}
	if cached != nil {
		slog.Info("research: serving cached report", slog.String("topic", topic), slog.String("persona", persona))
		sources := cached.Sources
		if sources == nil {
			sources = []string{}
		}
		return Result{Report: cached.Report, Sources: sources, Cached: true}
	}

	rot := r.rot.Clone()
	analysis := engine.NewFailover(rot, r.newCompleter, r.analysisTemp)
	st := &runState{topic: topic, succeeded: make(map[string]bool)}

	candidates, err := r.discover.Discover(ctx, topic)
	if err != nil {
		slog.Warn("research: discovery failed", slog.String("topic", topic), slog.Any("error", err))
	}
	r.extractPass(ctx, analysis, st, candidates)

	if len(st.blocks) == 0 {
		prior, err := r.store.SeenURLs(ctx, topic)
		if err != nil {
			slog.Warn("research: seen urls unavailable", slog.String("topic", topic), slog.Any("error", err))
		}
		if len(prior) > 0 {
			engine.IncrFallbackPasses()
			slog.Info("research: nothing new, revisiting remembered sources",
				slog.String("topic", topic), slog.Int("count", len(prior)))
			r.extractPass(ctx, analysis, st, prior)
		}
	}

	if len(st.blocks) == 0 {
		return Result{Report: MsgNoInformation, Sources: []string{}}
	}

	synthesis := engine.NewFailover(rot, r.newCompleter, r.synthesisTemp)
	prompt := buildSynthesisPrompt(Resolve(persona), topic, st.blocks)
	report, err := synthesis.Complete(ctx, prompt)
	switch {
	case errors.Is(err, engine.ErrCredentialsExhausted):
		slog.Error("research: synthesis failed, all keys exhausted", slog.String("topic", topic))
		return Result{Report: MsgSynthesisExhausted, Sources: st.sources}
	case err != nil:
		slog.Error("research: synthesis failed", slog.String("topic", topic), slog.Any("error", err))
		return Result{Report: fmt.Sprintf(msgSynthesisErrorFmt, err), Sources: st.sources}
	}

	if err := r.store.PutReport(ctx, topic, persona, report, st.sources); err != nil {
		slog.Warn("research: report not cached", slog.String("topic", topic), slog.Any("error", err))
	}
	slog.Info("research: report synthesized",
		slog.String("topic", topic), slog.String("persona", persona), slog.Int("sources", len(st.sources)))
	return Result{Report: report, Sources: st.sources}
}

// extractPass extracts and summarizes urls in order, one at a time.
// URLs already summarized in this run are skipped.
func (r *Researcher) extractPass(ctx context.Context, f *engine.Failover, st *runState, urls []string) {
	for _, u := range urls {
		if ctx.Err() != nil {
			return
		}
		if st.succeeded[u] {
			continue
		}

		x := r.extract.Fetch(ctx, u)
		if !x.Usable() {
			slog.Debug("research: skipping source", slog.String("url", u), slog.Any("error", x.Err))
			continue
		}
		if err := r.store.RecordURL(ctx, u, st.topic); err != nil {
			slog.Warn("research: record url failed", slog.String("url", u), slog.Any("error", err))
		}

		summary, err := f.Complete(ctx, buildSummaryPrompt(x.Text))
		if err != nil {
			slog.Warn("research: summary abandoned", slog.String("url", u), slog.Any("error", err))
			continue
		}
		engine.IncrSummaries()
		st.blocks = append(st.blocks, summaryBlock(u, summary))
		st.sources = append(st.sources, u)
		st.succeeded[u] = true
	}
}
