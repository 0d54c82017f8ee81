// Package sources turns a source URL into text: video transcripts, PDF documents
// and generic web pages, behind one Extractor.
package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
)

// Extractor fetches the content of a source URL, dispatching on its shape.
type Extractor struct {
	langs    []string
	minChars int
	maxChars int

	page     func(ctx context.Context, url string) (string, error)
	video    func(ctx context.Context, videoID string, langs []string) (string, error)
	document func(ctx context.Context, url string) (string, error)
}

// NewExtractor uses the engine configuration for limits and transcript languages.
func NewExtractor() *Extractor {
	langs := engine.Cfg.TranscriptLanguages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Extractor{
		langs:    langs,
		minChars: engine.MinPageChars(),
		maxChars: engine.MaxContentChars(),
		page: func(ctx context.Context, url string) (string, error) {
			_, text, err := engine.FetchURLContent(ctx, url)
			return text, err
		},
		video:    FetchYouTubeTranscript,
		document: FetchPDFText,
	}
}

// Classify reports which extractor a URL is routed to.
func Classify(rawURL string) engine.SourceKind {
	if _, ok := YouTubeVideoID(rawURL); ok {
		return engine.SourceVideo
	}
	if IsPDFURL(rawURL) {
		return engine.SourceDocument
	}
	return engine.SourcePage
}

// Fetch returns the extracted text of rawURL, capped at the configured length.
// Failures are carried in Extraction.Err; Fetch itself never fails.
func (e *Extractor) Fetch(ctx context.Context, rawURL string) engine.Extraction {
	u := engine.CleanURL(rawURL)
	x := engine.Extraction{URL: u, Kind: Classify(u)}

	var text string
	var err error
	switch x.Kind {
	case engine.SourceVideo:
		id, _ := YouTubeVideoID(u)
		text, err = e.video(ctx, id, e.langs)
	case engine.SourceDocument:
		text, err = e.document(ctx, u)
	default:
		text, err = e.page(ctx, u)
		if err == nil && utf8.RuneCountInString(strings.TrimSpace(text)) < e.minChars {
			err = fmt.Errorf("%w from %s", engine.ErrInsufficientContent, u)
		}
	}
	if err == nil && strings.TrimSpace(text) == "" {
		err = fmt.Errorf("%w from %s", engine.ErrInsufficientContent, u)
	}
	if err != nil {
		slog.Debug("extract: failed", slog.String("url", u), slog.String("kind", string(x.Kind)), slog.Any("error", err))
		x.Err = err
		return x
	}

	x.Text = engine.TruncateRunes(text, e.maxChars, "")
	return x
}
