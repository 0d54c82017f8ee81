package engine

import (
	"errors"
	"strings"
)

// --- Tool input/output types ---

type ResearchInput struct {
	Topic   string `json:"topic" jsonschema:"Research topic, free text"`
	Persona string `json:"persona,omitempty" jsonschema:"Report persona: default, marketing_manager, academic_researcher, financial_investor, content_creator"`
}

type ResearchOutput struct {
	Report  string   `json:"report"`
	Sources []string `json:"sources"`
}

type SeenSourcesInput struct {
	Topic string `json:"topic" jsonschema:"Research topic whose remembered sources to list"`
}

type SeenSourcesOutput struct {
	Topic string   `json:"topic"`
	Total int      `json:"total"`
	URLs  []string `json:"urls"`
}

type PersonasInput struct{}

type PersonaInfo struct {
	Name      string `json:"name"`
	Directive string `json:"directive"`
}

type PersonasOutput struct {
	Personas []PersonaInfo `json:"personas"`
}

// --- Extraction ---

// SourceKind is the URL shape an extractor dispatched on.
type SourceKind string

const (
	SourcePage     SourceKind = "page"
	SourceVideo    SourceKind = "video"
	SourceDocument SourceKind = "document"
)

// ErrInsufficientContent marks a fetch that succeeded but yielded too little text.
var ErrInsufficientContent = errors.New("insufficient text content")

// Extraction is the outcome of fetching one source: text on success, Err otherwise.
type Extraction struct {
	URL  string
	Kind SourceKind
	Text string
	Err  error
}

// Usable reports whether the extraction carries text worth summarizing.
func (x Extraction) Usable() bool {
	return x.Err == nil && strings.TrimSpace(x.Text) != ""
}

// --- Internal types ---

type SearxngResult struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
}

type searxngResponse struct {
	Results []SearxngResult `json:"results"`
}
