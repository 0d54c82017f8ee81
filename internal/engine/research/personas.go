package research

import (
	"sort"
	"strings"
)

// DefaultPersona is used when the request names no persona or an unknown one.
const DefaultPersona = "default"

// Directive frames the final report for one audience.
type Directive struct {
	Role string
	Task string
}

// Text renders the directive as the opening of a synthesis prompt.
func (d Directive) Text() string {
	return d.Role + " " + d.Task
}

var personas = map[string]Directive{
	DefaultPersona: {
		Role: "You are a research analyst.",
		Task: "Synthesize the following summaries into a comprehensive and objective overview.",
	},
	"marketing_manager": {
		Role: "You are a market analyst preparing an executive briefing.",
		Task: "Synthesize the following summaries into an executive briefing. Focus on market sentiment, competitive landscape, and customer pain points. Keep it concise and actionable.",
	},
	"academic_researcher": {
		Role: "You are an academic researcher preparing a literature review.",
		Task: "Synthesize the following summaries into a literature review. Focus on new findings, methodologies, and potential gaps in the current research. Maintain a formal, analytical tone.",
	},
	"financial_investor": {
		Role: "You are a financial analyst updating an investment thesis.",
		Task: "Synthesize the following summaries into an investment thesis update. Focus on growth signals, potential risks, financial implications, and market sentiment. Be objective and data-driven.",
	},
	"content_creator": {
		Role: "You are a journalist collecting material for a story.",
		Task: "Synthesize the following summaries into a set of story notes. Highlight surprising facts, interesting quotes, different angles, and key people involved. Make it engaging.",
	},
}

// Resolve returns the directive for persona. Unknown names resolve to the default.
func Resolve(persona string) Directive {
	if d, ok := personas[strings.ToLower(strings.TrimSpace(persona))]; ok {
		return d
	}
	return personas[DefaultPersona]
}

// Personas lists the known persona names in sorted order.
func Personas() []string {
	names := make([]string, 0, len(personas))
	for name := range personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
