package research

import (
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		persona string
		want    string
	}{
		{"", DefaultPersona},
		{"default", DefaultPersona},
		{"Marketing_Manager", "marketing_manager"},
		{"  academic_researcher ", "academic_researcher"},
		{"financial_investor", "financial_investor"},
		{"content_creator", "content_creator"},
		{"pirate", DefaultPersona},
	}
	for _, tt := range tests {
		t.Run(tt.persona, func(t *testing.T) {
			if got := Resolve(tt.persona); got != personas[tt.want] {
				t.Errorf("Resolve(%q) = %+v, want %q directive", tt.persona, got, tt.want)
			}
		})
	}
}

func TestPersonas(t *testing.T) {
	got := Personas()
	want := "academic_researcher,content_creator,default,financial_investor,marketing_manager"
	if strings.Join(got, ",") != want {
		t.Errorf("Personas() = %v", got)
	}
	for _, name := range got {
		d := Resolve(name)
		if d.Role == "" || d.Task == "" {
			t.Errorf("persona %q has an empty directive", name)
		}
	}
}

func TestPrompts(t *testing.T) {
	p := buildSummaryPrompt("body text")
	if p != "Summarize the key points of the following content in one paragraph:\n\n---body text---" {
		t.Errorf("summary prompt = %q", p)
	}

	block := summaryBlock("https://a.com", "  the gist \n")
	if block != "Source: https://a.com\nSummary: the gist\n---\n" {
		t.Errorf("summary block = %q", block)
	}

	d := Directive{Role: "R.", Task: "T."}
	got := buildSynthesisPrompt(d, "topic", []string{"B1\n", "B2\n"})
	want := "R. T.\nOriginal User Query: \"topic\"\nHere are the summaries from the sources:\nB1\nB2\n\nBased on ALL summaries, provide a final answer."
	if got != want {
		t.Errorf("synthesis prompt = %q, want %q", got, want)
	}
}
