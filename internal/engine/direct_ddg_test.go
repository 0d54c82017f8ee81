package engine

import "testing"

func TestParseDDGHTML(t *testing.T) {
	tests := []struct {
		name      string
		html      string
		wantCount int
	}{
		{
			name: "standard results",
			html: `<html><body>
				<div class="result">
					<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fpage1&rut=abc">First Result</a>
					<a class="result__snippet">First description.</a>
				</div>
				<div class="result">
					<a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fpage2&rut=def">Second Result</a>
					<a class="result__snippet">Second description.</a>
				</div>
			</body></html>`,
			wantCount: 2,
		},
		{
			name: "direct urls",
			html: `<html><body>
				<div class="result">
					<a class="result__a" href="https://example.com/direct">Direct URL</a>
					<a class="result__snippet">Content.</a>
				</div>
			</body></html>`,
			wantCount: 1,
		},
		{
			name: "ads skipped",
			html: `<html><body>
				<div class="result result--ad">
					<a class="result__a" href="https://ads.example.com/buy">Sponsored</a>
				</div>
				<div class="result">
					<a class="result__a" href="https://example.com/organic">Organic</a>
				</div>
			</body></html>`,
			wantCount: 1,
		},
		{
			name:      "no results",
			html:      `<html><body><p>No results</p></body></html>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := parseDDGHTML([]byte(tt.html))
			if err != nil {
				t.Fatalf("parseDDGHTML() error = %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("parseDDGHTML() returned %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestDDGUnwrapURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=abc", "https://example.com"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"", ""},
		{"/relative/path", ""},
	}

	for _, tt := range tests {
		got := ddgUnwrapURL(tt.input)
		if got != tt.want {
			t.Errorf("ddgUnwrapURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<b>bold</b> text", "bold text"},
		{"plain text", "plain text"},
		{`<a href="url">link</a>`, "link"},
		{"", ""},
	}

	for _, tt := range tests {
		got := CleanHTML(tt.input)
		if got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
