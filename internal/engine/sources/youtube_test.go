package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestYouTubeVideoID(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?feature=share&v=abc123", "abc123", true},
		{"https://m.youtube.com/watch?v=mobile1", "mobile1", true},
		{"https://youtu.be/short42", "short42", true},
		{"https://www.youtube.com/shorts/clip9", "clip9", true},
		{"https://www.youtube.com/watch", "", false},
		{"https://www.youtube.com/channel/UC123", "", false},
		{"https://example.com/watch?v=abc", "", false},
		{"not a url", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			id, ok := YouTubeVideoID(tt.url)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("YouTubeVideoID(%q) = %q, %v; want %q, %v", tt.url, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestIsPDFURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/paper.pdf", true},
		{"https://example.com/PAPER.PDF", true},
		{"https://example.com/paper.pdf?download=1", true},
		{"https://example.com/pdf/viewer", false},
		{"https://example.com/paper.pdf.html", false},
	}
	for _, tt := range tests {
		if got := IsPDFURL(tt.url); got != tt.want {
			t.Errorf("IsPDFURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestBalancedObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};var x = 2;`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}} trailing`, `{"a":{"b":{}}}`},
		{"braces in strings", `{"a":"}{","b":"\"}"}rest`, `{"a":"}{","b":"\"}"}`},
		{"truncated", `{"a":{"b":1}`, ""},
		{"not an object", `[1,2]`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(balancedObject([]byte(tt.in))); got != tt.want {
				t.Errorf("balancedObject() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlayerJSONFromPage(t *testing.T) {
	page := []byte(`<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://yt/tt?lang=en","languageCode":"en"}]}}};</script>`)
	obj, err := playerJSONFromPage(page)
	if err != nil {
		t.Fatalf("playerJSONFromPage() error = %v", err)
	}
	if obj[0] != '{' || obj[len(obj)-1] != '}' {
		t.Errorf("object = %s", obj)
	}

	if _, err := playerJSONFromPage([]byte("<html></html>")); err == nil {
		t.Error("expected error for page without player response")
	}
}

func TestPickTrack(t *testing.T) {
	manualDE := captionTrack{BaseURL: "u-de", LanguageCode: "de"}
	asrEN := captionTrack{BaseURL: "u-en-asr", LanguageCode: "en", Kind: "asr"}
	manualEN := captionTrack{BaseURL: "u-en", LanguageCode: "en"}
	blocked := captionTrack{BaseURL: "u-x&exp=xpe", LanguageCode: "en"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   string
		wantOK bool
	}{
		{"manual preferred over asr", []captionTrack{asrEN, manualEN}, []string{"en"}, "u-en", true},
		{"asr when no manual", []captionTrack{manualDE, asrEN}, []string{"en"}, "u-en-asr", true},
		{"language order", []captionTrack{manualEN, manualDE}, []string{"de", "en"}, "u-de", true},
		{"english fallback", []captionTrack{manualDE, asrEN}, []string{"fr"}, "u-en-asr", true},
		{"first usable", []captionTrack{manualDE}, []string{"fr"}, "u-de", true},
		{"blocked skipped", []captionTrack{blocked, manualDE}, []string{"en"}, "u-de", true},
		{"nothing usable", []captionTrack{blocked}, []string{"en"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickTrack(tt.tracks, tt.langs)
			if ok != tt.wantOK || got.BaseURL != tt.want {
				t.Errorf("pickTrack() = %q, %v; want %q, %v", got.BaseURL, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseTimedText(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?><transcript>` +
		`<text start="0" dur="1.5">Hello &amp;amp; world</text>` +
		`<text start="1.5" dur="1">   </text>` +
		`<text start="2.5" dur="1">&lt;b&gt;bye&lt;/b&gt;</text>` +
		`</transcript>`)
	got, err := parseTimedText(body)
	if err != nil {
		t.Fatalf("parseTimedText() error = %v", err)
	}
	if got != "Hello & world bye" {
		t.Errorf("parseTimedText() = %q", got)
	}

	if _, err := parseTimedText([]byte("<transcript><text>")); err == nil {
		t.Error("expected error for malformed XML")
	}
}

func TestPlayerResponseTracks(t *testing.T) {
	var empty playerResponse
	if _, err := empty.tracks(); err == nil {
		t.Error("expected error without captions")
	}
}

func TestYouTubeHTTPStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<html><body>Before you continue to YouTube</body></html>`))
	}))
	defer srv.Close()

	oldWatch, oldPlayer := ytWatchURL, ytPlayerURL
	ytWatchURL, ytPlayerURL = srv.URL+"/watch?v=", srv.URL+"/player"
	t.Cleanup(func() { ytWatchURL, ytPlayerURL = oldWatch, oldPlayer })

	ctx := context.Background()
	if _, err := tracksFromWatchPage(ctx, "vid"); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("tracksFromWatchPage() error = %v, want status 404", err)
	}
	if _, err := tracksFromPlayer(ctx, "vid"); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("tracksFromPlayer() error = %v, want status 404", err)
	}
	if _, err := fetchTimedText(ctx, srv.URL+"/timedtext"); err == nil || !strings.Contains(err.Error(), "status 404") {
		t.Errorf("fetchTimedText() error = %v, want status 404", err)
	}
}

func TestFetchTimedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<transcript><text start="0" dur="2">battery density doubled</text></transcript>`))
	}))
	defer srv.Close()

	got, err := fetchTimedText(context.Background(), srv.URL+"/timedtext")
	if err != nil {
		t.Fatalf("fetchTimedText() error = %v", err)
	}
	if got != "battery density doubled" {
		t.Errorf("fetchTimedText() = %q", got)
	}
}
