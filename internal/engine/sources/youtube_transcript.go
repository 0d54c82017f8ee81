package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go_sentinel/internal/engine"
)

var (
	ytWatchURL  = "https://www.youtube.com/watch?v="
	ytPlayerURL = "https://www.youtube.com/youtubei/v1/player?prettyPrint=false"
)

const (
	ytAndroidVersion = "20.10.38"
	ytAndroidUA      = "com.google.android.youtube/" + ytAndroidVersion + " (Linux; U; Android 11) gzip"

	// ytPlayerMarker precedes the player response JSON in watch page HTML.
	ytPlayerMarker = "ytInitialPlayerResponse = "
)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	Captions *struct {
		Renderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (p playerResponse) tracks() ([]captionTrack, error) {
	if p.Captions == nil || len(p.Captions.Renderer.CaptionTracks) == 0 {
		if p.PlayabilityStatus != nil && p.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", p.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no caption tracks")
	}
	return p.Captions.Renderer.CaptionTracks, nil
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// FetchYouTubeTranscript returns the transcript text of a video.
// Primary:  watch page ytInitialPlayerResponse → caption XML
// Fallback: ANDROID Innertube /player → caption XML
func FetchYouTubeTranscript(ctx context.Context, videoID string, langs []string) (string, error) {
	engine.IncrTranscript()

	tracks, err := tracksFromWatchPage(ctx, videoID)
	if err != nil {
		slog.Debug("youtube: watch page failed, trying player",
			slog.String("id", videoID), slog.Any("error", err))
		tracks, err = tracksFromPlayer(ctx, videoID)
		if err != nil {
			return "", fmt.Errorf("youtube %s: %w", videoID, err)
		}
	}

	track, ok := pickTrack(tracks, langs)
	if !ok {
		return "", fmt.Errorf("youtube %s: all caption tracks require PoToken", videoID)
	}
	text, err := fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return "", fmt.Errorf("youtube %s: %w", videoID, err)
	}
	if text == "" {
		return "", fmt.Errorf("youtube %s: empty transcript", videoID)
	}
	return text, nil
}

func tracksFromWatchPage(ctx context.Context, videoID string) ([]captionTrack, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, ytWatchURL+videoID, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return engine.HTTPClient().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("read watch page: %w", err)
	}
	raw, err := playerJSONFromPage(body)
	if err != nil {
		return nil, err
	}
	var pr playerResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	return pr.tracks()
}

// playerJSONFromPage cuts the ytInitialPlayerResponse object out of watch page HTML.
func playerJSONFromPage(page []byte) ([]byte, error) {
	idx := bytes.Index(page, []byte(ytPlayerMarker))
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found")
	}
	obj := balancedObject(page[idx+len(ytPlayerMarker):])
	if obj == nil {
		return nil, errors.New("ytInitialPlayerResponse is truncated")
	}
	return obj, nil
}

// balancedObject returns the leading {...} of data, honouring JSON strings.
func balancedObject(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	depth := 0
	inString, escaped := false, false
	for i, c := range data {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return data[:i+1]
			}
		}
	}
	return nil
}

func tracksFromPlayer(ctx context.Context, videoID string) ([]captionTrack, error) {
	payload, err := json.Marshal(map[string]any{
		"videoId": videoID,
		"context": map[string]any{
			"client": map[string]any{
				"clientName":        "ANDROID",
				"clientVersion":     ytAndroidVersion,
				"androidSdkVersion": 30,
				"hl":                "en",
				"gl":                "US",
			},
		},
		"racyCheckOk":    true,
		"contentCheckOk": true,
	})
	if err != nil {
		return nil, err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, ytPlayerURL, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", ytAndroidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)
		return engine.HTTPClient().Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("android player: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("android player: status %d", resp.StatusCode)
	}

	var pr playerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return pr.tracks()
}

// pickTrack prefers a manual track in a preferred language, then an auto-generated one,
// then any English track. Tracks needing a PoToken (&exp=xpe) only work in a browser.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	var usable []captionTrack
	for _, t := range tracks {
		if !strings.Contains(t.BaseURL, "&exp=xpe") {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, manual := range []bool{true, false} {
		for _, lang := range langs {
			for _, t := range usable {
				if t.LanguageCode == lang && (!manual || t.Kind != "asr") {
					return t, true
				}
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText downloads a timedtext XML caption track and joins its lines.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		return engine.HTTPClient().Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch timedtext: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}
	parts := make([]string, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		if text := engine.CleanHTML(html.UnescapeString(line.Text)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}
