package sources

import (
	"net/url"
	"strings"
)

// YouTube transcript extraction is split across two files:
//   youtube.go:            URL recognition and video id parsing
//   youtube_transcript.go: caption track lookup (watch page, ANDROID player) and timedtext parsing

// YouTubeVideoID returns the video id of a youtube.com/watch, youtu.be or /shorts/ link.
func YouTubeVideoID(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")

	var id string
	switch host {
	case "youtube.com", "music.youtube.com":
		switch {
		case u.Path == "/watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(u.Path, "/shorts/"):
			id = strings.TrimPrefix(u.Path, "/shorts/")
		}
	case "youtu.be":
		id = strings.TrimPrefix(u.Path, "/")
	}
	id = strings.Trim(id, "/")
	if id == "" || strings.ContainsAny(id, "/?&") {
		return "", false
	}
	return id, true
}

// IsPDFURL reports whether the URL path names a PDF document.
func IsPDFURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".pdf")
}
