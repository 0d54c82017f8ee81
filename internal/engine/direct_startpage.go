package engine

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SearchStartpageDirect posts the query to Startpage through the browser client.
// Startpage has no date filter, so its results complement the day-restricted ones.
func SearchStartpageDirect(ctx context.Context, bc *BrowserClient, query string) ([]SearxngResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.StartpageRequests.Add(1)

	form := startpageForm(query)
	headers := ChromeHeaders()
	headers["referer"] = "https://www.startpage.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"
	headers["accept"] = htmlAccept

	data, _, status, err := bc.Do("POST", "https://www.startpage.com/sp/search", headers, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("startpage request: %w", err)
	}
	if status != 200 {
		return nil, fmt.Errorf("startpage status %d", status)
	}

	results, err := parseStartpageHTML(data)
	if err != nil {
		return nil, fmt.Errorf("startpage parse: %w", err)
	}
	slog.Debug("startpage direct results", slog.Int("count", len(results)))
	return results, nil
}

// startpageForm is the POST body of a web search for query.
func startpageForm(query string) url.Values {
	return url.Values{"query": {query}, "cat": {"web"}, "language": {"english"}}
}

// parseStartpageHTML reads result blocks (.w-gl__result, or .result on older layouts).
// Links back into startpage.com/do/ are sponsored and skipped.
func parseStartpageHTML(data []byte) ([]SearxngResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearxngResult
	doc.Find(".w-gl__result, .result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.w-gl__result-title, h3 a, a.result-link").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" || strings.Contains(href, "startpage.com/do/") {
			return
		}
		results = append(results, SearxngResult{
			Title:   title,
			Content: strings.TrimSpace(s.Find("p.w-gl__description, .w-gl__description, p.result-description").First().Text()),
			URL:     href,
			Score:   1.0,
		})
	})
	return results, nil
}
