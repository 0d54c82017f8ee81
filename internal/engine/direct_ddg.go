package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SearchDDGDirect queries the DuckDuckGo HTML lite endpoint through the browser client.
// The lite endpoint needs no VQD token and tolerates the "-filetype:" operator.
func SearchDDGDirect(ctx context.Context, bc *BrowserClient, query, region string) ([]SearxngResult, error) {
	if region == "" {
		region = "wt-wt"
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	metrics.DirectDDGRequests.Add(1)

	form := url.Values{"q": {query}, "kl": {region}, "df": {"d"}}
	headers := ChromeHeaders()
	headers["referer"] = "https://html.duckduckgo.com/"
	headers["content-type"] = "application/x-www-form-urlencoded"

	data, _, status, err := bc.Do("POST", "https://html.duckduckgo.com/html/", headers, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, fmt.Errorf("ddg html status %d", status)
	}

	results, err := parseDDGHTML(data)
	if err != nil {
		return nil, err
	}
	slog.Debug("ddg direct results", slog.Int("count", len(results)))
	return results, nil
}

// parseDDGHTML extracts organic results from a DDG HTML lite page, skipping ads.
func parseDDGHTML(data []byte) ([]SearxngResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var results []SearxngResult
	doc.Find(".result, .web-result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a, .result__title a").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return
		}
		href = ddgUnwrapURL(href)
		if href == "" {
			return
		}
		results = append(results, SearxngResult{
			Title:   title,
			Content: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			URL:     href,
			Score:   1.0,
		})
	})
	return results, nil
}

// ddgUnwrapURL extracts the target of a DDG redirect link
// (//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...).
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
		return ""
	}
	if strings.HasPrefix(href, "http") && !strings.Contains(href, "duckduckgo.com/") {
		return href
	}
	return ""
}
