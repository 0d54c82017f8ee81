package engine

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	readability "codeberg.org/readeck/go-readability/v2"
	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const htmlAccept = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"

// FetchURLContent extracts main text content from a web page.
// go-readability first, then the page's <p> paragraphs, then goquery body text.
func FetchURLContent(ctx context.Context, rawURL string) (title, content string, err error) {
	metrics.FetchRequests.Add(1)
	defer func() {
		if err != nil {
			metrics.FetchErrors.Add(1)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, fetchTimeout())
	defer cancel()

	resp, err := fetchWithRetry(ctx, rawURL, htmlAccept)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := readResponseBody(resp)
	if err != nil {
		return "", "", err
	}

	title, content = ExtractHTML(rawURL, body)
	return title, TruncateRunes(content, MaxContentChars(), ""), nil
}

// ExtractHTML pulls readable text out of an HTML document.
func ExtractHTML(rawURL string, body []byte) (title, content string) {
	parsedURL, _ := url.Parse(rawURL)
	if article, err := readability.FromReader(bytes.NewReader(body), parsedURL); err == nil {
		title = article.Title()
		var htmlBuf strings.Builder
		_ = article.RenderHTML(&htmlBuf)
		md, err := htmltomarkdown.ConvertString(htmlBuf.String())
		if err != nil {
			var textBuf strings.Builder
			_ = article.RenderText(&textBuf)
			md = textBuf.String()
		}
		if text := CollapseSpace(md); utf8.RuneCountInString(text) >= MinPageChars() {
			return title, text
		}
	}

	if text := extractParagraphs(body); utf8.RuneCountInString(text) >= MinPageChars() {
		return title, text
	}
	return extractWithGoquery(body, title)
}

// extractParagraphs joins the text of every <p> element, one paragraph per line.
func extractParagraphs(body []byte) string {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var paras []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Script, atom.Style, atom.Noscript:
				return
			case atom.P:
				if t := strings.TrimSpace(nodeText(n)); t != "" {
					paras = append(paras, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return CollapseSpace(strings.Join(paras, "\n"))
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// extractWithGoquery strips page chrome and returns the main container's text.
func extractWithGoquery(body []byte, title string) (string, string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return title, ""
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		title, _ = doc.Find("meta[property='og:title']").Attr("content")
	}

	removeSelectors := []string{
		"script", "style", "noscript", "iframe", "svg",
		"header", "footer", "nav", "aside",
		".advertisement", ".ad", ".sidebar", ".comments",
		"[role=navigation]", "[role=banner]", "[role=contentinfo]",
	}
	doc.Find(strings.Join(removeSelectors, ", ")).Remove()

	sel := doc.Find("article, main, .content, .post-content, .article-content, #content").First()
	if sel.Length() == 0 {
		sel = doc.Find("body")
	}
	return title, CollapseSpace(sel.Text())
}
