package parser

import (
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// HTMLParser extracts title/author/date from document metadata and converts
// the body to markdown-flavoured plaintext.
type HTMLParser struct {
	converter *md.Converter
	logger    *logger_i.Logger
}

func NewHTMLParser() *HTMLParser {
	return &HTMLParser{
		converter: md.NewConverter("", true, nil),
		logger:    logger_i.NewLogger("HTMLParser"),
	}
}

func (p *HTMLParser) Parse(html string, sourceURL string) (Parsed, error) {
	var parsed Parsed

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return parsed, err
	}

	parsed.Title = extractTitle(doc)
	parsed.Author = firstMetaContent(doc,
		`meta[name="author"]`, `meta[property="article:author"]`)
	parsed.PublishedDate = extractPublishedDate(doc)

	// Drop non-content elements before conversion.
	doc.Find("script, style, nav, header, footer, aside, noscript, iframe").Remove()

	body := selectBody(doc)
	content := p.converter.Convert(body)
	if content == "" {
		p.logger.Debug("Markdown conversion produced nothing", "url", sourceURL)
		content = body.Text()
	}
	parsed.Content = strings.TrimSpace(content)
	return parsed, nil
}

func selectBody(doc *goquery.Document) *goquery.Selection {
	for _, selector := range []string{"article", "main", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

func extractTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func firstMetaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if v, ok := doc.Find(sel).Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func extractPublishedDate(doc *goquery.Document) *time.Time {
	raw := firstMetaContent(doc,
		`meta[property="article:published_time"]`,
		`meta[name="date"]`,
		`meta[name="publish-date"]`)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
