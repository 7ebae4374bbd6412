package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/retry"
	"IncidentScanner/internal/scanner"
)

const defaultParagraphSelector = ".entry-content p, .post-content p, article p"

var defaultLinkExclusions = []string{"/category/", "/topics/", "/author/", "/tag/", "/page/"}

var publishedLayouts = []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05", "2006-01-02"}

// HTMLScanner crawls listing pages for article links and extracts each article page.
type HTMLScanner struct {
	client *http.Client
}

// NewHTMLScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewHTMLScanner(client *http.Client) *HTMLScanner {
	return &HTMLScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (h *HTMLScanner) Name() string {
	return "html"
}

// Scan collects links from every listing page, then fetches up to "limit" articles.
// Individual article failures are skipped; the scan fails only when no listing page loads.
func (h *HTMLScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no listing pages provided for site %s", req.SiteName)
	}

	limit := req.Int("limit", 25)
	delay := req.Duration("pageDelay", 0)

	links, err := h.collectLinks(ctx, req)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	results := make([]domain.Article, 0, len(links))
	for _, link := range links {
		if err := retry.Sleep(ctx, delay); err != nil {
			return nil, err
		}
		article, ok, err := h.fetchArticle(ctx, link, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if ok {
			results = append(results, article)
		}
	}
	return results, nil
}

func (h *HTMLScanner) collectLinks(ctx context.Context, req scanner.Request) ([]string, error) {
	contains := req.String("linkContains", "")
	var (
		links []string
		seen  = map[string]struct{}{}
		errs  []error
	)

	for _, cat := range req.Categories {
		base, err := url.Parse(cat.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: invalid url: %w", cat.Name, err))
			continue
		}
		doc, err := fetchDocument(ctx, h.client, cat.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", cat.Name, err))
			continue
		}

		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			link, ok := articleLink(base, href, contains)
			if !ok {
				return
			}
			if _, dup := seen[link]; dup {
				return
			}
			seen[link] = struct{}{}
			links = append(links, link)
		})
	}

	if len(errs) == len(req.Categories) {
		return nil, errors.Join(errs...)
	}
	return links, nil
}

// articleLink resolves href against the listing page and keeps article-looking links.
func articleLink(base *url.URL, href, contains string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	abs.Fragment = ""
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}

	link := abs.String()
	if contains != "" && !strings.Contains(link, contains) {
		return "", false
	}
	for _, excluded := range defaultLinkExclusions {
		if strings.Contains(abs.Path, excluded) {
			return "", false
		}
	}
	if strings.Trim(abs.Path, "/") == "" {
		return "", false
	}
	return link, true
}

func (h *HTMLScanner) fetchArticle(ctx context.Context, link string, req scanner.Request) (domain.Article, bool, error) {
	doc, err := fetchDocument(ctx, h.client, link)
	if err != nil {
		return domain.Article{}, false, err
	}

	title := CleanText(doc.Find("h1").First().Text())
	paragraphs := collectParagraphs(doc.Selection, req.String("paragraphSelector", defaultParagraphSelector), req.Int("maxParagraphs", 10))
	content := strings.Join(paragraphs, "\n\n")

	if title == "" || utf8.RuneCountInString(content) <= req.Int("minContentLength", 200) {
		return domain.Article{}, false, nil
	}

	return domain.Article{
		Title:       title,
		Content:     content,
		URL:         link,
		PublishedAt: publishedAt(doc, req.Now),
		SourceName:  req.SiteName,
	}, true, nil
}

func publishedAt(doc *goquery.Document, fallback time.Time) time.Time {
	candidates := []string{
		doc.Find("time[datetime]").First().AttrOr("datetime", ""),
		doc.Find(`meta[property="article:published_time"]`).First().AttrOr("content", ""),
	}
	for _, raw := range candidates {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		for _, layout := range publishedLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t
			}
		}
	}
	return fallback
}
