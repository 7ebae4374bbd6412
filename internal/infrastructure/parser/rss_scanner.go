package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/retry"
	"IncidentScanner/internal/scanner"
)

const datePlaceholder = "{date}"

// RSSScanner reads RSS/Atom feeds. Feed URLs may contain a {date} placeholder
// (YYYY/MM/DD) expanded for each of the last "days" days, and dated feeds may be
// paginated with ?paged=N until a 404 or an empty page.
type RSSScanner struct {
	client *http.Client
}

// NewRSSScanner wires an HTTP client; a nil client gets a 20s timeout.
func NewRSSScanner(client *http.Client) *RSSScanner {
	return &RSSScanner{client: defaultClient(client)}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan fetches every configured feed. It fails only when no feed could be read.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("no feeds provided for site %s", req.SiteName)
	}

	days := req.Int("days", 1)
	if days < 1 {
		days = 1
	}
	paged := req.Bool("paged", false)
	maxPages := req.Int("maxPages", 10)
	delay := req.Duration("pageDelay", 0)
	maxParagraphs := req.Int("maxParagraphs", 15)

	var (
		results  []domain.Article
		seen     = map[string]struct{}{}
		errs     []error
		attempts int
	)

	for _, cat := range req.Categories {
		for _, feedURL := range expandDates(cat.URL, req.Now, days) {
			attempts++
			items, err := s.scanFeed(ctx, feedURL, paged, maxPages, delay)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				errs = append(errs, fmt.Errorf("feed %s: %w", feedURL, err))
			}
			for _, item := range items {
				article, ok := toArticle(item, req, maxParagraphs)
				if !ok {
					continue
				}
				if _, dup := seen[article.URL]; dup {
					continue
				}
				seen[article.URL] = struct{}{}
				results = append(results, article)
			}
		}
	}

	if len(errs) == attempts {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

// scanFeed walks the pages of one feed. Items gathered before a failure are kept.
func (s *RSSScanner) scanFeed(ctx context.Context, feedURL string, paged bool, maxPages int, delay time.Duration) ([]*gofeed.Item, error) {
	var items []*gofeed.Item
	fp := gofeed.NewParser()

	for page := 1; ; page++ {
		target, err := pageURL(feedURL, page)
		if err != nil {
			return nil, err
		}

		var feed *gofeed.Feed
		err = fetch(ctx, s.client, target, func(body io.Reader) error {
			parsed, err := fp.Parse(body)
			if err != nil {
				return fmt.Errorf("parse feed: %w", err)
			}
			feed = parsed
			return nil
		})

		var statusErr *StatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound:
			// No such day or no further page.
			return items, nil
		case err != nil && page == 1:
			return nil, err
		case err != nil:
			return items, nil
		}

		if len(feed.Items) == 0 {
			return items, nil
		}
		items = append(items, feed.Items...)

		if !paged || (maxPages > 0 && page >= maxPages) {
			return items, nil
		}
		if err := retry.Sleep(ctx, delay); err != nil {
			return items, err
		}
	}
}

func toArticle(item *gofeed.Item, req scanner.Request, maxParagraphs int) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}

	published := req.Now
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	return domain.Article{
		Title:       CleanText(title),
		Content:     HTMLToText(body, maxParagraphs),
		URL:         link,
		PublishedAt: published,
		SourceName:  req.SiteName,
	}, true
}

// expandDates substitutes {date} for today and the preceding days.
func expandDates(raw string, now time.Time, days int) []string {
	if !strings.Contains(raw, datePlaceholder) {
		return []string{raw}
	}
	if now.IsZero() {
		now = time.Now()
	}
	urls := make([]string, 0, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, -i).Format("2006/01/02")
		urls = append(urls, strings.ReplaceAll(raw, datePlaceholder, day))
	}
	return urls
}

func pageURL(base string, page int) (string, error) {
	if page <= 1 {
		return base, nil
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %s: %w", base, err)
	}
	query := parsed.Query()
	query.Set("paged", strconv.Itoa(page))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
