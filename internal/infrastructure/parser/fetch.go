package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (compatible; IncidentScanner/1.0)"

// StatusError reports a non-200 response from a source.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d", e.URL, e.StatusCode)
}

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 20 * time.Second}
	}
	return client
}

// fetch issues a GET and hands the body to read when the status is 200.
func fetch(ctx context.Context, client *http.Client, pageURL string, read func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &StatusError{URL: pageURL, StatusCode: resp.StatusCode}
	}
	return read(resp.Body)
}

func fetchDocument(ctx context.Context, client *http.Client, pageURL string) (*goquery.Document, error) {
	var doc *goquery.Document
	err := fetch(ctx, client, pageURL, func(body io.Reader) error {
		parsed, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return fmt.Errorf("parse document: %w", err)
		}
		doc = parsed
		return nil
	})
	return doc, err
}
