package domain

import "time"

// Article is a fetched news item normalized by a source scanner.
type Article struct {
	Title       string
	Content     string
	URL         string
	PublishedAt time.Time
	SourceName  string
}

// Text returns title and content joined for keyword matching.
func (a Article) Text() string {
	return a.Title + " " + a.Content
}
