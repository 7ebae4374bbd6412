package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	minParagraphLength = 30
	maxPlainText       = 2000
)

var (
	urlExpr        = regexp.MustCompile(`https?://\S+|www\.\S+`)
	whitespaceExpr = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLinesExpr = regexp.MustCompile(`\n{3,}`)
)

// junkMarkers drop boilerplate paragraphs syndicated into feed content.
var junkMarkers = []string{"READ ALSO", "Vanguard News", "CLICK HERE", "Follow us on", "Subscribe to"}

// HTMLToText extracts readable paragraphs from an HTML fragment. Paragraphs shorter
// than 30 characters and boilerplate are skipped; without usable paragraphs the
// whole text is collapsed instead.
func HTMLToText(fragment string, maxParagraphs int) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	doc.Find("script, style, iframe, noscript, .sharedaddy, .jp-relatedposts").Remove()

	paragraphs := collectParagraphs(doc.Selection, "p", maxParagraphs)
	if len(paragraphs) == 0 {
		return clip(CleanText(doc.Text()), maxPlainText)
	}
	return strings.Join(paragraphs, "\n\n")
}

func collectParagraphs(sel *goquery.Selection, selector string, limit int) []string {
	var out []string
	sel.Find(selector).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := CleanText(p.Text())
		if utf8.RuneCountInString(text) <= minParagraphLength || isJunk(text) {
			return true
		}
		out = append(out, text)
		return limit <= 0 || len(out) < limit
	})
	return out
}

// CleanText removes URLs and collapses whitespace.
func CleanText(s string) string {
	s = urlExpr.ReplaceAllString(s, "")
	s = whitespaceExpr.ReplaceAllString(s, " ")
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	s = strings.Join(lines, "\n")
	s = blankLinesExpr.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func isJunk(text string) bool {
	for _, marker := range junkMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func clip(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
