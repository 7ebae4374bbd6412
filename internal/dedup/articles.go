package dedup

import (
	"net/url"
	"strings"

	"IncidentScanner/internal/domain"
)

// ArticleOptions tunes pre-classification grouping.
type ArticleOptions struct {
	// Threshold is the minimum title similarity for an article to join a group.
	Threshold float64
	// DirectURLBonus is added to content length when ranking a publisher URL against a redirect URL.
	DirectURLBonus int
	// RedirectHosts lists aggregator hosts whose links only redirect to the publisher.
	RedirectHosts []string
}

// DefaultArticleOptions mirrors the production configuration.
func DefaultArticleOptions() ArticleOptions {
	return ArticleOptions{
		Threshold:      0.4,
		DirectURLBonus: 200,
		RedirectHosts:  []string{"news.google.com", "feedproxy.google.com", "t.co", "bit.ly"},
	}
}

// Group is a set of articles believed to report the same event; the first member is the anchor.
type Group struct {
	Members []domain.Article

	terms   termSet
	numbers map[int]struct{}
}

// Representative picks the member with the longest content, preferring direct publisher URLs.
// Ties keep the earlier member.
func (g Group) Representative(opts ArticleOptions) domain.Article {
	best := g.Members[0]
	bestScore := rankArticle(best, opts)
	for _, member := range g.Members[1:] {
		if score := rankArticle(member, opts); score > bestScore {
			best, bestScore = member, score
		}
	}
	return best
}

// GroupArticles clusters articles greedily in input order: each article joins the first group
// whose anchor title is similar enough or shares a significant number, else starts a new group.
func GroupArticles(articles []domain.Article, opts ArticleOptions) []Group {
	groups := make([]Group, 0, len(articles))
	for _, article := range articles {
		terms := newTermSet(article.Title)
		numbers := SignificantNumbers(article.Title)

		joined := false
		for i := range groups {
			if jaccard(terms, groups[i].terms) >= opts.Threshold || sharesNumber(numbers, groups[i].numbers) {
				groups[i].Members = append(groups[i].Members, article)
				joined = true
				break
			}
		}
		if !joined {
			groups = append(groups, Group{
				Members: []domain.Article{article},
				terms:   terms,
				numbers: numbers,
			})
		}
	}
	return groups
}

// Representatives returns one article per group, discarding the rest.
func Representatives(articles []domain.Article, opts ArticleOptions) []domain.Article {
	groups := GroupArticles(articles, opts)
	out := make([]domain.Article, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Representative(opts))
	}
	return out
}

// UniqueByURL drops exact URL repeats, keeping the first occurrence.
func UniqueByURL(articles []domain.Article) []domain.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		key := strings.TrimSpace(article.URL)
		if key != "" {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, article)
	}
	return out
}

func rankArticle(a domain.Article, opts ArticleOptions) int {
	score := len(a.Content)
	if !isRedirectURL(a.URL, opts.RedirectHosts) {
		score += opts.DirectURLBonus
	}
	return score
}

func isRedirectURL(raw string, hosts []string) bool {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	for _, h := range hosts {
		if host == h {
			return true
		}
	}
	return strings.Contains(parsed.Path, "/rss/articles/")
}
