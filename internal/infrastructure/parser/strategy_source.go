package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/ports"
	"IncidentScanner/internal/scanner"
)

// ErrAllSourcesFailed is returned when no configured site produced a result.
var ErrAllSourcesFailed = errors.New("all sources failed")

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchRecent scans all sites concurrently and concatenates their articles in site order.
// A failing site is logged and skipped; an error is returned only when every site fails.
func (s *StrategySource) FetchRecent(ctx context.Context, now time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sites) == 0 {
		return nil, nil
	}

	s.debug("fetch recent", "sites", len(s.sites), "now", now.Format(time.RFC3339))

	perSite := make([][]domain.Article, len(s.sites))
	siteErrs := make([]error, len(s.sites))

	var g errgroup.Group
	for i, site := range s.sites {
		g.Go(func() error {
			articles, err := s.scanSite(ctx, site, now)
			if err != nil {
				siteErrs[i] = fmt.Errorf("site %s: %w", site.Name, err)
				s.warn("site failed", "site", site.Name, "error", err)
				return nil
			}
			perSite[i] = articles
			s.debug("site produced articles", "site", site.Name, "count", len(articles))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		aggregated []domain.Article
		failed     int
	)
	for i := range s.sites {
		if siteErrs[i] != nil {
			failed++
			continue
		}
		aggregated = append(aggregated, perSite[i]...)
	}
	if failed == len(s.sites) {
		return nil, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(siteErrs...))
	}

	s.debug("strategy source done", "total_articles", len(aggregated), "failed_sites", failed)
	return aggregated, nil
}

func (s *StrategySource) scanSite(ctx context.Context, site config.SiteConfig, now time.Time) ([]domain.Article, error) {
	strategy, err := s.registry.Resolve(site.Scanner)
	if err != nil {
		return nil, err
	}

	req := scanner.Request{
		Now:        now,
		SiteName:   site.Name,
		Options:    site.Options,
		Categories: toScannerCategories(site.Categories),
	}

	results, err := strategy.Scan(ctx, req)
	if err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].SourceName == "" {
			results[i].SourceName = site.Name
		}
	}
	return results, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
