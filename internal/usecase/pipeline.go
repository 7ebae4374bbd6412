package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"IncidentScanner/internal/dedup"
	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/filter"
	"IncidentScanner/internal/ports"
	"IncidentScanner/internal/retry"
)

// ClassificationObserver is told about every classifier outcome.
type ClassificationObserver interface {
	ObserveClassification(result domain.Classification)
}

// PipelineOptions holds the tunables of a single run.
type PipelineOptions struct {
	// LookbackDays bounds the stored incidents loaded for duplicate checks.
	LookbackDays int
	// MinContentLength drops articles whose body is shorter, in characters.
	MinContentLength int
	// CallDelay paces consecutive classifier calls.
	CallDelay time.Duration
	Article   dedup.ArticleOptions
	Incident  dedup.IncidentOptions
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Store      ports.IncidentStore
	Classifier ports.Classifier
	PreFilter  *filter.PreFilter
	Notifiers  []ports.Notifier
	Observer   ClassificationObserver
	Logger     *slog.Logger
	Options    PipelineOptions

	// Sleep and Clock are replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Clock func() time.Time
}

// Pipeline implements the fetch, filter, classify, dedup and persist workflow.
type Pipeline struct {
	source     ports.ArticleSource
	store      ports.IncidentStore
	classifier ports.Classifier
	prefilter  *filter.PreFilter
	checker    *dedup.IncidentChecker
	notifiers  []ports.Notifier
	observer   ClassificationObserver
	logger     *slog.Logger
	opts       PipelineOptions
	sleep      func(ctx context.Context, d time.Duration) error
	clock      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	opts := deps.Options
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = 7
	}
	if opts.Article.Threshold <= 0 {
		opts.Article = dedup.DefaultArticleOptions()
	}

	prefilter := deps.PreFilter
	if prefilter == nil {
		prefilter = filter.NewPreFilter(filter.DefaultKeywords())
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := deps.Sleep
	if sleep == nil {
		sleep = retry.Sleep
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Pipeline{
		source:     deps.Source,
		store:      deps.Store,
		classifier: deps.Classifier,
		prefilter:  prefilter,
		checker:    dedup.NewIncidentChecker(opts.Incident),
		notifiers:  deps.Notifiers,
		observer:   deps.Observer,
		logger:     logger.With("component", "pipeline"),
		opts:       opts,
		sleep:      sleep,
		clock:      clock,
	}
}

// Run executes one pass over the configured sources. Per-article failures are
// counted in the stats; only a failure of every source or of the initial store
// read aborts the run.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (domain.RunStats, error) {
	stats := domain.RunStats{Stage: domain.StageFetching, StartedAt: p.clock()}
	finish := func(err error) (domain.RunStats, error) {
		stats.FinishedAt = p.clock()
		if err == nil {
			stats.Stage = domain.StageDone
		}
		return stats, err
	}

	if p.source == nil || p.store == nil || p.classifier == nil {
		return finish(errors.New("pipeline is not fully configured"))
	}

	articles, err := p.source.FetchRecent(ctx, now)
	if err != nil {
		return finish(fmt.Errorf("fetch articles: %w", err))
	}
	stats.Fetched = len(articles)

	stats.Stage = domain.StageFiltering
	unique := dedup.UniqueByURL(articles)
	relevant := p.relevant(unique)
	stats.Relevant = len(relevant)
	stats.FilteredOut = len(unique) - len(relevant)

	stats.Stage = domain.StageArticleDedup
	representatives := dedup.Representatives(relevant, p.opts.Article)
	stats.Representatives = len(representatives)
	stats.MergedPreAI = len(articles) - len(unique) + len(relevant) - len(representatives)

	p.logger.Info("articles prepared",
		"fetched", stats.Fetched,
		"relevant", stats.Relevant,
		"representatives", stats.Representatives,
		"merged", stats.MergedPreAI,
	)

	if len(representatives) == 0 {
		return finish(nil)
	}

	since := now.AddDate(0, 0, -p.opts.LookbackDays)
	existing, err := p.store.FetchRecent(ctx, since)
	if err != nil {
		return finish(fmt.Errorf("load recent incidents: %w", err))
	}
	known := dedup.NewKnownSet(existing)

	stats.Stage = domain.StageClassifying
	for i, article := range representatives {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}
		if i > 0 {
			if err := p.sleep(ctx, p.opts.CallDelay); err != nil {
				return finish(err)
			}
		}

		if err := p.process(ctx, article, known, &stats); err != nil {
			return finish(err)
		}
	}

	p.logger.Info("run finished",
		"classified", stats.Classified,
		"fallback", stats.FallbackUsed,
		"rejected", stats.Rejected,
		"duplicates", stats.Duplicates,
		"persisted", stats.Persisted,
		"errors", stats.Errors,
		"api_calls_saved", stats.MergedPreAI,
	)
	return finish(nil)
}

// process handles one representative article. It only returns cancellation errors.
func (p *Pipeline) process(ctx context.Context, article domain.Article, known *dedup.KnownSet, stats *domain.RunStats) error {
	log := p.logger.With("url", article.URL)

	result, err := p.classifier.Classify(ctx, article)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Errors++
		log.Warn("classification failed", "error", err)
		return nil
	}

	stats.Classified++
	if result.Path == domain.PathFallback {
		stats.FallbackUsed++
	}
	if p.observer != nil {
		p.observer.ObserveClassification(result)
	}

	if !result.Accepted() {
		stats.Rejected++
		log.Debug("article rejected", "reason", result.Reason, "path", result.Path)
		return nil
	}
	incident := *result.Incident

	if verdict := p.checker.Check(incident, known); verdict.Duplicate {
		stats.Duplicates++
		log.Info("duplicate incident", "reason", verdict.Reason, "score", verdict.Score, "match", verdict.Match.ID)
		return nil
	}

	stats.Stage = domain.StagePersisting
	defer func() { stats.Stage = domain.StageClassifying }()

	id, err := p.store.Insert(ctx, incident)
	switch {
	case errors.Is(err, ports.ErrConflict):
		stats.Duplicates++
		log.Info("incident already stored")
		return nil
	case err != nil:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		stats.Errors++
		log.Error("persist incident", "error", err)
		return nil
	}

	stats.Persisted++
	known.Add(incident.ToSummary(id))
	log.Info("incident stored",
		"id", id,
		"state", incident.State,
		"type", incident.IncidentType,
		"fatalities", incident.Fatalities,
		"abducted", incident.Abducted,
		"path", result.Path,
	)

	for _, notifier := range p.notifiers {
		if err := notifier.NotifyIncident(ctx, id, incident); err != nil {
			log.Warn("notify incident", "id", id, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) relevant(articles []domain.Article) []domain.Article {
	out := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if utf8.RuneCountInString(article.Content) < p.opts.MinContentLength {
			continue
		}
		if !p.prefilter.IsIncidentCandidate(article.Text()) {
			continue
		}
		out = append(out, article)
	}
	return out
}
