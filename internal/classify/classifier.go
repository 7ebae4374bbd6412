package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/filter"
	"IncidentScanner/internal/ports"
	"IncidentScanner/internal/retry"
)

// Options tunes the classifier. Zero values pick sensible defaults.
type Options struct {
	MaxAttempts   int
	BaseDelay     time.Duration
	AcceptedTypes []domain.IncidentType
	// Jitter is the per-axis half width, in degrees, applied to state centroids.
	Jitter float64

	// IsRetryable marks provider errors worth another attempt (rate limits, timeouts).
	IsRetryable func(error) bool
	// IsPermanent marks provider errors that fail the article instead of falling back.
	IsPermanent func(error) bool

	Sleep   func(ctx context.Context, d time.Duration) error
	OnRetry func(attempt int, delay time.Duration, err error)
	Rand    func() float64
	Now     func() time.Time
}

// Classifier turns articles into candidate incidents, preferring the chat model
// and degrading to the deterministic extractor.
type Classifier struct {
	chat     ports.ChatClient
	fallback *Fallback
	opts     Options
	accepted map[domain.IncidentType]struct{}
	prompt   string
	logger   *slog.Logger
}

var _ ports.Classifier = (*Classifier)(nil)

// New builds a classifier. A nil chat client runs every article through the fallback.
func New(chat ports.ChatClient, keywords filter.Keywords, opts Options, logger *slog.Logger) *Classifier {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.IsRetryable == nil {
		opts.IsRetryable = func(err error) bool { return errors.Is(err, context.DeadlineExceeded) }
	}
	if opts.IsPermanent == nil {
		opts.IsPermanent = func(error) bool { return false }
	}
	if logger == nil {
		logger = slog.Default()
	}

	accepted := make(map[domain.IncidentType]struct{}, len(opts.AcceptedTypes))
	for _, t := range opts.AcceptedTypes {
		accepted[t] = struct{}{}
	}

	return &Classifier{
		chat:     chat,
		fallback: newFallback(keywords, accepted, opts.Jitter, opts.Rand, opts.Now),
		opts:     opts,
		accepted: accepted,
		prompt:   BuildSystemPrompt(opts.AcceptedTypes),
		logger:   logger.With("component", "classifier"),
	}
}

// Classify returns the classification for one article. An error means the
// article could not be classified at all (permanent provider failure or a
// cancelled context); rejections are reported through the result.
func (c *Classifier) Classify(ctx context.Context, article domain.Article) (domain.Classification, error) {
	if c.chat == nil {
		return c.fallback.Classify(article), nil
	}

	policy := retry.Policy{
		Attempts:  c.opts.MaxAttempts,
		BaseDelay: c.opts.BaseDelay,
		Sleep:     c.opts.Sleep,
		OnRetry: func(attempt int, delay time.Duration, err error) {
			c.logger.Warn("provider call failed, retrying",
				"url", article.URL, "attempt", attempt, "delay", delay, "error", err)
			if c.opts.OnRetry != nil {
				c.opts.OnRetry(attempt, delay, err)
			}
		},
	}

	user := BuildUserMessage(article)
	raw, err := retry.Do(ctx, policy, c.opts.IsRetryable, func(ctx context.Context) (string, error) {
		return c.chat.Complete(ctx, c.prompt, user)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Classification{}, ctxErr
		}
		if c.opts.IsPermanent(err) {
			return domain.Classification{}, fmt.Errorf("classify %s: %w", article.URL, err)
		}
		c.logger.Warn("provider unavailable, using fallback", "url", article.URL, "error", err)
		return c.fallback.Classify(article), nil
	}

	parsed, err := parseExtraction(raw)
	if err != nil {
		c.logger.Warn("unparseable provider output, using fallback", "url", article.URL, "error", err)
		return c.fallback.Classify(article), nil
	}

	return c.fromExtraction(article, parsed), nil
}

func (c *Classifier) fromExtraction(article domain.Article, x extraction) domain.Classification {
	result := domain.Classification{Path: domain.PathAI}

	switch {
	case !bool(x.IsSecurityIncident):
		result.Reason = ReasonNotIncident
		return result
	case bool(x.IsFollowUp):
		result.Reason = ReasonFollowUp
		return result
	}
	if reason := screenTitle(article.Title); reason != "" {
		result.Reason = reason
		return result
	}

	fatalities, injuries, abducted := int(x.Fatalities), int(x.Injuries), int(x.Kidnapped)
	if fatalities+injuries+abducted == 0 {
		result.Reason = ReasonNoCasualties
		return result
	}

	kind, ok := domain.ParseIncidentType(x.IncidentType)
	if !ok {
		kind = domain.TypeUnknownGunmen
	}
	if !isAccepted(c.accepted, kind) {
		result.Reason = ReasonTypeNotAccepted
		return result
	}

	severity, ok := domain.ParseSeverity(x.Severity)
	if !ok {
		severity = domain.SeverityMedium
	}

	state := CanonicalState(x.State)
	if state == domain.UnknownState {
		state = ResolveState(article.Text())
	}

	title := x.Title
	if strings.TrimSpace(title) == "" {
		title = article.Title
	}
	summary := x.Description
	if strings.TrimSpace(summary) == "" {
		summary = article.Content
	}

	published := article.PublishedAt
	if published.IsZero() {
		published = c.opts.Now()
	}

	result.Incident = &domain.CandidateIncident{
		Title:        truncate(title, maxTitleLength),
		Summary:      truncate(summary, maxSummaryLength),
		OccurredAt:   parseEventDate(x.Date, published),
		State:        state,
		LocalArea:    localArea(x.LGA),
		Coordinates:  Jitter(Centroid(state), c.opts.Jitter, c.opts.Rand),
		Fatalities:   fatalities,
		Injuries:     injuries,
		Abducted:     abducted,
		IncidentType: kind,
		Severity:     severity,
		SourceURL:    article.URL,
		Sources:      sourcesOf(article),
	}
	return result
}

func localArea(lga string) string {
	lga = strings.TrimSpace(lga)
	if strings.EqualFold(lga, "unknown") || strings.EqualFold(lga, "n/a") {
		return ""
	}
	return lga
}
