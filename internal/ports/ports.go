package ports

import (
	"context"
	"errors"
	"time"

	"IncidentScanner/internal/domain"
)

// ErrConflict is returned by IncidentStore.Insert when the source URL is already stored.
var ErrConflict = errors.New("incident already stored")

// ArticleSource pulls fresh articles from upstream feeds.
type ArticleSource interface {
	FetchRecent(ctx context.Context, now time.Time) ([]domain.Article, error)
}

// IncidentStore is the narrow persistence contract the pipeline depends on.
type IncidentStore interface {
	FetchRecent(ctx context.Context, since time.Time) ([]domain.IncidentSummary, error)
	Insert(ctx context.Context, incident domain.CandidateIncident) (string, error)
}

// Classifier turns an article into a candidate incident or a rejection.
type Classifier interface {
	Classify(ctx context.Context, article domain.Article) (domain.Classification, error)
}

// ChatClient sends a system instruction and a user message to a chat-completion API.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Notifier fans accepted incidents out to Telegram or other channels.
type Notifier interface {
	NotifyIncident(ctx context.Context, id string, incident domain.CandidateIncident) error
}

// RunLock guards against two pipeline runs overlapping across processes.
type RunLock interface {
	Acquire(ctx context.Context) (release func(context.Context) error, ok bool, err error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
