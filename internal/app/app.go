package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"IncidentScanner/internal/classify"
	"IncidentScanner/internal/config"
	"IncidentScanner/internal/dedup"
	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/filter"
	"IncidentScanner/internal/infrastructure/broker"
	"IncidentScanner/internal/infrastructure/httpapi"
	"IncidentScanner/internal/infrastructure/llm"
	"IncidentScanner/internal/infrastructure/lock"
	"IncidentScanner/internal/infrastructure/parser"
	"IncidentScanner/internal/infrastructure/scheduler"
	"IncidentScanner/internal/infrastructure/storage"
	"IncidentScanner/internal/infrastructure/telegram"
	"IncidentScanner/internal/logging"
	"IncidentScanner/internal/metrics"
	"IncidentScanner/internal/ports"
	"IncidentScanner/internal/scanner"
	"IncidentScanner/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	runner  *usecase.Runner
	closers []io.Closer
}

// New validates the configuration and builds every adapter. The caller must Close
// the application.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Application{cfg: cfg, logger: baseLogger}
	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Application) wire(ctx context.Context) error {
	cfg := a.cfg
	logger := a.logger

	db, err := storage.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, db)
	if cfg.Database.Migrate {
		if err := storage.RunMigrations(ctx, db); err != nil {
			return err
		}
	}
	store := storage.NewIncidentRepository(db)

	client := &http.Client{Timeout: cfg.Pipeline.FetchTimeout}
	registry := scanner.NewRegistry()
	registry.Register(parser.NewRSSScanner(client))
	registry.Register(parser.NewHTMLScanner(client))
	source := parser.NewStrategySource(registry, cfg.Sites, logger.With("component", "source"))

	keywords := filter.NewKeywords(cfg.Keywords.Violence, cfg.Keywords.Context, cfg.Keywords.Exclusions)

	chat, err := llm.NewChatClient(ctx, cfg.Classifier.Provider, cfg.Providers, cfg.Classifier.Timeout)
	switch {
	case errors.Is(err, llm.ErrMissingCredentials):
		logger.Warn("classification provider not configured, using keyword fallback only",
			"provider", cfg.Classifier.Provider)
		chat = nil
	case err != nil:
		return fmt.Errorf("classification provider: %w", err)
	}
	if closer, ok := chat.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	recorder := metrics.Recorder{}
	metrics.Register()

	classifier := classify.New(chat, keywords, classify.Options{
		MaxAttempts:   cfg.Classifier.MaxAttempts,
		BaseDelay:     cfg.Classifier.BaseDelay,
		AcceptedTypes: acceptedTypes(cfg.Classifier.AcceptedTypes, logger),
		Jitter:        cfg.Classifier.Jitter,
		IsRetryable:   llm.IsRetryable,
		IsPermanent:   llm.IsPermanent,
		OnRetry:       recorder.ObserveRetry,
	}, logger.With("component", "classifier"))

	notifiers, err := a.notifiers()
	if err != nil {
		return err
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Store:      store,
		Classifier: classifier,
		PreFilter:  filter.NewPreFilter(keywords),
		Notifiers:  notifiers,
		Observer:   recorder,
		Logger:     logger,
		Options: usecase.PipelineOptions{
			LookbackDays:     cfg.Dedup.LookbackDays,
			MinContentLength: cfg.Pipeline.MinContentLength,
			CallDelay:        cfg.Classifier.CallDelay,
			Article: dedup.ArticleOptions{
				Threshold:      cfg.Dedup.ArticleThreshold,
				DirectURLBonus: dedup.DefaultArticleOptions().DirectURLBonus,
				RedirectHosts:  dedup.DefaultArticleOptions().RedirectHosts,
			},
			Incident: dedup.IncidentOptions{
				DateWindowDays:    cfg.Dedup.DateWindowDays,
				CasualtyTolerance: cfg.Dedup.CasualtyTolerance,
				DuplicateScore:    cfg.Dedup.DuplicateScore,
			},
		},
	})

	a.runner = usecase.NewRunner(pipeline, a.runLock(), recorder, logger)
	return nil
}

func (a *Application) notifiers() ([]ports.Notifier, error) {
	var out []ports.Notifier

	tg := a.cfg.Notifications.Telegram
	if tg.BotToken != "" && tg.ChatID != "" {
		out = append(out, telegram.NewNotifier(tg.BotToken, tg.ChatID))
	}

	mq := a.cfg.Notifications.AMQP
	if mq.URL != "" {
		publisher, err := broker.NewPublisher(mq.URL, mq.Exchange, mq.RoutingKey)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, publisher)
		out = append(out, publisher)
	}

	a.logger.Info("notifiers configured", "count", len(out))
	return out, nil
}

func (a *Application) runLock() ports.RunLock {
	rc := a.cfg.Redis
	if rc.Addr == "" {
		return lock.Noop{}
	}
	client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
	a.closers = append(a.closers, client)
	return lock.NewRedisLock(client, rc.LockKey, rc.LockTTL)
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunStats, error) {
	now := time.Now().In(a.cfg.Scheduler.Location())
	return a.runner.RunOnce(ctx, now)
}

// Serve runs the scheduler and the ops HTTP server until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval, a.cfg.Scheduler.RunOnStart, a.cfg.Scheduler.Location())
	sched := usecase.NewScheduler(driver, a.runner, a.logger)
	server := httpapi.NewServer(a.cfg.Server.Addr, a.runner, nil, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		if err := sched.Start(gctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 30*time.Second)
		defer cancel()
		return sched.Stop(stopCtx)
	})

	err := g.Wait()
	a.runner.Wait()
	return err
}

// Close releases database, broker and cache connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// acceptedTypes parses configured type names, skipping unknown ones.
func acceptedTypes(names []string, logger *slog.Logger) []domain.IncidentType {
	out := make([]domain.IncidentType, 0, len(names))
	for _, name := range names {
		t, ok := domain.ParseIncidentType(name)
		if !ok {
			logger.Warn("ignoring unknown incident type", "type", name)
			continue
		}
		out = append(out, t)
	}
	return out
}
