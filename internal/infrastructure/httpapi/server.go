package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"IncidentScanner/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// RunController is the part of usecase.Runner exposed over HTTP.
type RunController interface {
	Trigger(ctx context.Context) error
	Last() (usecase.LastRun, bool)
	Running() bool
}

// Server exposes health, run status, manual triggers and metrics.
type Server struct {
	addr     string
	runner   RunController
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	// runCtx is handed to triggered runs so they outlive the request.
	runCtx context.Context
}

// NewServer builds the ops server; a nil gatherer serves the default registry.
func NewServer(addr string, runner RunController, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     addr,
		runner:   runner,
		gatherer: gatherer,
		logger:   logger.With("component", "httpapi"),
		runCtx:   context.Background(),
	}
}

// Router registers every route on a fresh gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	{
		v1.GET("/runs/last", s.LastRun)
		v1.POST("/runs", s.TriggerRun)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.runCtx = ctx
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// Health: GET /healthz
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"running": s.runner.Running(),
	})
}

// LastRun: GET /v1/runs/last
func (s *Server) LastRun(c *gin.Context) {
	last, ok := s.runner.Last()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no run has finished yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": last,
		"meta": gin.H{
			"running":         s.runner.Running(),
			"durationSeconds": last.Stats.Duration().Seconds(),
		},
	})
}

// TriggerRun: POST /v1/runs
// Starts a run in the background; 409 when one is already executing.
func (s *Server) TriggerRun(c *gin.Context) {
	err := s.runner.Trigger(s.runCtx)
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		s.logger.Error("trigger run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start run"})
	default:
		c.JSON(http.StatusAccepted, gin.H{"status": "started"})
	}
}
