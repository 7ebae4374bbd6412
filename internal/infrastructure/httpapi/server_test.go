package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/logging"
	"IncidentScanner/internal/usecase"
)

type fakeRunner struct {
	last       *usecase.LastRun
	running    bool
	triggerErr error
	triggered  int
}

func (f *fakeRunner) Trigger(context.Context) error {
	f.triggered++
	return f.triggerErr
}

func (f *fakeRunner) Last() (usecase.LastRun, bool) {
	if f.last == nil {
		return usecase.LastRun{}, false
	}
	return *f.last, true
}

func (f *fakeRunner) Running() bool { return f.running }

func serve(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := NewServer(":0", &fakeRunner{running: true}, prometheus.NewRegistry(), logging.Discard())

	w := serve(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["running"])
}

func TestLastRun(t *testing.T) {
	t.Run("no run yet", func(t *testing.T) {
		s := NewServer(":0", &fakeRunner{}, prometheus.NewRegistry(), logging.Discard())
		w := serve(t, s, http.MethodGet, "/v1/runs/last")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("finished run", func(t *testing.T) {
		started := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
		runner := &fakeRunner{last: &usecase.LastRun{
			Stats: domain.RunStats{
				Stage:      domain.StageDone,
				StartedAt:  started,
				FinishedAt: started.Add(90 * time.Second),
				Fetched:    40,
				Persisted:  3,
			},
		}}
		s := NewServer(":0", runner, prometheus.NewRegistry(), logging.Discard())

		w := serve(t, s, http.MethodGet, "/v1/runs/last")
		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Data usecase.LastRun `json:"data"`
			Meta struct {
				Running         bool    `json:"running"`
				DurationSeconds float64 `json:"durationSeconds"`
			} `json:"meta"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.StageDone, body.Data.Stats.Stage)
		assert.Equal(t, 40, body.Data.Stats.Fetched)
		assert.Equal(t, 3, body.Data.Stats.Persisted)
		assert.InDelta(t, 90, body.Meta.DurationSeconds, 1e-9)
		assert.Empty(t, body.Data.Error)
	})
}

func TestTriggerRun(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"started", nil, http.StatusAccepted},
		{"already running", usecase.ErrRunInProgress, http.StatusConflict},
		{"lock failure", errors.New("redis down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			runner := &fakeRunner{triggerErr: tc.err}
			s := NewServer(":0", runner, prometheus.NewRegistry(), logging.Discard())

			w := serve(t, s, http.MethodPost, "/v1/runs")
			assert.Equal(t, tc.want, w.Code)
			assert.Equal(t, 1, runner.triggered)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "incident_scanner_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Add(2)

	s := NewServer(":0", &fakeRunner{}, reg, logging.Discard())
	w := serve(t, s, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "incident_scanner_test_total 2")
}
