package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"IncidentScanner/internal/domain"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestObserveRun(t *testing.T) {
	var r Recorder

	success := testutil.ToFloat64(RunsTotal.WithLabelValues("success"))
	failed := testutil.ToFloat64(RunsTotal.WithLabelValues("failed"))
	persisted := testutil.ToFloat64(ArticlesTotal.WithLabelValues("persisted"))

	finished := time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC)
	r.ObserveRun(domain.RunStats{
		StartedAt:  finished.Add(-5 * time.Minute),
		FinishedAt: finished,
		Fetched:    40,
		Persisted:  2,
	}, nil)
	r.ObserveRun(domain.RunStats{}, errors.New("store down"))

	assert.Equal(t, success+1, testutil.ToFloat64(RunsTotal.WithLabelValues("success")))
	assert.Equal(t, failed+1, testutil.ToFloat64(RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, persisted+2, testutil.ToFloat64(ArticlesTotal.WithLabelValues("persisted")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(LastSuccessSeconds))
}

func TestObserveClassificationAndRetry(t *testing.T) {
	var r Recorder

	accepted := testutil.ToFloat64(ClassificationsTotal.WithLabelValues("ai", "accepted"))
	rejected := testutil.ToFloat64(ClassificationsTotal.WithLabelValues("fallback", "rejected"))
	retries := testutil.ToFloat64(ProviderRetriesTotal)
	skipped := testutil.ToFloat64(RunsTotal.WithLabelValues("skipped"))

	r.ObserveClassification(domain.Classification{Path: domain.PathAI, Incident: &domain.CandidateIncident{}})
	r.ObserveClassification(domain.Classification{Path: domain.PathFallback, Reason: "no_casualties"})
	r.ObserveRetry(1, time.Second, errors.New("429"))
	r.ObserveSkipped()

	assert.Equal(t, accepted+1, testutil.ToFloat64(ClassificationsTotal.WithLabelValues("ai", "accepted")))
	assert.Equal(t, rejected+1, testutil.ToFloat64(ClassificationsTotal.WithLabelValues("fallback", "rejected")))
	assert.Equal(t, retries+1, testutil.ToFloat64(ProviderRetriesTotal))
	assert.Equal(t, skipped+1, testutil.ToFloat64(RunsTotal.WithLabelValues("skipped")))
}
