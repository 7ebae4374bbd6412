package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentScanner/internal/domain"
)

func testIncident() domain.CandidateIncident {
	return domain.CandidateIncident{
		Title:        "Bandits kill 32 in Zamfara_village",
		OccurredAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		State:        "Zamfara",
		LocalArea:    "Maru",
		Fatalities:   32,
		Injuries:     4,
		IncidentType: domain.TypeBanditry,
		Severity:     domain.SeverityCritical,
		SourceURL:    "https://news.example/zamfara",
	}
}

func TestNotifyIncident(t *testing.T) {
	t.Parallel()

	var form map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		form = map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "42")
	n.apiBase = server.URL
	n.client = server.Client()

	require.NoError(t, n.NotifyIncident(context.Background(), "id", testIncident()))
	assert.Equal(t, "42", form["chat_id"])
	assert.Equal(t, "Markdown", form["parse_mode"])
	assert.Contains(t, form["text"], `*Bandits kill 32 in Zamfara\_village*`)
}

func TestNotifyIncidentFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("TOKEN", "42")
	n.apiBase = server.URL
	assert.ErrorContains(t, n.NotifyIncident(context.Background(), "id", testIncident()), "telegram error")

	assert.ErrorContains(t, NewNotifier("", "").NotifyIncident(context.Background(), "id", testIncident()), "misconfigured")
}

func TestFormatIncident(t *testing.T) {
	t.Parallel()

	got := FormatIncident(testIncident())
	assert.Equal(t, "*Bandits kill 32 in Zamfara\\_village*\n"+
		"Maru, Zamfara · 1 Jun 2025 · Banditry\n"+
		"Killed: 32  Injured: 4  Abducted: 0  Severity: Critical\n"+
		"https://news.example/zamfara", got)
}
