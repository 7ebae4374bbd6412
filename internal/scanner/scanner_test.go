package scanner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentScanner/internal/domain"
)

type stubScanner struct{ name string }

func (s stubScanner) Name() string { return s.name }

func (s stubScanner) Scan(context.Context, Request) ([]domain.Article, error) { return nil, nil }

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(stubScanner{name: "rss"})

	got, err := reg.Resolve("rss")
	require.NoError(t, err)
	assert.Equal(t, "rss", got.Name())

	_, err = reg.Resolve("html")
	assert.EqualError(t, err, "scanner html is not registered")

	var zero Registry
	zero.Register(stubScanner{name: "late"})
	_, err = zero.Resolve("late")
	assert.NoError(t, err)
}

func TestRequestOptions(t *testing.T) {
	t.Parallel()

	req := Request{Options: map[string]string{
		"days":      "3",
		"paged":     "true",
		"pageDelay": "250ms",
		"bad":       "x",
		"selector":  "article p",
	}}

	assert.Equal(t, 3, req.Int("days", 1))
	assert.Equal(t, 7, req.Int("bad", 7))
	assert.Equal(t, 9, req.Int("missing", 9))
	assert.True(t, req.Bool("paged", false))
	assert.False(t, req.Bool("bad", false))
	assert.Equal(t, 250*time.Millisecond, req.Duration("pageDelay", 0))
	assert.Equal(t, "article p", req.String("selector", ""))
	assert.Equal(t, "def", req.String("missing", "def"))
}
