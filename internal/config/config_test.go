package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")

	cfg := Load()

	assert.Equal(t, 3, cfg.Classifier.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.Classifier.BaseDelay)
	assert.Equal(t, 1500*time.Millisecond, cfg.Classifier.CallDelay)
	assert.Equal(t, 7, cfg.Dedup.LookbackDays)
	assert.Equal(t, 0.4, cfg.Dedup.ArticleThreshold)
	assert.Equal(t, 100, cfg.Pipeline.MinContentLength)
	assert.NotEmpty(t, cfg.Sites)
	assert.NotNil(t, cfg.Scheduler.Location())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
database:
  dsn: postgres://scanner@db/incidents
classifier:
  provider: chutes
  baseDelay: 3s
dedup:
  lookbackDays: 14
sites:
  - name: Test
    scanner: rss
    categories:
      - name: all
        url: https://example.org/feed
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv(configPathEnv, path)

	cfg := Load()

	assert.Equal(t, "postgres://scanner@db/incidents", cfg.Database.DSN)
	assert.Equal(t, "chutes", cfg.Classifier.Provider)
	assert.Equal(t, 3*time.Second, cfg.Classifier.BaseDelay)
	assert.Equal(t, 3, cfg.Classifier.MaxAttempts, "untouched keys keep defaults")
	assert.Equal(t, 14, cfg.Dedup.LookbackDays)
	require.Len(t, cfg.Sites, 1)
	assert.Equal(t, "Test", cfg.Sites[0].Name)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "postgres://env@db/incidents")
	t.Setenv(aiProviderEnv, "anthropic")
	t.Setenv(anthropicKeyEnv, "secret")
	t.Setenv(lookbackDaysEnv, "10")
	t.Setenv(classifierAttemptsEnv, "4")
	t.Setenv(classifierDelayEnv, "250ms")

	cfg := Load()

	assert.Equal(t, "postgres://env@db/incidents", cfg.Database.DSN)
	assert.Equal(t, "anthropic", cfg.Classifier.Provider)
	assert.Equal(t, "secret", cfg.Providers.Anthropic.APIKey)
	assert.Equal(t, 10, cfg.Dedup.LookbackDays)
	assert.Equal(t, 4, cfg.Classifier.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Classifier.BaseDelay)
}

func TestLoadIgnoresInvalidEnvNumbers(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(lookbackDaysEnv, "soon")

	cfg := Load()

	assert.Equal(t, 7, cfg.Dedup.LookbackDays)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoDatabase)

	cfg.Database.DSN = "postgres://localhost/incidents"
	assert.NoError(t, cfg.Validate())

	cfg.Sites = nil
	assert.ErrorIs(t, cfg.Validate(), ErrNoSites)

	cfg.Sites = []SiteConfig{{Name: "broken", Scanner: "rss", Categories: []CategoryConfig{{Name: "x"}}}}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty url")
}
