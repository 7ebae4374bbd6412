package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"IncidentScanner/internal/config"
	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/logging"
)

func TestAcceptedTypesSkipsUnknown(t *testing.T) {
	t.Parallel()

	got := acceptedTypes([]string{"terrorism", " Banditry ", "Robbery", "Unknown Gunmen"}, logging.Discard())
	assert.Equal(t, []domain.IncidentType{domain.TypeTerrorism, domain.TypeBanditry, domain.TypeUnknownGunmen}, got)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	_, err := New(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrNoSites)
	assert.ErrorIs(t, err, config.ErrNoDatabase)
}

func TestCloseWithoutResources(t *testing.T) {
	t.Parallel()

	a := &Application{logger: logging.Discard()}
	assert.NoError(t, a.Close())
}
