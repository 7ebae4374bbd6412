package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"IncidentScanner/internal/domain"
	"IncidentScanner/internal/ports"
)

const (
	incidentsTable    = "incidents"
	uniqueViolation   = "23505"
	unknownLocalArea  = "Unknown"
	defaultFetchLimit = 1000
)

// ErrConflict is returned when an incident with the same source URL already exists.
var ErrConflict = ports.ErrConflict

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// IncidentRepository persists incidents into Postgres.
type IncidentRepository struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

var _ ports.IncidentStore = (*IncidentRepository)(nil)

// NewIncidentRepository wraps a sql.DB opened with the postgres driver.
func NewIncidentRepository(db *sql.DB) *IncidentRepository {
	return &IncidentRepository{
		db:    sqlx.NewDb(db, "postgres"),
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

type summaryRow struct {
	ID         string    `db:"id"`
	Title      string    `db:"title"`
	Date       time.Time `db:"date"`
	State      string    `db:"state"`
	Fatalities int       `db:"fatalities"`
	Injuries   int       `db:"injuries"`
	Kidnapped  int       `db:"kidnapped"`
}

// FetchRecent returns incidents dated on or after since, newest first.
func (r *IncidentRepository) FetchRecent(ctx context.Context, since time.Time) ([]domain.IncidentSummary, error) {
	query, args, err := psql.
		Select("id", "title", "date", "state", "fatalities", "injuries", "kidnapped").
		From(incidentsTable).
		Where(sq.GtOrEq{"date": since.UTC().Format("2006-01-02")}).
		OrderBy("date DESC").
		Limit(defaultFetchLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build fetch query: %w", err)
	}

	var rows []summaryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("fetch recent incidents: %w", err)
	}

	out := make([]domain.IncidentSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.IncidentSummary{
			ID:         row.ID,
			Title:      row.Title,
			OccurredAt: row.Date,
			State:      row.State,
			Fatalities: row.Fatalities,
			Injuries:   row.Injuries,
			Abducted:   row.Kidnapped,
		})
	}
	return out, nil
}

// Insert stores one incident and returns its generated id.
func (r *IncidentRepository) Insert(ctx context.Context, incident domain.CandidateIncident) (string, error) {
	id := r.newID()

	lga := incident.LocalArea
	if lga == "" {
		lga = unknownLocalArea
	}
	sources := incident.Sources
	if sources == nil {
		sources = []string{}
	}
	occurred := incident.OccurredAt
	if occurred.IsZero() {
		occurred = r.now()
	}

	query, args, err := psql.
		Insert(incidentsTable).
		Columns(
			"id", "title", "description", "date", "state", "lga", "lat", "lng",
			"fatalities", "injuries", "kidnapped", "incident_type", "severity",
			"source_url", "verified", "sources",
		).
		Values(
			id, incident.Title, incident.Summary, occurred.UTC().Format("2006-01-02"), incident.State, lga,
			incident.Coordinates.Lat, incident.Coordinates.Lng,
			incident.Fatalities, incident.Injuries, incident.Abducted,
			string(incident.IncidentType), string(incident.Severity),
			incident.SourceURL, incident.Verified, pq.Array(sources),
		).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build insert query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", fmt.Errorf("insert incident %s: %w", incident.SourceURL, ErrConflict)
		}
		return "", fmt.Errorf("insert incident: %w", err)
	}
	return id, nil
}
