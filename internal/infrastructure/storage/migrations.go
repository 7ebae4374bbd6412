package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS incidents (
  id UUID PRIMARY KEY,
  title TEXT NOT NULL,
  description TEXT,
  date DATE NOT NULL,
  state TEXT NOT NULL,
  lga TEXT,
  lat DOUBLE PRECISION,
  lng DOUBLE PRECISION,
  fatalities INTEGER NOT NULL DEFAULT 0 CHECK (fatalities >= 0),
  injuries INTEGER NOT NULL DEFAULT 0 CHECK (injuries >= 0),
  kidnapped INTEGER NOT NULL DEFAULT 0 CHECK (kidnapped >= 0),
  incident_type TEXT,
  severity TEXT,
  source_url TEXT UNIQUE,
  verified BOOLEAN NOT NULL DEFAULT FALSE,
  sources TEXT[] NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_incidents_date ON incidents(date);
CREATE INDEX IF NOT EXISTS idx_incidents_state ON incidents(state);
`

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// RunMigrations creates the incidents table and its indexes when missing.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
