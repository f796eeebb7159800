package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"deal-search/models"
)

// PostgresWriter archives captured leads in PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS leads (
			id          SERIAL PRIMARY KEY,
			name        TEXT        NOT NULL,
			email       TEXT        NOT NULL,
			company     TEXT        NOT NULL,
			phone       TEXT        NOT NULL,
			role        TEXT        NOT NULL,
			timeline    TEXT        NOT NULL,
			quantity    TEXT        NOT NULL,
			notes       TEXT        NOT NULL DEFAULT '',
			received_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_leads_email       ON leads(email);
		CREATE INDEX IF NOT EXISTS idx_leads_received_at ON leads(received_at);
	`)
	return err
}

// WriteLead inserts one lead row.
func (pw *PostgresWriter) WriteLead(ctx context.Context, l *models.Lead) error {
	_, err := pw.db.ExecContext(ctx, `
		INSERT INTO leads (name, email, company, phone, role, timeline, quantity, notes, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, l.Name, l.Email, l.Company, l.Phone, l.Role, l.Timeline, l.Quantity, l.Notes, l.ReceivedAt)
	if err != nil {
		return fmt.Errorf("postgres: insert lead: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
