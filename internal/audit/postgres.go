// Package audit records every generated estimation report in Postgres so
// estimates handed to customers can be traced back later. The log is
// best-effort: a failed write never fails the request that produced it.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"ace-estimator/pkg/api"
)

// Entry is one audited estimate.
type Entry struct {
	ID                int64     `json:"id"`
	ProjectID         string    `json:"project_id"`
	ProjectName       string    `json:"project_name"`
	TotalDays         float64   `json:"total_days"`
	FinalDays         float64   `json:"final_days"`
	AdjustmentCapped  bool      `json:"adjustment_capped"`
	OverallRiskLevel  string    `json:"overall_risk_level"`
	OverallConfidence float64   `json:"overall_confidence"`
	CreatedAt         time.Time `json:"created_at"`
}

// Log is the estimate audit trail.
type Log struct {
	db *sql.DB
}

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*Log, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &Log{db: db}, nil
}

// Ping checks database connectivity.
func (l *Log) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (l *Log) Close() error {
	return l.db.Close()
}

// EnsureSchema creates the audit table if missing.
func (l *Log) EnsureSchema(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS estimate_audit (
			id                 BIGSERIAL PRIMARY KEY,
			project_id         TEXT NOT NULL,
			project_name       TEXT NOT NULL DEFAULT '',
			total_days         DOUBLE PRECISION NOT NULL,
			final_days         DOUBLE PRECISION NOT NULL,
			adjustment_capped  BOOLEAN NOT NULL DEFAULT FALSE,
			overall_risk_level TEXT NOT NULL,
			overall_confidence DOUBLE PRECISION NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}
	return nil
}

// Record appends a generated report to the audit trail.
func (l *Log) Record(ctx context.Context, report api.EstimationReport) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO estimate_audit (
			project_id, project_name, total_days, final_days,
			adjustment_capped, overall_risk_level, overall_confidence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		report.ProjectID,
		report.ProjectName,
		report.Totals.TotalDays,
		report.Adjusted.FinalDays,
		report.Adjusted.AdjustmentCapped,
		report.RiskAssessment.OverallRiskLevel,
		report.OverallConfidence,
		report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record estimate: %w", err)
	}
	return nil
}

// Recent returns the most recently audited estimates, newest first.
func (l *Log) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, project_id, project_name, total_days, final_days,
		       adjustment_capped, overall_risk_level, overall_confidence, created_at
		FROM estimate_audit
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit trail: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.ProjectID, &e.ProjectName, &e.TotalDays, &e.FinalDays,
			&e.AdjustmentCapped, &e.OverallRiskLevel, &e.OverallConfidence, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}
	return entries, nil
}
