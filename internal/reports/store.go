// Package reports produces the admin pipeline report: quote counts and value
// by workflow status plus the booked workload over a period. Reporting runs
// on the secondary database/sql plane so long aggregate scans never occupy
// the engine's pgx pool.
package reports

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StatusLine is one row of the pipeline breakdown.
type StatusLine struct {
	Status     string  `json:"status"`
	Count      int     `json:"count"`
	FinalValue float64 `json:"final_value"`
}

// Workload summarizes the booked therapist time inside a period.
type Workload struct {
	Bookings      int     `json:"bookings"`
	BookedMinutes int     `json:"booked_minutes"`
	BookedRevenue float64 `json:"booked_revenue"`
	TherapistFees float64 `json:"therapist_fees"`
}

// Pipeline is the full report.
type Pipeline struct {
	From     time.Time    `json:"from"`
	To       time.Time    `json:"to"`
	Statuses []StatusLine `json:"statuses"`
	Workload Workload     `json:"workload"`
}

// Store runs the report queries.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// StatusBreakdown counts quotes created inside [from, to) grouped by status,
// with the summed final amounts.
func (s *Store) StatusBreakdown(ctx context.Context, from, to time.Time) ([]StatusLine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(final_amount), 0)
		FROM quotes
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status
		ORDER BY status`, from, to)
	if err != nil {
		return nil, fmt.Errorf("reports: status breakdown: %w", err)
	}
	defer rows.Close()

	var lines []StatusLine
	for rows.Next() {
		var l StatusLine
		if err := rows.Scan(&l.Status, &l.Count, &l.FinalValue); err != nil {
			return nil, fmt.Errorf("reports: scan status line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reports: iterate status lines: %w", err)
	}
	return lines, nil
}

// BookedWorkload sums the requested and confirmed bookings starting inside
// [from, to).
func (s *Store) BookedWorkload(ctx context.Context, from, to time.Time) (*Workload, error) {
	var w Workload
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(duration_minutes), 0),
		       COALESCE(SUM(net_price), 0),
		       COALESCE(SUM(therapist_fee), 0)
		FROM bookings
		WHERE status IN ('requested', 'confirmed')
		  AND booking_time >= $1 AND booking_time < $2`, from, to).
		Scan(&w.Bookings, &w.BookedMinutes, &w.BookedRevenue, &w.TherapistFees)
	if err != nil {
		return nil, fmt.Errorf("reports: booked workload: %w", err)
	}
	return &w, nil
}

// PipelineReport composes the status breakdown and the booked workload for
// one period.
func (s *Store) PipelineReport(ctx context.Context, from, to time.Time) (*Pipeline, error) {
	statuses, err := s.StatusBreakdown(ctx, from, to)
	if err != nil {
		return nil, err
	}
	workload, err := s.BookedWorkload(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &Pipeline{From: from, To: to, Statuses: statuses, Workload: *workload}, nil
}
