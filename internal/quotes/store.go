package quotes

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// DB abstracts the pgx query interface for testing. Begin is required by the
// workflow service so booking teardown and status changes share one
// transaction.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides persistence for quotes and quote days.
type Store struct {
	db DB
}

// NewStore creates a quotes store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Get loads a quote by id.
func (s *Store) Get(ctx context.Context, id int64) (*Quote, error) {
	var q Quote
	err := s.db.QueryRow(ctx, `
		SELECT id, customer_name, customer_email, customer_phone, company_name, corporate_contact,
		       event_structure, therapists_needed, service_arrangement,
		       hourly_rate, total_amount, discount_amount, gst_amount, final_amount,
		       status, accepted_at, declined_at, created_at, updated_at
		FROM quotes
		WHERE id = $1`, id).
		Scan(&q.ID, &q.CustomerName, &q.CustomerEmail, &q.CustomerPhone, &q.CompanyName, &q.CorporateContact,
			&q.EventStructure, &q.TherapistsNeeded, &q.ServiceArrangement,
			&q.HourlyRate, &q.TotalAmount, &q.DiscountAmount, &q.GSTAmount, &q.FinalAmount,
			&q.Status, &q.AcceptedAt, &q.DeclinedAt, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("quotes: load quote %d: %w", id, err)
	}
	return &q, nil
}

// Days returns the quote's schedule days ordered by day number. Clock times
// that fail to parse are left zero; the stored duration still applies.
func (s *Store) Days(ctx context.Context, quoteID int64) ([]Day, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, quote_id, event_date, start_time, finish_time, duration_minutes, sessions_count, day_number
		FROM quote_dates
		WHERE quote_id = $1
		ORDER BY day_number`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("quotes: load days for quote %d: %w", quoteID, err)
	}
	defer rows.Close()

	var days []Day
	for rows.Next() {
		var (
			d         Day
			startRaw  string
			finishRaw string
		)
		if err := rows.Scan(&d.ID, &d.QuoteID, &d.EventDate, &startRaw, &finishRaw, &d.DurationMinutes, &d.SessionsCount, &d.DayNumber); err != nil {
			return nil, fmt.Errorf("quotes: scan day: %w", err)
		}
		if start, err := schedule.ParseTimeOfDay(startRaw); err == nil {
			d.Start = start
		}
		if finish, err := schedule.ParseTimeOfDay(finishRaw); err == nil {
			d.Finish = finish
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("quotes: iterate days: %w", err)
	}
	return days, nil
}

// UpdateStatusTx moves the quote to a new status inside the caller's
// transaction. Entering sent clears the accepted/declined flags (re-offer);
// entering declined stamps declined_at.
func (s *Store) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, to Status) error {
	var (
		tag pgconn.CommandTag
		err error
	)
	now := time.Now().UTC()
	switch to {
	case StatusSent:
		tag, err = tx.Exec(ctx, `
			UPDATE quotes
			SET status = $2, accepted_at = NULL, declined_at = NULL, updated_at = $3
			WHERE id = $1`, id, to, now)
	case StatusDeclined:
		tag, err = tx.Exec(ctx, `
			UPDATE quotes
			SET status = $2, declined_at = $3, updated_at = $3
			WHERE id = $1`, id, to, now)
	default:
		tag, err = tx.Exec(ctx, `
			UPDATE quotes
			SET status = $2, updated_at = $3
			WHERE id = $1`, id, to, now)
	}
	if err != nil {
		return fmt.Errorf("quotes: update status of %d to %s: %w", id, to, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("quotes: update status of %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// UpdateTotalsTx persists recalculated financial fields on the quote inside
// the caller's transaction, so totals never land without the matching status
// change and booking swap.
func (s *Store) UpdateTotalsTx(ctx context.Context, tx pgx.Tx, id int64, total, discount, gst, final float64) error {
	_, err := tx.Exec(ctx, `
		UPDATE quotes
		SET total_amount = $2, discount_amount = $3, gst_amount = $4, final_amount = $5, updated_at = $6
		WHERE id = $1`, id, total, discount, gst, final, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("quotes: update totals of %d: %w", id, err)
	}
	return nil
}
