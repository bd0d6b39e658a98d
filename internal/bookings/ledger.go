package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// DB abstracts the pgx query interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Ledger is the booking store. Rows for a quote are only ever replaced as a
// whole batch; the bookings_no_overlap exclusion constraint rejects inserts
// that would double-book a therapist across any quote.
type Ledger struct {
	db DB
}

// NewLedger creates a booking ledger over a pgx pool.
func NewLedger(db DB) *Ledger {
	return &Ledger{db: db}
}

const insertBookingSQL = `
	INSERT INTO bookings (
		booking_id, parent_quote_id, quote_day_number, therapist_id,
		booking_time, duration_minutes, status,
		price, therapist_fee, net_price, discount_amount, tax_rate_amount, gift_card_amount,
		customer_name, customer_email, customer_phone
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`

// DeleteForQuoteTx removes all bookings for a quote inside the caller's
// transaction, returning the number of rows released.
func (l *Ledger) DeleteForQuoteTx(ctx context.Context, tx pgx.Tx, quoteID int64) (int64, error) {
	tag, err := tx.Exec(ctx, `DELETE FROM bookings WHERE parent_quote_id = $1`, quoteID)
	if err != nil {
		return 0, fmt.Errorf("bookings: delete for quote %d: %w", quoteID, err)
	}
	return tag.RowsAffected(), nil
}

// InsertBatchTx inserts the batch inside the caller's transaction. A
// constraint rejection on any row aborts the whole batch.
func (l *Ledger) InsertBatchTx(ctx context.Context, tx pgx.Tx, batch []Booking) error {
	for _, b := range batch {
		_, err := tx.Exec(ctx, insertBookingSQL,
			b.BookingID, b.ParentQuoteID, b.QuoteDayNumber, b.TherapistID,
			b.BookingTime, b.DurationMinutes, b.Status,
			b.Price, b.TherapistFee, b.NetPrice, b.DiscountAmount, b.TaxRateAmount, b.GiftCardAmount,
			b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		)
		if err != nil {
			if isSlotConflict(err) {
				return fmt.Errorf("bookings: insert %s: %w", b.BookingID, ErrSlotTaken)
			}
			return fmt.Errorf("bookings: insert %s: %w", b.BookingID, err)
		}
	}
	return nil
}

// ReplaceForQuote atomically swaps a quote's bookings for the given batch.
// A reader never observes the quote with zero bookings mid-update.
func (l *Ledger) ReplaceForQuote(ctx context.Context, quoteID int64, batch []Booking) error {
	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("bookings: begin replace for quote %d: %w", quoteID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := l.DeleteForQuoteTx(ctx, tx, quoteID); err != nil {
		return err
	}
	if err := l.InsertBatchTx(ctx, tx, batch); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("bookings: commit replace for quote %d: %w", quoteID, err)
	}
	return nil
}

// ActiveIntervals returns the booked windows of every therapist whose
// requested or confirmed bookings start inside [from, to), keyed by
// therapist id. The window is widened by the caller to cover buffers.
func (l *Ledger) ActiveIntervals(ctx context.Context, from, to time.Time) (map[int64][]schedule.Interval, error) {
	rows, err := l.db.Query(ctx, `
		SELECT therapist_id, booking_time, duration_minutes
		FROM bookings
		WHERE status IN ('requested', 'confirmed')
		  AND booking_time >= $1 AND booking_time < $2`, from, to)
	if err != nil {
		return nil, fmt.Errorf("bookings: active intervals: %w", err)
	}
	defer rows.Close()

	intervals := make(map[int64][]schedule.Interval)
	for rows.Next() {
		var (
			therapistID int64
			start       time.Time
			minutes     int
		)
		if err := rows.Scan(&therapistID, &start, &minutes); err != nil {
			return nil, fmt.Errorf("bookings: scan interval: %w", err)
		}
		intervals[therapistID] = append(intervals[therapistID], schedule.NewInterval(start, minutes))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate intervals: %w", err)
	}
	return intervals, nil
}

// ListForQuote returns a quote's bookings ordered by day then start time.
func (l *Ledger) ListForQuote(ctx context.Context, quoteID int64) ([]Booking, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, booking_id, parent_quote_id, quote_day_number, therapist_id,
		       booking_time, duration_minutes, status,
		       price, therapist_fee, net_price, discount_amount, tax_rate_amount, gift_card_amount,
		       customer_name, customer_email, customer_phone, created_at
		FROM bookings
		WHERE parent_quote_id = $1
		ORDER BY quote_day_number, booking_time, id`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("bookings: list for quote %d: %w", quoteID, err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(&b.ID, &b.BookingID, &b.ParentQuoteID, &b.QuoteDayNumber, &b.TherapistID,
			&b.BookingTime, &b.DurationMinutes, &b.Status,
			&b.Price, &b.TherapistFee, &b.NetPrice, &b.DiscountAmount, &b.TaxRateAmount, &b.GiftCardAmount,
			&b.CustomerName, &b.CustomerEmail, &b.CustomerPhone, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan booking: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate bookings: %w", err)
	}
	return out, nil
}

// isSlotConflict matches the exclusion (23P01) and unique (23505) violations
// raised by the no-overlap guard.
func isSlotConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23P01" || pgErr.Code == "23505"
	}
	return false
}
