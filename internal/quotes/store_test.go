package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestGetQuote(t *testing.T) {
	mock := newMock(t)
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT id, customer_name, customer_email`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "customer_name", "customer_email", "customer_phone", "company_name", "corporate_contact",
			"event_structure", "therapists_needed", "service_arrangement",
			"hourly_rate", "total_amount", "discount_amount", "gst_amount", "final_amount",
			"status", "accepted_at", "declined_at", "created_at", "updated_at",
		}).AddRow(
			int64(42), "Dana Li", "dana@example.com", "0400000000", "Acme Pty Ltd", "Priya Shah",
			string(MultiDay), 2, string(ArrangementSplit),
			90.0, 594.0, 0.0, 54.0, 594.0,
			string(StatusSent), (*time.Time)(nil), (*time.Time)(nil), now, now,
		))

	store := NewStore(mock)
	q, err := store.Get(context.Background(), 42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if q.CompanyName != "Acme Pty Ltd" || q.Status != StatusSent {
		t.Errorf("unexpected quote: %+v", q)
	}
	if q.ContactName() != "Priya Shah" {
		t.Errorf("contact = %q, want the corporate contact", q.ContactName())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDaysToleratesMalformedTimes(t *testing.T) {
	mock := newMock(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM quote_dates`).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "quote_id", "event_date", "start_time", "finish_time", "duration_minutes", "sessions_count", "day_number",
		}).
			AddRow(int64(1), int64(42), date, "10:00", "13:00", 0, 0, 1).
			AddRow(int64(2), int64(42), date.AddDate(0, 0, 1), "junk", "junk", 240, 0, 2))

	store := NewStore(mock)
	days, err := store.Days(context.Background(), 42)
	if err != nil {
		t.Fatalf("Days failed: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	// Clock window resolves the first day, stored duration the second.
	if got := days[0].Minutes(); got != 180 {
		t.Errorf("day 1 minutes = %d, want 180", got)
	}
	if got := days[1].Minutes(); got != 240 {
		t.Errorf("day 2 minutes = %d, want the stored duration", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusTxSentClearsDecisionStamps(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`SET status = \$2, accepted_at = NULL, declined_at = NULL`).
		WithArgs(int64(42), StatusSent, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	tx, err := mock.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.UpdateStatusTx(context.Background(), tx, 42, StatusSent); err != nil {
		t.Fatalf("UpdateStatusTx failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusTxDeclinedStampsDeclinedAt(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`SET status = \$2, declined_at = \$3`).
		WithArgs(int64(42), StatusDeclined, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	tx, err := mock.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.UpdateStatusTx(context.Background(), tx, 42, StatusDeclined); err != nil {
		t.Fatalf("UpdateStatusTx failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestUpdateStatusTxMissingQuote(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE quotes`).
		WithArgs(int64(99), StatusPaid, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	store := NewStore(mock)
	tx, err := mock.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = store.UpdateStatusTx(context.Background(), tx, 99, StatusPaid)
	if !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("err = %v, want wrapped pgx.ErrNoRows", err)
	}
}

func TestUpdateTotalsTx(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`SET total_amount = \$2, discount_amount = \$3, gst_amount = \$4, final_amount = \$5`).
		WithArgs(int64(42), 594.0, 0.0, 54.0, 594.0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	tx, err := mock.Begin(context.Background())
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := store.UpdateTotalsTx(context.Background(), tx, 42, 594, 0, 54, 594); err != nil {
		t.Fatalf("UpdateTotalsTx failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
