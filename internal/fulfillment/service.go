// Package fulfillment drives the quote workflow: sending a quote
// materializes its bookings and recalculated totals in one transaction,
// declining tears the bookings down and releases the therapists' time.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ripplecare/event-therapy-platform/internal/bookings"
	"github.com/ripplecare/event-therapy-platform/internal/observability/metrics"
	"github.com/ripplecare/event-therapy-platform/internal/pricing"
	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

var fulfillmentTracer = otel.Tracer("ripplecare.internal.fulfillment")

// DB supplies the transaction the workflow runs in.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// QuoteStore is the slice of the quotes store the workflow needs.
type QuoteStore interface {
	Get(ctx context.Context, id int64) (*quotes.Quote, error)
	Days(ctx context.Context, quoteID int64) ([]quotes.Day, error)
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id int64, to quotes.Status) error
	UpdateTotalsTx(ctx context.Context, tx pgx.Tx, id int64, total, discount, gst, final float64) error
}

// BookingLedger swaps and releases a quote's booking rows.
type BookingLedger interface {
	DeleteForQuoteTx(ctx context.Context, tx pgx.Tx, quoteID int64) (int64, error)
	InsertBatchTx(ctx context.Context, tx pgx.Tx, batch []bookings.Booking) error
}

// Pricer recalculates quote totals before every send.
type Pricer interface {
	QuoteTotal(ctx context.Context, in pricing.Input) (*pricing.Totals, error)
}

// AssignmentInput is one admin-chosen therapist slot, as posted by the UI.
type AssignmentInput struct {
	Date           string  `json:"date"`
	Start          string  `json:"start_time"`
	TherapistID    int64   `json:"therapist_id"`
	HourlyRate     float64 `json:"hourly_rate"`
	IsOverride     bool    `json:"is_override"`
	OverrideReason string  `json:"override_reason,omitempty"`
}

// SendResult reports what a send produced.
type SendResult struct {
	QuoteID    int64           `json:"quote_id"`
	Status     quotes.Status   `json:"status"`
	BookingIDs []string        `json:"booking_ids"`
	Totals     *pricing.Totals `json:"totals"`
}

// DeclineResult reports how much therapist time a decline released.
type DeclineResult struct {
	QuoteID          int64         `json:"quote_id"`
	Status           quotes.Status `json:"status"`
	BookingsReleased int64         `json:"bookings_released"`
}

// Service is the send/resend/decline workflow.
type Service struct {
	db      DB
	quotes  QuoteStore
	ledger  BookingLedger
	builder *bookings.Materializer
	pricer  Pricer
	metrics *metrics.EngineMetrics
	logger  *logging.Logger
}

func NewService(db DB, qs QuoteStore, ledger BookingLedger, builder *bookings.Materializer, pricer Pricer, m *metrics.EngineMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{db: db, quotes: qs, ledger: ledger, builder: builder, pricer: pricer, metrics: m, logger: logger}
}

// Send moves the quote to sent, recalculates its totals and atomically
// replaces its bookings with the posted assignments. Safe to repeat: each
// run deletes the previous materialization first, so identical input
// produces identical rows.
func (s *Service) Send(ctx context.Context, quoteID int64, inputs []AssignmentInput) (*SendResult, error) {
	ctx, span := fulfillmentTracer.Start(ctx, "fulfillment.send")
	defer span.End()
	span.SetAttributes(attribute.Int64("wellness.quote_id", quoteID))

	quote, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := quotes.Transition(quote.Status, quotes.StatusSent); err != nil {
		return nil, err
	}
	days, err := s.quotes.Days(ctx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	assignments, err := mapAssignments(inputs)
	if err != nil {
		return nil, err
	}

	totals, err := s.pricer.QuoteTotal(ctx, pricing.Input{
		HourlyRate:       quote.HourlyRate,
		Days:             days,
		Arrangement:      quote.ServiceArrangement,
		TherapistsNeeded: quote.TherapistsNeeded,
		DiscountAmount:   quote.DiscountAmount,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("fulfillment: price quote %d: %w", quoteID, err)
	}

	batch, err := s.builder.Build(quoteInfo(quote, totals), dayInfos(days), assignments)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("fulfillment: begin send of quote %d: %w", quoteID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := s.ledger.DeleteForQuoteTx(ctx, tx, quoteID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.ledger.InsertBatchTx(ctx, tx, batch); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.quotes.UpdateTotalsTx(ctx, tx, quoteID, totals.TotalAmount, totals.DiscountAmount, totals.GSTAmount, totals.FinalAmount); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.quotes.UpdateStatusTx(ctx, tx, quoteID, quotes.StatusSent); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("fulfillment: commit send of quote %d: %w", quoteID, err)
	}

	s.metrics.ObserveMaterialized(len(batch))
	ids := make([]string, len(batch))
	for i, b := range batch {
		ids[i] = b.BookingID
	}
	s.logger.Info("quote sent",
		"quote_id", quoteID,
		"bookings", len(ids),
		"final_amount", totals.FinalAmount,
	)
	return &SendResult{QuoteID: quoteID, Status: quotes.StatusSent, BookingIDs: ids, Totals: totals}, nil
}

// Resend re-offers a quote whose assignments or schedule changed. Identical
// to Send apart from the name the API exposes; the status machine's
// sent-to-sent and declined-to-sent edges make it legal.
func (s *Service) Resend(ctx context.Context, quoteID int64, inputs []AssignmentInput) (*SendResult, error) {
	return s.Send(ctx, quoteID, inputs)
}

// Decline moves the quote to declined and deletes its bookings, releasing
// the therapists' time for other quotes.
func (s *Service) Decline(ctx context.Context, quoteID int64) (*DeclineResult, error) {
	ctx, span := fulfillmentTracer.Start(ctx, "fulfillment.decline")
	defer span.End()
	span.SetAttributes(attribute.Int64("wellness.quote_id", quoteID))

	quote, err := s.quotes.Get(ctx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := quotes.Transition(quote.Status, quotes.StatusDeclined); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("fulfillment: begin decline of quote %d: %w", quoteID, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	released, err := s.ledger.DeleteForQuoteTx(ctx, tx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.quotes.UpdateStatusTx(ctx, tx, quoteID, quotes.StatusDeclined); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("fulfillment: commit decline of quote %d: %w", quoteID, err)
	}

	s.logger.Info("quote declined",
		"quote_id", quoteID,
		"bookings_released", released,
	)
	return &DeclineResult{QuoteID: quoteID, Status: quotes.StatusDeclined, BookingsReleased: released}, nil
}

// mapAssignments parses the posted slots into materializer assignments.
func mapAssignments(inputs []AssignmentInput) ([]bookings.Assignment, error) {
	out := make([]bookings.Assignment, 0, len(inputs))
	for i, in := range inputs {
		date, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, fmt.Errorf("fulfillment: assignment %d: bad date %q", i+1, in.Date)
		}
		start, err := schedule.ParseTimeOfDay(in.Start)
		if err != nil {
			return nil, fmt.Errorf("fulfillment: assignment %d: bad start time %q", i+1, in.Start)
		}
		out = append(out, bookings.Assignment{
			Date:           date,
			Start:          start,
			TherapistID:    in.TherapistID,
			HourlyRate:     in.HourlyRate,
			IsOverride:     in.IsOverride,
			OverrideReason: in.OverrideReason,
		})
	}
	return out, nil
}

// quoteInfo snapshots the quote plus freshly computed totals for the
// materializer; the split math always runs against the recalculated money,
// never the stale stored columns.
func quoteInfo(q *quotes.Quote, t *pricing.Totals) bookings.QuoteInfo {
	return bookings.QuoteInfo{
		ID:               q.ID,
		TotalAmount:      t.TotalAmount,
		DiscountAmount:   t.DiscountAmount,
		GSTAmount:        t.GSTAmount,
		Arrangement:      bookings.Arrangement(q.ServiceArrangement),
		TherapistsNeeded: q.TherapistsNeeded,
		CustomerName:     q.CustomerName,
		CustomerEmail:    q.CustomerEmail,
		CustomerPhone:    q.CustomerPhone,
		CompanyName:      q.CompanyName,
		CorporateContact: q.CorporateContact,
	}
}

func dayInfos(days []quotes.Day) []bookings.DayInfo {
	out := make([]bookings.DayInfo, 0, len(days))
	for _, d := range days {
		out = append(out, bookings.DayInfo{Date: d.EventDate, Minutes: d.Minutes()})
	}
	return out
}
