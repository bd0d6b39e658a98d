package bookings

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

var bookingsTracer = otel.Tracer("ripplecare.internal.bookings")

// Materializer converts a quote plus finalized assignments into booking rows
// and persists them through the ledger. Computation is deterministic: the
// same inputs produce the same rows, field for field.
type Materializer struct {
	ledger *Ledger
	mode   SplitMode
	logger *logging.Logger
}

// NewMaterializer constructs a materializer. mode selects the money-share
// divisor; see SplitMode.
func NewMaterializer(ledger *Ledger, mode SplitMode, logger *logging.Logger) *Materializer {
	if mode != SplitByDay {
		mode = SplitByQuote
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Materializer{ledger: ledger, mode: mode, logger: logger}
}

// Build computes the booking batch without touching the store. Exposed so
// the workflow can persist the batch inside its own transaction and so the
// result can be inspected in tests.
func (m *Materializer) Build(quote QuoteInfo, days []DayInfo, assignments []Assignment) ([]Booking, error) {
	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}
	if quote.TotalAmount <= 0 || !hasResolvableDuration(days) {
		return nil, ErrQuoteIncomplete
	}

	// Day numbering follows first-seen order of distinct dates in the
	// assignment list. Input order is load-bearing: booking ids must be
	// stable across re-materialization of the same plan.
	dayNumbers := make(map[string]int)
	perDayCount := make(map[string]int)
	for _, a := range assignments {
		key := dayKey(a.Date)
		if _, seen := dayNumbers[key]; !seen {
			dayNumbers[key] = len(dayNumbers) + 1
		}
		perDayCount[key]++
	}

	avgMinutes := averageMinutes(days)
	minutesByDay := make(map[string]int, len(days))
	for _, d := range days {
		minutesByDay[dayKey(d.Date)] = d.Minutes
	}

	name := quote.contactName()
	total := len(assignments)
	perDayIndex := make(map[string]int)

	out := make([]Booking, 0, total)
	for _, a := range assignments {
		key := dayKey(a.Date)
		perDayIndex[key]++

		dayMinutes, matched := minutesByDay[key]
		if !matched {
			dayMinutes = avgMinutes
			m.logger.Warn("assignment date not in quote schedule, using average duration",
				"quote_id", quote.ID,
				"date", key,
				"avg_minutes", avgMinutes,
			)
		}

		duration := dayMinutes
		if quote.Arrangement != ArrangementMultiply {
			duration = dayMinutes / perDayCount[key]
		}

		divisor := total
		if m.mode == SplitByDay {
			divisor = perDayCount[key]
		}
		price := schedule.RoundCents(quote.TotalAmount / float64(divisor))
		discount := schedule.RoundCents(quote.DiscountAmount / float64(divisor))
		gst := schedule.RoundCents(quote.GSTAmount / float64(divisor))
		giftCard := schedule.RoundCents(quote.GiftCardAmount / float64(divisor))

		fee := schedule.Fee(duration, a.HourlyRate)
		if a.HourlyRate <= 0 {
			m.logger.Warn("therapist assignment has zero hourly rate",
				"quote_id", quote.ID,
				"therapist_id", a.TherapistID,
				"date", key,
			)
		}

		out = append(out, Booking{
			BookingID:       fmt.Sprintf("BK-%d-%d-%d", quote.ID, dayNumbers[key], perDayIndex[key]),
			ParentQuoteID:   quote.ID,
			QuoteDayNumber:  dayNumbers[key],
			TherapistID:     a.TherapistID,
			BookingTime:     a.Start.At(a.Date).UTC(),
			DurationMinutes: duration,
			Status:          StatusRequested,
			Price:           price,
			TherapistFee:    fee,
			NetPrice:        schedule.RoundCents(price - discount),
			DiscountAmount:  discount,
			TaxRateAmount:   gst,
			GiftCardAmount:  giftCard,
			CustomerName:    name,
			CustomerEmail:   quote.CustomerEmail,
			CustomerPhone:   quote.CustomerPhone,
		})
	}
	return out, nil
}

// Materialize builds the batch and replaces the quote's ledger rows in one
// transaction. Returns the generated human-readable booking ids.
func (m *Materializer) Materialize(ctx context.Context, quote QuoteInfo, days []DayInfo, assignments []Assignment) ([]string, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.materialize")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("wellness.quote_id", quote.ID),
		attribute.Int("wellness.assignment_count", len(assignments)),
	)

	batch, err := m.Build(quote, days, assignments)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := m.ledger.ReplaceForQuote(ctx, quote.ID, batch); err != nil {
		span.RecordError(err)
		return nil, err
	}

	ids := make([]string, len(batch))
	for i, b := range batch {
		ids[i] = b.BookingID
	}
	m.logger.Info("bookings materialized",
		"quote_id", quote.ID,
		"bookings", len(ids),
	)
	return ids, nil
}

func hasResolvableDuration(days []DayInfo) bool {
	for _, d := range days {
		if d.Minutes > 0 {
			return true
		}
	}
	return false
}

func averageMinutes(days []DayInfo) int {
	if len(days) == 0 {
		return 0
	}
	sum := 0
	for _, d := range days {
		sum += d.Minutes
	}
	return sum / len(days)
}

func dayKey(date time.Time) string {
	return date.Format("2006-01-02")
}
