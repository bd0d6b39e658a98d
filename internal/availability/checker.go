// Package availability answers the question at the heart of the quoting
// workflow: for every day of a quote, which therapists are actually free once
// weekly coverage, approved time off and existing buffered bookings are
// accounted for.
package availability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ripplecare/event-therapy-platform/internal/bookings"
	"github.com/ripplecare/event-therapy-platform/internal/observability/metrics"
	"github.com/ripplecare/event-therapy-platform/internal/quotes"
	"github.com/ripplecare/event-therapy-platform/internal/schedule"
	"github.com/ripplecare/event-therapy-platform/internal/settings"
	"github.com/ripplecare/event-therapy-platform/internal/therapists"
	"github.com/ripplecare/event-therapy-platform/pkg/logging"
)

var availabilityTracer = otel.Tracer("ripplecare.internal.availability")

// Human-readable disqualification reasons, shown to admins as-is.
const (
	ReasonNoCoverage      = "Not available on this day/time"
	ReasonTimeOff         = "On approved time off"
	ReasonBookingConflict = "Conflicting booking within buffer"
)

// DayStatus classifies a day (and the overall quote) by how much of the
// required headcount is free.
type DayStatus string

const (
	StatusAvailable   DayStatus = "available"
	StatusPartial     DayStatus = "partial"
	StatusUnavailable DayStatus = "unavailable"
)

// ClassifyDay maps free headcount against required headcount. Raising the
// requirement can only move a day toward unavailable, never back.
func ClassifyDay(available, required int) DayStatus {
	switch {
	case required > 0 && available >= required:
		return StatusAvailable
	case available > 0:
		return StatusPartial
	default:
		return StatusUnavailable
	}
}

// TherapistSlot is one therapist's verdict for one day.
type TherapistSlot struct {
	TherapistID int64   `json:"therapist_id"`
	Name        string  `json:"name"`
	Available   bool    `json:"available"`
	Reason      string  `json:"reason,omitempty"`
	HourlyRate  float64 `json:"hourly_rate,omitempty"`
}

// DayAvailability is the per-day result.
type DayAvailability struct {
	DayNumber  int                `json:"day_number"`
	Date       time.Time          `json:"date"`
	Start      schedule.TimeOfDay `json:"-"`
	StartLabel string             `json:"start_time"`
	Minutes    int                `json:"minutes"`
	Required   int                `json:"required"`
	Available  int                `json:"available"`
	Status     DayStatus          `json:"status"`
	Therapists []TherapistSlot    `json:"therapists"`
}

// QuoteAvailability is the full check result. CheckedAgainst carries the
// quote's updated_at stamp so callers can discard results superseded by a
// later edit.
type QuoteAvailability struct {
	QuoteID              int64             `json:"quote_id"`
	OverallStatus        DayStatus         `json:"overall_status"`
	CanFulfillCompletely bool              `json:"can_fulfill_completely"`
	CheckedAgainst       time.Time         `json:"checked_against"`
	Days                 []DayAvailability `json:"days"`
}

// QuoteSource loads the quote and its schedule days.
type QuoteSource interface {
	Get(ctx context.Context, id int64) (*quotes.Quote, error)
	Days(ctx context.Context, quoteID int64) ([]quotes.Day, error)
}

// Roster reads therapist profiles, weekly coverage and time off.
type Roster interface {
	ListActive(ctx context.Context) ([]therapists.Profile, error)
	WeeklyWindowsFor(ctx context.Context, dayOfWeek int) (map[int64][]therapists.WeeklyWindow, error)
	OnTimeOff(ctx context.Context, date time.Time) (map[int64]bool, error)
}

// LedgerReader reads booked intervals from the booking ledger.
type LedgerReader interface {
	ActiveIntervals(ctx context.Context, from, to time.Time) (map[int64][]schedule.Interval, error)
}

// RateSource reads the configured hourly rates (the cached settings reader).
type RateSource interface {
	Float(ctx context.Context, key string, fallback float64) float64
}

// Checker runs the availability engine. It is a pure read: the result is
// advisory and the booking insert re-validates via the ledger's exclusion
// guard.
type Checker struct {
	quotes  QuoteSource
	roster  Roster
	ledger  LedgerReader
	rates   RateSource
	buffer  time.Duration
	metrics *metrics.EngineMetrics
	logger  *logging.Logger
}

// NewChecker constructs an availability checker with the given conflict
// buffer (30 minutes in production).
func NewChecker(qs QuoteSource, roster Roster, ledger LedgerReader, rates RateSource, buffer time.Duration, m *metrics.EngineMetrics, logger *logging.Logger) *Checker {
	if logger == nil {
		logger = logging.Default()
	}
	return &Checker{
		quotes:  qs,
		roster:  roster,
		ledger:  ledger,
		rates:   rates,
		buffer:  buffer,
		metrics: m,
		logger:  logger,
	}
}

// CheckQuote evaluates every resolvable day of the quote. Days with no
// resolvable time window are skipped, never reported unavailable; a quote
// with no resolvable days comes back with an empty day list.
func (c *Checker) CheckQuote(ctx context.Context, quoteID int64) (*QuoteAvailability, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.check_quote")
	defer span.End()
	span.SetAttributes(attribute.Int64("wellness.quote_id", quoteID))
	started := time.Now()

	quote, err := c.quotes.Get(ctx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	days, err := c.quotes.Days(ctx, quoteID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	result := &QuoteAvailability{
		QuoteID:        quote.ID,
		CheckedAgainst: quote.UpdatedAt,
	}
	for _, day := range days {
		minutes := day.Minutes()
		if minutes <= 0 {
			c.logger.Warn("skipping quote day with no resolvable duration",
				"quote_id", quote.ID,
				"day_number", day.DayNumber,
			)
			continue
		}
		required := requiredTherapists(quote, minutes)
		checked, err := c.checkDay(ctx, day.EventDate, day.Start, minutes, required)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		checked.DayNumber = day.DayNumber
		result.Days = append(result.Days, *checked)
	}

	result.OverallStatus = overallStatus(result.Days)
	result.CanFulfillCompletely = result.OverallStatus == StatusAvailable && len(result.Days) > 0

	c.metrics.ObserveCheck(string(result.OverallStatus), time.Since(started).Seconds())
	span.SetAttributes(attribute.String("wellness.overall_status", string(result.OverallStatus)))
	return result, nil
}

// checkDay runs the three ordered disqualifiers for every active therapist.
// Order is fixed cheapest-first: weekly coverage, then time off, then the
// buffered booking conflict.
func (c *Checker) checkDay(ctx context.Context, date time.Time, start schedule.TimeOfDay, minutes, required int) (*DayAvailability, error) {
	profiles, err := c.roster.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	windows, err := c.roster.WeeklyWindowsFor(ctx, int(date.Weekday()))
	if err != nil {
		return nil, err
	}
	off, err := c.roster.OnTimeOff(ctx, date)
	if err != nil {
		return nil, err
	}

	requested := schedule.NewInterval(start.At(date), minutes)
	// Widen the ledger read a day each side so buffers that straddle
	// midnight still collide.
	booked, err := c.ledger.ActiveIntervals(ctx, requested.Start.AddDate(0, 0, -1), requested.End.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	day := &DayAvailability{
		Date:       date,
		Start:      start,
		StartLabel: start.String(),
		Minutes:    minutes,
		Required:   required,
	}
	for _, p := range profiles {
		slot := TherapistSlot{TherapistID: p.ID, Name: p.FullName}
		switch {
		case !coversStart(windows[p.ID], start):
			slot.Reason = ReasonNoCoverage
			c.metrics.ObserveConflict("no_coverage")
		case off[p.ID]:
			slot.Reason = ReasonTimeOff
			c.metrics.ObserveConflict("time_off")
		case hasBookingConflict(booked[p.ID], requested, c.buffer):
			slot.Reason = ReasonBookingConflict
			c.metrics.ObserveConflict("booking_conflict")
		default:
			slot.Available = true
			slot.HourlyRate = c.slotRate(ctx, date, p)
			day.Available++
		}
		day.Therapists = append(day.Therapists, slot)
	}
	day.Status = ClassifyDay(day.Available, required)
	return day, nil
}

// slotRate attaches the configured business-hours or weekend/after-hours
// rate, falling back to the therapist's own rate when settings are missing.
func (c *Checker) slotRate(ctx context.Context, date time.Time, p therapists.Profile) float64 {
	key := settings.KeyBusinessHourlyRate
	if schedule.IsWeekend(date) {
		key = settings.KeyAfterhoursHourlyRate
	}
	if c.rates == nil {
		return p.RateFor(date)
	}
	return c.rates.Float(ctx, key, p.RateFor(date))
}

// requiredTherapists applies the explicit headcount, else the legacy
// fallback: engagements over four hours take two therapists, shorter ones
// take one.
func requiredTherapists(quote *quotes.Quote, minutes int) int {
	if quote.TherapistsNeeded >= 1 {
		return quote.TherapistsNeeded
	}
	if float64(minutes)/60 > 4 {
		return 2
	}
	return 1
}

func overallStatus(days []DayAvailability) DayStatus {
	if len(days) == 0 {
		return StatusUnavailable
	}
	allAvailable := true
	anyPartial := false
	for _, d := range days {
		if d.Status != StatusAvailable {
			allAvailable = false
		}
		if d.Status != StatusUnavailable {
			anyPartial = true
		}
	}
	switch {
	case allAvailable:
		return StatusAvailable
	case !anyPartial:
		return StatusUnavailable
	default:
		return StatusPartial
	}
}

func coversStart(windows []therapists.WeeklyWindow, start schedule.TimeOfDay) bool {
	for _, w := range windows {
		if w.Covers(start) {
			return true
		}
	}
	return false
}

func hasBookingConflict(booked []schedule.Interval, requested schedule.Interval, buffer time.Duration) bool {
	for _, iv := range booked {
		if schedule.Conflicts(requested, iv, buffer) {
			return true
		}
	}
	return false
}

var _ LedgerReader = (*bookings.Ledger)(nil)
