// Package bookings materializes a quote's therapist assignments into
// persisted, billable booking rows and owns the booking ledger. Bookings are
// a materialized view over {quote, schedule days, assignments}: the ledger is
// torn down and rebuilt whenever assignments change, never edited in place.
package bookings

import (
	"errors"
	"time"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// Arrangement mirrors the quote staffing policy without importing the quotes
// package; the workflow layer maps between the two.
type Arrangement string

const (
	ArrangementSplit    Arrangement = "split"
	ArrangementMultiply Arrangement = "multiply"
)

// SplitMode selects the divisor for per-assignment money shares: the
// whole-quote assignment count (default, matches invoice parity across
// sessions) or the per-day count.
type SplitMode string

const (
	SplitByQuote SplitMode = "quote"
	SplitByDay   SplitMode = "day"
)

// Booking statuses. Only requested and confirmed hold therapist time.
const (
	StatusRequested = "requested"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Validation sentinels; messages are shown to the admin as-is.
var (
	ErrNoAssignments   = errors.New("No therapist assignments provided")
	ErrQuoteIncomplete = errors.New("Quote missing required financial or duration data")

	// ErrSlotTaken surfaces the exclusion constraint on overlapping
	// therapist bookings.
	ErrSlotTaken = errors.New("bookings: therapist already booked for an overlapping slot")
)

// QuoteInfo is the read-only slice of the quote the materializer needs.
type QuoteInfo struct {
	ID             int64
	TotalAmount    float64
	DiscountAmount float64
	GSTAmount      float64
	GiftCardAmount float64

	Arrangement      Arrangement
	TherapistsNeeded int

	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	CompanyName      string
	CorporateContact string
}

// contactName applies the corporate-over-personal snapshot rule.
func (q QuoteInfo) contactName() string {
	if q.CompanyName != "" && q.CorporateContact != "" {
		return q.CorporateContact
	}
	return q.CustomerName
}

// DayInfo is one resolved schedule day (minutes already run through the
// hybrid duration rule).
type DayInfo struct {
	Date    time.Time
	Minutes int
}

// Assignment is the admin's working unit: one therapist on one day/time.
type Assignment struct {
	Date           time.Time
	Start          schedule.TimeOfDay
	TherapistID    int64
	HourlyRate     float64
	IsOverride     bool
	OverrideReason string
}

// Booking is the persisted, billable unit.
type Booking struct {
	ID              int64
	BookingID       string
	ParentQuoteID   int64
	QuoteDayNumber  int
	TherapistID     int64
	BookingTime     time.Time
	DurationMinutes int
	Status          string

	Price          float64
	TherapistFee   float64
	NetPrice       float64
	DiscountAmount float64
	TaxRateAmount  float64
	GiftCardAmount float64

	CustomerName  string
	CustomerEmail string
	CustomerPhone string

	CreatedAt time.Time
}

// Interval is the booked window, without buffer.
func (b Booking) Interval() schedule.Interval {
	return schedule.NewInterval(b.BookingTime, b.DurationMinutes)
}
