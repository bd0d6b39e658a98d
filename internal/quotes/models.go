// Package quotes owns the quote aggregate: the multi-day event request, its
// per-day schedule and the workflow status machine. The send/resend/decline
// workflow that drives it lives in internal/fulfillment.
package quotes

import (
	"time"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// EventStructure discriminates single-day and multi-day engagements. A
// single-day quote carries exactly one schedule day so the engine has one
// code path.
type EventStructure string

const (
	SingleDay EventStructure = "single_day"
	MultiDay  EventStructure = "multi_day"
)

// Arrangement is the staffing policy: split divides a day's hours across the
// assigned therapists, multiply has each therapist work the full day.
type Arrangement string

const (
	ArrangementSplit    Arrangement = "split"
	ArrangementMultiply Arrangement = "multiply"
)

// Quote is an aggregate request for a multi-day service engagement.
type Quote struct {
	ID               int64
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	CompanyName      string
	CorporateContact string

	EventStructure     EventStructure
	TherapistsNeeded   int
	ServiceArrangement Arrangement

	HourlyRate     float64
	TotalAmount    float64
	DiscountAmount float64
	GSTAmount      float64
	FinalAmount    float64

	Status     Status
	AcceptedAt *time.Time
	DeclinedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ContactName returns the name to snapshot onto bookings. The corporate
// contact wins over the personal one when a company name is present.
func (q Quote) ContactName() string {
	if q.CompanyName != "" && q.CorporateContact != "" {
		return q.CorporateContact
	}
	return q.CustomerName
}

// Day is one calendar day of the engagement with its own time window.
type Day struct {
	ID              int64
	QuoteID         int64
	EventDate       time.Time
	Start           schedule.TimeOfDay
	Finish          schedule.TimeOfDay
	DurationMinutes int
	SessionsCount   int
	DayNumber       int
}

// Minutes resolves the day's duration by the hybrid rule (stored duration
// wins, else finish minus start).
func (d Day) Minutes() int {
	return schedule.DayMinutes(d.DurationMinutes, d.Start, d.Finish)
}

// StartAt anchors the day's start time on its event date.
func (d Day) StartAt() time.Time {
	return d.Start.At(d.EventDate)
}

// Interval is the day's booked window.
func (d Day) Interval() schedule.Interval {
	return schedule.NewInterval(d.StartAt(), d.Minutes())
}
