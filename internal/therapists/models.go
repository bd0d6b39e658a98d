// Package therapists exposes read models for therapist profiles, recurring
// weekly coverage and approved time off. The engine only reads this data;
// rostering is owned by the admin workflow.
package therapists

import (
	"time"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// Profile is a bookable therapist.
type Profile struct {
	ID             int64
	FullName       string
	Gender         string
	Rating         float64
	HourlyRate     float64
	AfterhoursRate float64
	Active         bool
}

// RateFor picks the applicable hourly rate for an event date. Weekend work
// bills at the after-hours rate when one is configured.
func (p Profile) RateFor(date time.Time) float64 {
	if schedule.IsWeekend(date) && p.AfterhoursRate > 0 {
		return p.AfterhoursRate
	}
	return p.HourlyRate
}

// WeeklyWindow is one recurring coverage window. A therapist may have several
// windows on the same weekday.
type WeeklyWindow struct {
	TherapistID int64
	DayOfWeek   int // 0 = Sunday .. 6 = Saturday
	Start       schedule.TimeOfDay
	End         schedule.TimeOfDay
}

// Covers reports whether the window contains the requested start time.
func (w WeeklyWindow) Covers(start schedule.TimeOfDay) bool {
	return start >= w.Start && start < w.End
}

// TimeOff is an inclusive date-range blackout.
type TimeOff struct {
	ID          int64
	TherapistID int64
	StartDate   time.Time
	EndDate     time.Time
	Active      bool
}

// Spans reports whether the blackout covers the given calendar date.
func (o TimeOff) Spans(date time.Time) bool {
	d := dateOnly(date)
	return !d.Before(dateOnly(o.StartDate)) && !d.After(dateOnly(o.EndDate))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
