// Package schedule provides the time primitives shared by the availability
// checker, the financial calculator and the booking materializer: clock-time
// parsing, buffered interval overlap, weekend classification and the hybrid
// day-duration rule.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" (seconds tolerated and ignored) into a TimeOfDay.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("schedule: invalid time of day %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("schedule: invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("schedule: invalid minute in %q", raw)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// Minutes returns the value as whole minutes since midnight.
func (t TimeOfDay) Minutes() int { return int(t) }

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// At anchors the clock time on the given calendar date, in that date's location.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(t)/60, int(t)%60, 0, 0, date.Location())
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval builds an interval from a start instant and a duration in minutes.
func NewInterval(start time.Time, minutes int) Interval {
	return Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}

// Conflicts reports whether two intervals collide once the buffer is added to
// both sides of both intervals. The check is symmetric in its arguments.
func Conflicts(a, b Interval, buffer time.Duration) bool {
	aStart := a.Start.Add(-buffer)
	aEnd := a.End.Add(buffer)
	bStart := b.Start.Add(-buffer)
	bEnd := b.End.Add(buffer)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayMinutes resolves a day's duration by the hybrid rule: a stored duration
// wins when present, otherwise the minutes between start and finish. A stored
// value survives manual edits that never re-derived the clock times.
func DayMinutes(storedMinutes int, start, finish TimeOfDay) int {
	if storedMinutes > 0 {
		return storedMinutes
	}
	if finish <= start {
		return 0
	}
	return int(finish - start)
}
