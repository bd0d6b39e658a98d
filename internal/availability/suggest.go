package availability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/ripplecare/event-therapy-platform/internal/schedule"
)

// AlternativeRequest describes an unsatisfiable slot to probe forward from.
type AlternativeRequest struct {
	Date     time.Time
	Start    schedule.TimeOfDay
	Minutes  int
	Required int
}

// Suggestion is one fully-available alternative date, formatted for display.
type Suggestion struct {
	Date    time.Time `json:"date"`
	Display string    `json:"display"`
}

// SuggestAlternatives probes the next probeDays calendar days at the same
// time of day and returns up to maxResults fully-satisfying dates. Bounded
// and read-only; an empty slice means nothing in the window works.
func (c *Checker) SuggestAlternatives(ctx context.Context, req AlternativeRequest, probeDays, maxResults int) ([]Suggestion, error) {
	ctx, span := availabilityTracer.Start(ctx, "availability.suggest_alternatives")
	defer span.End()
	span.SetAttributes(
		attribute.String("wellness.from_date", req.Date.Format("2006-01-02")),
		attribute.Int("wellness.probe_days", probeDays),
	)

	if probeDays <= 0 {
		probeDays = 7
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	if req.Minutes <= 0 || req.Required <= 0 {
		return nil, fmt.Errorf("availability: alternative probe needs duration and headcount")
	}

	suggestions := make([]Suggestion, 0, maxResults)
	for offset := 1; offset <= probeDays && len(suggestions) < maxResults; offset++ {
		candidate := req.Date.AddDate(0, 0, offset)
		day, err := c.checkDay(ctx, candidate, req.Start, req.Minutes, req.Required)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if day.Status != StatusAvailable {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Date:    candidate,
			Display: fmt.Sprintf("%s at %s", candidate.Format("Monday, 2 January 2006"), req.Start),
		})
	}
	return suggestions, nil
}
