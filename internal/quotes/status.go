package quotes

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition wraps every status move the workflow forbids.
var ErrIllegalTransition = errors.New("illegal status transition")

// Status is a quote's position in the admin workflow.
type Status string

const (
	StatusNew                  Status = "new"
	StatusAvailabilityChecking Status = "availability_checking"
	StatusAvailabilityOK       Status = "availability_confirmed"
	StatusAvailabilityDeclined Status = "availability_declined"
	StatusSent                 Status = "sent"
	StatusAccepted             Status = "accepted"
	StatusDeclined             Status = "declined"
	StatusInvoiced             Status = "invoiced"
	StatusPaid                 Status = "paid"
	StatusCompleted            Status = "completed"
)

// transitions is the allowed edge set. Re-sending after assignments change
// is the sent→sent self edge (a re-offer, not a new quote); declined→sent is
// the explicit restore.
var transitions = map[Status][]Status{
	StatusNew:                  {StatusAvailabilityChecking},
	StatusAvailabilityChecking: {StatusAvailabilityOK, StatusAvailabilityDeclined},
	StatusAvailabilityOK:       {StatusSent},
	StatusAvailabilityDeclined: {StatusAvailabilityChecking},
	StatusSent:                 {StatusSent, StatusAccepted, StatusDeclined},
	StatusAccepted:             {StatusSent, StatusInvoiced, StatusDeclined},
	StatusDeclined:             {StatusSent},
	StatusInvoiced:             {StatusPaid, StatusDeclined},
	StatusPaid:                 {StatusCompleted},
	StatusCompleted:            {},
}

// CanTransition reports whether the workflow permits moving from one status
// to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a status move and returns a descriptive error when
// the workflow forbids it.
func Transition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("quotes: %w %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// ReleasesBookings reports whether entering the status must tear down the
// quote's bookings (releasing therapist time).
func (s Status) ReleasesBookings() bool {
	return s == StatusDeclined
}
