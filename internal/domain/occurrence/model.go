package occurrence

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrEmptyEventID     = errors.New("event_id cannot be empty")
	ErrMissingStart     = errors.New("starts_at must be set")
	ErrEndBeforeStart   = errors.New("ends_at must be after starts_at")
	ErrDeadlineTooLate  = errors.New("registration deadline cannot fall after the start date")
	ErrNegativeCapacity = errors.New("capacity cannot be negative")
)

// Occurrence is one scheduled instance of an event template.
type Occurrence struct {
	ID                   string
	EventID              string
	StartsAt             time.Time
	EndsAt               time.Time // zero means open-ended
	Location             string
	Capacity             int       // 0 means unlimited
	RegistrationDeadline time.Time // zero means no deadline
}

// Validate checks the Occurrence invariants.
// PRE: Occurrence struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: ends_at > starts_at when both set; deadline date <= start date
func (o *Occurrence) Validate() error {
	if o.EventID == "" {
		return ErrEmptyEventID
	}
	if o.StartsAt.IsZero() {
		return ErrMissingStart
	}
	if !o.EndsAt.IsZero() && !o.EndsAt.After(o.StartsAt) {
		return ErrEndBeforeStart
	}
	if !o.RegistrationDeadline.IsZero() {
		// Compared by calendar date: a deadline on the start date itself is allowed.
		deadline := o.RegistrationDeadline.Format("2006-01-02")
		start := o.StartsAt.Format("2006-01-02")
		if deadline > start {
			return ErrDeadlineTooLate
		}
	}
	if o.Capacity < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

// RegistrationClosed reports whether self-registration is closed at the
// given instant, either because the deadline passed or the session started.
// INVARIANT: Occurrence fields are not mutated
func (o *Occurrence) RegistrationClosed(now time.Time) bool {
	if !o.RegistrationDeadline.IsZero() && now.After(o.RegistrationDeadline) {
		return true
	}
	return now.After(o.StartsAt)
}
