package registration

import (
	"errors"
	"time"
)

// Status constants for the registration lifecycle.
const (
	StatusRegistered = "registered"
	StatusWaitlisted = "waitlisted"
)

// ValidStatuses contains all valid registration statuses.
var ValidStatuses = []string{StatusRegistered, StatusWaitlisted}

// Domain errors
var (
	ErrEmptyOccurrenceID  = errors.New("occurrence_id cannot be empty")
	ErrEmptyParticipantID = errors.New("participant_id cannot be empty")
	ErrInvalidStatus      = errors.New("status must be 'registered' or 'waitlisted'")
	ErrAlreadyCheckedIn   = errors.New("participant is already checked in")
)

// Registration is the (occurrence, participant) fact: at most one row per
// pair, enforced by a unique composite index in storage. Attended is set
// only by staff check-in, never by the participant.
type Registration struct {
	ID            string
	OccurrenceID  string
	ParticipantID string
	Status        string
	Attended      bool
	CheckInTime   time.Time // zero until checked in
	CreatedAt     time.Time
}

// Validate checks if the Registration has valid data.
// PRE: Registration struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Registration) Validate() error {
	if r.OccurrenceID == "" {
		return ErrEmptyOccurrenceID
	}
	if r.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	if !isValidStatus(r.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// CheckIn marks the registration attended at the given time.
// PRE: Attended is false
// POST: Attended is true, CheckInTime is set
func (r *Registration) CheckIn(now time.Time) error {
	if r.Attended {
		return ErrAlreadyCheckedIn
	}
	r.Attended = true
	r.CheckInTime = now
	return nil
}

func isValidStatus(status string) bool {
	for _, s := range ValidStatuses {
		if s == status {
			return true
		}
	}
	return false
}
