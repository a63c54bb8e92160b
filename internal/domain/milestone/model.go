package milestone

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyParticipantID = errors.New("participant_id cannot be empty")
	ErrEmptyTitle         = errors.New("milestone title cannot be empty")
	ErrMissingAwardedAt   = errors.New("awarded_at must be set")
)

// Milestone records a participant achievement (e.g. "Completed mentorship
// program"), awarded by staff.
type Milestone struct {
	ID            string
	ParticipantID string
	Title         string
	Notes         string
	AwardedAt     time.Time
}

// Validate checks if the Milestone has valid data.
// PRE: Milestone struct is populated
// POST: Returns nil if valid, error otherwise
func (m *Milestone) Validate() error {
	if m.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	if strings.TrimSpace(m.Title) == "" {
		return ErrEmptyTitle
	}
	if m.AwardedAt.IsZero() {
		return ErrMissingAwardedAt
	}
	return nil
}
