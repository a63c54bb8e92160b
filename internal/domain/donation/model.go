package donation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyParticipantID = errors.New("participant_id cannot be empty")
	ErrInvalidAmount      = errors.New("amount must be a positive dollar value")
	ErrMissingDate        = errors.New("donation date must be set")
)

// Donation records a monetary gift. Amounts are stored in cents to avoid
// floating-point drift in sums.
type Donation struct {
	ID            string
	ParticipantID string
	AmountCents   int64
	DonatedAt     time.Time
	CreatedAt     time.Time
}

// Draft is an unauthenticated donation attempt captured before login. It is
// held in the session's deferred-intent slot and materialized against the
// participant identity once authentication completes.
type Draft struct {
	AmountCents int64
	Date        string // YYYY-MM-DD as submitted
}

// ParseAmount converts a submitted dollar string ("25", "25.50") to cents.
// PRE: raw is the submitted form value
// POST: Returns cents > 0, or ErrInvalidAmount
func ParseAmount(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if raw == "" {
		return 0, ErrInvalidAmount
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := int64(value*100 + 0.5)
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// FormatAmount renders cents as a dollar string for display.
func FormatAmount(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

// Validate checks if the Donation has valid data.
// PRE: Donation struct is populated
// POST: Returns nil if valid, error otherwise
func (d *Donation) Validate() error {
	if d.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	if d.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	if d.DonatedAt.IsZero() {
		return ErrMissingDate
	}
	return nil
}
