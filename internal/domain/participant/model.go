package participant

import (
	"errors"
	"strings"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ValidStatuses contains all valid participant statuses.
var ValidStatuses = []string{StatusActive, StatusInactive}

// Domain errors
var (
	ErrEmptyFirstName = errors.New("first name cannot be empty")
	ErrEmptyLastName  = errors.New("last name cannot be empty")
	ErrEmptyEmail     = errors.New("email cannot be empty")
	ErrInvalidEmail   = errors.New("email must contain '@'")
	ErrInvalidStatus  = errors.New("status must be 'active' or 'inactive'")
)

// Participant holds state for a program participant. AccountID links back to
// the login account when the participant signed themselves up; participants
// entered by staff may have no account.
type Participant struct {
	ID        string
	AccountID string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	Status    string
}

// FullName returns the participant's display name.
// INVARIANT: Participant fields are not mutated
func (p *Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Validate checks if the Participant has valid data.
// PRE: Participant struct is populated
// POST: Returns nil if valid, error otherwise
func (p *Participant) Validate() error {
	if strings.TrimSpace(p.FirstName) == "" {
		return ErrEmptyFirstName
	}
	if strings.TrimSpace(p.LastName) == "" {
		return ErrEmptyLastName
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	if !isValidStatus(p.Status) {
		return ErrInvalidStatus
	}
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
