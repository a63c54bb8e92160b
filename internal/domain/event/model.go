package event

import (
	"errors"
	"strings"
)

// Recurrence constants
const (
	RecurrenceNone    = "none"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
)

// ValidRecurrences contains all valid recurrence patterns.
var ValidRecurrences = []string{RecurrenceNone, RecurrenceWeekly, RecurrenceMonthly}

// Domain errors
var (
	ErrEmptyName         = errors.New("event name cannot be empty")
	ErrEmptyType         = errors.New("event type cannot be empty")
	ErrInvalidRecurrence = errors.New("recurrence must be one of: none, weekly, monthly")
	ErrNegativeCapacity  = errors.New("default capacity cannot be negative")
)

// Event is a reusable template for scheduled occurrences (e.g. "Art Therapy
// Workshop"). Individual dated sessions live in the occurrence package.
type Event struct {
	ID              string
	Name            string
	EventType       string // e.g. "workshop", "fundraiser", "class"
	Recurrence      string
	DefaultCapacity int // 0 means unlimited
	Description     string // markdown, rendered safely at the edge
}

// Validate checks if the Event has valid data.
// PRE: Event struct is populated
// POST: Returns nil if valid, error otherwise
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(e.EventType) == "" {
		return ErrEmptyType
	}
	if !isValidRecurrence(e.Recurrence) {
		return ErrInvalidRecurrence
	}
	if e.DefaultCapacity < 0 {
		return ErrNegativeCapacity
	}
	return nil
}

func isValidRecurrence(r string) bool {
	for _, v := range ValidRecurrences {
		if v == r {
			return true
		}
	}
	return false
}
