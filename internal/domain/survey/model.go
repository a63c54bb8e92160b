package survey

import (
	"errors"
	"math"
	"strconv"
	"time"
)

// Score field names, matching the submitted form fields.
const (
	FieldOverallExperience = "score_overall_experience"
	FieldInstructor        = "score_instructor"
	FieldVenue             = "score_venue"
	FieldUsefulness        = "score_usefulness"
)

// ScoreFields lists the four required score fields in display order.
var ScoreFields = []string{FieldOverallExperience, FieldInstructor, FieldVenue, FieldUsefulness}

// Domain errors
var (
	ErrEmptyOccurrenceID  = errors.New("occurrence_id cannot be empty")
	ErrEmptyParticipantID = errors.New("participant_id cannot be empty")
)

// ValidationErrors maps a score field name to a user-facing message. It is
// returned alongside the submitted values so the form can re-render intact.
type ValidationErrors map[string]string

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	return "survey validation failed"
}

// Scores holds the four parsed 1-5 ratings.
type Scores struct {
	OverallExperience int
	Instructor        int
	Venue             int
	Usefulness        int
}

// Response is the (occurrence, participant) survey fact: at most one row per
// pair, and only ever written after an attended registration exists.
type Response struct {
	ID            string
	OccurrenceID  string
	ParticipantID string
	Scores        Scores
	OverallScore  float64
	Comments      string
	SubmittedAt   time.Time
}

// ParseScores validates the raw form values for the four required scores.
// Each must parse as an integer in [1,5]. On any failure it returns
// field-level messages and a zero Scores; nothing is computed from partial
// input.
// PRE: raw holds the submitted form values keyed by field name
// POST: Returns parsed scores, or ValidationErrors naming each bad field
func ParseScores(raw map[string]string) (Scores, ValidationErrors) {
	errs := ValidationErrors{}
	parsed := make(map[string]int, len(ScoreFields))
	for _, field := range ScoreFields {
		value, ok := raw[field]
		if !ok || value == "" {
			errs[field] = "a rating from 1 to 5 is required"
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 5 {
			errs[field] = "rating must be a whole number from 1 to 5"
			continue
		}
		parsed[field] = n
	}
	if len(errs) > 0 {
		return Scores{}, errs
	}
	return Scores{
		OverallExperience: parsed[FieldOverallExperience],
		Instructor:        parsed[FieldInstructor],
		Venue:             parsed[FieldVenue],
		Usefulness:        parsed[FieldUsefulness],
	}, nil
}

// Overall computes the derived overall score: the arithmetic mean of the
// four ratings, rounded to two decimal places.
// PRE: s has passed ParseScores validation
func Overall(s Scores) float64 {
	mean := float64(s.OverallExperience+s.Instructor+s.Venue+s.Usefulness) / 4.0
	return math.Round(mean*100) / 100
}

// Validate checks if the Response has valid data.
// PRE: Response struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Response) Validate() error {
	if r.OccurrenceID == "" {
		return ErrEmptyOccurrenceID
	}
	if r.ParticipantID == "" {
		return ErrEmptyParticipantID
	}
	for _, n := range []int{r.Scores.OverallExperience, r.Scores.Instructor, r.Scores.Venue, r.Scores.Usefulness} {
		if n < 1 || n > 5 {
			return errors.New("scores must be between 1 and 5")
		}
	}
	return nil
}
