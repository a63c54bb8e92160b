package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	surveyStore "ellarises/internal/adapters/storage/survey"
	"ellarises/internal/domain/registration"
	"ellarises/internal/domain/survey"
)

// RegistrationStoreForSurvey defines the registration lookup the survey
// gate needs.
type RegistrationStoreForSurvey interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error)
}

// SurveyStoreForSubmit defines the survey store interface for submission.
type SurveyStoreForSubmit interface {
	GetByPair(ctx context.Context, occurrenceID, participantID string) (survey.Response, error)
	Create(ctx context.Context, r survey.Response) error
}

// SubmitSurveyInput carries the raw submission. RawScores holds the form
// values keyed by score field name, unparsed, so validation failures can
// echo them back.
type SubmitSurveyInput struct {
	OccurrenceID  string
	ParticipantID string
	RawScores     map[string]string
	Comments      string
}

// SubmitSurveyDeps holds dependencies for survey submission.
type SubmitSurveyDeps struct {
	RegistrationStore RegistrationStoreForSurvey
	SurveyStore       SurveyStoreForSubmit
	GenerateID        func() string
	Now               func() time.Time
}

// Survey gate errors.
var (
	ErrSurveyNotEligible     = errors.New("surveys are open only to participants who attended the session")
	ErrSurveyAlreadySubmitted = errors.New("a survey has already been submitted for this session")
)

// ExecuteSubmitSurvey validates and persists a survey response.
// The eligibility gate is re-checked here, at write time, rather than
// trusted from the rendered page: a second tab that passed the render-time
// check must still be rejected.
// PRE: Caller identity is the submitting participant
// POST: Exactly one response exists for the pair, or nothing was written
// INVARIANT: A response exists only where an attended registration exists
func ExecuteSubmitSurvey(ctx context.Context, input SubmitSurveyInput, deps SubmitSurveyDeps) (survey.Response, error) {
	if input.OccurrenceID == "" || input.ParticipantID == "" {
		return survey.Response{}, errors.New("occurrence and participant are required")
	}

	// Write-time gate: attended registration required, no prior response.
	r, err := deps.RegistrationStore.GetByPair(ctx, input.OccurrenceID, input.ParticipantID)
	if err != nil || !r.Attended {
		return survey.Response{}, ErrSurveyNotEligible
	}
	if _, err := deps.SurveyStore.GetByPair(ctx, input.OccurrenceID, input.ParticipantID); err == nil {
		return survey.Response{}, ErrSurveyAlreadySubmitted
	}

	scores, verrs := survey.ParseScores(input.RawScores)
	if verrs != nil {
		return survey.Response{}, verrs
	}

	resp := survey.Response{
		ID:            deps.GenerateID(),
		OccurrenceID:  input.OccurrenceID,
		ParticipantID: input.ParticipantID,
		Scores:        scores,
		OverallScore:  survey.Overall(scores),
		Comments:      input.Comments,
		SubmittedAt:   deps.Now(),
	}
	if err := resp.Validate(); err != nil {
		return survey.Response{}, err
	}

	if err := deps.SurveyStore.Create(ctx, resp); err != nil {
		// The unique pair constraint closes the race two tabs can open.
		if errors.Is(err, surveyStore.ErrDuplicate) {
			return survey.Response{}, ErrSurveyAlreadySubmitted
		}
		return survey.Response{}, err
	}

	slog.Info("survey_event", "event", "survey_submitted", "occurrence_id", input.OccurrenceID, "participant_id", input.ParticipantID, "overall", resp.OverallScore)
	return resp, nil
}
