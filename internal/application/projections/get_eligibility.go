package projections

import (
	"context"
)

// GetEligibilityQuery carries query parameters.
type GetEligibilityQuery struct {
	OccurrenceID  string
	ParticipantID string
}

// GetEligibilityResult describes where a participant sits in a session's
// lifecycle: registered, then attended, then surveyed. ShowSurveyButton is
// the render-time gate; the submission path re-checks the same conditions
// at write time.
type GetEligibilityResult struct {
	IsRegistered       bool
	HasAttended        bool
	HasSubmittedSurvey bool
	ShowSurveyButton   bool
}

// GetEligibilityDeps holds dependencies for GetEligibility.
type GetEligibilityDeps struct {
	RegistrationStore RegistrationStore
	SurveyStore       SurveyStore
}

// QueryGetEligibility computes a participant's stage for one occurrence.
// PRE: Both IDs are set
// POST: ShowSurveyButton is true only for attended-but-not-surveyed
func QueryGetEligibility(ctx context.Context, query GetEligibilityQuery, deps GetEligibilityDeps) (GetEligibilityResult, error) {
	result := GetEligibilityResult{}

	r, err := deps.RegistrationStore.GetByPair(ctx, query.OccurrenceID, query.ParticipantID)
	if err == nil {
		result.IsRegistered = true
		result.HasAttended = r.Attended
	}

	if _, err := deps.SurveyStore.GetByPair(ctx, query.OccurrenceID, query.ParticipantID); err == nil {
		result.HasSubmittedSurvey = true
	}

	result.ShowSurveyButton = result.HasAttended && !result.HasSubmittedSurvey
	return result, nil
}
