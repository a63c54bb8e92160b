package projections

import (
	"context"
	"testing"

	registrationStore "ellarises/internal/adapters/storage/registration"
	surveyStore "ellarises/internal/adapters/storage/survey"
	"ellarises/internal/domain/registration"
	"ellarises/internal/domain/survey"
)

type mockEligibilityRegistrations struct {
	byPair map[string]registration.Registration
}

func eligPairKey(occurrenceID, participantID string) string {
	return occurrenceID + "|" + participantID
}

func (m *mockEligibilityRegistrations) GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error) {
	r, ok := m.byPair[eligPairKey(occurrenceID, participantID)]
	if !ok {
		return registration.Registration{}, registrationStore.ErrNotFound
	}
	return r, nil
}

func (m *mockEligibilityRegistrations) ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]registration.Registration, error) {
	return nil, nil
}

func (m *mockEligibilityRegistrations) ListByParticipantID(ctx context.Context, participantID string) ([]registration.Registration, error) {
	return nil, nil
}

func (m *mockEligibilityRegistrations) CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error) {
	return len(m.byPair), nil
}

type mockEligibilitySurveys struct {
	byPair map[string]survey.Response
}

func (m *mockEligibilitySurveys) GetByPair(ctx context.Context, occurrenceID, participantID string) (survey.Response, error) {
	r, ok := m.byPair[eligPairKey(occurrenceID, participantID)]
	if !ok {
		return survey.Response{}, surveyStore.ErrNotFound
	}
	return r, nil
}

func (m *mockEligibilitySurveys) ListByOccurrenceID(ctx context.Context, occurrenceID string) ([]survey.Response, error) {
	return nil, nil
}

func (m *mockEligibilitySurveys) AverageOverallByOccurrenceID(ctx context.Context, occurrenceID string) (float64, int, error) {
	return 0, 0, nil
}

// TestQueryGetEligibility_Stages walks the three-stage lifecycle and checks
// the survey button shows exactly in the attended-but-not-surveyed window.
func TestQueryGetEligibility_Stages(t *testing.T) {
	tests := []struct {
		name       string
		registered bool
		attended   bool
		surveyed   bool
		want       GetEligibilityResult
	}{
		{
			name: "not registered",
			want: GetEligibilityResult{},
		},
		{
			name:       "registered, not attended",
			registered: true,
			want:       GetEligibilityResult{IsRegistered: true},
		},
		{
			name:       "attended, not surveyed",
			registered: true,
			attended:   true,
			want:       GetEligibilityResult{IsRegistered: true, HasAttended: true, ShowSurveyButton: true},
		},
		{
			name:       "attended and surveyed",
			registered: true,
			attended:   true,
			surveyed:   true,
			want:       GetEligibilityResult{IsRegistered: true, HasAttended: true, HasSubmittedSurvey: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			regs := &mockEligibilityRegistrations{byPair: map[string]registration.Registration{}}
			if tt.registered {
				regs.byPair[eligPairKey("occ-1", "par-1")] = registration.Registration{
					ID: "reg-1", OccurrenceID: "occ-1", ParticipantID: "par-1",
					Status: registration.StatusRegistered, Attended: tt.attended,
				}
			}
			surveys := &mockEligibilitySurveys{byPair: map[string]survey.Response{}}
			if tt.surveyed {
				surveys.byPair[eligPairKey("occ-1", "par-1")] = survey.Response{ID: "resp-1"}
			}

			got, err := QueryGetEligibility(context.Background(), GetEligibilityQuery{OccurrenceID: "occ-1", ParticipantID: "par-1"}, GetEligibilityDeps{
				RegistrationStore: regs,
				SurveyStore:       surveys,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
