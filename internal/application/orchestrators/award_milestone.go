package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ellarises/internal/domain/milestone"
	"ellarises/internal/domain/participant"
)

// MilestoneStoreForAward defines the milestone persistence operation.
type MilestoneStoreForAward interface {
	Save(ctx context.Context, m milestone.Milestone) error
}

// ParticipantStoreForAward confirms the recipient exists.
type ParticipantStoreForAward interface {
	GetByID(ctx context.Context, id string) (participant.Participant, error)
}

// AwardMilestoneInput carries the submitted milestone form values.
type AwardMilestoneInput struct {
	ParticipantID string
	Title         string
	Notes         string
	RawDate       string // YYYY-MM-DD; empty means today
}

// AwardMilestoneDeps holds dependencies for awarding a milestone.
type AwardMilestoneDeps struct {
	MilestoneStore   MilestoneStoreForAward
	ParticipantStore ParticipantStoreForAward
	GenerateID       func() string
	Now              func() time.Time
}

// ErrParticipantNotFound is returned when the milestone recipient does not
// exist.
var ErrParticipantNotFound = errors.New("participant not found")

// ExecuteAwardMilestone records an achievement against a participant.
// PRE: Caller is elevated
// POST: Milestone row exists for the participant
func ExecuteAwardMilestone(ctx context.Context, input AwardMilestoneInput, deps AwardMilestoneDeps) (milestone.Milestone, error) {
	if _, err := deps.ParticipantStore.GetByID(ctx, input.ParticipantID); err != nil {
		return milestone.Milestone{}, ErrParticipantNotFound
	}

	awardedAt := deps.Now()
	if input.RawDate != "" {
		parsed, err := time.Parse("2006-01-02", input.RawDate)
		if err != nil {
			return milestone.Milestone{}, errors.New("award date must be in YYYY-MM-DD format")
		}
		awardedAt = parsed
	}

	m := milestone.Milestone{
		ID:            deps.GenerateID(),
		ParticipantID: input.ParticipantID,
		Title:         input.Title,
		Notes:         input.Notes,
		AwardedAt:     awardedAt,
	}
	if err := m.Validate(); err != nil {
		return milestone.Milestone{}, err
	}
	if err := deps.MilestoneStore.Save(ctx, m); err != nil {
		return milestone.Milestone{}, err
	}

	slog.Info("registration_event", "event", "milestone_awarded", "milestone_id", m.ID, "participant_id", m.ParticipantID, "title", m.Title)
	return m, nil
}
