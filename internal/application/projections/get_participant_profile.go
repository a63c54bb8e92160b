package projections

import (
	"context"
	"time"

	domainMilestone "ellarises/internal/domain/milestone"
)

// GetParticipantProfileQuery carries query parameters.
type GetParticipantProfileQuery struct {
	ParticipantID string
}

// ProfileRegistration is one row of a participant's session history.
type ProfileRegistration struct {
	OccurrenceID string
	EventName    string
	StartsAt     time.Time
	Location     string
	Attended     bool
	Surveyed     bool
}

// GetParticipantProfileResult carries the query result.
type GetParticipantProfileResult struct {
	ParticipantID      string
	Name               string
	Email              string
	Phone              string
	City               string
	Status             string
	Registrations      []ProfileRegistration
	AttendedCount      int
	Milestones         []domainMilestone.Milestone
	DonationTotalCents int64
}

// GetParticipantProfileDeps holds dependencies for GetParticipantProfile.
type GetParticipantProfileDeps struct {
	ParticipantStore  ParticipantStore
	RegistrationStore RegistrationStore
	OccurrenceStore   OccurrenceStore
	EventStore        EventStore
	SurveyStore       SurveyStore
	MilestoneStore    MilestoneStore
	DonationStore     DonationStore // optional: nil skips giving history
}

// QueryGetParticipantProfile retrieves a participant with their session
// history, milestones, and giving total.
// PRE: Valid participant ID
// POST: Returns profile details; history rows carry event names
func QueryGetParticipantProfile(ctx context.Context, query GetParticipantProfileQuery, deps GetParticipantProfileDeps) (GetParticipantProfileResult, error) {
	p, err := deps.ParticipantStore.GetByID(ctx, query.ParticipantID)
	if err != nil {
		return GetParticipantProfileResult{}, err
	}

	result := GetParticipantProfileResult{
		ParticipantID: p.ID,
		Name:          p.FullName(),
		Email:         p.Email,
		Phone:         p.Phone,
		City:          p.City,
		Status:        p.Status,
	}

	regs, err := deps.RegistrationStore.ListByParticipantID(ctx, query.ParticipantID)
	if err == nil {
		eventNames := map[string]string{}
		for _, r := range regs {
			row := ProfileRegistration{
				OccurrenceID: r.OccurrenceID,
				Attended:     r.Attended,
			}
			if r.Attended {
				result.AttendedCount++
			}
			if occ, err := deps.OccurrenceStore.GetByID(ctx, r.OccurrenceID); err == nil {
				row.StartsAt = occ.StartsAt
				row.Location = occ.Location
				name, ok := eventNames[occ.EventID]
				if !ok {
					if ev, err := deps.EventStore.GetByID(ctx, occ.EventID); err == nil {
						name = ev.Name
					}
					eventNames[occ.EventID] = name
				}
				row.EventName = name
			}
			if _, err := deps.SurveyStore.GetByPair(ctx, r.OccurrenceID, query.ParticipantID); err == nil {
				row.Surveyed = true
			}
			result.Registrations = append(result.Registrations, row)
		}
	}

	if ms, err := deps.MilestoneStore.ListByParticipantID(ctx, query.ParticipantID); err == nil {
		result.Milestones = ms
	}

	if deps.DonationStore != nil {
		if total, err := deps.DonationStore.SumCentsByParticipantID(ctx, query.ParticipantID); err == nil {
			result.DonationTotalCents = total
		}
	}

	return result, nil
}
