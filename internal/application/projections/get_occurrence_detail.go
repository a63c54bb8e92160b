package projections

import (
	"context"
	"time"

	domainOccurrence "ellarises/internal/domain/occurrence"
)

// GetOccurrenceDetailQuery carries query parameters. ViewerParticipantID
// is empty for anonymous viewers; eligibility fields stay zeroed then.
type GetOccurrenceDetailQuery struct {
	OccurrenceID        string
	ViewerParticipantID string
	ViewerElevated      bool
}

// RosterEntry is one registered participant on the occurrence detail page.
type RosterEntry struct {
	RegistrationID string
	ParticipantID  string
	Name           string
	Attended       bool
	CheckInTime    time.Time
}

// GetOccurrenceDetailResult carries the query result.
type GetOccurrenceDetailResult struct {
	Occurrence         domainOccurrence.Occurrence
	EventName          string
	EventDescription   string
	RegisteredCount    int
	SpotsLeft          int
	RegistrationClosed bool
	Roster             []RosterEntry // elevated viewers only
	Viewer             GetEligibilityResult
	AverageScore       float64
	ResponseCount      int
}

// GetOccurrenceDetailDeps holds dependencies for GetOccurrenceDetail.
type GetOccurrenceDetailDeps struct {
	OccurrenceStore   OccurrenceStore
	EventStore        EventStore
	ParticipantStore  ParticipantStore
	RegistrationStore RegistrationStore
	SurveyStore       SurveyStore
	Now               func() time.Time
}

// QueryGetOccurrenceDetail assembles everything the session page needs.
// PRE: Valid occurrence ID
// POST: Roster populated only when the viewer is elevated
func QueryGetOccurrenceDetail(ctx context.Context, query GetOccurrenceDetailQuery, deps GetOccurrenceDetailDeps) (GetOccurrenceDetailResult, error) {
	occ, err := deps.OccurrenceStore.GetByID(ctx, query.OccurrenceID)
	if err != nil {
		return GetOccurrenceDetailResult{}, err
	}

	result := GetOccurrenceDetailResult{
		Occurrence:         occ,
		RegistrationClosed: occ.RegistrationClosed(deps.Now()),
	}

	if ev, err := deps.EventStore.GetByID(ctx, occ.EventID); err == nil {
		result.EventName = ev.Name
		result.EventDescription = ev.Description
	}

	count, err := deps.RegistrationStore.CountByOccurrenceID(ctx, query.OccurrenceID)
	if err == nil {
		result.RegisteredCount = count
		if occ.Capacity > 0 {
			result.SpotsLeft = occ.Capacity - count
			if result.SpotsLeft < 0 {
				result.SpotsLeft = 0
			}
		}
	}

	if query.ViewerElevated {
		regs, err := deps.RegistrationStore.ListByOccurrenceID(ctx, query.OccurrenceID)
		if err == nil {
			for _, r := range regs {
				entry := RosterEntry{
					RegistrationID: r.ID,
					ParticipantID:  r.ParticipantID,
					Attended:       r.Attended,
					CheckInTime:    r.CheckInTime,
				}
				if p, err := deps.ParticipantStore.GetByID(ctx, r.ParticipantID); err == nil {
					entry.Name = p.FullName()
				}
				result.Roster = append(result.Roster, entry)
			}
		}
		if avg, n, err := deps.SurveyStore.AverageOverallByOccurrenceID(ctx, query.OccurrenceID); err == nil {
			result.AverageScore = avg
			result.ResponseCount = n
		}
	}

	if query.ViewerParticipantID != "" {
		viewer, err := QueryGetEligibility(ctx, GetEligibilityQuery{
			OccurrenceID:  query.OccurrenceID,
			ParticipantID: query.ViewerParticipantID,
		}, GetEligibilityDeps{
			RegistrationStore: deps.RegistrationStore,
			SurveyStore:       deps.SurveyStore,
		})
		if err == nil {
			result.Viewer = viewer
		}
	}

	return result, nil
}
