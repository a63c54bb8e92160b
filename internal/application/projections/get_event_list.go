package projections

import (
	"context"
	"sort"
	"time"

	domainEvent "ellarises/internal/domain/event"
	domainOccurrence "ellarises/internal/domain/occurrence"
)

// GetEventListQuery carries query parameters.
type GetEventListQuery struct {
	UpcomingOnly bool
}

// EventListing is one event with its occurrences, soonest first.
type EventListing struct {
	Event       domainEvent.Event
	Occurrences []OccurrenceListing
}

// OccurrenceListing is one occurrence row on the schedule.
type OccurrenceListing struct {
	Occurrence         domainOccurrence.Occurrence
	RegisteredCount    int
	SpotsLeft          int
	RegistrationClosed bool
}

// GetEventListResult carries the query result.
type GetEventListResult struct {
	Events []EventListing
}

// GetEventListDeps holds dependencies for GetEventList.
type GetEventListDeps struct {
	EventStore        EventStore
	OccurrenceStore   OccurrenceStore
	RegistrationStore RegistrationStore
	Now               func() time.Time
}

// QueryGetEventList retrieves all events with their scheduled occurrences.
// POST: Occurrences within each event are ordered by start time ascending
func QueryGetEventList(ctx context.Context, query GetEventListQuery, deps GetEventListDeps) (GetEventListResult, error) {
	events, err := deps.EventStore.List(ctx)
	if err != nil {
		return GetEventListResult{}, err
	}

	now := deps.Now()
	result := GetEventListResult{}
	for _, ev := range events {
		listing := EventListing{Event: ev}
		occs, err := deps.OccurrenceStore.ListByEventID(ctx, ev.ID)
		if err == nil {
			for _, occ := range occs {
				if query.UpcomingOnly && occ.StartsAt.Before(now) {
					continue
				}
				row := OccurrenceListing{
					Occurrence:         occ,
					RegistrationClosed: occ.RegistrationClosed(now),
				}
				if count, err := deps.RegistrationStore.CountByOccurrenceID(ctx, occ.ID); err == nil {
					row.RegisteredCount = count
					if occ.Capacity > 0 {
						row.SpotsLeft = occ.Capacity - count
						if row.SpotsLeft < 0 {
							row.SpotsLeft = 0
						}
					}
				}
				listing.Occurrences = append(listing.Occurrences, row)
			}
			sort.Slice(listing.Occurrences, func(i, j int) bool {
				return listing.Occurrences[i].Occurrence.StartsAt.Before(listing.Occurrences[j].Occurrence.StartsAt)
			})
		}
		result.Events = append(result.Events, listing)
	}

	return result, nil
}
