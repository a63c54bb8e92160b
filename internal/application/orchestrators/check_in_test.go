package orchestrators

import (
	"context"
	"testing"

	registrationStore "ellarises/internal/adapters/storage/registration"
	"ellarises/internal/domain/registration"
)

type mockCheckInRegistrations struct {
	registrations map[string]registration.Registration
}

func (m *mockCheckInRegistrations) GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error) {
	r, ok := m.registrations[pairKey(occurrenceID, participantID)]
	if !ok {
		return registration.Registration{}, registrationStore.ErrNotFound
	}
	return r, nil
}

func (m *mockCheckInRegistrations) Update(ctx context.Context, r registration.Registration) error {
	m.registrations[pairKey(r.OccurrenceID, r.ParticipantID)] = r
	return nil
}

func checkInFixture() *mockCheckInRegistrations {
	return &mockCheckInRegistrations{registrations: map[string]registration.Registration{
		pairKey("occ-1", "par-1"): {
			ID:            "reg-1",
			OccurrenceID:  "occ-1",
			ParticipantID: "par-1",
			Status:        registration.StatusRegistered,
		},
	}}
}

// TestCheckIn_Success verifies attendance is recorded with a timestamp.
func TestCheckIn_Success(t *testing.T) {
	store := checkInFixture()
	deps := CheckInDeps{RegistrationStore: store, Now: fixedNow}

	err := ExecuteCheckIn(context.Background(), CheckInInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := store.registrations[pairKey("occ-1", "par-1")]
	if !r.Attended {
		t.Error("expected Attended to be true")
	}
	if !r.CheckInTime.Equal(fixedTime) {
		t.Errorf("expected check-in time %v, got %v", fixedTime, r.CheckInTime)
	}
}

// TestCheckIn_Twice verifies the second check-in is rejected.
func TestCheckIn_Twice(t *testing.T) {
	store := checkInFixture()
	deps := CheckInDeps{RegistrationStore: store, Now: fixedNow}
	input := CheckInInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}

	if err := ExecuteCheckIn(context.Background(), input, deps); err != nil {
		t.Fatalf("first check-in: %v", err)
	}
	if err := ExecuteCheckIn(context.Background(), input, deps); err != registration.ErrAlreadyCheckedIn {
		t.Errorf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

// TestCheckIn_NotRegistered verifies the missing-pair sentinel.
func TestCheckIn_NotRegistered(t *testing.T) {
	deps := CheckInDeps{RegistrationStore: checkInFixture(), Now: fixedNow}

	err := ExecuteCheckIn(context.Background(), CheckInInput{OccurrenceID: "occ-1", ParticipantID: "par-9"}, deps)
	if err != ErrNotRegistered {
		t.Errorf("expected ErrNotRegistered, got %v", err)
	}
}
