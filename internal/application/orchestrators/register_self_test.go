package orchestrators

import (
	"context"
	"testing"
	"time"

	occurrenceStore "ellarises/internal/adapters/storage/occurrence"
	registrationStore "ellarises/internal/adapters/storage/registration"
	"ellarises/internal/domain/occurrence"
	"ellarises/internal/domain/registration"
)

type mockOccurrenceLookup struct {
	occurrences map[string]occurrence.Occurrence
}

func (m *mockOccurrenceLookup) GetByID(ctx context.Context, id string) (occurrence.Occurrence, error) {
	occ, ok := m.occurrences[id]
	if !ok {
		return occurrence.Occurrence{}, occurrenceStore.ErrNotFound
	}
	return occ, nil
}

type mockSelfRegistrationStore struct {
	registrations map[string]registration.Registration // keyed occurrenceID+"|"+participantID
	createErr     error
}

func newMockSelfRegistrationStore() *mockSelfRegistrationStore {
	return &mockSelfRegistrationStore{registrations: map[string]registration.Registration{}}
}

func pairKey(occurrenceID, participantID string) string {
	return occurrenceID + "|" + participantID
}

func (m *mockSelfRegistrationStore) GetByPair(ctx context.Context, occurrenceID, participantID string) (registration.Registration, error) {
	r, ok := m.registrations[pairKey(occurrenceID, participantID)]
	if !ok {
		return registration.Registration{}, registrationStore.ErrNotFound
	}
	return r, nil
}

func (m *mockSelfRegistrationStore) Create(ctx context.Context, r registration.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := pairKey(r.OccurrenceID, r.ParticipantID)
	if _, exists := m.registrations[key]; exists {
		return registrationStore.ErrDuplicate
	}
	m.registrations[key] = r
	return nil
}

func (m *mockSelfRegistrationStore) DeleteByPair(ctx context.Context, occurrenceID, participantID string) (int, error) {
	key := pairKey(occurrenceID, participantID)
	if _, ok := m.registrations[key]; !ok {
		return 0, nil
	}
	delete(m.registrations, key)
	return 1, nil
}

func (m *mockSelfRegistrationStore) CountByOccurrenceID(ctx context.Context, occurrenceID string) (int, error) {
	count := 0
	for _, r := range m.registrations {
		if r.OccurrenceID == occurrenceID {
			count++
		}
	}
	return count, nil
}

func openOccurrence() occurrence.Occurrence {
	return occurrence.Occurrence{
		ID:       "occ-1",
		EventID:  "ev-1",
		StartsAt: fixedTime.Add(48 * time.Hour),
		Capacity: 2,
	}
}

func registerDeps(occ occurrence.Occurrence, regs *mockSelfRegistrationStore) RegisterSelfDeps {
	return RegisterSelfDeps{
		OccurrenceStore:   &mockOccurrenceLookup{occurrences: map[string]occurrence.Occurrence{occ.ID: occ}},
		RegistrationStore: regs,
		GenerateID:        fixedID,
		Now:               fixedNow,
	}
}

// TestRegisterSelf_Success verifies exactly one row is written.
func TestRegisterSelf_Success(t *testing.T) {
	regs := newMockSelfRegistrationStore()
	deps := registerDeps(openOccurrence(), regs)

	err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(regs.registrations) != 1 {
		t.Fatalf("expected 1 registration, got %d", len(regs.registrations))
	}
	r := regs.registrations[pairKey("occ-1", "par-1")]
	if r.Status != registration.StatusRegistered {
		t.Errorf("expected status registered, got %q", r.Status)
	}
	if r.Attended {
		t.Error("expected new registration to be unattended")
	}
}

// TestRegisterSelf_Duplicate verifies both the pre-check and the storage
// constraint surface the same conflict.
func TestRegisterSelf_Duplicate(t *testing.T) {
	regs := newMockSelfRegistrationStore()
	deps := registerDeps(openOccurrence(), regs)
	input := RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}

	if err := ExecuteRegisterSelf(context.Background(), input, deps); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := ExecuteRegisterSelf(context.Background(), input, deps); err != ErrAlreadyRegistered {
		t.Errorf("expected ErrAlreadyRegistered from pre-check, got %v", err)
	}

	// Simulate two requests racing past the pre-check: the constraint error
	// from Create must map to the same sentinel.
	racing := newMockSelfRegistrationStore()
	racing.createErr = registrationStore.ErrDuplicate
	deps = registerDeps(openOccurrence(), racing)
	if err := ExecuteRegisterSelf(context.Background(), input, deps); err != ErrAlreadyRegistered {
		t.Errorf("expected ErrAlreadyRegistered from constraint, got %v", err)
	}
}

// TestRegisterSelf_Closed verifies deadline and start-time gating.
func TestRegisterSelf_Closed(t *testing.T) {
	past := openOccurrence()
	past.StartsAt = fixedTime.Add(-time.Hour)
	deps := registerDeps(past, newMockSelfRegistrationStore())

	err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}, deps)
	if err != ErrRegistrationClosed {
		t.Errorf("expected ErrRegistrationClosed, got %v", err)
	}

	deadlined := openOccurrence()
	deadlined.RegistrationDeadline = fixedTime.Add(-time.Minute)
	deps = registerDeps(deadlined, newMockSelfRegistrationStore())
	err = ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}, deps)
	if err != ErrRegistrationClosed {
		t.Errorf("expected ErrRegistrationClosed past deadline, got %v", err)
	}
}

// TestRegisterSelf_Full verifies capacity gating; zero capacity is unlimited.
func TestRegisterSelf_Full(t *testing.T) {
	regs := newMockSelfRegistrationStore()
	occ := openOccurrence()
	occ.Capacity = 1
	deps := registerDeps(occ, regs)

	if err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}, deps); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-2"}, deps)
	if err != ErrOccurrenceFull {
		t.Errorf("expected ErrOccurrenceFull, got %v", err)
	}

	unlimited := openOccurrence()
	unlimited.Capacity = 0
	deps = registerDeps(unlimited, regs)
	if err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-3"}, deps); err != nil {
		t.Errorf("expected unlimited capacity to accept, got %v", err)
	}
}

// TestRegisterSelf_OccurrenceNotFound verifies the missing-session path.
func TestRegisterSelf_OccurrenceNotFound(t *testing.T) {
	deps := registerDeps(openOccurrence(), newMockSelfRegistrationStore())

	err := ExecuteRegisterSelf(context.Background(), RegisterSelfInput{OccurrenceID: "occ-missing", ParticipantID: "par-1"}, deps)
	if err != ErrOccurrenceNotFound {
		t.Errorf("expected ErrOccurrenceNotFound, got %v", err)
	}
}

// TestUnregisterSelf_Idempotent verifies cancelling twice is not an error.
func TestUnregisterSelf_Idempotent(t *testing.T) {
	regs := newMockSelfRegistrationStore()
	deps := registerDeps(openOccurrence(), regs)
	input := RegisterSelfInput{OccurrenceID: "occ-1", ParticipantID: "par-1"}

	if err := ExecuteRegisterSelf(context.Background(), input, deps); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ExecuteUnregisterSelf(context.Background(), input, deps); err != nil {
		t.Fatalf("first unregister: %v", err)
	}
	if len(regs.registrations) != 0 {
		t.Fatalf("expected 0 registrations, got %d", len(regs.registrations))
	}
	if err := ExecuteUnregisterSelf(context.Background(), input, deps); err != nil {
		t.Errorf("expected second unregister to be a no-op, got %v", err)
	}
}
