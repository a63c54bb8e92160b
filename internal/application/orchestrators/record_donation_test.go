package orchestrators

import (
	"context"
	"errors"
	"testing"

	participantStore "ellarises/internal/adapters/storage/participant"
	"ellarises/internal/adapters/email"
	"ellarises/internal/domain/donation"
	"ellarises/internal/domain/participant"
)

type mockDonorLookup struct {
	participants map[string]participant.Participant // keyed by ID
}

func (m *mockDonorLookup) GetByID(ctx context.Context, id string) (participant.Participant, error) {
	p, ok := m.participants[id]
	if !ok {
		return participant.Participant{}, participantStore.ErrNotFound
	}
	return p, nil
}

type mockEmailSender struct {
	sent    []email.SendRequest
	sendErr error
}

func (m *mockEmailSender) Send(ctx context.Context, req email.SendRequest) (email.SendResult, error) {
	if m.sendErr != nil {
		return email.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, req)
	return email.SendResult{MessageID: "msg-1", SentAt: fixedTime}, nil
}

func donationFixture(sender email.Sender) (RecordDonationDeps, *mockResolverDonationStore) {
	store := &mockResolverDonationStore{}
	donors := &mockDonorLookup{participants: map[string]participant.Participant{
		"par-1": {ID: "par-1", FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com", Status: participant.StatusActive},
	}}
	return RecordDonationDeps{
		DonationStore:    store,
		ParticipantStore: donors,
		EmailSender:      sender,
		EmailFrom:        "Ella Rises <noreply@ellarises.org>",
		GenerateID:       fixedID,
		Now:              fixedNow,
	}, store
}

// TestRecordDonation_Success verifies the donation and receipt.
func TestRecordDonation_Success(t *testing.T) {
	sender := &mockEmailSender{}
	deps, store := donationFixture(sender)

	d, err := ExecuteRecordDonation(context.Background(), RecordDonationInput{ParticipantID: "par-1", RawAmount: "$25.50", RawDate: "2026-03-10"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.AmountCents != 2550 {
		t.Errorf("expected 2550 cents, got %d", d.AmountCents)
	}
	if got := d.DonatedAt.Format("2006-01-02"); got != "2026-03-10" {
		t.Errorf("expected donated_at 2026-03-10, got %s", got)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 saved donation, got %d", len(store.saved))
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 receipt, got %d", len(sender.sent))
	}
	if sender.sent[0].To[0] != "maria@example.com" {
		t.Errorf("expected receipt to the donor, got %v", sender.sent[0].To)
	}
}

// TestRecordDonation_ReceiptFailureDoesNotFail verifies the receipt is best
// effort: a provider outage does not lose the donation.
func TestRecordDonation_ReceiptFailureDoesNotFail(t *testing.T) {
	sender := &mockEmailSender{sendErr: errors.New("provider down")}
	deps, store := donationFixture(sender)

	_, err := ExecuteRecordDonation(context.Background(), RecordDonationInput{ParticipantID: "par-1", RawAmount: "10"}, deps)
	if err != nil {
		t.Fatalf("expected success despite receipt failure, got %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("expected the donation saved, got %d", len(store.saved))
	}
}

// TestRecordDonation_NilSenderIsSafe verifies the no-email configuration.
func TestRecordDonation_NilSenderIsSafe(t *testing.T) {
	deps, store := donationFixture(nil)

	if _, err := ExecuteRecordDonation(context.Background(), RecordDonationInput{ParticipantID: "par-1", RawAmount: "10"}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.saved) != 1 {
		t.Errorf("expected the donation saved, got %d", len(store.saved))
	}
}

// TestRecordDonation_InvalidAmount verifies amount validation.
func TestRecordDonation_InvalidAmount(t *testing.T) {
	deps, store := donationFixture(nil)

	for _, raw := range []string{"", "0", "-5", "abc"} {
		if _, err := ExecuteRecordDonation(context.Background(), RecordDonationInput{ParticipantID: "par-1", RawAmount: raw}, deps); err != donation.ErrInvalidAmount {
			t.Errorf("RawAmount %q: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	if len(store.saved) != 0 {
		t.Errorf("expected nothing saved, got %d", len(store.saved))
	}
}

// TestRecordDonation_EmptyDateDefaultsToNow verifies the date fallback.
func TestRecordDonation_EmptyDateDefaultsToNow(t *testing.T) {
	deps, _ := donationFixture(nil)

	d, err := ExecuteRecordDonation(context.Background(), RecordDonationInput{ParticipantID: "par-1", RawAmount: "5"}, deps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.DonatedAt.Equal(fixedTime) {
		t.Errorf("expected donated_at %v, got %v", fixedTime, d.DonatedAt)
	}
}
