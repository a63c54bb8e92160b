package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ellarises/internal/adapters/email"
	"ellarises/internal/domain/donation"
	"ellarises/internal/domain/participant"
)

// ParticipantStoreForDonation resolves the donor for the receipt email.
type ParticipantStoreForDonation interface {
	GetByID(ctx context.Context, id string) (participant.Participant, error)
}

// RecordDonationInput carries the submitted donation form values.
type RecordDonationInput struct {
	ParticipantID string
	RawAmount     string
	RawDate       string // YYYY-MM-DD; empty means today
}

// RecordDonationDeps holds dependencies for recording a donation.
type RecordDonationDeps struct {
	DonationStore    DonationStoreForResolver
	ParticipantStore ParticipantStoreForDonation
	EmailSender      email.Sender
	EmailFrom        string
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteRecordDonation persists an authenticated donation and sends a
// receipt email. The receipt is best effort: a provider failure is logged
// and the donation stands.
// PRE: Caller is the authenticated donor
// POST: Donation row exists; receipt sent or a warning logged
func ExecuteRecordDonation(ctx context.Context, input RecordDonationInput, deps RecordDonationDeps) (donation.Donation, error) {
	if input.ParticipantID == "" {
		return donation.Donation{}, errors.New("participant id is required")
	}
	cents, err := donation.ParseAmount(input.RawAmount)
	if err != nil {
		return donation.Donation{}, err
	}

	donatedAt := deps.Now()
	if input.RawDate != "" {
		parsed, err := time.Parse("2006-01-02", input.RawDate)
		if err != nil {
			return donation.Donation{}, donation.ErrMissingDate
		}
		donatedAt = parsed
	}

	d := donation.Donation{
		ID:            deps.GenerateID(),
		ParticipantID: input.ParticipantID,
		AmountCents:   cents,
		DonatedAt:     donatedAt,
		CreatedAt:     deps.Now(),
	}
	if err := d.Validate(); err != nil {
		return donation.Donation{}, err
	}
	if err := deps.DonationStore.Save(ctx, d); err != nil {
		return donation.Donation{}, err
	}

	slog.Info("intent_event", "event", "donation_recorded", "donation_id", d.ID, "participant_id", d.ParticipantID, "amount_cents", d.AmountCents)
	sendDonationReceipt(ctx, d, deps)
	return d, nil
}

func sendDonationReceipt(ctx context.Context, d donation.Donation, deps RecordDonationDeps) {
	if deps.EmailSender == nil || deps.ParticipantStore == nil {
		return
	}
	p, err := deps.ParticipantStore.GetByID(ctx, d.ParticipantID)
	if err != nil || p.Email == "" {
		slog.Warn("intent_event", "event", "receipt_skipped", "donation_id", d.ID, "reason", "no donor email")
		return
	}

	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Thank you for your gift of <strong>%s</strong> on %s. Your support makes our programs possible.</p><p>— Ella Rises</p>",
		p.FirstName, donation.FormatAmount(d.AmountCents), d.DonatedAt.Format("January 2, 2006"),
	)
	_, err = deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{p.Email},
		From:    deps.EmailFrom,
		Subject: "Thank you for your donation to Ella Rises",
		HTML:    body,
	})
	if err != nil {
		slog.Warn("intent_event", "event", "receipt_failed", "donation_id", d.ID, "error", err)
		return
	}
	slog.Info("intent_event", "event", "receipt_sent", "donation_id", d.ID)
}
