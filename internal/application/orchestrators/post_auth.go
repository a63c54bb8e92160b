package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"ellarises/internal/domain/donation"
)

// DonationStoreForResolver defines the donation store interface needed by
// the post-auth resolver.
type DonationStoreForResolver interface {
	Save(ctx context.Context, d donation.Donation) error
}

// Default redirect targets used by the resolver.
const (
	DefaultLanding       = "/dashboard"
	DonationThanksTarget = "/donations/thanks"
	DonationRetryTarget  = "/donate"
)

// PostAuthInput carries the session's deferred-intent state at the moment
// authentication completed. The handler reads the carrier slots and passes
// them in; the resolver reports which slot it consumed so the handler can
// clear exactly that one.
type PostAuthInput struct {
	ParticipantID      string
	PendingAmountCents int64
	PendingDate        string // YYYY-MM-DD; empty when no draft is pending
	HasPendingDonation bool
	ReturnTo           string
}

// PostAuthResolution is the single redirect decision for one auth event.
type PostAuthResolution struct {
	Target          string
	ConsumedDraft   bool // the pending donation slot was used (and must be cleared)
	ConsumedReturn  bool // the returnTo slot was used (and must be cleared)
	PersistError    error  // non-nil when the draft could not be persisted
	PersistErrorMsg string // user-facing message for a failed draft persist
}

// PostAuthDeps holds dependencies for the post-auth resolver.
type PostAuthDeps struct {
	DonationStore DonationStoreForResolver
	GenerateID    func() string
	Now           func() time.Time
}

// ExecutePostAuthRedirect applies the strict post-authentication priority
// order, evaluated once: pending donation first, then returnTo, then the
// default landing. Exactly one path executes. A failure to persist the
// materialized donation never rolls back the login — the session is already
// committed — so the draft is still consumed and the failure is surfaced as
// a message on the retry target.
// PRE: Authentication has succeeded; input reflects the session's carrier
// POST: Returns one redirect target and the slots the caller must clear
func ExecutePostAuthRedirect(ctx context.Context, input PostAuthInput, deps PostAuthDeps) PostAuthResolution {
	if input.HasPendingDonation {
		d := donation.Donation{
			ID:            deps.GenerateID(),
			ParticipantID: input.ParticipantID,
			AmountCents:   input.PendingAmountCents,
			DonatedAt:     parseDraftDate(input.PendingDate, deps.Now),
			CreatedAt:     deps.Now(),
		}
		if err := d.Validate(); err != nil {
			slog.Warn("intent_event", "event", "deferred_donation_invalid", "participant_id", input.ParticipantID, "error", err)
			return PostAuthResolution{
				Target:          DonationRetryTarget,
				ConsumedDraft:   true,
				PersistError:    err,
				PersistErrorMsg: "Your pending donation was incomplete. Please re-enter it.",
			}
		}
		if err := deps.DonationStore.Save(ctx, d); err != nil {
			slog.Error("intent_event", "event", "deferred_donation_failed", "participant_id", input.ParticipantID, "error", err)
			return PostAuthResolution{
				Target:          DonationRetryTarget,
				ConsumedDraft:   true,
				PersistError:    err,
				PersistErrorMsg: "We could not record your donation. Please try again.",
			}
		}
		slog.Info("intent_event", "event", "deferred_donation_persisted", "participant_id", input.ParticipantID, "amount_cents", d.AmountCents)
		return PostAuthResolution{Target: DonationThanksTarget, ConsumedDraft: true}
	}

	if input.ReturnTo != "" {
		return PostAuthResolution{Target: input.ReturnTo, ConsumedReturn: true}
	}

	return PostAuthResolution{Target: DefaultLanding}
}

func parseDraftDate(raw string, now func() time.Time) time.Time {
	if raw == "" {
		return now()
	}
	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed
	}
	return now()
}
