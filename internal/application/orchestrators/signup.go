package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ellarises/internal/domain/account"
	"ellarises/internal/domain/participant"
)

// AccountStoreForSignup defines the account store interface needed by Signup.
type AccountStoreForSignup interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// ParticipantStoreForSignup defines the participant store interface needed by Signup.
type ParticipantStoreForSignup interface {
	GetByEmail(ctx context.Context, email string) (participant.Participant, error)
	Save(ctx context.Context, p participant.Participant) error
}

// SignupInput carries input for the signup orchestrator.
type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	City      string
	Password  string
}

// SignupResult carries the identities created by a successful signup.
type SignupResult struct {
	AccountID     string
	ParticipantID string
	Email         string
	Role          string
}

// SignupDeps holds dependencies for Signup.
type SignupDeps struct {
	AccountStore     AccountStoreForSignup
	ParticipantStore ParticipantStoreForSignup
	GenerateID       func() string
	Now              func() time.Time
}

// ErrEmailTaken is returned when the email already has an account.
var ErrEmailTaken = errors.New("an account with this email already exists")

// ExecuteSignup creates a participant-role account plus its participant row.
// PRE: Valid input fields
// POST: Account and Participant exist and are linked both ways
// INVARIANT: Email is unique across accounts and participants
func ExecuteSignup(ctx context.Context, input SignupInput, deps SignupDeps) (SignupResult, error) {
	if _, err := deps.AccountStore.GetByEmail(ctx, input.Email); err == nil {
		return SignupResult{}, ErrEmailTaken
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     input.Email,
		Role:      account.RoleParticipant,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(input.Password); err != nil {
		return SignupResult{}, err
	}
	if err := acct.Validate(); err != nil {
		return SignupResult{}, err
	}

	p := participant.Participant{
		ID:        deps.GenerateID(),
		AccountID: acct.ID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		City:      input.City,
		Status:    participant.StatusActive,
	}
	if err := p.Validate(); err != nil {
		return SignupResult{}, err
	}

	acct.ParticipantID = p.ID

	if err := deps.ParticipantStore.Save(ctx, p); err != nil {
		return SignupResult{}, err
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return SignupResult{}, err
	}

	slog.Info("auth_event", "event", "signup", "email", input.Email, "participant_id", p.ID)

	return SignupResult{
		AccountID:     acct.ID,
		ParticipantID: p.ID,
		Email:         acct.Email,
		Role:          acct.Role,
	}, nil
}
