package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ellarises/internal/domain/account"
)

// SeedAdminDeps holds stores needed for admin seeding.
type SeedAdminDeps struct {
	AccountStore seedAccountStore
	GenerateID   func() string
	Now          func() time.Time
}

type seedAccountStore interface {
	Save(ctx context.Context, a account.Account) error
	GetByEmail(ctx context.Context, email string) (account.Account, error)
}

// ExecuteSeedAdmin creates the bootstrap admin account if it doesn't
// already exist. Idempotent — checked by email, so restarts are safe.
// Admins carry no participant record: they manage programs, they don't
// attend them.
// PRE: Database is migrated; email and password come from configuration
// POST: An admin account with the given email exists
func ExecuteSeedAdmin(ctx context.Context, adminEmail, adminPassword string, deps SeedAdminDeps) error {
	if adminEmail == "" || adminPassword == "" {
		slog.Info("seed_event", "event", "admin_seed_skipped", "reason", "no admin credentials configured")
		return nil
	}
	if _, err := deps.AccountStore.GetByEmail(ctx, adminEmail); err == nil {
		return nil
	}

	acct := account.Account{
		ID:        deps.GenerateID(),
		Email:     adminEmail,
		Role:      account.RoleAdmin,
		CreatedAt: deps.Now(),
	}
	if err := acct.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("seed admin: set password: %w", err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("seed admin: save: %w", err)
	}

	slog.Info("seed_event", "event", "admin_created", "email", adminEmail)
	return nil
}
