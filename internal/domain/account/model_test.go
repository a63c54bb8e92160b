package account

import (
	"testing"
	"time"
)

// TestNormalizeRole tests the single role normalization point.
func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" Manager ", RoleManager},
		{"participant", RoleParticipant},
		{"", RoleParticipant},
		{"superuser", RoleParticipant},
		{"root", RoleParticipant},
	}
	for _, tt := range tests {
		if got := NormalizeRole(tt.in); got != tt.want {
			t.Errorf("NormalizeRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestIsElevated tests that manager and admin are one capability tier.
func TestIsElevated(t *testing.T) {
	if !IsElevated(RoleAdmin) {
		t.Error("expected admin to be elevated")
	}
	if !IsElevated(RoleManager) {
		t.Error("expected manager to be elevated")
	}
	if IsElevated(RoleParticipant) {
		t.Error("expected participant not to be elevated")
	}
}

// TestSetPassword_MinLength tests the 12-character minimum.
func TestSetPassword_MinLength(t *testing.T) {
	a := Account{}
	if err := a.SetPassword("short"); err != ErrPasswordTooShort {
		t.Errorf("expected ErrPasswordTooShort, got %v", err)
	}
	if err := a.SetPassword(""); err != ErrEmptyPassword {
		t.Errorf("expected ErrEmptyPassword, got %v", err)
	}
	if err := a.SetPassword("long enough password"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if a.PasswordHash == "" || a.PasswordHash == "long enough password" {
		t.Error("expected password to be hashed")
	}
}

// TestCheckPassword tests verification against the stored hash.
func TestCheckPassword(t *testing.T) {
	a := Account{}
	if err := a.SetPassword("correct horse battery"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	if err := a.CheckPassword("correct horse battery"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := a.CheckPassword("wrong password!!"); err != ErrWrongPassword {
		t.Errorf("expected ErrWrongPassword, got %v", err)
	}
}

// TestRecordFailedLogin_LocksAfterFive tests the lockout policy.
func TestRecordFailedLogin_LocksAfterFive(t *testing.T) {
	a := Account{}
	for i := 0; i < 4; i++ {
		a.RecordFailedLogin()
	}
	if a.IsLocked() {
		t.Error("expected unlocked after 4 failures")
	}
	a.RecordFailedLogin()
	if !a.IsLocked() {
		t.Error("expected locked after 5 failures")
	}

	a.ResetFailedLogins()
	if a.IsLocked() || a.FailedLogins != 0 {
		t.Error("expected reset to clear lock and counter")
	}
}

// TestIsLocked_Expired tests that an expired lock no longer blocks.
func TestIsLocked_Expired(t *testing.T) {
	a := Account{LockedUntil: time.Now().Add(-time.Minute)}
	if a.IsLocked() {
		t.Error("expected expired lock to be inactive")
	}
}

// TestAccount_Validate tests account field invariants.
func TestAccount_Validate(t *testing.T) {
	valid := Account{Email: "sam@example.com", Role: RoleParticipant}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noEmail := valid
	noEmail.Email = ""
	if err := noEmail.Validate(); err != ErrEmptyEmail {
		t.Errorf("expected ErrEmptyEmail, got %v", err)
	}

	badEmail := valid
	badEmail.Email = "not-an-email"
	if err := badEmail.Validate(); err != ErrInvalidEmail {
		t.Errorf("expected ErrInvalidEmail, got %v", err)
	}

	badRole := valid
	badRole.Role = "superuser"
	if err := badRole.Validate(); err != ErrInvalidRole {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}
}
