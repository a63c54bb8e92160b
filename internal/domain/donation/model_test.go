package donation

import (
	"testing"
	"time"
)

// TestParseAmount tests dollar string parsing into cents.
func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"25", 2500},
		{"25.50", 2550},
		{"$25.50", 2550},
		{" $100 ", 10000},
		{"0.01", 1},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Errorf("ParseAmount(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestParseAmount_Invalid tests rejection of non-positive and garbage input.
func TestParseAmount_Invalid(t *testing.T) {
	for _, bad := range []string{"", "0", "-5", "abc", "$"} {
		if _, err := ParseAmount(bad); err != ErrInvalidAmount {
			t.Errorf("ParseAmount(%q): expected ErrInvalidAmount, got %v", bad, err)
		}
	}
}

// TestFormatAmount tests cents rendering.
func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(2550); got != "$25.50" {
		t.Errorf("expected $25.50, got %s", got)
	}
	if got := FormatAmount(100); got != "$1.00" {
		t.Errorf("expected $1.00, got %s", got)
	}
	if got := FormatAmount(5); got != "$0.05" {
		t.Errorf("expected $0.05, got %s", got)
	}
}

// TestDonation_Validate tests donation invariants.
func TestDonation_Validate(t *testing.T) {
	valid := Donation{
		ID:            "d1",
		ParticipantID: "p1",
		AmountCents:   2500,
		DonatedAt:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	noParticipant := valid
	noParticipant.ParticipantID = ""
	if err := noParticipant.Validate(); err != ErrEmptyParticipantID {
		t.Errorf("expected ErrEmptyParticipantID, got %v", err)
	}

	zeroAmount := valid
	zeroAmount.AmountCents = 0
	if err := zeroAmount.Validate(); err != ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	noDate := valid
	noDate.DonatedAt = time.Time{}
	if err := noDate.Validate(); err != ErrMissingDate {
		t.Errorf("expected ErrMissingDate, got %v", err)
	}
}
