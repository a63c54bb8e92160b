package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func anonymousSession() Session {
	return Session{Token: "tok-anon"}
}

func participantSession() Session {
	return Session{Token: "tok-par", Authenticated: true, AccountID: "acct-1", ParticipantID: "par-1", Role: "participant"}
}

func adminSession() Session {
	return Session{Token: "tok-adm", Authenticated: true, AccountID: "acct-2", Role: "admin"}
}

// TestAuthorize_Matrix walks the full decision table.
func TestAuthorize_Matrix(t *testing.T) {
	tests := []struct {
		name       string
		sess       Session
		req        Requirement
		wantKind   DecisionKind
		wantURL    string
		wantRecord bool
	}{
		{"anonymous route, anonymous caller", anonymousSession(), Anonymous(), DecisionAllow, "", false},
		{"anonymous route, admin caller", adminSession(), Anonymous(), DecisionAllow, "", false},
		{"login required, anonymous caller", anonymousSession(), LoggedIn(), DecisionRedirect, "/login", true},
		{"login required, participant caller", participantSession(), LoggedIn(), DecisionAllow, "", false},
		{"elevated required, anonymous caller", anonymousSession(), Elevated(), DecisionRedirect, "/login", true},
		{"elevated required, participant caller", participantSession(), Elevated(), DecisionRedirect, "/", false},
		{"elevated required, admin caller", adminSession(), Elevated(), DecisionAllow, "", false},
		{"owner gate, anonymous caller", anonymousSession(), OwnerOrElevated("par-1"), DecisionRedirect, "/login", true},
		{"owner gate, owning participant", participantSession(), OwnerOrElevated("par-1"), DecisionAllow, "", false},
		{"owner gate, other participant", participantSession(), OwnerOrElevated("par-9"), DecisionForbidden, "", false},
		{"owner gate, admin caller", adminSession(), OwnerOrElevated("par-9"), DecisionAllow, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.sess, tt.req)
			if d.Kind != tt.wantKind {
				t.Errorf("expected kind %v, got %v", tt.wantKind, d.Kind)
			}
			if d.URL != tt.wantURL {
				t.Errorf("expected URL %q, got %q", tt.wantURL, d.URL)
			}
			if d.RecordReturnTo != tt.wantRecord {
				t.Errorf("expected RecordReturnTo=%v, got %v", tt.wantRecord, d.RecordReturnTo)
			}
		})
	}
}

// TestAuthorize_ManagerIsElevated verifies manager and admin are one tier.
func TestAuthorize_ManagerIsElevated(t *testing.T) {
	manager := Session{Token: "tok-mgr", Authenticated: true, Role: "manager"}
	if d := Authorize(manager, Elevated()); d.Kind != DecisionAllow {
		t.Errorf("expected manager to pass the elevated gate, got %v", d.Kind)
	}
}

// TestRequire_RecordsReturnTo verifies the gate stores the original
// destination before redirecting an anonymous caller to login.
func TestRequire_RecordsReturnTo(t *testing.T) {
	sessions := NewSessionStore()
	token, _ := sessions.Create()
	sess, _ := sessions.Get(token)

	handler := RequireLogin(sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expected the handler not to run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/sessions/view?id=occ-1", nil)
	req = req.WithContext(ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login, got %q", loc)
	}
	url, ok := sessions.TakeReturnTo(token)
	if !ok || url != "/sessions/view?id=occ-1" {
		t.Errorf("expected returnTo recorded, got %q (%v)", url, ok)
	}
	if msg, ok := sessions.TakeFlash(token); !ok || msg == "" {
		t.Error("expected a flash message on the redirect")
	}
}

// TestRequire_AllowsAuthenticated verifies the gate passes allowed requests
// straight through.
func TestRequire_AllowsAuthenticated(t *testing.T) {
	sessions := NewSessionStore()
	ran := false
	handler := RequireElevated(sessions, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/participants", nil)
	req = req.WithContext(ContextWithSession(req.Context(), adminSession()))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ran {
		t.Error("expected the handler to run")
	}
}

// TestRequire_ForbiddenIsHard verifies ownership failures are a 403, not a
// redirect.
func TestRequire_ForbiddenIsHard(t *testing.T) {
	sessions := NewSessionStore()
	handler := Require(sessions, OwnerOrElevated("par-9"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("expected the handler not to run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/participants/view?id=par-9", nil)
	req = req.WithContext(ContextWithSession(req.Context(), participantSession()))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}
