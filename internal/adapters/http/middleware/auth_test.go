package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestSessionStore_CreateAndGet verifies anonymous sessions exist before
// authentication.
func TestSessionStore_CreateAndGet(t *testing.T) {
	store := NewSessionStore()

	token, err := store.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	sess, ok := store.Get(token)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if sess.Authenticated {
		t.Error("expected a fresh session to be anonymous")
	}
	if sess.Token != token {
		t.Errorf("expected token %q, got %q", token, sess.Token)
	}

	if _, ok := store.Get("no-such-token"); ok {
		t.Error("expected unknown token to miss")
	}
}

// TestSessionStore_Expiry verifies the 24-hour lifetime.
func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create()

	store.mu.Lock()
	store.sessions[token].CreatedAt = time.Now().Add(-25 * time.Hour)
	store.mu.Unlock()

	if _, ok := store.Get(token); ok {
		t.Error("expected expired session to be gone")
	}
}

// TestAuthenticate_PreservesCarrier verifies login upgrades the session in
// place: the pending donation and returnTo slots survive the detour.
func TestAuthenticate_PreservesCarrier(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create()

	store.SetPendingDonation(token, PendingDonation{AmountCents: 2550, Date: "2026-03-10"})
	store.SetReturnTo(token, "/events/view?id=ev-1")

	if !store.Authenticate(token, "acct-1", "par-1", "maria@example.com", "ADMIN") {
		t.Fatal("expected Authenticate to succeed")
	}

	sess, ok := store.Get(token)
	if !ok {
		t.Fatal("expected session to survive")
	}
	if !sess.Authenticated || sess.AccountID != "acct-1" || sess.ParticipantID != "par-1" {
		t.Errorf("unexpected identity: %+v", sess)
	}
	if sess.Role != "admin" {
		t.Errorf("expected normalized role admin, got %q", sess.Role)
	}
	if sess.PendingDonation == nil || sess.PendingDonation.AmountCents != 2550 {
		t.Error("expected the pending donation to survive authentication")
	}
	if sess.ReturnTo != "/events/view?id=ev-1" {
		t.Errorf("expected returnTo preserved, got %q", sess.ReturnTo)
	}

	if store.Authenticate("no-such-token", "a", "p", "e", "r") {
		t.Error("expected Authenticate on an unknown token to fail")
	}
}

// TestTakeMethods_ReadAndClear verifies each one-shot slot empties on read.
func TestTakeMethods_ReadAndClear(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create()

	store.SetPendingDonation(token, PendingDonation{AmountCents: 1000})
	d, ok := store.TakePendingDonation(token)
	if !ok || d.AmountCents != 1000 {
		t.Errorf("expected the draft back, got %+v (%v)", d, ok)
	}
	if _, ok := store.TakePendingDonation(token); ok {
		t.Error("expected the donation slot to be empty after Take")
	}

	store.SetReturnTo(token, "/dashboard")
	store.SetReturnTo(token, "/events") // last write wins
	url, ok := store.TakeReturnTo(token)
	if !ok || url != "/events" {
		t.Errorf("expected /events, got %q (%v)", url, ok)
	}
	if _, ok := store.TakeReturnTo(token); ok {
		t.Error("expected the returnTo slot to be empty after Take")
	}

	store.SetFlash(token, "Saved.")
	msg, ok := store.TakeFlash(token)
	if !ok || msg != "Saved." {
		t.Errorf("expected flash back, got %q (%v)", msg, ok)
	}
	if _, ok := store.TakeFlash(token); ok {
		t.Error("expected the flash slot to be empty after Take")
	}

	store.SetLoginError(token, "Invalid email or password.")
	msg, ok = store.TakeLoginError(token)
	if !ok || msg == "" {
		t.Errorf("expected login error back, got %q (%v)", msg, ok)
	}
	if _, ok := store.TakeLoginError(token); ok {
		t.Error("expected the login error slot to be empty after Take")
	}
}

// TestDestroy verifies logout removes the session.
func TestDestroy(t *testing.T) {
	store := NewSessionStore()
	token, _ := store.Create()

	store.Destroy(token)
	if _, ok := store.Get(token); ok {
		t.Error("expected destroyed session to be gone")
	}
}

// TestAuth_CreatesAnonymousSession verifies the middleware hands every
// request a session, minting one on first contact.
func TestAuth_CreatesAnonymousSession(t *testing.T) {
	store := NewSessionStore()
	var got Session
	handler := Auth(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = GetSessionFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got.Token == "" {
		t.Fatal("expected a session in context")
	}
	if got.Authenticated {
		t.Error("expected the minted session to be anonymous")
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ellarises_session" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value != got.Token {
		t.Fatal("expected the session cookie to be set")
	}

	// A second request with the cookie resolves the same session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	var second Session
	handler = Auth(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		second, _ = GetSessionFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if second.Token != got.Token {
		t.Errorf("expected the same session, got %q and %q", got.Token, second.Token)
	}
}
