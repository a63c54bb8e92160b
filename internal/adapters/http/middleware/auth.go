package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	domainAccount "ellarises/internal/domain/account"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// PendingDonation is an unauthenticated donation attempt held in the
// session until login or signup completes.
type PendingDonation struct {
	AmountCents int64
	Date        string // YYYY-MM-DD as submitted
}

// Session represents a per-browser session. Sessions exist before
// authentication so the deferred-intent slots can operate for anonymous
// visitors; Authenticated flips on login/signup.
type Session struct {
	Token         string
	Authenticated bool
	AccountID     string
	ParticipantID string
	Email         string
	Role          string
	CreatedAt     time.Time

	// Deferred-intent carrier: at most one pending action plus a return
	// destination, consumed exactly once by the post-auth resolver.
	PendingDonation *PendingDonation
	ReturnTo        string

	// One-shot fields, read-and-clear via the Take* methods on the store.
	Flash      string
	LoginError string
}

// IsElevated reports whether the session carries manager or admin capability.
// INVARIANT: Session fields are not mutated
func (s Session) IsElevated() bool {
	return s.Authenticated && domainAccount.IsElevated(s.Role)
}

// SessionStore is an in-memory session store.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// Create stores a new anonymous session and returns its token.
// POST: Session exists with Authenticated=false
func (ss *SessionStore) Create() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sessions[token] = &Session{
		Token:     token,
		CreatedAt: time.Now(),
	}
	return token, nil
}

// Get retrieves a snapshot of a session by token.
// PRE: token is non-empty
// POST: Returns session copy if valid and not expired
func (ss *SessionStore) Get(token string) (Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return Session{}, false
	}
	// Sessions expire after 24 hours
	if time.Since(session.CreatedAt) > 24*time.Hour {
		delete(ss.sessions, token)
		return Session{}, false
	}
	return *session, true
}

// Authenticate populates the identity fields of an existing session,
// preserving the deferred-intent carrier so a pending action survives the
// login detour.
// PRE: token identifies a live session
// POST: Session is authenticated with the given identity
func (ss *SessionStore) Authenticate(token, accountID, participantID, email, role string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok {
		return false
	}
	session.Authenticated = true
	session.AccountID = accountID
	session.ParticipantID = participantID
	session.Email = email
	session.Role = domainAccount.NormalizeRole(role)
	return true
}

// Destroy removes a session by token (logout).
// POST: Session with given token is removed
func (ss *SessionStore) Destroy(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.sessions, token)
}

// SetReturnTo records the originally requested URL before a login redirect.
// Last write wins: a later gated attempt replaces an earlier destination.
func (ss *SessionStore) SetReturnTo(token, url string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if session, ok := ss.sessions[token]; ok {
		session.ReturnTo = url
	}
}

// TakeReturnTo reads and clears the return destination.
// POST: Slot is empty after the call
func (ss *SessionStore) TakeReturnTo(token string) (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok || session.ReturnTo == "" {
		return "", false
	}
	url := session.ReturnTo
	session.ReturnTo = ""
	return url, true
}

// SetPendingDonation stores an unauthenticated donation draft. The slot
// holds at most one draft; a new attempt replaces the old one.
func (ss *SessionStore) SetPendingDonation(token string, d PendingDonation) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if session, ok := ss.sessions[token]; ok {
		session.PendingDonation = &d
	}
}

// TakePendingDonation reads and clears the donation draft.
// POST: Slot is empty after the call
func (ss *SessionStore) TakePendingDonation(token string) (PendingDonation, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok || session.PendingDonation == nil {
		return PendingDonation{}, false
	}
	d := *session.PendingDonation
	session.PendingDonation = nil
	return d, true
}

// SetFlash stores a one-shot informational message.
func (ss *SessionStore) SetFlash(token, message string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if session, ok := ss.sessions[token]; ok {
		session.Flash = message
	}
}

// TakeFlash reads and clears the one-shot message.
// POST: Slot is empty after the call
func (ss *SessionStore) TakeFlash(token string) (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok || session.Flash == "" {
		return "", false
	}
	message := session.Flash
	session.Flash = ""
	return message, true
}

// SetLoginError stores a one-shot login failure message.
func (ss *SessionStore) SetLoginError(token, message string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if session, ok := ss.sessions[token]; ok {
		session.LoginError = message
	}
}

// TakeLoginError reads and clears the one-shot login failure message.
// POST: Slot is empty after the call
func (ss *SessionStore) TakeLoginError(token string) (string, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	session, ok := ss.sessions[token]
	if !ok || session.LoginError == "" {
		return "", false
	}
	message := session.LoginError
	session.LoginError = ""
	return message, true
}

const sessionCookieName = "ellarises_session"

// SecureCookies controls the Secure flag on session cookies. Enabled in
// production by the server entrypoint.
var SecureCookies = false

// Auth returns middleware that resolves the session from the cookie,
// creating an anonymous session on first contact, and sets it in context.
// It does NOT block unauthenticated requests — the authorization gate does.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var session Session
			var ok bool
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				session, ok = sessions.Get(cookie.Value)
			}
			if !ok {
				token, err := sessions.Create()
				if err != nil {
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				SetSessionCookie(w, token)
				session, _ = sessions.Get(token)
			}
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionFromContext extracts the session from the request context.
func GetSessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionContextKey).(Session)
	return session, ok
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   86400, // 24 hours
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// ContextWithSession returns a context with the given session set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
