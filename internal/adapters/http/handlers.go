package web

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/domain/donation"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// templatesDir is a variable so tests can point it at the package-relative
// directory.
var templatesDir = "internal/adapters/http/templates"

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	role := ""
	email := ""
	loggedIn := false
	elevated := false
	flash := ""
	if ok {
		role = sess.Role
		email = sess.Email
		loggedIn = sess.Authenticated
		elevated = sess.IsElevated()
		flash, _ = sessions.TakeFlash(sess.Token)
	}

	funcMap := template.FuncMap{
		"currentRole":  func() string { return role },
		"currentEmail": func() string { return email },
		"isLoggedIn":   func() bool { return loggedIn },
		"isElevated":   func() bool { return elevated },
		"flash":        func() string { return flash },
		"csrfToken":    func() string { return csrf.Token(r) },
		"formatAmount": donation.FormatAmount,
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Mon 2 Jan 2006")
		},
		"formatDateTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Mon 2 Jan 2006, 3:04pm")
		},
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		http.Error(w, "Template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tpl.Execute(w, data); err != nil {
		http.Error(w, "Render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// redirectWithFlash sets a one-shot message and 303s to the target.
func redirectWithFlash(w http.ResponseWriter, r *http.Request, target, message string) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && message != "" {
		sessions.SetFlash(sess.Token, message)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// registerRoutes maps URLs to handlers. Write endpoints that demand a role
// are wrapped with the authorization gate; per-record ownership checks live
// inside the handlers that need the record first.
func registerRoutes(mux *http.ServeMux) {
	// Public pages
	mux.HandleFunc("/", handleHome)
	mux.HandleFunc("/events", handleEventList)
	mux.HandleFunc("/events/view", handleEventDetail)
	mux.HandleFunc("/sessions/view", handleOccurrenceDetail)
	mux.HandleFunc("/login", handleLogin)
	mux.HandleFunc("/signup", handleSignup)
	mux.HandleFunc("/logout", handleLogout)

	// Donations: the GET form and the POST are open to anonymous visitors;
	// an anonymous POST parks the draft in the session and detours to login.
	mux.HandleFunc("/donate", handleDonate)
	mux.Handle("/donations", middleware.RequireLogin(sessions, http.HandlerFunc(handleDonationHistory)))
	mux.Handle("/donations/thanks", middleware.RequireLogin(sessions, http.HandlerFunc(handleDonationThanks)))

	// Logged-in pages
	mux.Handle("/dashboard", middleware.RequireLogin(sessions, http.HandlerFunc(handleDashboard)))
	mux.Handle("/registrations", middleware.RequireLogin(sessions, http.HandlerFunc(handleRegister)))
	mux.Handle("/registrations/cancel", middleware.RequireLogin(sessions, http.HandlerFunc(handleUnregister)))
	mux.Handle("/sessions/survey", middleware.RequireLogin(sessions, http.HandlerFunc(handleSurvey)))
	mux.Handle("/participants/view", middleware.RequireLogin(sessions, http.HandlerFunc(handleParticipantProfile)))

	// Staff pages
	mux.Handle("/participants", middleware.RequireElevated(sessions, http.HandlerFunc(handleParticipantList)))
	mux.Handle("/participants/delete", middleware.RequireElevated(sessions, http.HandlerFunc(handleParticipantDelete)))
	mux.Handle("/events/new", middleware.RequireElevated(sessions, http.HandlerFunc(handleEventForm)))
	mux.Handle("/events/edit", middleware.RequireElevated(sessions, http.HandlerFunc(handleEventForm)))
	mux.Handle("/events/delete", middleware.RequireElevated(sessions, http.HandlerFunc(handleEventDelete)))
	mux.Handle("/sessions/new", middleware.RequireElevated(sessions, http.HandlerFunc(handleOccurrenceForm)))
	mux.Handle("/sessions/edit", middleware.RequireElevated(sessions, http.HandlerFunc(handleOccurrenceForm)))
	mux.Handle("/sessions/delete", middleware.RequireElevated(sessions, http.HandlerFunc(handleOccurrenceDelete)))
	mux.Handle("/checkin", middleware.RequireElevated(sessions, http.HandlerFunc(handleCheckIn)))
	mux.Handle("/milestones/new", middleware.RequireElevated(sessions, http.HandlerFunc(handleMilestoneForm)))
	mux.Handle("/milestones/delete", middleware.RequireElevated(sessions, http.HandlerFunc(handleMilestoneDelete)))
}
