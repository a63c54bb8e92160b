package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/application/orchestrators"
	"ellarises/internal/application/projections"
)

// handleHome renders the landing page with upcoming sessions.
func handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetEventList(r.Context(), projections.GetEventListQuery{UpcomingOnly: true}, projections.GetEventListDeps{
		EventStore:        stores.EventStore,
		OccurrenceStore:   stores.OccurrenceStore,
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "home.html", map[string]any{
		"Events": result.Events,
	})
}

// handleDashboard renders the logged-in landing page: the participant's own
// session history, milestones, and giving total.
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	data := map[string]any{}
	if sess.ParticipantID != "" {
		profile, err := projections.QueryGetParticipantProfile(r.Context(), projections.GetParticipantProfileQuery{
			ParticipantID: sess.ParticipantID,
		}, profileDeps())
		if err == nil {
			data["Profile"] = profile
		}
	}

	renderTemplate(w, r, "dashboard.html", data)
}

// handleLogin handles GET (form) and POST (authenticate) for /login.
// A successful POST hands the redirect decision to the post-auth resolver:
// a pending donation wins over a stored return destination, which wins over
// the default landing.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	if r.Method == "GET" {
		if sess.Authenticated {
			http.Redirect(w, r, orchestrators.DefaultLanding, http.StatusSeeOther)
			return
		}
		loginError, _ := sessions.TakeLoginError(sess.Token)
		renderTemplate(w, r, "login.html", map[string]any{
			"CSRFToken": csrf.Token(r),
			"Error":     loginError,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		result, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
			Email:    r.FormValue("Email"),
			Password: r.FormValue("Password"),
		}, orchestrators.LoginDeps{
			AccountStore: stores.AccountStore,
		})
		if err != nil {
			renderTemplate(w, r, "login.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		if !sessions.Authenticate(sess.Token, result.AccountID, result.ParticipantID, result.Email, result.Role) {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		resolvePostAuth(w, r, sess, result.ParticipantID)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleSignup handles GET (form) and POST (create account) for /signup.
// Signup authenticates the new account immediately, so the same post-auth
// resolution applies: a donation drafted before signup is materialized.
func handleSignup(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	if r.Method == "GET" {
		if sess.Authenticated {
			http.Redirect(w, r, orchestrators.DefaultLanding, http.StatusSeeOther)
			return
		}
		renderTemplate(w, r, "signup.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		input := orchestrators.SignupInput{
			FirstName: r.FormValue("FirstName"),
			LastName:  r.FormValue("LastName"),
			Email:     r.FormValue("Email"),
			Phone:     r.FormValue("Phone"),
			City:      r.FormValue("City"),
			Password:  r.FormValue("Password"),
		}
		if input.Password != r.FormValue("ConfirmPassword") {
			renderTemplate(w, r, "signup.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     "Passwords do not match",
			})
			return
		}

		result, err := orchestrators.ExecuteSignup(r.Context(), input, orchestrators.SignupDeps{
			AccountStore:     stores.AccountStore,
			ParticipantStore: stores.ParticipantStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			renderTemplate(w, r, "signup.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
			})
			return
		}

		if !sessions.Authenticate(sess.Token, result.AccountID, result.ParticipantID, result.Email, result.Role) {
			http.Error(w, "Session error", http.StatusInternalServerError)
			return
		}

		resolvePostAuth(w, r, sess, result.ParticipantID)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// resolvePostAuth runs the post-auth resolver against the session's carrier
// snapshot and clears exactly the slot it consumed. sess is the snapshot
// taken before authentication; the carrier slots survive Authenticate.
func resolvePostAuth(w http.ResponseWriter, r *http.Request, sess middleware.Session, participantID string) {
	input := orchestrators.PostAuthInput{
		ParticipantID: participantID,
		ReturnTo:      sess.ReturnTo,
	}
	if sess.PendingDonation != nil {
		input.HasPendingDonation = true
		input.PendingAmountCents = sess.PendingDonation.AmountCents
		input.PendingDate = sess.PendingDonation.Date
	}

	resolution := orchestrators.ExecutePostAuthRedirect(r.Context(), input, orchestrators.PostAuthDeps{
		DonationStore: stores.DonationStore,
		GenerateID:    generateID,
		Now:           timeNow,
	})

	if resolution.ConsumedDraft {
		sessions.TakePendingDonation(sess.Token)
	}
	if resolution.ConsumedReturn {
		sessions.TakeReturnTo(sess.Token)
	}
	if resolution.PersistErrorMsg != "" {
		sessions.SetFlash(sess.Token, resolution.PersistErrorMsg)
	}

	http.Redirect(w, r, resolution.Target, http.StatusSeeOther)
}

// handleLogout handles POST /logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		sessions.Destroy(sess.Token)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// profileDeps assembles the participant profile projection dependencies.
func profileDeps() projections.GetParticipantProfileDeps {
	return projections.GetParticipantProfileDeps{
		ParticipantStore:  stores.ParticipantStore,
		RegistrationStore: stores.RegistrationStore,
		OccurrenceStore:   stores.OccurrenceStore,
		EventStore:        stores.EventStore,
		SurveyStore:       stores.SurveyStore,
		MilestoneStore:    stores.MilestoneStore,
		DonationStore:     stores.DonationStore,
	}
}
