package web

import (
	"net/http"

	"github.com/gorilla/csrf"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/application/orchestrators"
	donationDomain "ellarises/internal/domain/donation"
)

// handleDonate handles GET (form) and POST (give) for /donate. This is the
// entry point of the deferred-intent flow: an anonymous submission is not
// rejected — the draft is parked in the session and the visitor detours
// through login, after which the post-auth resolver materializes it.
func handleDonate(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	if r.Method == "GET" {
		renderTemplate(w, r, "donate.html", map[string]any{
			"CSRFToken": csrf.Token(r),
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		rawAmount := r.FormValue("Amount")
		rawDate := r.FormValue("Date")

		if !sess.Authenticated {
			cents, err := donationDomain.ParseAmount(rawAmount)
			if err != nil {
				renderTemplate(w, r, "donate.html", map[string]any{
					"CSRFToken": csrf.Token(r),
					"Error":     err.Error(),
					"Amount":    rawAmount,
					"Date":      rawDate,
				})
				return
			}
			sessions.SetPendingDonation(sess.Token, middleware.PendingDonation{
				AmountCents: cents,
				Date:        rawDate,
			})
			redirectWithFlash(w, r, "/login", "Please log in or sign up to complete your donation.")
			return
		}

		_, err := orchestrators.ExecuteRecordDonation(r.Context(), orchestrators.RecordDonationInput{
			ParticipantID: sess.ParticipantID,
			RawAmount:     rawAmount,
			RawDate:       rawDate,
		}, orchestrators.RecordDonationDeps{
			DonationStore:    stores.DonationStore,
			ParticipantStore: stores.ParticipantStore,
			EmailSender:      emailSender,
			EmailFrom:        emailFromAddress,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			renderTemplate(w, r, "donate.html", map[string]any{
				"CSRFToken": csrf.Token(r),
				"Error":     err.Error(),
				"Amount":    rawAmount,
				"Date":      rawDate,
			})
			return
		}
		http.Redirect(w, r, orchestrators.DonationThanksTarget, http.StatusSeeOther)
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleDonationThanks handles GET /donations/thanks.
func handleDonationThanks(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	renderTemplate(w, r, "donation_thanks.html", nil)
}

// handleDonationHistory handles GET /donations: the caller's own giving
// history with a running total.
func handleDonationHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())

	donations, err := stores.DonationStore.ListByParticipantID(r.Context(), sess.ParticipantID)
	if err != nil {
		internalError(w, err)
		return
	}
	total, err := stores.DonationStore.SumCentsByParticipantID(r.Context(), sess.ParticipantID)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "donation_history.html", map[string]any{
		"Donations":  donations,
		"TotalCents": total,
	})
}
