package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/application/orchestrators"
	"ellarises/internal/application/projections"
	surveyDomain "ellarises/internal/domain/survey"
)

// handleRegister handles POST /registrations: self-registration for a
// session. A duplicate attempt is a conflict, not a failure — the caller is
// sent to the parent event page with an explanatory message.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	occurrenceID := r.FormValue("OccurrenceID")

	err := orchestrators.ExecuteRegisterSelf(r.Context(), orchestrators.RegisterSelfInput{
		OccurrenceID:  occurrenceID,
		ParticipantID: sess.ParticipantID,
	}, orchestrators.RegisterSelfDeps{
		OccurrenceStore:   stores.OccurrenceStore,
		RegistrationStore: stores.RegistrationStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})

	switch {
	case err == nil:
		redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, "You are registered.")
	case errors.Is(err, orchestrators.ErrAlreadyRegistered):
		redirectWithFlash(w, r, parentEventURL(r, occurrenceID), err.Error())
	case errors.Is(err, orchestrators.ErrRegistrationClosed), errors.Is(err, orchestrators.ErrOccurrenceFull):
		redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, err.Error())
	case errors.Is(err, orchestrators.ErrOccurrenceNotFound):
		http.NotFound(w, r)
	default:
		internalError(w, err)
	}
}

// handleUnregister handles POST /registrations/cancel. Idempotent.
func handleUnregister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	sess, _ := middleware.GetSessionFromContext(r.Context())
	occurrenceID := r.FormValue("OccurrenceID")

	err := orchestrators.ExecuteUnregisterSelf(r.Context(), orchestrators.RegisterSelfInput{
		OccurrenceID:  occurrenceID,
		ParticipantID: sess.ParticipantID,
	}, orchestrators.RegisterSelfDeps{
		OccurrenceStore:   stores.OccurrenceStore,
		RegistrationStore: stores.RegistrationStore,
		GenerateID:        generateID,
		Now:               timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, "Your registration has been cancelled.")
}

// handleCheckIn handles POST /checkin: staff marking a registration
// attended. Attendance is never writable by the participant themselves.
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	occurrenceID := r.FormValue("OccurrenceID")

	err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		OccurrenceID:  occurrenceID,
		ParticipantID: r.FormValue("ParticipantID"),
	}, orchestrators.CheckInDeps{
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, err.Error())
		return
	}
	redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, "Checked in.")
}

// handleSurvey handles GET (form) and POST (submit) for /sessions/survey.
// The GET applies the render-time gate; the POST re-validates the same
// conditions at write time, so a stale page cannot smuggle a submission
// through.
func handleSurvey(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())

	if r.Method == "GET" {
		occurrenceID := r.URL.Query().Get("id")
		if occurrenceID == "" {
			http.Error(w, "missing id", http.StatusBadRequest)
			return
		}

		eligibility, err := projections.QueryGetEligibility(r.Context(), projections.GetEligibilityQuery{
			OccurrenceID:  occurrenceID,
			ParticipantID: sess.ParticipantID,
		}, projections.GetEligibilityDeps{
			RegistrationStore: stores.RegistrationStore,
			SurveyStore:       stores.SurveyStore,
		})
		if err != nil {
			internalError(w, err)
			return
		}
		if !eligibility.ShowSurveyButton {
			redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, "Surveys are open after you have attended the session, once per session.")
			return
		}

		renderTemplate(w, r, "survey_form.html", map[string]any{
			"CSRFToken":    csrf.Token(r),
			"OccurrenceID": occurrenceID,
			"ScoreFields":  surveyDomain.ScoreFields,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		occurrenceID := r.FormValue("OccurrenceID")

		rawScores := make(map[string]string, len(surveyDomain.ScoreFields))
		for _, field := range surveyDomain.ScoreFields {
			rawScores[field] = r.FormValue(field)
		}

		_, err := orchestrators.ExecuteSubmitSurvey(r.Context(), orchestrators.SubmitSurveyInput{
			OccurrenceID:  occurrenceID,
			ParticipantID: sess.ParticipantID,
			RawScores:     rawScores,
			Comments:      r.FormValue("Comments"),
		}, orchestrators.SubmitSurveyDeps{
			RegistrationStore: stores.RegistrationStore,
			SurveyStore:       stores.SurveyStore,
			GenerateID:        generateID,
			Now:               timeNow,
		})

		var verrs surveyDomain.ValidationErrors
		switch {
		case err == nil:
			redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, "Thank you for your feedback.")
		case errors.As(err, &verrs):
			renderTemplate(w, r, "survey_form.html", map[string]any{
				"CSRFToken":    csrf.Token(r),
				"OccurrenceID": occurrenceID,
				"ScoreFields":  surveyDomain.ScoreFields,
				"Values":       rawScores,
				"Comments":     r.FormValue("Comments"),
				"Errors":       verrs,
			})
		case errors.Is(err, orchestrators.ErrSurveyNotEligible), errors.Is(err, orchestrators.ErrSurveyAlreadySubmitted):
			redirectWithFlash(w, r, "/sessions/view?id="+occurrenceID, err.Error())
		default:
			internalError(w, err)
		}
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// parentEventURL resolves an occurrence's parent event page, falling back
// to the schedule when the occurrence is gone.
func parentEventURL(r *http.Request, occurrenceID string) string {
	occ, err := stores.OccurrenceStore.GetByID(r.Context(), occurrenceID)
	if err != nil {
		return "/events"
	}
	return "/events/view?id=" + occ.EventID
}
