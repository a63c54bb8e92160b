package web

import (
	"errors"
	"net/http"

	"github.com/gorilla/csrf"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/application/orchestrators"
	"ellarises/internal/application/projections"
	participantStore "ellarises/internal/adapters/storage/participant"
)

// handleParticipantList handles GET /participants: the staff directory.
func handleParticipantList(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	filter := participantStore.ListFilter{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("q"),
		Limit:  200,
	}
	participants, err := stores.ParticipantStore.List(r.Context(), filter)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "participant_list.html", map[string]any{
		"Participants": participants,
		"Search":       filter.Search,
		"Status":       filter.Status,
		"CSRFToken":    csrf.Token(r),
	})
}

// handleParticipantProfile handles GET /participants/view?id=X. A
// participant may view their own profile; anyone else's requires an
// elevated session, enforced per record rather than per route.
func handleParticipantProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	decision := middleware.Authorize(sess, middleware.OwnerOrElevated(id))
	if decision.Kind != middleware.DecisionAllow {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	profile, err := projections.QueryGetParticipantProfile(r.Context(), projections.GetParticipantProfileQuery{
		ParticipantID: id,
	}, profileDeps())
	if err != nil {
		http.NotFound(w, r)
		return
	}

	renderTemplate(w, r, "participant_profile.html", map[string]any{
		"Profile":   profile,
		"CSRFToken": csrf.Token(r),
	})
}

// handleParticipantDelete handles POST /participants/delete. No cascade
// here: dependent registrations, surveys, donations, or milestones block
// the delete, and the conflict is explained rather than swallowed.
func handleParticipantDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("ID")

	err := orchestrators.ExecuteDeleteParticipant(r.Context(), id, orchestrators.DeleteParticipantDeps{
		ParticipantStore: stores.ParticipantStore,
	})
	switch {
	case err == nil:
		redirectWithFlash(w, r, "/participants", "Participant deleted.")
	case errors.Is(err, orchestrators.ErrDependentRecords):
		redirectWithFlash(w, r, "/participants/view?id="+id,
			"This participant still has registrations, surveys, donations, or milestones. Remove those first.")
	default:
		internalError(w, err)
	}
}

// handleMilestoneForm handles GET (form) and POST (award) for
// /milestones/new?participant_id=X. The form offers previously used titles
// so naming stays consistent across participants.
func handleMilestoneForm(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		titles, _ := stores.MilestoneStore.DistinctTitles(r.Context())
		renderTemplate(w, r, "milestone_form.html", map[string]any{
			"CSRFToken":     csrf.Token(r),
			"ParticipantID": r.URL.Query().Get("participant_id"),
			"KnownTitles":   titles,
		})
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		participantID := r.FormValue("ParticipantID")

		_, err := orchestrators.ExecuteAwardMilestone(r.Context(), orchestrators.AwardMilestoneInput{
			ParticipantID: participantID,
			Title:         r.FormValue("Title"),
			Notes:         r.FormValue("Notes"),
			RawDate:       r.FormValue("AwardedAt"),
		}, orchestrators.AwardMilestoneDeps{
			MilestoneStore:   stores.MilestoneStore,
			ParticipantStore: stores.ParticipantStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			redirectWithFlash(w, r, "/milestones/new?participant_id="+participantID, err.Error())
			return
		}
		redirectWithFlash(w, r, "/participants/view?id="+participantID, "Milestone awarded.")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleMilestoneDelete handles POST /milestones/delete.
func handleMilestoneDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("ID")
	participantID := r.FormValue("ParticipantID")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := stores.MilestoneStore.Delete(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}
	target := "/participants"
	if participantID != "" {
		target = "/participants/view?id=" + participantID
	}
	redirectWithFlash(w, r, target, "Milestone removed.")
}
