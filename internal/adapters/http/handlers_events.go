package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"

	"ellarises/internal/adapters/http/middleware"
	"ellarises/internal/application/orchestrators"
	"ellarises/internal/application/projections"
	eventDomain "ellarises/internal/domain/event"
	occurrenceDomain "ellarises/internal/domain/occurrence"
)

// handleEventList handles GET /events.
func handleEventList(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	result, err := projections.QueryGetEventList(r.Context(), projections.GetEventListQuery{}, projections.GetEventListDeps{
		EventStore:        stores.EventStore,
		OccurrenceStore:   stores.OccurrenceStore,
		RegistrationStore: stores.RegistrationStore,
		Now:               timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "event_list.html", map[string]any{
		"Events": result.Events,
	})
}

// handleEventDetail handles GET /events/view?id=X.
func handleEventDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	ev, err := stores.EventStore.GetByID(r.Context(), id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	occs, err := stores.OccurrenceStore.ListByEventID(r.Context(), id)
	if err != nil {
		internalError(w, err)
		return
	}

	renderTemplate(w, r, "event_detail.html", map[string]any{
		"Event":       ev,
		"Occurrences": occs,
		"CSRFToken":   csrf.Token(r),
	})
}

// handleEventForm handles GET (form) and POST (save) for /events/new and
// /events/edit?id=X. Create and edit share the form; an empty id means
// create.
func handleEventForm(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		data := map[string]any{
			"CSRFToken":   csrf.Token(r),
			"Recurrences": eventDomain.ValidRecurrences,
		}
		if id := r.URL.Query().Get("id"); id != "" {
			ev, err := stores.EventStore.GetByID(r.Context(), id)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			data["Event"] = ev
		}
		renderTemplate(w, r, "event_form.html", data)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		capacity, _ := strconv.Atoi(r.FormValue("DefaultCapacity"))
		ev := eventDomain.Event{
			ID:              r.FormValue("ID"),
			Name:            r.FormValue("Name"),
			EventType:       r.FormValue("EventType"),
			Recurrence:      r.FormValue("Recurrence"),
			DefaultCapacity: capacity,
			Description:     r.FormValue("Description"),
		}
		if ev.ID == "" {
			ev.ID = generateID()
		}
		if err := ev.Validate(); err != nil {
			renderTemplate(w, r, "event_form.html", map[string]any{
				"CSRFToken":   csrf.Token(r),
				"Recurrences": eventDomain.ValidRecurrences,
				"Event":       ev,
				"Error":       err.Error(),
			})
			return
		}
		if err := stores.EventStore.Save(r.Context(), ev); err != nil {
			internalError(w, err)
			return
		}
		redirectWithFlash(w, r, "/events/view?id="+ev.ID, "Program saved.")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleEventDelete handles POST /events/delete. Deleting an event cascades
// through every occurrence: registrations and surveys go first, then each
// occurrence, then the event row.
func handleEventDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("ID")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := orchestrators.ExecuteDeleteEvent(r.Context(), id, cascadeDeps()); err != nil {
		internalError(w, err)
		return
	}
	redirectWithFlash(w, r, "/events", "Program and all of its sessions deleted.")
}

// handleOccurrenceDetail handles GET /sessions/view?id=X. The page adapts
// to the viewer: staff see the roster and survey average, a registered
// participant sees their own lifecycle stage.
func handleOccurrenceDetail(w http.ResponseWriter, r *http.Request) {
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
	result, err := projections.QueryGetOccurrenceDetail(r.Context(), projections.GetOccurrenceDetailQuery{
		OccurrenceID:        id,
		ViewerParticipantID: sess.ParticipantID,
		ViewerElevated:      sess.IsElevated(),
	}, projections.GetOccurrenceDetailDeps{
		OccurrenceStore:   stores.OccurrenceStore,
		EventStore:        stores.EventStore,
		ParticipantStore:  stores.ParticipantStore,
		RegistrationStore: stores.RegistrationStore,
		SurveyStore:       stores.SurveyStore,
		Now:               timeNow,
	})
	if err != nil {
		http.NotFound(w, r)
		return
	}

	renderTemplate(w, r, "occurrence_detail.html", map[string]any{
		"Detail":    result,
		"CSRFToken": csrf.Token(r),
	})
}

// handleOccurrenceForm handles GET (form) and POST (save) for /sessions/new
// and /sessions/edit?id=X.
func handleOccurrenceForm(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		data := map[string]any{
			"CSRFToken": csrf.Token(r),
			"EventID":   r.URL.Query().Get("event_id"),
		}
		if id := r.URL.Query().Get("id"); id != "" {
			occ, err := stores.OccurrenceStore.GetByID(r.Context(), id)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			data["Occurrence"] = occ
			data["EventID"] = occ.EventID
		}
		renderTemplate(w, r, "occurrence_form.html", data)
		return
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}

		occ := occurrenceDomain.Occurrence{
			ID:       r.FormValue("ID"),
			EventID:  r.FormValue("EventID"),
			Location: r.FormValue("Location"),
		}
		occ.Capacity, _ = strconv.Atoi(r.FormValue("Capacity"))
		occ.StartsAt = parseFormDateTime(r.FormValue("StartsAt"))
		occ.EndsAt = parseFormDateTime(r.FormValue("EndsAt"))
		if raw := r.FormValue("RegistrationDeadline"); raw != "" {
			if parsed, err := time.Parse("2006-01-02", raw); err == nil {
				// Deadline is the end of that calendar day.
				occ.RegistrationDeadline = parsed.Add(24*time.Hour - time.Second)
			}
		}
		if occ.ID == "" {
			occ.ID = generateID()
		}
		if err := occ.Validate(); err != nil {
			renderTemplate(w, r, "occurrence_form.html", map[string]any{
				"CSRFToken":  csrf.Token(r),
				"EventID":    occ.EventID,
				"Occurrence": occ,
				"Error":      err.Error(),
			})
			return
		}
		if err := stores.OccurrenceStore.Save(r.Context(), occ); err != nil {
			internalError(w, err)
			return
		}
		redirectWithFlash(w, r, "/events/view?id="+occ.EventID, "Session saved.")
		return
	}

	w.WriteHeader(http.StatusMethodNotAllowed)
}

// handleOccurrenceDelete handles POST /sessions/delete. The cascade removes
// registrations and surveys before the occurrence; the redirect lands on
// the parent event page, whose ID is captured before the row disappears.
func handleOccurrenceDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := r.FormValue("ID")
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	eventID, err := orchestrators.ExecuteDeleteOccurrence(r.Context(), id, cascadeDeps())
	if err != nil {
		if err == orchestrators.ErrCascadeOccurrenceNotFound {
			redirectWithFlash(w, r, "/events", "Session not found.")
			return
		}
		internalError(w, err)
		return
	}
	redirectWithFlash(w, r, "/events/view?id="+eventID, "Session deleted.")
}

// cascadeDeps assembles the cascade deletion dependencies.
func cascadeDeps() orchestrators.CascadeDeps {
	return orchestrators.CascadeDeps{
		OccurrenceStore:   stores.OccurrenceStore,
		EventStore:        stores.EventStore,
		RegistrationStore: stores.RegistrationStore,
		SurveyStore:       stores.SurveyStore,
	}
}

// parseFormDateTime accepts the datetime-local input format, with a
// space-separated fallback.
func parseFormDateTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
