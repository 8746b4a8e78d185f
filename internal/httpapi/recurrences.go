package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
)

type createRecurrenceRequest struct {
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	Weekdays        []string `json:"weekdays"`
	DurationMinutes int      `json:"duration_minutes"`
	StartDate       string   `json:"start_date"`
}

type updateRecurrenceRequest struct {
	Title           *string   `json:"title"`
	Category        *string   `json:"category"`
	Weekdays        *[]string `json:"weekdays"`
	DurationMinutes *int      `json:"duration_minutes"`
}

type materializeRequest struct {
	Through string `json:"through"`
}

func (h *handler) listRecurrences(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	templates, err := h.Recurrences.List(ctx, uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": templates})
}

func (h *handler) createRecurrence(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createRecurrenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	ch, err := h.Recurrences.Create(ctx, recurrence.CreateInput{
		UserID:          uid,
		Title:           req.Title,
		Category:        req.Category,
		Weekdays:        req.Weekdays,
		DurationMinutes: req.DurationMinutes,
		StartDate:       req.StartDate,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ch)
}

func (h *handler) getRecurrence(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	tpl, err := h.Recurrences.Get(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

func (h *handler) updateRecurrence(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req updateRecurrenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	ch, err := h.Recurrences.Update(ctx, uid, chi.URLParam(r, "id"), recurrence.PatchInput{
		Title:           req.Title,
		Category:        req.Category,
		Weekdays:        req.Weekdays,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *handler) deleteRecurrence(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	ch, err := h.Recurrences.Delete(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": ch.Template.ID, "removed": ch.Removed})
}

// materializeRecurrences expands the caller's templates, by default through the end of
// next month.
func (h *handler) materializeRecurrences(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req materializeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	var through time.Time
	if strings.TrimSpace(req.Through) == "" {
		through = calendar.EndOfNextMonth(h.today())
	} else {
		parsed, err := calendar.ParseDate(req.Through)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, stripPrefix(err.Error()))
			return
		}
		through = parsed
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	created, err := h.Recurrences.Materialize(ctx, uid, through)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"through": calendar.DayKey(through), "created": created})
}
