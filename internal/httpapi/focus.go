package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/focus"
)

type completeFocusRequest struct {
	Minutes   int        `json:"minutes"`
	TaskID    string     `json:"task_id"`
	StartedAt *time.Time `json:"started_at"`
}

func (h *handler) completeFocusSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req completeFocusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	res, err := h.Focus.Complete(ctx, focus.CompleteInput{
		UserID:    uid,
		TaskID:    strings.TrimSpace(req.TaskID),
		Minutes:   req.Minutes,
		StartedAt: req.StartedAt,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) listFocusSessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	month := strings.TrimSpace(r.URL.Query().Get("month"))
	if month == "" {
		month = calendar.MonthKey(h.today())
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	sessions, err := h.Focus.List(ctx, uid, month)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"month": month, "items": sessions})
}
