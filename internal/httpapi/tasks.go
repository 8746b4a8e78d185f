package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
	"github.com/MiguelL1304/aquascape/internal/task"
)

type createTaskRequest struct {
	Title           string   `json:"title"`
	Category        string   `json:"category"`
	Date            string   `json:"date"`
	DurationMinutes int      `json:"duration_minutes"`
	Completed       bool     `json:"completed"`
	Recurrence      []string `json:"recurrence"`
}

type updateTaskRequest struct {
	Title           *string `json:"title"`
	Category        *string `json:"category"`
	Date            *string `json:"date"`
	DurationMinutes *int    `json:"duration_minutes"`
}

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	date, month := strings.TrimSpace(q.Get("date")), strings.TrimSpace(q.Get("month"))
	if date != "" && month != "" {
		writeError(w, r, http.StatusBadRequest, "use either date or month, not both")
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	var (
		tasks []task.Task
		err   error
	)
	switch {
	case month != "":
		tasks, err = h.Tasks.ListByMonth(ctx, uid, month)
	case date != "":
		tasks, err = h.Tasks.ListByDate(ctx, uid, date)
	default:
		tasks, err = h.Tasks.ListByDate(ctx, uid, calendar.DayKey(h.today()))
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": tasks})
}

// createTask stores a one-off task, or a recurrence template when weekdays are given.
func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	if isRecurring(req.Recurrence) {
		if req.Completed {
			writeError(w, r, http.StatusBadRequest, "a recurring task cannot be created completed")
			return
		}
		ch, err := h.Recurrences.Create(ctx, recurrence.CreateInput{
			UserID:          uid,
			Title:           req.Title,
			Category:        req.Category,
			Weekdays:        req.Recurrence,
			DurationMinutes: req.DurationMinutes,
			StartDate:       req.Date,
		})
		if err != nil {
			h.respondServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ch)
		return
	}

	date := req.Date
	if strings.TrimSpace(date) == "" {
		date = calendar.DayKey(h.today())
	}
	res, err := h.Tasks.Create(ctx, task.CreateInput{
		UserID:          uid,
		Title:           req.Title,
		Category:        req.Category,
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		Completed:       req.Completed,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func isRecurring(names []string) bool {
	for _, n := range names {
		if !strings.EqualFold(strings.TrimSpace(n), calendar.NoneRecurrence) {
			return true
		}
	}
	return false
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	t, err := h.Tasks.Get(ctx, uid, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	res, err := h.Tasks.Update(ctx, uid, chi.URLParam(r, "id"), task.PatchInput{
		Title:           req.Title,
		Category:        req.Category,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	if err := h.Tasks.Delete(ctx, uid, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) completeTask(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true)
}

func (h *handler) uncompleteTask(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false)
}

func (h *handler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	res, err := h.Tasks.SetCompleted(ctx, uid, chi.URLParam(r, "id"), completed)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
