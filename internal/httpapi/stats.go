package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/stats"
)

func (h *handler) statsSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	day := h.today()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := calendar.ParseDate(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, stripPrefix(err.Error()))
			return
		}
		day = parsed
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	summary, err := h.Stats.Summary(ctx, uid, day)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *handler) statsLifetime(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	totals, err := h.Stats.Lifetime(ctx, uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}

func (h *handler) statsBucket(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	bucket, err := stats.ParseBucket(chi.URLParam(r, "bucket"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	ctx, cancel := serviceContext(r)
	defer cancel()

	periods, err := h.Stats.Bucket(ctx, uid, bucket)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bucket": bucket, "periods": periods})
}

func (h *handler) listBadges(w http.ResponseWriter, r *http.Request) {
	uid, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := serviceContext(r)
	defer cancel()

	progress, err := h.Badges.Progress(ctx, uid)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": progress})
}
