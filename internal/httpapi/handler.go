package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MiguelL1304/aquascape/internal/badge"
	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/focus"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
	"github.com/MiguelL1304/aquascape/internal/shared/auth"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	sharederrors "github.com/MiguelL1304/aquascape/internal/shared/errors"
	"github.com/MiguelL1304/aquascape/internal/shared/logging"
	"github.com/MiguelL1304/aquascape/internal/shop"
	"github.com/MiguelL1304/aquascape/internal/stats"
	"github.com/MiguelL1304/aquascape/internal/task"
)

const (
	serviceTimeout  = 10 * time.Second
	maxPayloadBytes = 1 << 20 // 1MB
)

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Profiles    *profile.Service
	Tasks       *task.Service
	Recurrences *recurrence.Service
	Stats       *stats.Service
	Badges      *badge.Service
	Focus       *focus.Service
	Shop        *shop.Service
	Calendar    calendar.Settings
	Clock       clock.Clock
	Logger      *slog.Logger
}

type handler struct {
	Services
}

// RegisterRoutes mounts every /v1 route on r. Callers wrap r with the auth middleware.
func RegisterRoutes(r chi.Router, svc Services) {
	if svc.Clock == nil {
		svc.Clock = clock.NewSystemClock()
	}
	if svc.Logger == nil {
		svc.Logger = slog.Default()
	}
	h := &handler{Services: svc}

	r.Route("/v1/profile", func(r chi.Router) {
		r.Post("/", h.createProfile)
		r.Get("/", h.getProfile)
		r.Patch("/avatar", h.updateAvatar)
	})
	r.Route("/v1/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Get("/{id}", h.getTask)
		r.Patch("/{id}", h.updateTask)
		r.Delete("/{id}", h.deleteTask)
		r.Post("/{id}/complete", h.completeTask)
		r.Post("/{id}/uncomplete", h.uncompleteTask)
	})
	r.Route("/v1/recurrences", func(r chi.Router) {
		r.Get("/", h.listRecurrences)
		r.Post("/", h.createRecurrence)
		r.Post("/materialize", h.materializeRecurrences)
		r.Get("/{id}", h.getRecurrence)
		r.Patch("/{id}", h.updateRecurrence)
		r.Delete("/{id}", h.deleteRecurrence)
	})
	r.Route("/v1/stats", func(r chi.Router) {
		r.Get("/summary", h.statsSummary)
		r.Get("/lifetime", h.statsLifetime)
		r.Get("/{bucket}", h.statsBucket)
	})
	r.Get("/v1/badges", h.listBadges)
	r.Route("/v1/focus/sessions", func(r chi.Router) {
		r.Post("/", h.completeFocusSession)
		r.Get("/", h.listFocusSessions)
	})
	r.Route("/v1/shop/items", func(r chi.Router) {
		r.Get("/", h.listShopItems)
		r.Post("/{id}/purchase", h.purchaseShopItem)
	})
}

// userID prefers the verified token subject and falls back to the X-User-ID header.
func userID(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

func (h *handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := userID(r)
	if id == "" {
		writeError(w, r, http.StatusUnauthorized, "missing user ID")
		return "", false
	}
	return id, true
}

func (h *handler) today() time.Time {
	return h.Calendar.Today(h.Clock.Now())
}

func serviceContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), serviceTimeout)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is required")
		}
		return fmt.Errorf("invalid JSON payload")
	}
	return nil
}

// respondServiceError maps domain sentinels onto HTTP statuses.
func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrNotFound),
		errors.Is(err, recurrence.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, shop.ErrUnknownItem):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, task.ErrConflict),
		errors.Is(err, recurrence.ErrConflict),
		errors.Is(err, profile.ErrConflict),
		errors.Is(err, focus.ErrConflict),
		errors.Is(err, profile.ErrAlreadyOwned),
		errors.Is(err, profile.ErrInsufficientSeashells):
		writeError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, task.ErrInvalidInput),
		errors.Is(err, recurrence.ErrInvalidInput),
		errors.Is(err, profile.ErrInvalidInput),
		errors.Is(err, focus.ErrInvalidInput),
		errors.Is(err, stats.ErrInvalidBucket),
		errors.Is(err, calendar.ErrInvalidDate):
		writeError(w, r, http.StatusBadRequest, stripPrefix(err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, r, http.StatusGatewayTimeout, "request timed out")
	default:
		logging.FromRequest(r.Context(), h.Logger).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func stripPrefix(msg string) string {
	msg = strings.TrimSpace(msg)
	if i := strings.Index(msg, ":"); i >= 0 {
		return strings.TrimSpace(msg[i+1:])
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	sharederrors.WriteWithRequestID(w, status, message, middleware.GetReqID(r.Context()))
}
