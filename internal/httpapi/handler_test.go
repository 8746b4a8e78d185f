package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MiguelL1304/aquascape/internal/badge"
	"github.com/MiguelL1304/aquascape/internal/calendar"
	"github.com/MiguelL1304/aquascape/internal/focus"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
	sharedauth "github.com/MiguelL1304/aquascape/internal/shared/auth"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
	"github.com/MiguelL1304/aquascape/internal/shared/logging"
	sharedserver "github.com/MiguelL1304/aquascape/internal/shared/server"
	"github.com/MiguelL1304/aquascape/internal/shop"
	"github.com/MiguelL1304/aquascape/internal/stats"
	"github.com/MiguelL1304/aquascape/internal/task"
)

// Monday 2024-01-15.
var now = time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	clk := clock.Fixed(now)
	cal := calendar.DefaultSettings()
	logger := logging.Discard()

	statsRepo := stats.NewMemoryRepository()
	profileRepo := profile.NewMemoryRepository()
	taskRepo, err := task.NewMemoryRepository(statsRepo)
	if err != nil {
		t.Fatalf("task repo: %v", err)
	}
	focusRepo, err := focus.NewMemoryRepository(profileRepo)
	if err != nil {
		t.Fatalf("focus repo: %v", err)
	}

	statsSvc, err := stats.NewService(statsRepo, cal)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	badgeSvc, err := badge.NewService(statsSvc, profileRepo, clk)
	if err != nil {
		t.Fatalf("badge: %v", err)
	}
	taskSvc, err := task.NewService(taskRepo, statsSvc, badgeSvc, clk, &idgen.Sequence{Prefix: "task"}, logger)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	recSvc, err := recurrence.NewService(recurrence.NewMemoryRepository(), taskRepo, taskSvc, clk, &idgen.Sequence{Prefix: "rec"}, cal, logger)
	if err != nil {
		t.Fatalf("recurrence: %v", err)
	}
	profileSvc, err := profile.NewService(profileRepo, clk, cal, recSvc)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	focusSvc, err := focus.NewService(focusRepo, taskSvc, clk, &idgen.Sequence{Prefix: "focus"}, cal, 1)
	if err != nil {
		t.Fatalf("focus: %v", err)
	}
	shopSvc, err := shop.NewService(profileRepo, nil, clk, logger)
	if err != nil {
		t.Fatalf("shop: %v", err)
	}

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{Mode: sharedauth.ModeNoop})
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}
	return sharedserver.NewRouter("aquascape-test", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))
			RegisterRoutes(r, Services{
				Profiles:    profileSvc,
				Tasks:       taskSvc,
				Recurrences: recSvc,
				Stats:       statsSvc,
				Badges:      badgeSvc,
				Focus:       focusSvc,
				Shop:        shopSvc,
				Calendar:    cal,
				Clock:       clk,
				Logger:      logger,
			})
		})
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer u1")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return out
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/profile", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
}

func TestTaskLifecycleUpdatesStatsAndBadges(t *testing.T) {
	h := newTestRouter(t)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/profile", `{"display_name":"Mia"}`), http.StatusCreated)

	rec := do(t, h, http.MethodPost, "/v1/tasks", `{"title":"Report","category":"Work","duration_minutes":30,"completed":true}`)
	expectStatus(t, rec, http.StatusCreated)
	created := decode[task.Result](t, rec)
	if created.Task.Date != "2024-01-15" || !created.Task.Completed {
		t.Fatalf("unexpected task %+v", created.Task)
	}
	if len(created.NewBadges) != 1 || created.NewBadges[0].ID != "first_splash" {
		t.Fatalf("expected first_splash, got %+v", created.NewBadges)
	}

	rec = do(t, h, http.MethodGet, "/v1/stats/summary", "")
	expectStatus(t, rec, http.StatusOK)
	summary := decode[stats.Summary](t, rec)
	if summary.Day.TaskCount != 1 || summary.Week.TimeLogged != 30 || summary.Year.Categories["Work"] != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	expectStatus(t, do(t, h, http.MethodPost, "/v1/tasks/"+created.Task.ID+"/uncomplete", ""), http.StatusOK)
	summary = decode[stats.Summary](t, do(t, h, http.MethodGet, "/v1/stats/summary?date=2024-01-15", ""))
	if summary.Day.TaskCount != 0 || summary.Day.TimeLogged != 0 {
		t.Fatalf("uncomplete should revert the day, got %+v", summary.Day)
	}

	rec = do(t, h, http.MethodGet, "/v1/badges", "")
	expectStatus(t, rec, http.StatusOK)
	progress := decode[struct {
		Items []badge.Progress `json:"items"`
	}](t, rec)
	if len(progress.Items) == 0 || progress.Items[0].Badge.ID != "first_splash" || !progress.Items[0].Earned {
		t.Fatalf("earned badge should stay earned: %+v", progress.Items)
	}

	expectStatus(t, do(t, h, http.MethodDelete, "/v1/tasks/"+created.Task.ID, ""), http.StatusNoContent)
	expectStatus(t, do(t, h, http.MethodGet, "/v1/tasks/"+created.Task.ID, ""), http.StatusNotFound)
}

func TestCreateTaskWithWeekdaysCreatesRecurrence(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/tasks", `{"title":"Swim","category":"Fitness","recurrence":["Monday"],"duration_minutes":40}`)
	expectStatus(t, rec, http.StatusCreated)
	change := decode[recurrence.Change](t, rec)
	// Mondays from 2024-01-15 through 2024-02-29.
	if change.Created != 7 || change.Template.MaterializedThrough != "2024-02-29" {
		t.Fatalf("unexpected change %+v", change)
	}

	rec = do(t, h, http.MethodGet, "/v1/tasks?month=2024-01", "")
	expectStatus(t, rec, http.StatusOK)
	list := decode[struct {
		Items []task.Task `json:"items"`
	}](t, rec)
	if len(list.Items) != 3 {
		t.Fatalf("expected 3 january instances, got %d", len(list.Items))
	}

	rec = do(t, h, http.MethodPost, "/v1/tasks", `{"title":"Once","category":"Chores","recurrence":["None"]}`)
	expectStatus(t, rec, http.StatusCreated)
	if res := decode[task.Result](t, rec); res.Task.RecurrenceID != "" || res.Task.Date != "2024-01-15" {
		t.Fatalf("None should create a one-off task, got %+v", res.Task)
	}

	rec = do(t, h, http.MethodGet, "/v1/tasks", "")
	list = decode[struct {
		Items []task.Task `json:"items"`
	}](t, rec)
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 tasks today, got %d", len(list.Items))
	}

	expectStatus(t, do(t, h, http.MethodPost, "/v1/recurrences/materialize", `{"through":"2024-03-31"}`), http.StatusBadRequest)
	rec = do(t, h, http.MethodPost, "/v1/recurrences/materialize", "")
	expectStatus(t, rec, http.StatusOK)
	materialized := decode[struct {
		Through string `json:"through"`
		Created int    `json:"created"`
	}](t, rec)
	if materialized.Through != "2024-02-29" || materialized.Created != 0 {
		t.Fatalf("default materialize should be a no-op up to 2024-02-29, got %+v", materialized)
	}

	rec = do(t, h, http.MethodPost, "/v1/tasks", `{"title":"Old","category":"Work","recurrence":["Friday"],"date":"2023-06-02"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = do(t, h, http.MethodDelete, "/v1/recurrences/"+change.Template.ID, "")
	expectStatus(t, rec, http.StatusOK)
	expectStatus(t, do(t, h, http.MethodGet, "/v1/recurrences/"+change.Template.ID, ""), http.StatusNotFound)
}

func TestFocusRewardFundsShopPurchase(t *testing.T) {
	h := newTestRouter(t)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/profile", `{}`), http.StatusCreated)

	expectStatus(t, do(t, h, http.MethodPost, "/v1/shop/items/guppy/purchase", ""), http.StatusConflict)

	rec := do(t, h, http.MethodPost, "/v1/focus/sessions", `{"minutes":25}`)
	expectStatus(t, rec, http.StatusCreated)
	if res := decode[focus.Result](t, rec); res.Balance != 25 {
		t.Fatalf("expected balance 25, got %d", res.Balance)
	}

	rec = do(t, h, http.MethodPost, "/v1/shop/items/guppy/purchase", "")
	expectStatus(t, rec, http.StatusOK)
	if p := decode[profile.Profile](t, rec); p.Seashells != 5 || !p.Inventory.Owns("guppy") {
		t.Fatalf("unexpected profile %+v", p)
	}
	expectStatus(t, do(t, h, http.MethodPost, "/v1/shop/items/guppy/purchase", ""), http.StatusConflict)
	expectStatus(t, do(t, h, http.MethodPost, "/v1/shop/items/kraken/purchase", ""), http.StatusNotFound)

	rec = do(t, h, http.MethodGet, "/v1/shop/items", "")
	expectStatus(t, rec, http.StatusOK)
	items := decode[struct {
		Items []shop.Item `json:"items"`
	}](t, rec)
	for _, item := range items.Items {
		if item.Owned != (item.ID == "guppy") {
			t.Fatalf("unexpected ownership for %s", item.ID)
		}
	}

	rec = do(t, h, http.MethodGet, "/v1/focus/sessions", "")
	expectStatus(t, rec, http.StatusOK)
	sessions := decode[struct {
		Month string          `json:"month"`
		Items []focus.Session `json:"items"`
	}](t, rec)
	if sessions.Month != "2024-01" || len(sessions.Items) != 1 {
		t.Fatalf("unexpected sessions %+v", sessions)
	}
}

func TestBadRequestsAreRejected(t *testing.T) {
	h := newTestRouter(t)
	cases := []struct {
		name, method, path, body string
		want                     int
	}{
		{"unknown field", http.MethodPost, "/v1/tasks", `{"title":"x","category":"Work","colour":"red"}`, http.StatusBadRequest},
		{"bad category", http.MethodPost, "/v1/tasks", `{"title":"x","category":"Nap"}`, http.StatusBadRequest},
		{"missing body", http.MethodPost, "/v1/tasks", "", http.StatusBadRequest},
		{"date and month", http.MethodGet, "/v1/tasks?date=2024-01-15&month=2024-01", "", http.StatusBadRequest},
		{"bad bucket", http.MethodGet, "/v1/stats/decade", "", http.StatusBadRequest},
		{"bad summary date", http.MethodGet, "/v1/stats/summary?date=yesterday", "", http.StatusBadRequest},
		{"no profile", http.MethodGet, "/v1/profile", "", http.StatusNotFound},
		{"bad avatar", http.MethodPost, "/v1/profile", `{"avatar":"dragon"}`, http.StatusBadRequest},
		{"zero focus", http.MethodPost, "/v1/focus/sessions", `{"minutes":0}`, http.StatusBadRequest},
		{"empty patch", http.MethodPatch, "/v1/tasks/missing", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, do(t, h, tc.method, tc.path, tc.body), tc.want)
		})
	}
}
