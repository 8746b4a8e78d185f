package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"google.golang.org/api/option"

	"github.com/MiguelL1304/aquascape/internal/badge"
	"github.com/MiguelL1304/aquascape/internal/config"
	"github.com/MiguelL1304/aquascape/internal/focus"
	"github.com/MiguelL1304/aquascape/internal/httpapi"
	"github.com/MiguelL1304/aquascape/internal/profile"
	"github.com/MiguelL1304/aquascape/internal/recurrence"
	"github.com/MiguelL1304/aquascape/internal/scheduler"
	sharedauth "github.com/MiguelL1304/aquascape/internal/shared/auth"
	"github.com/MiguelL1304/aquascape/internal/shared/clock"
	"github.com/MiguelL1304/aquascape/internal/shared/idgen"
	"github.com/MiguelL1304/aquascape/internal/shared/logging"
	sharedserver "github.com/MiguelL1304/aquascape/internal/shared/server"
	"github.com/MiguelL1304/aquascape/internal/shop"
	"github.com/MiguelL1304/aquascape/internal/stats"
	"github.com/MiguelL1304/aquascape/internal/storage"
	"github.com/MiguelL1304/aquascape/internal/task"
)

const serviceName = "aquascape"

type repositories struct {
	stats       stats.Repository
	tasks       task.Repository
	recurrences recurrence.Repository
	profiles    profile.Repository
	focus       focus.Repository
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger(serviceName)

	repos, cleanup, err := newRepositories(ctx, cfg)
	if err != nil {
		panic(fmt.Errorf("repository init error: %w", err))
	}
	defer cleanup()

	clk := clock.NewSystemClock()
	ids := idgen.NewUUIDGenerator()

	statsService, err := stats.NewService(repos.stats, cfg.Calendar)
	if err != nil {
		panic(fmt.Errorf("stats service init error: %w", err))
	}
	badgeService, err := badge.NewService(statsService, repos.profiles, clk)
	if err != nil {
		panic(fmt.Errorf("badge service init error: %w", err))
	}
	taskService, err := task.NewService(repos.tasks, statsService, badgeService, clk, ids, logger)
	if err != nil {
		panic(fmt.Errorf("task service init error: %w", err))
	}
	recurrenceService, err := recurrence.NewService(repos.recurrences, repos.tasks, taskService, clk, ids, cfg.Calendar, logger)
	if err != nil {
		panic(fmt.Errorf("recurrence service init error: %w", err))
	}
	profileService, err := profile.NewService(repos.profiles, clk, cfg.Calendar, recurrenceService)
	if err != nil {
		panic(fmt.Errorf("profile service init error: %w", err))
	}
	focusService, err := focus.NewService(repos.focus, taskService, clk, ids, cfg.Calendar, cfg.SeashellsPerMinute)
	if err != nil {
		panic(fmt.Errorf("focus service init error: %w", err))
	}

	var signer shop.AssetSigner
	if cfg.Storage.Bucket != "" {
		storageService, err := storage.NewService(ctx, cfg.Storage.Bucket, cfg.Storage.URLTTL)
		if err != nil {
			panic(fmt.Errorf("storage service init error: %w", err))
		}
		defer storageService.Close()
		signer = storageService
	} else {
		logger.Warn("ASSET_BUCKET not set, shop items are served without asset URLs")
	}
	shopService, err := shop.NewService(repos.profiles, signer, clk, logger)
	if err != nil {
		panic(fmt.Errorf("shop service init error: %w", err))
	}

	rollover, err := scheduler.NewRollover(recurrenceService, clk, cfg.Calendar, logger, 0)
	if err != nil {
		panic(fmt.Errorf("rollover init error: %w", err))
	}
	sched := scheduler.New(cfg.Calendar.Location)
	entry, err := sched.Schedule(cfg.RolloverSchedule, rollover.Job(ctx))
	if err != nil {
		panic(fmt.Errorf("schedule rollover: %w", err))
	}
	sched.Start()
	logger.Info("recurrence rollover scheduled", "schedule", cfg.RolloverSchedule, "next", sched.Next(entry))

	verifier, err := sharedauth.NewVerifier(sharedauth.Config{
		Mode:     cfg.Auth.Mode,
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.Issuer,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	router := sharedserver.NewRouter(serviceName, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(sharedauth.Middleware(verifier))

			httpapi.RegisterRoutes(r, httpapi.Services{
				Profiles:    profileService,
				Tasks:       taskService,
				Recurrences: recurrenceService,
				Stats:       statsService,
				Badges:      badgeService,
				Focus:       focusService,
				Shop:        shopService,
				Calendar:    cfg.Calendar,
				Clock:       clk,
				Logger:      logger,
			})
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := sharedserver.Run(ctx, srv, logger, cancel, sched.Stop); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func newRepositories(ctx context.Context, cfg config.Config) (repositories, func(), error) {
	switch cfg.DataStore {
	case config.DataStoreFirestore:
		if cfg.Firestore.EmulatorHost != "" {
			if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.Firestore.EmulatorHost); err != nil {
				return repositories{}, nil, fmt.Errorf("set FIRESTORE_EMULATOR_HOST: %w", err)
			}
		}

		var opts []option.ClientOption
		if cfg.Firestore.CredentialsFile != "" && cfg.Firestore.EmulatorHost == "" {
			opts = append(opts, option.WithCredentialsFile(cfg.Firestore.CredentialsFile))
		}
		client, err := firestore.NewClientWithDatabase(ctx, cfg.GCPProjectID, cfg.Firestore.Database, opts...)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("firestore client: %w", err)
		}

		repos := repositories{
			stats:       stats.NewFirestoreRepository(client),
			tasks:       task.NewFirestoreRepository(client),
			recurrences: recurrence.NewFirestoreRepository(client),
			profiles:    profile.NewFirestoreRepository(client),
			focus:       focus.NewFirestoreRepository(client),
		}
		cleanup := func() {
			_ = client.Close()
		}
		return repos, cleanup, nil
	default:
		statsRepo := stats.NewMemoryRepository()
		profileRepo := profile.NewMemoryRepository()
		taskRepo, err := task.NewMemoryRepository(statsRepo)
		if err != nil {
			return repositories{}, nil, err
		}
		focusRepo, err := focus.NewMemoryRepository(profileRepo)
		if err != nil {
			return repositories{}, nil, err
		}
		repos := repositories{
			stats:       statsRepo,
			tasks:       taskRepo,
			recurrences: recurrence.NewMemoryRepository(),
			profiles:    profileRepo,
			focus:       focusRepo,
		}
		return repos, func() {}, nil
	}
}
