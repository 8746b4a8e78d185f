package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MiguelL1304/aquascape/internal/calendar"
	sharedauth "github.com/MiguelL1304/aquascape/internal/shared/auth"
	"github.com/MiguelL1304/aquascape/internal/shared/envconfig"
)

// Config encapsulates the runtime configuration for the aquascape service.
type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string
	DataStore    DataStore `validate:"oneof=memory firestore"`
	Auth         AuthConfig
	Firestore    FirestoreConfig
	Storage      StorageConfig
	Calendar     calendar.Settings
	// SeashellsPerMinute is the focus reward rate.
	SeashellsPerMinute int    `validate:"min=1,max=100"`
	RolloverSchedule   string `validate:"required"`
}

// DataStore enumerates supported persistence backends.
type DataStore string

const (
	// DataStoreMemory keeps everything in-memory (useful for local development/testing).
	DataStoreMemory DataStore = "memory"
	// DataStoreFirestore stores documents in Google Cloud Firestore.
	DataStoreFirestore DataStore = "firestore"
)

// AuthConfig stores authentication middleware setup.
type AuthConfig struct {
	Mode     sharedauth.Mode `validate:"oneof=clerk noop"`
	JWKSURL  string
	Audience string
	Issuer   string
}

// FirestoreConfig tailors Firestore client behavior.
type FirestoreConfig struct {
	Database        string
	EmulatorHost    string
	CredentialsFile string
}

// StorageConfig contains Cloud Storage settings. An empty bucket disables asset URL signing.
type StorageConfig struct {
	Bucket string
	URLTTL time.Duration
}

const defaultRolloverSchedule = "0 10 0 1 * *"

// Load reads environment variables into Config with validation.
func Load() (Config, error) {
	rate, err := envconfig.GetInt("SEASHELLS_PER_MINUTE", 1)
	if err != nil {
		return Config{}, err
	}
	weekStart, err := calendar.ParseWeekday(envconfig.Get("STATS_WEEK_START", time.Sunday.String()))
	if err != nil {
		return Config{}, fmt.Errorf("STATS_WEEK_START: %w", err)
	}
	loc, err := time.LoadLocation(envconfig.Get("TIMEZONE", "UTC"))
	if err != nil {
		return Config{}, fmt.Errorf("TIMEZONE: %w", err)
	}
	ttl, err := time.ParseDuration(envconfig.Get("ASSET_URL_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("ASSET_URL_TTL: %w", err)
	}

	cfg := Config{
		Port:         envconfig.Get("PORT", "8080"),
		GCPProjectID: envconfig.Get("GCP_PROJECT_ID", ""),
		DataStore:    DataStore(strings.ToLower(envconfig.Get("DATASTORE", string(DataStoreMemory)))),
		Auth: AuthConfig{
			Mode:     sharedauth.Mode(strings.ToLower(envconfig.Get("AUTH_MODE", string(sharedauth.ModeNoop)))),
			JWKSURL:  envconfig.Get("CLERK_JWKS_URL", ""),
			Audience: envconfig.Get("CLERK_AUDIENCE", ""),
			Issuer:   envconfig.Get("CLERK_ISSUER", ""),
		},
		Firestore: FirestoreConfig{
			Database:        envconfig.Get("FIRESTORE_DATABASE", "(default)"),
			EmulatorHost:    envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
			CredentialsFile: envconfig.Get("GOOGLE_APPLICATION_CREDENTIALS", ""),
		},
		Storage: StorageConfig{
			Bucket: envconfig.Get("ASSET_BUCKET", ""),
			URLTTL: ttl,
		},
		Calendar:           calendar.Settings{Location: loc, WeekStart: weekStart},
		SeashellsPerMinute: rate,
		RolloverSchedule:   envconfig.Get("ROLLOVER_SCHEDULE", defaultRolloverSchedule),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

var scheduleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func validate(cfg Config) error {
	if err := envconfig.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.DataStore == DataStoreFirestore && cfg.GCPProjectID == "" {
		return fmt.Errorf("gcp project id required when datastore=firestore")
	}
	if cfg.Auth.Mode == sharedauth.ModeClerk && cfg.Auth.JWKSURL == "" {
		return fmt.Errorf("CLERK_JWKS_URL is required when AUTH_MODE=clerk")
	}
	if _, err := scheduleParser.Parse(cfg.RolloverSchedule); err != nil {
		return fmt.Errorf("ROLLOVER_SCHEDULE: %w", err)
	}

	return nil
}
