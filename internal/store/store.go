// Package store persists per-device preferences: the selected language and
// the completed patient profile. Each value is overwritten wholesale.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/metrics"
)

var ErrNotFound = errors.New("not found")

// PreferenceStore is implemented by every backend.
type PreferenceStore interface {
	Language(ctx context.Context, deviceID string) (string, error)
	SetLanguage(ctx context.Context, deviceID, lang string) error
	Profile(ctx context.Context, deviceID string) (intake.Profile, error)
	SaveProfile(ctx context.Context, deviceID string, p intake.Profile) error
	DeleteProfile(ctx context.Context, deviceID string) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend        string // memory, sqlite, postgres or redis
	SQLitePath     string
	DatabaseURL    string
	RedisURL       string
	MigrationsPath string
}

// Open connects the backend named in opts.
func Open(ctx context.Context, opts Options, logger zerolog.Logger) (PreferenceStore, error) {
	logger = logger.With().Str("store", opts.Backend).Logger()

	switch opts.Backend {
	case "memory":
		logger.Warn().Msg("using in-memory store, preferences will not survive restarts")
		return NewMemoryStore(), nil
	case "", "sqlite":
		s, err := NewSQLiteStore(ctx, opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		logger.Info().Str("path", s.path).Msg("connected to SQLite")
		return s, nil
	case "postgres":
		if opts.MigrationsPath != "" {
			if err := Migrate(opts.MigrationsPath, opts.DatabaseURL, logger); err != nil {
				return nil, err
			}
		}
		s, err := NewPostgresStore(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		logger.Info().Msg("connected to PostgreSQL")
		return s, nil
	case "redis":
		s, err := NewRedisStore(ctx, opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		logger.Info().Msg("connected to Redis")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}

func observe(backend, op string, start time.Time) {
	metrics.StoreLatency.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
}
