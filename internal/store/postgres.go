package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/intake"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to databaseURL, retrying while the database
// container is still starting.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Migrate applies the SQL migrations under dir (a filesystem path).
func Migrate(dir, databaseURL string, logger zerolog.Logger) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("migration init failed: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	logger.Info().Str("dir", dir).Msg("migrations applied")
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Language(ctx context.Context, deviceID string) (string, error) {
	defer observe("postgres", "language", time.Now())

	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM device_preferences WHERE device_id = $1`, deviceID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && lang == "") {
		return "", ErrNotFound
	}
	return lang, err
}

func (s *PostgresStore) SetLanguage(ctx context.Context, deviceID, lang string) error {
	defer observe("postgres", "set_language", time.Now())

	query := `
		INSERT INTO device_preferences (device_id, language, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			language = $2,
			updated_at = $3
	`
	_, err := s.db.ExecContext(ctx, query, deviceID, lang, time.Now())
	return err
}

func (s *PostgresStore) Profile(ctx context.Context, deviceID string) (intake.Profile, error) {
	defer observe("postgres", "profile", time.Now())

	var profileJSON []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM device_preferences WHERE device_id = $1`, deviceID).Scan(&profileJSON)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && len(profileJSON) == 0) {
		return intake.Profile{}, ErrNotFound
	}
	if err != nil {
		return intake.Profile{}, err
	}

	var p intake.Profile
	if err := json.Unmarshal(profileJSON, &p); err != nil {
		return intake.Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SaveProfile(ctx context.Context, deviceID string, p intake.Profile) error {
	defer observe("postgres", "save_profile", time.Now())

	profileJSON, err := json.Marshal(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO device_preferences (device_id, profile, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (device_id) DO UPDATE SET
			profile = $2,
			updated_at = $3
	`
	_, err = s.db.ExecContext(ctx, query, deviceID, profileJSON, time.Now())
	return err
}

func (s *PostgresStore) DeleteProfile(ctx context.Context, deviceID string) error {
	defer observe("postgres", "delete_profile", time.Now())

	_, err := s.db.ExecContext(ctx,
		`UPDATE device_preferences SET profile = NULL, updated_at = $2 WHERE device_id = $1`,
		deviceID, time.Now())
	return err
}
