package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"

	"medical-intake-assistant/internal/intake"
)

// SQLiteStore is the default local backend.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates) the database at dbPath.
// If dbPath is empty, defaults to "./data/intake.db".
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/intake.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// Single writer keeps SQLITE_BUSY out of concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS device_preferences (
		device_id  TEXT PRIMARY KEY,
		language   TEXT NOT NULL DEFAULT '',
		profile    TEXT,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Language(ctx context.Context, deviceID string) (string, error) {
	defer observe("sqlite", "language", time.Now())

	var lang string
	err := s.db.QueryRowContext(ctx,
		`SELECT language FROM device_preferences WHERE device_id = ?`, deviceID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && lang == "") {
		return "", ErrNotFound
	}
	return lang, err
}

func (s *SQLiteStore) SetLanguage(ctx context.Context, deviceID, lang string) error {
	defer observe("sqlite", "set_language", time.Now())

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_preferences (device_id, language, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET
			language = excluded.language,
			updated_at = excluded.updated_at`,
		deviceID, lang, time.Now().UTC())
	return err
}

func (s *SQLiteStore) Profile(ctx context.Context, deviceID string) (intake.Profile, error) {
	defer observe("sqlite", "profile", time.Now())

	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM device_preferences WHERE device_id = ?`, deviceID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !raw.Valid) {
		return intake.Profile{}, ErrNotFound
	}
	if err != nil {
		return intake.Profile{}, err
	}

	var p intake.Profile
	if err := json.Unmarshal([]byte(raw.String), &p); err != nil {
		return intake.Profile{}, fmt.Errorf("failed to unmarshal profile: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, deviceID string, p intake.Profile) error {
	defer observe("sqlite", "save_profile", time.Now())

	profileJSON, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO device_preferences (device_id, profile, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET
			profile = excluded.profile,
			updated_at = excluded.updated_at`,
		deviceID, string(profileJSON), time.Now().UTC())
	return err
}

func (s *SQLiteStore) DeleteProfile(ctx context.Context, deviceID string) error {
	defer observe("sqlite", "delete_profile", time.Now())

	_, err := s.db.ExecContext(ctx,
		`UPDATE device_preferences SET profile = NULL, updated_at = ? WHERE device_id = ?`,
		time.Now().UTC(), deviceID)
	return err
}
