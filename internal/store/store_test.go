package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/intake"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// exercise runs the same contract against any backend.
func exercise(t *testing.T, s PreferenceStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Language(ctx, "dev-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Language on empty store: err = %v", err)
	}
	if _, err := s.Profile(ctx, "dev-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Profile on empty store: err = %v", err)
	}

	if err := s.SetLanguage(ctx, "dev-1", "hi-IN"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLanguage(ctx, "dev-1", "ta-IN"); err != nil {
		t.Fatal(err)
	}
	if lang, err := s.Language(ctx, "dev-1"); err != nil || lang != "ta-IN" {
		t.Fatalf("Language = %q, %v", lang, err)
	}

	// Language alone must not look like a stored profile.
	if _, err := s.Profile(ctx, "dev-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Profile after SetLanguage: err = %v", err)
	}

	p := intake.Profile{Name: "Asha", Age: "34", Phone: "+91 98765", Location: "Pune"}
	if err := s.SaveProfile(ctx, "dev-1", p); err != nil {
		t.Fatal(err)
	}
	got, err := s.Profile(ctx, "dev-1")
	if err != nil || got != p {
		t.Fatalf("Profile = %+v, %v", got, err)
	}

	if err := s.DeleteProfile(ctx, "dev-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Profile(ctx, "dev-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Profile after delete: err = %v", err)
	}
	if lang, _ := s.Language(ctx, "dev-1"); lang != "ta-IN" {
		t.Fatalf("language lost on profile delete: %q", lang)
	}

	// Other devices are untouched.
	if _, err := s.Language(ctx, "dev-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("dev-2 language: err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	exercise(t, newSQLite(t))
}

func TestSQLiteStore_SaveProfileBeforeLanguage(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	if err := s.SaveProfile(ctx, "dev", intake.Profile{Name: "A", Age: "1", Phone: "2"}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Language(ctx, "dev"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Language: err = %v", err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), Options{Backend: "cassandra"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), Options{Backend: "memory"}, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Fatalf("Open returned %T", s)
	}
}

func TestRedisKeys(t *testing.T) {
	if got := languageKey("dev-1"); got != "device:dev-1:language" {
		t.Fatalf("languageKey() = %q", got)
	}
	if got := profileKey("dev-1"); got != "device:dev-1:profile" {
		t.Fatalf("profileKey() = %q", got)
	}
}
