package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/api/middleware"
	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/store"
)

func newTestRouter() http.Handler {
	svc := consultation.NewService(consultation.Deps{Store: store.NewMemoryStore()}, zerolog.Nop())
	h := consultation.NewHandler(svc, nil, zerolog.Nop())
	return NewRouter(zerolog.Nop(), h, middleware.NewRateLimiter(0, zerolog.Nop()))
}

func TestRouter_Health(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouter_Languages(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/languages", nil))

	var body struct {
		Default   string `json:"default"`
		Languages []struct {
			Code string `json:"code"`
		} `json:"languages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Default != "en-US" || len(body.Languages) != 5 {
		t.Fatalf("body = %+v", body)
	}
}

func TestRouter_OpenSession(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", nil))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers missing")
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
