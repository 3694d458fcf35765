// Package locate builds a map search for hospitals and clinics relevant to the
// most recent diagnosis.
package locate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/media"
)

const (
	mapsSearchURL   = "https://www.google.com/maps/search/?api=1&query="
	fallbackKeyword = "health issue"
)

var ErrGeolocationUnavailable = errors.New("geolocation unavailable")

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geolocator resolves the device position. Denial, timeout and missing
// hardware are all reported as errors.
type Geolocator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// Opener hands the finished URL to whatever shows it to the user.
type Opener interface {
	Open(url string) error
}

type Result struct {
	URL   string `json:"url"`
	Query string `json:"query"`
	// LowRelevance is set when neither coordinates nor a stored location
	// could bias the search.
	LowRelevance bool `json:"low_relevance"`
}

type Finder struct {
	opener Opener
	logger zerolog.Logger
}

// NewFinder accepts a nil opener; the URL is then only returned.
func NewFinder(opener Opener, logger zerolog.Logger) *Finder {
	return &Finder{opener: opener, logger: logger}
}

// Keyword extracts the diagnosis from the most recent assistant message: its
// first paragraph with a leading "Diagnosis:" label removed.
func Keyword(msgs []chat.Message) string {
	last, ok := chat.LastAssistant(msgs)
	if !ok {
		return fallbackKeyword
	}
	first, _, _ := strings.Cut(last.Text, "\n\n")
	first = strings.TrimSpace(first)
	if rest, ok := strings.CutPrefix(first, "Diagnosis:"); ok {
		first = strings.TrimSpace(rest)
	}
	if first == "" {
		return fallbackKeyword
	}
	return first
}

// Query is the unbiased search text.
func Query(msgs []chat.Message) string {
	return Keyword(msgs) + " hospitals and clinics"
}

// FindNearby always produces a URL. A geolocation failure falls back to the
// profile location, and without one the result is flagged as less relevant.
func (f *Finder) FindNearby(ctx context.Context, geo Geolocator, msgs []chat.Message, profile *intake.Profile) (Result, error) {
	query := Query(msgs)
	res := Result{Query: query, URL: mapsSearchURL + media.EscapeComponent(query)}

	coords, err := locateWith(ctx, geo)
	switch {
	case err == nil:
		res.URL += fmt.Sprintf("&ll=%g,%g", coords.Latitude, coords.Longitude)
	case profile != nil && strings.TrimSpace(profile.Location) != "":
		f.logger.Warn().Err(err).Msg("geolocation failed, using profile location")
		res.URL += "+near+" + media.EscapeComponent(profile.Location)
	default:
		f.logger.Warn().Err(err).Msg("geolocation failed, searching without location")
		res.LowRelevance = true
	}

	if f.opener != nil {
		if err := f.opener.Open(res.URL); err != nil {
			return res, fmt.Errorf("open map search: %w", err)
		}
	}
	return res, nil
}

func locateWith(ctx context.Context, geo Geolocator) (Coordinates, error) {
	if geo == nil {
		return Coordinates{}, ErrGeolocationUnavailable
	}
	return geo.Locate(ctx)
}

// Fixed reports a position the caller already knows, such as one sent by a
// browser. A nil *Fixed reports ErrGeolocationUnavailable.
type Fixed struct {
	Coordinates
}

func (f *Fixed) Locate(context.Context) (Coordinates, error) {
	if f == nil {
		return Coordinates{}, ErrGeolocationUnavailable
	}
	return f.Coordinates, nil
}

// Failed reports a geolocation error observed elsewhere, such as a browser
// permission denial.
type Failed struct {
	Reason string
}

func (f Failed) Locate(context.Context) (Coordinates, error) {
	return Coordinates{}, fmt.Errorf("%w: %s", ErrGeolocationUnavailable, f.Reason)
}
