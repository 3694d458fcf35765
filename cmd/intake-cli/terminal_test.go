package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/capture"
	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/playback"
	"medical-intake-assistant/internal/store"
)

type deniedMic struct{}

func (deniedMic) Open(context.Context) (capture.Stream, error) {
	return nil, errors.New("NotAllowedError")
}

func newTestTerminal(t *testing.T) (*terminal, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	svc := consultation.NewService(consultation.Deps{Store: store.NewMemoryStore()}, zerolog.Nop())
	term := &terminal{
		out:    &out,
		svc:    svc,
		player: &switchablePlayer{ctrl: playback.NewController(playback.Discard{}, zerolog.Nop())},
		seen:   make(map[string]bool),
	}
	term.mic = capture.NewController(deniedMic{}, term.submitVoice, term.micDenied, zerolog.Nop())

	snap, err := svc.Open(context.Background(), "dev-test")
	if err != nil {
		t.Fatal(err)
	}
	term.session = snap.ID
	term.render(snap)
	return term, &out
}

func TestTerminal_IntakeConversation(t *testing.T) {
	term, out := newTestTerminal(t)
	ctx := context.Background()

	for _, line := range []string{"Ada", "36", "12345", "Pune"} {
		if !term.handle(ctx, line) {
			t.Fatal("terminal quit unexpectedly")
		}
	}
	text := out.String()
	if !strings.Contains(text, "you: Ada") || !strings.Contains(text, "Pune") {
		t.Fatalf("output = %q", text)
	}
	if term.lastSnap.Profile == nil || term.lastSnap.Profile.Name != "Ada" {
		t.Fatalf("profile = %+v", term.lastSnap.Profile)
	}
}

func TestTerminal_Commands(t *testing.T) {
	term, out := newTestTerminal(t)
	ctx := context.Background()

	term.handle(ctx, "/rec")
	if !strings.Contains(out.String(), "Microphone unavailable") {
		t.Fatalf("mic denial not shown: %q", out.String())
	}
	term.handle(ctx, "/rx")
	if !strings.Contains(out.String(), consultation.ErrDiagnosisUnavailable.Error()) {
		t.Fatalf("gating not shown: %q", out.String())
	}
	term.handle(ctx, "/lang")
	if !strings.Contains(out.String(), "* en-US") {
		t.Fatalf("language list: %q", out.String())
	}
	term.handle(ctx, "/mute")
	if !term.player.muted {
		t.Fatal("/mute did not mute")
	}
	if term.handle(ctx, "/quit") {
		t.Fatal("/quit must stop the loop")
	}
}

func TestParseCoordinates(t *testing.T) {
	geo, err := parseCoordinates("18.52, 73.85")
	if err != nil {
		t.Fatal(err)
	}
	c, err := geo.Locate(context.Background())
	if err != nil || c.Latitude != 18.52 || c.Longitude != 73.85 {
		t.Fatalf("coords = %+v, %v", c, err)
	}

	geo, _ = parseCoordinates("")
	if _, err := geo.Locate(context.Background()); !errors.Is(err, locate.ErrGeolocationUnavailable) {
		t.Fatalf("empty arg err = %v", err)
	}
	if _, err := parseCoordinates("north"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLastSpoken(t *testing.T) {
	msgs := []chat.Message{
		{ID: "1", Role: chat.RoleAssistant, Text: "a", AudioRef: "data:audio/mpeg;base64,AA=="},
		{ID: "2", Role: chat.RoleUser, Text: "b", AudioRef: "data:audio/webm;base64,AA=="},
		{ID: "3", Role: chat.RoleAssistant, Text: "c"},
	}
	m, ok := lastSpoken(msgs)
	if !ok || m.ID != "1" {
		t.Fatalf("lastSpoken = %+v %v", m, ok)
	}
}
