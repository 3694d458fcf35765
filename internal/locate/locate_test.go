package locate

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/intake"
)

var feverChat = []chat.Message{
	{Role: chat.RoleUser, Text: "I have a fever"},
	{Role: chat.RoleAssistant, Text: "Diagnosis: Flu\n\nTake rest."},
}

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

func TestQuery_StripsLabelAndKeepsFirstParagraph(t *testing.T) {
	if got := Query(feverChat); got != "Flu hospitals and clinics" {
		t.Fatalf("Query() = %q", got)
	}
}

func TestKeyword(t *testing.T) {
	cases := []struct {
		name string
		msgs []chat.Message
		want string
	}{
		{"no assistant", []chat.Message{{Role: chat.RoleUser, Text: "hi"}}, "health issue"},
		{"no label", []chat.Message{{Role: chat.RoleAssistant, Text: "Migraine\n\nDrink water"}}, "Migraine"},
		{"label only", []chat.Message{{Role: chat.RoleAssistant, Text: "Diagnosis:\n\nRest"}}, "health issue"},
		{"latest wins", append(append([]chat.Message{}, feverChat...), chat.Message{Role: chat.RoleAssistant, Text: "Diagnosis: Sprain"}), "Sprain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Keyword(tc.msgs); got != tc.want {
				t.Fatalf("Keyword() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFindNearby_WithCoordinates(t *testing.T) {
	opener := &recordingOpener{}
	f := NewFinder(opener, zerolog.Nop())

	res, err := f.FindNearby(context.Background(), &Fixed{Coordinates{Latitude: 18.52, Longitude: 73.85}}, feverChat, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://www.google.com/maps/search/?api=1&query=Flu%20hospitals%20and%20clinics&ll=18.52,73.85"
	if res.URL != want || res.LowRelevance {
		t.Fatalf("result = %+v", res)
	}
	if len(opener.urls) != 1 || opener.urls[0] != want {
		t.Fatalf("opened %v", opener.urls)
	}
}

func TestFindNearby_FallsBackToProfileLocation(t *testing.T) {
	f := NewFinder(nil, zerolog.Nop())
	profile := &intake.Profile{Name: "A", Location: "Navi Mumbai"}

	res, err := f.FindNearby(context.Background(), Failed{Reason: "permission denied"}, feverChat, profile)
	if err != nil {
		t.Fatal(err)
	}
	want := "https://www.google.com/maps/search/?api=1&query=Flu%20hospitals%20and%20clinics+near+Navi%20Mumbai"
	if res.URL != want || res.LowRelevance {
		t.Fatalf("result = %+v", res)
	}
}

func TestFindNearby_WarnsWithoutAnyLocation(t *testing.T) {
	f := NewFinder(nil, zerolog.Nop())

	for _, geo := range []Geolocator{nil, (*Fixed)(nil), Failed{Reason: "timeout"}} {
		res, err := f.FindNearby(context.Background(), geo, feverChat, &intake.Profile{Name: "A"})
		if err != nil {
			t.Fatal(err)
		}
		if !res.LowRelevance {
			t.Fatalf("%T: expected low relevance", geo)
		}
		if res.URL != "https://www.google.com/maps/search/?api=1&query=Flu%20hospitals%20and%20clinics" {
			t.Fatalf("%T: url = %s", geo, res.URL)
		}
	}
}

func TestFindNearby_OpenerFailureStillReturnsURL(t *testing.T) {
	f := NewFinder(&recordingOpener{err: errors.New("no browser")}, zerolog.Nop())
	res, err := f.FindNearby(context.Background(), nil, feverChat, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if res.URL == "" {
		t.Fatal("url missing")
	}
}
