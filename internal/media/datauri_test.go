package media

import (
	"bytes"
	"errors"
	"net/url"
	"testing"
)

func TestDecodeDataURI(t *testing.T) {
	uri := EncodeDataURI("audio/webm", []byte("voice"))

	mimeType, data, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mimeType != "audio/webm" {
		t.Fatalf("mime = %q, want audio/webm", mimeType)
	}
	if !bytes.Equal(data, []byte("voice")) {
		t.Fatalf("data = %q", data)
	}
}

func TestDecodeDataURI_Rejects(t *testing.T) {
	for _, uri := range []string{
		"",
		"https://example.com/a.wav",
		"data:audio/wav,plain",
		"data:audio/wav;base64",
		"data:audio/wav;base64,***",
	} {
		if _, _, err := DecodeDataURI(uri); !errors.Is(err, ErrInvalidDataURI) {
			t.Errorf("DecodeDataURI(%q) err = %v, want ErrInvalidDataURI", uri, err)
		}
	}
}

func TestFileExtension(t *testing.T) {
	cases := map[string]string{
		"audio/webm;codecs=opus": "webm",
		"audio/mpeg":             "mp3",
		"audio/wav":              "wav",
		"":                       "wav",
	}
	for mimeType, want := range cases {
		if got := FileExtension(mimeType); got != want {
			t.Errorf("FileExtension(%q) = %q, want %q", mimeType, got, want)
		}
	}
}

func TestEscapeComponent(t *testing.T) {
	got := EscapeComponent("Flu hospitals & clinics\n+1")
	want := "Flu%20hospitals%20%26%20clinics%0A%2B1"
	if got != want {
		t.Fatalf("EscapeComponent() = %q, want %q", got, want)
	}
}

func TestEscapeComponent_ReservedMarksRoundTrip(t *testing.T) {
	in := "*Diagnosis:* Flu (mild)!"
	got := EscapeComponent(in)
	if got != "%2ADiagnosis%3A%2A%20Flu%20%28mild%29%21" {
		t.Fatalf("EscapeComponent() = %q", got)
	}
	back, err := url.QueryUnescape(got)
	if err != nil || back != in {
		t.Fatalf("QueryUnescape() = %q, %v", back, err)
	}
}
