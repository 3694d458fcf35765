package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/media"
)

// completionServer answers every chat completion with content and records
// the last request body.
func completionServer(t *testing.T, content string, lastBody *[]byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if lastBody != nil {
			*lastBody = body
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLLMClient_Diagnose(t *testing.T) {
	var body []byte
	srv := completionServer(t, `{"diagnosis":"Diagnosis: Flu","suggestedAction":"Rest and fluids"}`, &body)
	c := NewLLMClient("key", srv.URL, "test-model")

	d, err := c.Diagnose(context.Background(), DiagnosisRequest{
		Symptoms:    "fever and chills",
		Language:    "hi-IN",
		ChatHistory: "user: hello",
		ImageRef:    "data:image/png;base64,AAAA",
	})
	if err != nil {
		t.Fatal(err)
	}
	if d.Diagnosis != "Diagnosis: Flu" || d.SuggestedAction != "Rest and fluids" {
		t.Fatalf("diagnosis = %+v", d)
	}

	sent := string(body)
	for _, want := range []string{`"model":"test-model"`, "fever and chills", "Hindi", "image_url", "data:image/png;base64,AAAA", `"json_object"`} {
		if !strings.Contains(sent, want) {
			t.Errorf("request missing %q:\n%s", want, sent)
		}
	}
}

func TestLLMClient_GeneratePrescription(t *testing.T) {
	srv := completionServer(t, "```json\n{\"diagnosis\":\"Cold\",\"medicines\":[{\"name\":\"Paracetamol\",\"dosage\":\"500mg\"}],\"instructions\":\"Rest\"}\n```", nil)
	c := NewLLMClient("key", srv.URL, "")

	d, err := c.GeneratePrescription(context.Background(), "user: cough", "Cold", "en-US")
	if err != nil {
		t.Fatal(err)
	}
	if d.Diagnosis != "Cold" || len(d.Medicines) != 1 || d.Medicines[0].Name != "Paracetamol" {
		t.Fatalf("draft = %+v", d)
	}
}

func TestLLMClient_Suggest(t *testing.T) {
	srv := completionServer(t, `{"suggestions":"Ask how long the cough has lasted."}`, nil)
	got, err := NewLLMClient("key", srv.URL, "").Suggest(context.Background(), "user: cough", "cough", "en-US")
	if err != nil || got != "Ask how long the cough has lasted." {
		t.Fatalf("Suggest() = %q, %v", got, err)
	}
}

func TestLLMClient_EmptyCompletion(t *testing.T) {
	srv := completionServer(t, `{}`, nil)
	_, err := NewLLMClient("key", srv.URL, "").Diagnose(context.Background(), DiagnosisRequest{Symptoms: "x"})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("err = %v", err)
	}
}

func TestLLMClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := NewLLMClient("key", srv.URL, "").Diagnose(context.Background(), DiagnosisRequest{Symptoms: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestWhisperClient_Transcribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.FormValue("language"); got != "ta" {
			t.Errorf("language = %q", got)
		}
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("file: %v", err)
		} else if header.Filename != "audio.webm" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(sttResponse{Text: "தலைவலி", Language: "ta"})
	}))
	defer srv.Close()

	text, err := NewWhisperClient(srv.URL).Transcribe(context.Background(), []byte("voice"), "audio/webm;codecs=opus", "ta-IN")
	if err != nil || text != "தலைவலி" {
		t.Fatalf("Transcribe() = %q, %v", text, err)
	}
}

func TestWhisperClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewWhisperClient(srv.URL).Transcribe(context.Background(), []byte("x"), "audio/wav", "en-US"); err == nil {
		t.Fatal("expected error")
	}
}

func newTestElevenLabs(srv *httptest.Server, model string) *ElevenLabsClient {
	c := NewElevenLabsClient("secret", "voice-1", model)
	c.baseURL = srv.URL
	return c
}

func TestElevenLabsClient_Synthesize(t *testing.T) {
	var got ttsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voice-1" || r.Header.Get("xi-api-key") != "secret" {
			t.Errorf("path=%s key=%s", r.URL.Path, r.Header.Get("xi-api-key"))
		}
		var req ttsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		got = req
		w.Write([]byte("ID3mp3"))
	}))
	defer srv.Close()

	audio, err := newTestElevenLabs(srv, "eleven_flash_v2_5").Synthesize(context.Background(), "नमस्ते", "hi-IN")
	if err != nil || string(audio) != "ID3mp3" {
		t.Fatalf("Synthesize() = %q, %v", audio, err)
	}
	if got.LanguageCode != "hi" || got.ModelID != "eleven_flash_v2_5" {
		t.Fatalf("request = %+v", got)
	}

	if _, err := newTestElevenLabs(srv, "").Synthesize(context.Background(), "hello", "en-US"); err != nil {
		t.Fatal(err)
	}
	if got.LanguageCode != "" || got.ModelID != defaultTTSModel {
		t.Fatalf("multilingual model request = %+v", got)
	}
}

func TestElevenLabsClient_EmptyAudio(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	if _, err := newTestElevenLabs(srv, "").Synthesize(context.Background(), "x", "en-US"); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v, want ErrNoAudio", err)
	}
}

type fakeSynth struct {
	audio []byte
	err   error
}

func (f fakeSynth) Synthesize(context.Context, string, string) ([]byte, error) { return f.audio, f.err }

type fakeRecognizer struct {
	gotAudio []byte
	gotMime  string
}

func (f *fakeRecognizer) Transcribe(_ context.Context, audio []byte, mimeType, _ string) (string, error) {
	f.gotAudio, f.gotMime = audio, mimeType
	return "transcript", nil
}

func TestVoice(t *testing.T) {
	rec := &fakeRecognizer{}
	v := NewVoice(fakeSynth{audio: []byte("mp3")}, rec)

	ref, err := v.Speak(context.Background(), "hi", "en-US")
	if err != nil || ref != media.EncodeDataURI("audio/mpeg", []byte("mp3")) {
		t.Fatalf("Speak() = %q, %v", ref, err)
	}

	text, err := v.Transcribe(context.Background(), media.EncodeDataURI("audio/ogg", []byte("rec")), "en-US")
	if err != nil || text != "transcript" {
		t.Fatalf("Transcribe() = %q, %v", text, err)
	}
	if !bytes.Equal(rec.gotAudio, []byte("rec")) || rec.gotMime != "audio/ogg" {
		t.Fatalf("recognizer got %q %q", rec.gotAudio, rec.gotMime)
	}

	if _, err := v.Transcribe(context.Background(), "not a data uri", "en-US"); !errors.Is(err, media.ErrInvalidDataURI) {
		t.Fatalf("err = %v", err)
	}
	if _, err := NewVoice(fakeSynth{}, rec).Speak(context.Background(), "hi", "en-US"); !errors.Is(err, ErrNoAudio) {
		t.Fatalf("err = %v", err)
	}
}

type fakeDiagnoser struct {
	d   Diagnosis
	err error
}

func (f fakeDiagnoser) Diagnose(context.Context, DiagnosisRequest) (Diagnosis, error) { return f.d, f.err }

type fakeSpeaker struct {
	ref string
	err error
}

func (f fakeSpeaker) Speak(context.Context, string, string) (string, error) { return f.ref, f.err }

func TestAnalyzer_Analyze(t *testing.T) {
	d := Diagnosis{Diagnosis: "Diagnosis: Flu", SuggestedAction: "Rest"}

	a := NewAnalyzer(fakeDiagnoser{d: d}, fakeSpeaker{ref: "data:audio/mpeg;base64,AA=="}, zerolog.Nop())
	out, err := a.Analyze(context.Background(), DiagnosisRequest{Symptoms: "fever"})
	if err != nil {
		t.Fatal(err)
	}
	if out.ResponseText != "Diagnosis: Flu\n\nRest" || out.AudioRef == "" {
		t.Fatalf("analysis = %+v", out)
	}

	a = NewAnalyzer(fakeDiagnoser{d: d}, fakeSpeaker{err: ErrNoAudio}, zerolog.Nop())
	out, err = a.Analyze(context.Background(), DiagnosisRequest{Symptoms: "fever"})
	if err != nil {
		t.Fatalf("tts failure must not fail analysis: %v", err)
	}
	if out.AudioRef != "" || out.ResponseText == "" {
		t.Fatalf("analysis = %+v", out)
	}

	a = NewAnalyzer(fakeDiagnoser{err: errors.New("boom")}, fakeSpeaker{}, zerolog.Nop())
	if _, err := a.Analyze(context.Background(), DiagnosisRequest{}); err == nil {
		t.Fatal("expected error")
	}
}
