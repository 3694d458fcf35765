package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"medical-intake-assistant/internal/i18n"
)

const (
	elevenLabsAPIURL = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultVoiceID   = "21m00Tcm4TlvDq8ikWAM" // Rachel
	defaultTTSModel  = "eleven_multilingual_v2"
)

// ErrNoAudio means the service answered without any audio.
var ErrNoAudio = errors.New("no audio returned")

type ElevenLabsClient struct {
	apiKey     string
	voiceID    string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewElevenLabsClient(apiKey, voiceID, model string) *ElevenLabsClient {
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	if model == "" {
		model = defaultTTSModel
	}
	return &ElevenLabsClient{
		apiKey:  apiKey,
		voiceID: voiceID,
		model:   model,
		baseURL: elevenLabsAPIURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type ttsRequest struct {
	Text          string `json:"text"`
	ModelID       string `json:"model_id"`
	LanguageCode  string `json:"language_code,omitempty"`
	VoiceSettings struct {
		Stability       float64 `json:"stability"`
		SimilarityBoost float64 `json:"similarity_boost"`
	} `json:"voice_settings"`
}

// Synthesize returns MPEG audio for text. Only the v2.5 models accept a
// language code; the multilingual model detects the language itself.
func (c *ElevenLabsClient) Synthesize(ctx context.Context, text, lang string) (audio []byte, err error) {
	start := time.Now()
	defer func() { track("tts", start, err) }()

	reqBody := ttsRequest{Text: text, ModelID: c.model}
	if strings.Contains(c.model, "v2_5") {
		reqBody.LanguageCode = i18n.Base(lang)
	}
	reqBody.VoiceSettings.Stability = 0.5
	reqBody.VoiceSettings.SimilarityBoost = 0.75

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("TTS API error: %s - %s", resp.Status, string(body))
	}

	audio, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, ErrNoAudio
	}
	return audio, nil
}
