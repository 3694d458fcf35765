// Package agent talks to the remote collaborators: the hosted language model,
// speech-to-text and text-to-speech.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/metrics"
	"medical-intake-assistant/internal/prescription"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.5-flash"
)

var ErrEmptyCompletion = errors.New("model returned no content")

// DiagnosisRequest carries one symptom turn to the model.
type DiagnosisRequest struct {
	Symptoms       string
	Language       string
	ChatHistory    string
	ImageRef       string // data URI, optional
	PatientDetails string // JSON, optional
}

type Diagnosis struct {
	Diagnosis       string `json:"diagnosis"`
	SuggestedAction string `json:"suggestedAction"`
}

// LLMClient calls an OpenAI-compatible chat completion API.
type LLMClient struct {
	client *openai.Client
	model  string
}

func NewLLMClient(apiKey, baseURL, model string) *LLMClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	if model == "" {
		model = DefaultModel
	}
	return &LLMClient{client: openai.NewClientWithConfig(cfg), model: model}
}

// Diagnose asks for a diagnosis and suggested action. An attached image is
// sent as an image part next to the text.
func (c *LLMClient) Diagnose(ctx context.Context, req DiagnosisRequest) (Diagnosis, error) {
	details := req.PatientDetails
	if details == "" {
		details = "(none)"
	}
	text := fmt.Sprintf(diagnosisUserPrompt, details, orNone(req.ChatHistory), req.Symptoms, i18n.Label(req.Language))

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text}
	if req.ImageRef != "" {
		user = openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: text},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    req.ImageRef,
					Detail: openai.ImageURLDetailAuto,
				}},
			},
		}
	}

	var out Diagnosis
	err := c.completeJSON(ctx, "diagnosis", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: diagnosisSystemPrompt},
		user,
	}, &out)
	if err != nil {
		return Diagnosis{}, err
	}
	if out.Diagnosis == "" && out.SuggestedAction == "" {
		return Diagnosis{}, ErrEmptyCompletion
	}
	return out, nil
}

// GeneratePrescription implements prescription.Generator.
func (c *LLMClient) GeneratePrescription(ctx context.Context, transcript, diagnosis, lang string) (prescription.Draft, error) {
	var out prescription.Draft
	err := c.completeJSON(ctx, "prescription", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(prescriptionPrompt, orNone(transcript), diagnosis, i18n.Label(lang))},
	}, &out)
	if err != nil {
		return prescription.Draft{}, err
	}
	return out, nil
}

// Suggest returns at most two sentences of follow-up suggestions.
func (c *LLMClient) Suggest(ctx context.Context, transcript, currentSymptoms, lang string) (string, error) {
	var out struct {
		Suggestions string `json:"suggestions"`
	}
	err := c.completeJSON(ctx, "suggestions", []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(suggestionsPrompt, orNone(transcript), currentSymptoms, i18n.Label(lang))},
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Suggestions, nil
}

func (c *LLMClient) completeJSON(ctx context.Context, name string, msgs []openai.ChatCompletionMessage, out any) (err error) {
	start := time.Now()
	defer func() { track("llm_"+name, start, err) }()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:          c.model,
		Messages:       msgs,
		Temperature:    0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return fmt.Errorf("%s completion failed: %w", name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return ErrEmptyCompletion
	}
	if err := json.Unmarshal([]byte(stripFences(resp.Choices[0].Message.Content)), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", name, err)
	}
	return nil
}

// stripFences removes a ```json fence some models wrap around JSON output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		rest = strings.TrimPrefix(rest, "json")
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "```"))
	}
	return s
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(none)"
	}
	return s
}

func track(collaborator string, start time.Time, err error) {
	metrics.RemoteCalls.WithLabelValues(collaborator, metrics.Outcome(err)).Inc()
	metrics.RemoteLatency.WithLabelValues(collaborator).Observe(time.Since(start).Seconds())
}
