package agent

import (
	"context"
	"fmt"

	"medical-intake-assistant/internal/media"
)

type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

type Recognizer interface {
	Transcribe(ctx context.Context, audioData []byte, mimeType, lang string) (string, error)
}

// Voice exchanges audio as data URIs, the form stored on messages.
type Voice struct {
	tts Synthesizer
	stt Recognizer
}

func NewVoice(tts Synthesizer, stt Recognizer) *Voice {
	return &Voice{tts: tts, stt: stt}
}

// Speak synthesizes text and returns it as an audio/mpeg data URI.
func (v *Voice) Speak(ctx context.Context, text, lang string) (string, error) {
	audio, err := v.tts.Synthesize(ctx, text, lang)
	if err != nil {
		return "", err
	}
	if len(audio) == 0 {
		return "", ErrNoAudio
	}
	return media.EncodeDataURI("audio/mpeg", audio), nil
}

// Transcribe decodes a recorded data URI and returns its transcript.
func (v *Voice) Transcribe(ctx context.Context, audioRef, lang string) (string, error) {
	mimeType, audio, err := media.DecodeDataURI(audioRef)
	if err != nil {
		return "", fmt.Errorf("decode recording: %w", err)
	}
	return v.stt.Transcribe(ctx, audio, mimeType, lang)
}
