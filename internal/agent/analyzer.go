package agent

import (
	"context"

	"github.com/rs/zerolog"
)

type Diagnoser interface {
	Diagnose(ctx context.Context, req DiagnosisRequest) (Diagnosis, error)
}

type Speaker interface {
	Speak(ctx context.Context, text, lang string) (string, error)
}

// Analysis is the full answer to a symptom turn.
type Analysis struct {
	Diagnosis       string `json:"diagnosis"`
	SuggestedAction string `json:"suggested_action"`
	ResponseText    string `json:"response_text"`
	AudioRef        string `json:"audio_ref,omitempty"`
}

// Analyzer composes the diagnosis call with speech synthesis of the answer.
type Analyzer struct {
	llm     Diagnoser
	speaker Speaker
	logger  zerolog.Logger
}

func NewAnalyzer(llm Diagnoser, speaker Speaker, logger zerolog.Logger) *Analyzer {
	return &Analyzer{llm: llm, speaker: speaker, logger: logger}
}

// Analyze fails only when the diagnosis fails. A synthesis failure leaves
// AudioRef empty.
func (a *Analyzer) Analyze(ctx context.Context, req DiagnosisRequest) (Analysis, error) {
	d, err := a.llm.Diagnose(ctx, req)
	if err != nil {
		return Analysis{}, err
	}

	out := Analysis{
		Diagnosis:       d.Diagnosis,
		SuggestedAction: d.SuggestedAction,
		ResponseText:    d.Diagnosis + "\n\n" + d.SuggestedAction,
	}
	if a.speaker == nil {
		return out, nil
	}

	audio, err := a.speaker.Speak(ctx, out.ResponseText, req.Language)
	if err != nil {
		a.logger.Warn().Err(err).Str("language", req.Language).Msg("speech synthesis failed, returning text only")
		return out, nil
	}
	out.AudioRef = audio
	return out, nil
}
