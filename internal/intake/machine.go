// Package intake sequences the collection of patient details before
// free-form chat is enabled.
package intake

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/i18n"
)

var ErrEmptyAnswer = errors.New("answer is empty")

// ProfileSaver persists a completed profile for later sessions.
type ProfileSaver interface {
	SaveProfile(ctx context.Context, deviceID string, p Profile) error
}

// Step is the outcome of one transition.
type Step struct {
	Next      State
	Prompt    string
	Draft     Profile
	Completed bool
}

// field describes the single profile field a collecting state may write.
type field struct {
	set    func(p *Profile, v string)
	next   State
	prompt i18n.Key
}

var fields = map[State]field{
	AwaitingName:     {set: func(p *Profile, v string) { p.Name = v }, next: AwaitingAge, prompt: i18n.KeyAskAge},
	AwaitingAge:      {set: func(p *Profile, v string) { p.Age = v }, next: AwaitingPhone, prompt: i18n.KeyAskPhone},
	AwaitingPhone:    {set: func(p *Profile, v string) { p.Phone = v }, next: AwaitingLocation, prompt: i18n.KeyAskLocation},
	AwaitingLocation: {set: func(p *Profile, v string) { p.Location = v }, next: Complete, prompt: i18n.KeyThanksPatientDetails},
}

type Machine struct {
	saver  ProfileSaver
	logger zerolog.Logger
}

func NewMachine(saver ProfileSaver, logger zerolog.Logger) *Machine {
	return &Machine{saver: saver, logger: logger}
}

// Start resets intake to the first question with an empty draft.
func (m *Machine) Start(lang string) Step {
	prompt := i18n.T(lang, i18n.KeyWelcomeMessage, nil) + "\n\n" + i18n.T(lang, i18n.KeyAskName, nil)
	return Step{Next: AwaitingName, Prompt: prompt}
}

// Advance writes answer into the field owned by state and moves to the next
// state. Entering Complete persists the profile; a save failure is logged and
// does not fail the transition.
func (m *Machine) Advance(ctx context.Context, deviceID string, state State, draft Profile, answer, lang string) (Step, error) {
	f, ok := fields[state]
	if !ok {
		return Step{Next: state, Draft: draft}, nil
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Step{}, ErrEmptyAnswer
	}
	f.set(&draft, answer)

	step := Step{
		Next:   f.next,
		Draft:  draft,
		Prompt: i18n.T(lang, f.prompt, map[string]string{"name": draft.Name}),
	}
	if step.Next != Complete {
		return step, nil
	}

	step.Completed = true
	if m.saver != nil {
		if err := m.saver.SaveProfile(ctx, deviceID, draft); err != nil {
			m.logger.Error().Err(err).Str("device_id", deviceID).Msg("failed to persist patient profile")
		}
	}
	return step, nil
}
