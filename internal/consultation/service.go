package consultation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/agent"
	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/metrics"
	"medical-intake-assistant/internal/prescription"
	"medical-intake-assistant/internal/store"
)

type Service interface {
	Open(ctx context.Context, deviceID string) (Snapshot, error)
	Get(ctx context.Context, id uuid.UUID) (Snapshot, error)
	SubmitText(ctx context.Context, id uuid.UUID, turn TextTurn) (Snapshot, error)
	SubmitVoice(ctx context.Context, id uuid.UUID, turn VoiceTurn) (Snapshot, error)
	ChangeLanguage(ctx context.Context, id uuid.UUID, lang string) (Snapshot, error)
	Restart(ctx context.Context, id uuid.UUID) (Snapshot, error)
	GeneratePrescription(ctx context.Context, id uuid.UUID) (Snapshot, error)
	Prescription(ctx context.Context, id uuid.UUID) (PrescriptionView, error)
	DeliverPrescription(ctx context.Context, id uuid.UUID) error
	FindHospitals(ctx context.Context, id uuid.UUID, geo locate.Geolocator) (locate.Result, Snapshot, error)
	Suggestions(ctx context.Context, id uuid.UUID) (string, error)
	Speak(ctx context.Context, text, lang string) (string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req agent.DiagnosisRequest) (agent.Analysis, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioRef, lang string) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text, lang string) (string, error)
}

type Suggester interface {
	Suggest(ctx context.Context, transcript, currentSymptoms, lang string) (string, error)
}

type PrescriptionAssembler interface {
	Generate(ctx context.Context, transcript, lastDiagnosis, lang string) (prescription.Prescription, error)
}

type HospitalFinder interface {
	FindNearby(ctx context.Context, geo locate.Geolocator, msgs []chat.Message, profile *intake.Profile) (locate.Result, error)
}

// PreferenceStore is the part of store.PreferenceStore the dispatcher uses.
type PreferenceStore interface {
	Language(ctx context.Context, deviceID string) (string, error)
	SetLanguage(ctx context.Context, deviceID, lang string) error
	Profile(ctx context.Context, deviceID string) (intake.Profile, error)
	SaveProfile(ctx context.Context, deviceID string, p intake.Profile) error
	DeleteProfile(ctx context.Context, deviceID string) error
}

type Player interface {
	Play(audioRef string)
	Stop()
}

type ReportService interface {
	SendPrescription(ctx context.Context, view PrescriptionView) error
}

// Deps are the collaborators of the dispatcher. Speaker, Player and Reporter
// may be nil.
type Deps struct {
	Store       PreferenceStore
	Analyzer    Analyzer
	Transcriber Transcriber
	Speaker     Speaker
	Suggester   Suggester
	Assembler   PrescriptionAssembler
	Finder      HospitalFinder
	Player      Player
	Reporter    ReportService
}

type service struct {
	store       PreferenceStore
	machine     *intake.Machine
	analyzer    Analyzer
	transcriber Transcriber
	speaker     Speaker
	suggester   Suggester
	assembler   PrescriptionAssembler
	finder      HospitalFinder
	player      Player
	reporter    ReportService
	logger      zerolog.Logger

	sessions *registry
}

func NewService(deps Deps, logger zerolog.Logger) Service {
	player := deps.Player
	if player == nil {
		player = silentPlayer{}
	}
	return &service{
		store:       deps.Store,
		machine:     intake.NewMachine(deps.Store, logger),
		analyzer:    deps.Analyzer,
		transcriber: deps.Transcriber,
		speaker:     deps.Speaker,
		suggester:   deps.Suggester,
		assembler:   deps.Assembler,
		finder:      deps.Finder,
		player:      player,
		reporter:    deps.Reporter,
		logger:      logger,
		sessions:    newRegistry(),
	}
}

type silentPlayer struct{}

func (silentPlayer) Play(string) {}
func (silentPlayer) Stop() {}

func (s *service) session(id uuid.UUID) (*Session, error) {
	sess, ok := s.sessions.get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Open returns the device's session, creating it from the stored language and
// profile on first use. A returning patient is welcomed back by name; anyone
// else starts intake.
func (s *service) Open(ctx context.Context, deviceID string) (Snapshot, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	if sess, ok := s.sessions.device(deviceID); ok {
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return sess.snapshotLocked(true), nil
	}

	lang, err := s.store.Language(ctx, deviceID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to load language")
	}
	lang = i18n.Normalize(lang)

	sess := newSession(deviceID, lang)
	profile, err := s.store.Profile(ctx, deviceID)
	switch {
	case err == nil && profile.Complete():
		sess.state = intake.Inactive
		sess.profile = &profile
		sess.appendLocked(chat.NewMessage(chat.RoleAssistant,
			i18n.T(lang, i18n.KeyWelcomeBack, map[string]string{"name": profile.Name})))
	default:
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn().Err(err).Str("device_id", deviceID).Msg("failed to load profile")
		}
		step := s.machine.Start(lang)
		sess.state = step.Next
		sess.appendLocked(chat.NewMessage(chat.RoleAssistant, step.Prompt))
	}

	sess, created := s.sessions.put(sess)
	if created {
		s.logger.Info().Str("session_id", sess.id.String()).Str("device_id", deviceID).Str("language", lang).Msg("session opened")
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(true), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(true), nil
}

// SubmitText routes a typed turn to intake while details are being collected
// and to analysis otherwise.
func (s *service) SubmitText(ctx context.Context, id uuid.UUID, turn TextTurn) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	text := strings.TrimSpace(turn.Text)
	if text == "" && turn.ImageRef == "" {
		return Snapshot{}, ErrEmptyTurn
	}

	sess.mu.Lock()
	if sess.state.Collecting() {
		if text == "" {
			sess.mu.Unlock()
			return Snapshot{}, fmt.Errorf("%w: %v", ErrEmptyTurn, intake.ErrEmptyAnswer)
		}
		metrics.TurnsTotal.WithLabelValues("text", "intake").Inc()
		msg := chat.NewMessage(chat.RoleUser, text)
		msg.ImageRef = turn.ImageRef
		sess.appendLocked(msg)
		return s.advanceIntakeLocked(ctx, sess, text)
	}

	metrics.TurnsTotal.WithLabelValues("text", "chat").Inc()
	history := chat.Transcript(sess.messages)
	msg := chat.NewMessage(chat.RoleUser, text)
	msg.ImageRef = turn.ImageRef
	sess.appendLocked(msg)
	sess.busy = true
	req := s.diagnosisRequestLocked(sess, text, history, turn.ImageRef)
	version := sess.version
	sess.mu.Unlock()

	analysis, err := s.analyzer.Analyze(ctx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version != version {
		metrics.StaleResultsDropped.WithLabelValues("analysis").Inc()
		return sess.snapshotLocked(true), nil
	}
	s.finishAnalysisLocked(sess, analysis, err, "", i18n.KeyAIError)
	return sess.snapshotLocked(true), nil
}

// SubmitVoice shows a placeholder for the recording, replaces it with the
// transcript and then routes the text like a typed turn. If transcription or
// analysis fails the placeholder is removed again.
func (s *service) SubmitVoice(ctx context.Context, id uuid.UUID, turn VoiceTurn) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	if turn.AudioRef == "" {
		return Snapshot{}, ErrEmptyTurn
	}

	sess.mu.Lock()
	route := "chat"
	if sess.state.Collecting() {
		route = "intake"
	}
	metrics.TurnsTotal.WithLabelValues("voice", route).Inc()

	history := chat.Transcript(sess.messages)
	placeholder := chat.NewMessage(chat.RoleUser, i18n.T(sess.lang, i18n.KeyProcessingVoice, nil))
	placeholder.AudioRef = turn.AudioRef
	placeholder.ImageRef = turn.ImageRef
	sess.appendLocked(placeholder)
	sess.busy = true
	lang, version := sess.lang, sess.version
	sess.mu.Unlock()

	transcript, err := s.transcriber.Transcribe(ctx, turn.AudioRef, lang)
	text := strings.TrimSpace(transcript)

	sess.mu.Lock()
	if sess.version != version {
		metrics.StaleResultsDropped.WithLabelValues("transcription").Inc()
		defer sess.mu.Unlock()
		return sess.snapshotLocked(true), nil
	}
	if err == nil && text == "" {
		err = errors.New("transcript is empty")
	}
	i := sess.indexLocked(placeholder.ID)
	if err != nil || i < 0 {
		defer sess.mu.Unlock()
		s.logger.Error().Err(err).Str("session_id", sess.id.String()).Msg("voice transcription failed")
		sess.removeLocked(placeholder.ID)
		sess.busy = false
		sess.noticeLocked(NoticeError, i18n.KeyError, i18n.KeyVoiceError)
		return sess.snapshotLocked(true), nil
	}
	sess.messages[i].Text = text

	if sess.state.Collecting() {
		return s.advanceIntakeLocked(ctx, sess, text)
	}

	req := s.diagnosisRequestLocked(sess, text, history, turn.ImageRef)
	sess.mu.Unlock()

	analysis, err := s.analyzer.Analyze(ctx, req)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version != version {
		metrics.StaleResultsDropped.WithLabelValues("analysis").Inc()
		return sess.snapshotLocked(true), nil
	}
	s.finishAnalysisLocked(sess, analysis, err, placeholder.ID, i18n.KeyVoiceError)
	return sess.snapshotLocked(true), nil
}

func (s *service) diagnosisRequestLocked(sess *Session, symptoms, history, imageRef string) agent.DiagnosisRequest {
	req := agent.DiagnosisRequest{
		Symptoms:    symptoms,
		Language:    sess.lang,
		ChatHistory: history,
		ImageRef:    imageRef,
	}
	if sess.profile != nil {
		if b, err := json.Marshal(sess.profile); err == nil {
			req.PatientDetails = string(b)
		}
	}
	return req
}

// finishAnalysisLocked applies an analysis result. On failure the optional
// placeholder is removed and a notice with failKey is queued.
func (s *service) finishAnalysisLocked(sess *Session, analysis agent.Analysis, err error, placeholderID string, failKey i18n.Key) {
	sess.busy = false
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.id.String()).Msg("analysis failed")
		if placeholderID != "" {
			sess.removeLocked(placeholderID)
		}
		sess.noticeLocked(NoticeError, i18n.KeyError, failKey)
		return
	}

	reply := chat.NewMessage(chat.RoleAssistant, analysis.ResponseText)
	reply.AudioRef = analysis.AudioRef
	sess.appendLocked(reply)
	sess.diagnosis = true
	if reply.AudioRef != "" {
		s.player.Play(reply.AudioRef)
	}
}

// advanceIntakeLocked moves intake forward with answer, which the caller has
// already placed in the log, then speaks and appends the next prompt. It is
// entered with sess.mu held and returns with it released.
func (s *service) advanceIntakeLocked(ctx context.Context, sess *Session, answer string) (Snapshot, error) {
	step, err := s.machine.Advance(ctx, sess.deviceID, sess.state, sess.draft, answer, sess.lang)
	if err != nil {
		sess.busy = false
		sess.mu.Unlock()
		return Snapshot{}, fmt.Errorf("%w: %v", ErrEmptyTurn, err)
	}
	sess.state = step.Next
	sess.draft = step.Draft
	if step.Completed {
		p := step.Draft
		sess.profile = &p
		metrics.ProfilesCompleted.Inc()
		s.logger.Info().Str("session_id", sess.id.String()).Msg("patient details collected")
	}
	return s.promptLocked(ctx, sess, step.Prompt)
}

// promptLocked synthesizes prompt and appends it as an assistant message,
// text-only if synthesis fails. It is entered with sess.mu held and returns
// with it released.
func (s *service) promptLocked(ctx context.Context, sess *Session, prompt string) (Snapshot, error) {
	if s.speaker == nil {
		defer sess.mu.Unlock()
		sess.busy = false
		sess.appendLocked(chat.NewMessage(chat.RoleAssistant, prompt))
		return sess.snapshotLocked(true), nil
	}

	sess.busy = true
	lang, version := sess.lang, sess.version
	sess.mu.Unlock()

	audio, err := s.speaker.Speak(ctx, prompt, lang)
	if err != nil {
		s.logger.Warn().Err(err).Str("language", lang).Msg("prompt synthesis failed, showing text only")
		audio = ""
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version != version {
		metrics.StaleResultsDropped.WithLabelValues("prompt_speech").Inc()
		return sess.snapshotLocked(true), nil
	}
	sess.busy = false
	msg := chat.NewMessage(chat.RoleAssistant, prompt)
	msg.AudioRef = audio
	sess.appendLocked(msg)
	if audio != "" {
		s.player.Play(audio)
	}
	return sess.snapshotLocked(true), nil
}

func (s *service) ChangeLanguage(ctx context.Context, id uuid.UUID, lang string) (Snapshot, error) {
	if !i18n.Supported(lang) {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.store.SetLanguage(ctx, sess.deviceID, lang); err != nil {
		s.logger.Warn().Err(err).Str("device_id", sess.deviceID).Msg("failed to persist language")
	}
	return s.restart(ctx, sess, lang)
}

func (s *service) Restart(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	lang := sess.lang
	sess.mu.Unlock()
	return s.restart(ctx, sess, lang)
}

// restart forgets the patient and the conversation and asks for details
// again. Bumping the version invalidates every call still in flight.
func (s *service) restart(ctx context.Context, sess *Session, lang string) (Snapshot, error) {
	s.player.Stop()
	if err := s.store.DeleteProfile(ctx, sess.deviceID); err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn().Err(err).Str("device_id", sess.deviceID).Msg("failed to delete stored profile")
	}

	sess.mu.Lock()
	step := s.machine.Start(lang)
	sess.version++
	sess.lang = lang
	sess.state = step.Next
	sess.draft = intake.Profile{}
	sess.profile = nil
	sess.messages = nil
	sess.busy = false
	sess.diagnosis = false
	sess.rx = nil
	s.logger.Info().Str("session_id", sess.id.String()).Str("language", lang).Uint64("version", sess.version).Msg("session restarted")
	return s.promptLocked(ctx, sess, step.Prompt)
}

// GeneratePrescription asks for a prescription based on the whole transcript
// and the latest assistant answer. A failure keeps the previous prescription.
func (s *service) GeneratePrescription(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	if !sess.diagnosis {
		sess.mu.Unlock()
		return Snapshot{}, ErrDiagnosisUnavailable
	}
	transcript := chat.Transcript(sess.messages)
	lastDiagnosis := i18n.T(sess.lang, i18n.KeyNoDiagnosis, nil)
	if m, ok := chat.LastAssistant(sess.messages); ok {
		lastDiagnosis = m.Text
	}
	sess.busy = true
	lang, version := sess.lang, sess.version
	sess.mu.Unlock()

	rx, err := s.assembler.Generate(ctx, transcript, lastDiagnosis, lang)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.version != version {
		metrics.StaleResultsDropped.WithLabelValues("prescription").Inc()
		return sess.snapshotLocked(true), nil
	}
	sess.busy = false
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.id.String()).Msg("prescription generation failed")
		sess.noticeLocked(NoticeError, i18n.KeyError, i18n.KeyPrescriptionError)
		return sess.snapshotLocked(true), nil
	}
	sess.rx = &rx
	return sess.snapshotLocked(true), nil
}

func (s *service) Prescription(ctx context.Context, id uuid.UUID) (PrescriptionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return PrescriptionView{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.rx == nil {
		return PrescriptionView{}, ErrNoPrescription
	}
	snap := sess.snapshotLocked(false)
	return newPrescriptionView(*snap.Prescription, snap.Profile, snap.Language), nil
}

func (s *service) DeliverPrescription(ctx context.Context, id uuid.UUID) error {
	if s.reporter == nil {
		return ErrDeliveryDisabled
	}
	view, err := s.Prescription(ctx, id)
	if err != nil {
		return err
	}
	if err := s.reporter.SendPrescription(ctx, view); err != nil {
		return fmt.Errorf("deliver prescription: %w", err)
	}
	return nil
}

// FindHospitals builds a map search for care related to the latest diagnosis.
// Without a usable location the search still runs and a warning is queued.
func (s *service) FindHospitals(ctx context.Context, id uuid.UUID, geo locate.Geolocator) (locate.Result, Snapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return locate.Result{}, Snapshot{}, err
	}

	sess.mu.Lock()
	if !sess.diagnosis {
		sess.mu.Unlock()
		return locate.Result{}, Snapshot{}, ErrDiagnosisUnavailable
	}
	snap := sess.snapshotLocked(false)
	sess.mu.Unlock()

	res, err := s.finder.FindNearby(ctx, geo, snap.Messages, snap.Profile)
	if err != nil {
		s.logger.Warn().Err(err).Str("url", res.URL).Msg("could not open map search")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if res.LowRelevance {
		sess.noticeLocked(NoticeWarning, i18n.KeyLocationError, i18n.KeyLocationErrorDesc)
	}
	return res, sess.snapshotLocked(true), nil
}

// Suggestions proposes follow-up questions for the patient's latest message.
func (s *service) Suggestions(ctx context.Context, id uuid.UUID) (string, error) {
	sess, err := s.session(id)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	transcript := chat.Transcript(sess.messages)
	var current string
	if m, ok := chat.LastUser(sess.messages); ok {
		current = m.Text
	}
	lang := sess.lang
	sess.mu.Unlock()

	out, err := s.suggester.Suggest(ctx, transcript, current, lang)
	if err != nil {
		return "", fmt.Errorf("suggest follow-up questions: %w", err)
	}
	return out, nil
}

func (s *service) Speak(ctx context.Context, text, lang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyTurn
	}
	if s.speaker == nil {
		return "", agent.ErrNoAudio
	}
	return s.speaker.Speak(ctx, text, i18n.Normalize(lang))
}
