package consultation

import (
	"errors"

	"github.com/google/uuid"

	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/prescription"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrEmptyTurn            = errors.New("turn has neither text nor image")
	ErrDiagnosisUnavailable = errors.New("no diagnosis yet")
	ErrUnsupportedLanguage  = errors.New("unsupported language")
	ErrNoPrescription       = errors.New("no prescription generated")
	ErrDeliveryDisabled     = errors.New("prescription delivery is not configured")
)

type NoticeKind string

const (
	NoticeError   NoticeKind = "error"
	NoticeWarning NoticeKind = "warning"
	NoticeInfo    NoticeKind = "info"
)

// Notice is a transient user-visible notification. Snapshots drain them.
type Notice struct {
	Kind        NoticeKind `json:"kind"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}

// TextTurn is a typed message with an optional image data URI.
type TextTurn struct {
	Text     string `json:"text"`
	ImageRef string `json:"image,omitempty"`
}

// VoiceTurn is a finished recording with an optional image data URI.
type VoiceTurn struct {
	AudioRef string `json:"audio"`
	ImageRef string `json:"image,omitempty"`
}

// Snapshot is an immutable copy of a session taken after a command.
type Snapshot struct {
	ID                 uuid.UUID                  `json:"id"`
	DeviceID           string                     `json:"device_id"`
	Version            uint64                     `json:"version"`
	Language           string                     `json:"language"`
	Intake             intake.State               `json:"intake"`
	Profile            *intake.Profile            `json:"profile,omitempty"`
	Messages           []chat.Message             `json:"messages"`
	Busy               bool                       `json:"busy"`
	DiagnosisAvailable bool                       `json:"diagnosis_available"`
	Prescription       *prescription.Prescription `json:"prescription,omitempty"`
	Notices            []Notice                   `json:"notices,omitempty"`
}

// LastAssistant returns the most recent assistant message with text.
func (s Snapshot) LastAssistant() (chat.Message, bool) {
	return chat.LastAssistant(s.Messages)
}

// PrescriptionView bundles a generated prescription with its share formats.
type PrescriptionView struct {
	Prescription prescription.Prescription `json:"prescription"`
	Patient      *intake.Profile           `json:"patient,omitempty"`
	Language     string                    `json:"language"`
	ShareText    string                    `json:"share_text"`
	PlainText    string                    `json:"plain_text"`
	WhatsAppLink string                    `json:"whatsapp_link"`
	SMSLink      string                    `json:"sms_link"`
}

func newPrescriptionView(p prescription.Prescription, patient *intake.Profile, lang string) PrescriptionView {
	return PrescriptionView{
		Prescription: p,
		Patient:      patient,
		Language:     lang,
		ShareText:    prescription.ShareText(p, patient, lang),
		PlainText:    prescription.PlainText(p, patient, lang),
		WhatsAppLink: prescription.WhatsAppLink(p, patient, lang),
		SMSLink:      prescription.SMSLink(p, patient, lang),
	}
}
