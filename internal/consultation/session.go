package consultation

import (
	"sync"

	"github.com/google/uuid"

	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/intake"
	"medical-intake-assistant/internal/prescription"
)

// Session is the conversation state of one device. The mutex guards every
// field and is never held across a remote call.
type Session struct {
	mu sync.Mutex

	id       uuid.UUID
	deviceID string
	version  uint64

	lang      string
	state     intake.State
	draft     intake.Profile
	profile   *intake.Profile
	messages  []chat.Message
	busy      bool
	diagnosis bool
	rx        *prescription.Prescription
	notices   []Notice
}

func newSession(deviceID, lang string) *Session {
	return &Session{id: uuid.New(), deviceID: deviceID, lang: lang}
}

func (s *Session) snapshotLocked(drain bool) Snapshot {
	snap := Snapshot{
		ID:                 s.id,
		DeviceID:           s.deviceID,
		Version:            s.version,
		Language:           s.lang,
		Intake:             s.state,
		Messages:           append([]chat.Message(nil), s.messages...),
		Busy:               s.busy,
		DiagnosisAvailable: s.diagnosis,
	}
	if s.profile != nil {
		p := *s.profile
		snap.Profile = &p
	}
	if s.rx != nil {
		rx := *s.rx
		rx.Medicines = append([]prescription.Medicine(nil), s.rx.Medicines...)
		snap.Prescription = &rx
	}
	if len(s.notices) > 0 {
		snap.Notices = append([]Notice(nil), s.notices...)
		if drain {
			s.notices = nil
		}
	}
	return snap
}

func (s *Session) noticeLocked(kind NoticeKind, title, description i18n.Key) {
	s.notices = append(s.notices, Notice{
		Kind:        kind,
		Title:       i18n.T(s.lang, title, nil),
		Description: i18n.T(s.lang, description, nil),
	})
}

func (s *Session) appendLocked(m chat.Message) {
	s.messages = append(s.messages, m)
}

func (s *Session) indexLocked(id string) int {
	for i, m := range s.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) removeLocked(id string) {
	if i := s.indexLocked(id); i >= 0 {
		s.messages = append(s.messages[:i], s.messages[i+1:]...)
	}
}

// registry indexes live sessions by ID and by device. A device has at most
// one session; opening it again returns the existing one.
type registry struct {
	mu       sync.RWMutex
	byID     map[uuid.UUID]*Session
	byDevice map[string]*Session
}

func newRegistry() *registry {
	return &registry{
		byID:     make(map[uuid.UUID]*Session),
		byDevice: make(map[string]*Session),
	}
}

func (r *registry) get(id uuid.UUID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byID[id]
	return s, ok
}

func (r *registry) device(deviceID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byDevice[deviceID]
	return s, ok
}

// put stores s unless the device already has a session, in which case the
// existing one is returned.
func (r *registry) put(s *Session) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byDevice[s.deviceID]; ok {
		return existing, false
	}
	r.byID[s.id] = s
	r.byDevice[s.deviceID] = s
	return s, true
}
