package chat

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn in the visible transcript. Position in the log is the
// only ordering signal.
type Message struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Text     string `json:"text"`
	AudioRef string `json:"audio_ref,omitempty"`
	ImageRef string `json:"image_ref,omitempty"`
}

// NewMessage stamps a fresh sortable ID on a message.
func NewMessage(role Role, text string) Message {
	return Message{ID: ulid.Make().String(), Role: role, Text: text}
}

// Transcript serializes messages as "role: text" lines joined by newlines.
func Transcript(msgs []Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		lines = append(lines, string(m.Role)+": "+m.Text)
	}
	return strings.Join(lines, "\n")
}

// LastAssistant returns the most recent assistant message with non-empty text.
func LastAssistant(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleAssistant && msgs[i].Text != "" {
			return msgs[i], true
		}
	}
	return Message{}, false
}

// LastUser returns the most recent user message.
func LastUser(msgs []Message) (Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == RoleUser {
			return msgs[i], true
		}
	}
	return Message{}, false
}
