package domain

import "fmt"

// State is the conversation state of a user in a chat
type State string

const (
	StateIdle                State = "idle"
	StateAwaitingAnswer      State = "awaiting_answer"
	StateAwaitingRussian     State = "awaiting_russian"
	StateAwaitingTranslation State = "awaiting_translation"
)

// ConversationKey identifies one user in one chat
type ConversationKey struct {
	UserID int64 `json:"user_id"`
	ChatID int64 `json:"chat_id"`
}

func (k ConversationKey) String() string {
	return fmt.Sprintf("%d:%d", k.UserID, k.ChatID)
}

// Option is one answer button of a quiz
type Option struct {
	Text  string `json:"text"`
	Tried bool   `json:"tried,omitempty"`
}

// Quiz is what the learner sees for one turn
type Quiz struct {
	Rus     string
	Options []Option
	Retry   bool
}

// Session holds temporary data for a conversation.
// UserID is the internal user id, zero until the conversation was started.
type Session struct {
	Key        ConversationKey `json:"key"`
	UserID     int64           `json:"internal_user_id"`
	State      State           `json:"state"`
	Target     *QuizWord       `json:"target,omitempty"`
	Options    []Option        `json:"options,omitempty"`
	Attempts   int             `json:"attempts,omitempty"`
	PendingRus string          `json:"pending_rus,omitempty"`
	Previous   string          `json:"previous,omitempty"`
}

// NewSession returns an idle session for key
func NewSession(key ConversationKey) *Session {
	return &Session{Key: key, State: StateIdle}
}

// Started reports whether the conversation has a known user
func (s *Session) Started() bool {
	return s.UserID != 0
}

// Clone returns a deep copy
func (s *Session) Clone() *Session {
	c := *s
	if s.Target != nil {
		t := *s.Target
		c.Target = &t
	}
	if s.Options != nil {
		c.Options = append([]Option(nil), s.Options...)
	}
	return &c
}

// MarkTried flags the option matching answer, ignoring case and decoration
func (s *Session) MarkTried(answer string) bool {
	for i := range s.Options {
		if SameTerm(s.Options[i].Text, answer) {
			s.Options[i].Tried = true
			return true
		}
	}
	return false
}

// Current returns the Russian term the learner is working on, or the last one asked
func (s *Session) Current() string {
	if s.Target != nil {
		return s.Target.Rus
	}
	return s.Previous
}
