package trainer

import (
	"context"

	"vocabtrainer/internal/domain"
)

// Presenter renders what the machine wants the learner to see
type Presenter interface {
	PresentQuiz(ctx context.Context, key domain.ConversationKey, quiz domain.Quiz) error
	PresentMessage(ctx context.Context, key domain.ConversationKey, text string) error
	// PresentPrompt asks for typed input and offers a way to cancel
	PresentPrompt(ctx context.Context, key domain.ConversationKey, text string) error
	PresentCollectionTooSmall(ctx context.Context, key domain.ConversationKey) error
}

// SessionStore persists per-conversation state
type SessionStore interface {
	Load(ctx context.Context, key domain.ConversationKey) (*domain.Session, error)
	Save(ctx context.Context, state *domain.Session) error
}
