package repository

import (
	"context"

	"vocabtrainer/internal/domain"
)

// UserRepository defines user data operations
type UserRepository interface {
	// GetOrCreateUser returns the internal id for a Telegram user, creating the
	// user and linking every main word on first contact.
	GetOrCreateUser(ctx context.Context, telegramID int64, username string) (int64, bool, error)
}

// WordRepository defines word data operations
type WordRepository interface {
	SeedMainWords(ctx context.Context, words []domain.Word) error
	AddUserWord(ctx context.Context, userID int64, rus, eng string) (domain.Outcome, error)
	DeleteUserWord(ctx context.Context, userID int64, rus string) (bool, error)
	ListUserWords(ctx context.Context, userID int64) ([]domain.WordPair, error)
	GetUserWords(ctx context.Context, userID int64) ([]domain.UserWord, error)
	GetTranslations(ctx context.Context, rus string) ([]string, error)
	SetLearned(ctx context.Context, userWordID int64, learned bool) (bool, error)
	SetAttempts(ctx context.Context, userWordID int64, attempts int) (bool, error)
	CountProgress(ctx context.Context, userID int64) (learned, total int, err error)
	DeleteOrphanWords(ctx context.Context) (int64, error)
}
