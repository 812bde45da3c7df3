package testutil

import (
	"context"

	"vocabtrainer/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (int64, bool, error) {
	args := m.Called(ctx, telegramID, username)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

// MockWordRepository is a mock for WordRepository
type MockWordRepository struct {
	mock.Mock
}

func (m *MockWordRepository) SeedMainWords(ctx context.Context, words []domain.Word) error {
	args := m.Called(ctx, words)
	return args.Error(0)
}

func (m *MockWordRepository) AddUserWord(ctx context.Context, userID int64, rus, eng string) (domain.Outcome, error) {
	args := m.Called(ctx, userID, rus, eng)
	return args.Get(0).(domain.Outcome), args.Error(1)
}

func (m *MockWordRepository) DeleteUserWord(ctx context.Context, userID int64, rus string) (bool, error) {
	args := m.Called(ctx, userID, rus)
	return args.Bool(0), args.Error(1)
}

func (m *MockWordRepository) ListUserWords(ctx context.Context, userID int64) ([]domain.WordPair, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WordPair), args.Error(1)
}

func (m *MockWordRepository) GetUserWords(ctx context.Context, userID int64) ([]domain.UserWord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserWord), args.Error(1)
}

func (m *MockWordRepository) GetTranslations(ctx context.Context, rus string) ([]string, error) {
	args := m.Called(ctx, rus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockWordRepository) SetLearned(ctx context.Context, userWordID int64, learned bool) (bool, error) {
	args := m.Called(ctx, userWordID, learned)
	return args.Bool(0), args.Error(1)
}

func (m *MockWordRepository) SetAttempts(ctx context.Context, userWordID int64, attempts int) (bool, error) {
	args := m.Called(ctx, userWordID, attempts)
	return args.Bool(0), args.Error(1)
}

func (m *MockWordRepository) CountProgress(ctx context.Context, userID int64) (int, int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockWordRepository) DeleteOrphanWords(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
