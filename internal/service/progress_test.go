package service

import (
	"context"
	"fmt"
	"testing"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProgressTracker_Record(t *testing.T) {
	tests := []struct {
		name            string
		attempt         int
		correct         bool
		setup           func(m *testutil.MockWordRepository)
		expectedAttempt int
	}{
		{
			name:    "correct on first attempt marks learned",
			attempt: 1,
			correct: true,
			setup: func(m *testutil.MockWordRepository) {
				m.On("SetLearned", mock.Anything, int64(5), true).Return(true, nil)
			},
			expectedAttempt: 1,
		},
		{
			name:    "correct on second attempt marks learned",
			attempt: 2,
			correct: true,
			setup: func(m *testutil.MockWordRepository) {
				m.On("SetLearned", mock.Anything, int64(5), true).Return(true, nil)
			},
			expectedAttempt: 2,
		},
		{
			name:            "correct on third attempt leaves flag",
			attempt:         3,
			correct:         true,
			setup:           func(m *testutil.MockWordRepository) {},
			expectedAttempt: 3,
		},
		{
			name:    "wrong answer regresses the word",
			attempt: 1,
			correct: false,
			setup: func(m *testutil.MockWordRepository) {
				m.On("SetAttempts", mock.Anything, int64(5), 2).Return(true, nil)
				m.On("SetLearned", mock.Anything, int64(5), false).Return(true, nil)
			},
			expectedAttempt: 2,
		},
		{
			name:    "repeated wrong answers keep counting",
			attempt: 3,
			correct: false,
			setup: func(m *testutil.MockWordRepository) {
				m.On("SetAttempts", mock.Anything, int64(5), 4).Return(true, nil)
				m.On("SetLearned", mock.Anything, int64(5), false).Return(true, nil)
			},
			expectedAttempt: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(testutil.MockWordRepository)
			tt.setup(mockRepo)

			tracker := NewProgressTracker(NewWordStore(new(testutil.MockUserRepository), mockRepo))

			next, err := tracker.Record(context.Background(), 5, tt.attempt, tt.correct)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedAttempt, next)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProgressTracker_Record_DeletedWord(t *testing.T) {
	mockRepo := new(testutil.MockWordRepository)
	mockRepo.On("SetLearned", mock.Anything, int64(5), true).Return(false, nil)

	tracker := NewProgressTracker(NewWordStore(new(testutil.MockUserRepository), mockRepo))

	_, err := tracker.Record(context.Background(), 5, 1, true)

	assert.True(t, domain.IsNotFoundError(err))
}

func TestProgressTracker_Record_StorageError(t *testing.T) {
	mockRepo := new(testutil.MockWordRepository)
	mockRepo.On("SetAttempts", mock.Anything, int64(5), 2).Return(false, fmt.Errorf("db error"))

	tracker := NewProgressTracker(NewWordStore(new(testutil.MockUserRepository), mockRepo))

	_, err := tracker.Record(context.Background(), 5, 1, false)

	assert.True(t, domain.IsStorageError(err))
}

func TestProgressTracker_Begin(t *testing.T) {
	mockRepo := new(testutil.MockWordRepository)
	mockRepo.On("SetAttempts", mock.Anything, int64(5), 1).Return(true, nil).Once()
	mockRepo.On("SetAttempts", mock.Anything, int64(6), 1).Return(false, nil).Once()

	tracker := NewProgressTracker(NewWordStore(new(testutil.MockUserRepository), mockRepo))

	attempt, err := tracker.Begin(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 1, attempt)

	_, err = tracker.Begin(context.Background(), 6)
	assert.True(t, domain.IsNotFoundError(err))

	mockRepo.AssertExpectations(t)
}

func TestProgressTracker_WrongThenRight(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewSeededStore(t)
	store := NewWordStore(repo, repo)
	tracker := NewProgressTracker(store)
	userID, _, _ := store.GetOrCreateUser(ctx, 100, "alice")

	words, err := repo.GetUserWords(ctx, userID)
	require.NoError(t, err)
	target := words[0].ID

	attempt, err := tracker.Begin(ctx, target)
	require.NoError(t, err)

	attempt, err = tracker.Record(ctx, target, attempt, false)
	require.NoError(t, err)
	learned, _, _ := repo.CountProgress(ctx, userID)
	assert.Equal(t, 0, learned)

	// A correct second attempt overrides the early regression
	_, err = tracker.Record(ctx, target, attempt, true)
	require.NoError(t, err)
	learned, _, _ = repo.CountProgress(ctx, userID)
	assert.Equal(t, 1, learned)
}
