package testutil

import (
	"context"
	"math/rand"
	"testing"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/repository/memory"

	"go.uber.org/zap"
)

// NewTestLogger creates a no-op logger for tests
func NewTestLogger() *zap.Logger {
	return zap.NewNop()
}

// NewTestRand creates a deterministic random source
func NewTestRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

// NewTestWord creates a test user word
func NewTestWord(id int64, rus, eng string, learned bool) domain.UserWord {
	return domain.UserWord{
		ID:      id,
		UserID:  1,
		Word:    domain.Word{ID: id, Rus: rus, Eng: eng, Number: 1},
		Learned: learned,
	}
}

// NewSeededStore creates a memory store holding the main words
func NewSeededStore(t *testing.T) *memory.Store {
	t.Helper()
	s := memory.NewStore()
	if err := s.SeedMainWords(context.Background(), domain.SeedWords); err != nil {
		t.Fatalf("seed main words: %v", err)
	}
	return s
}
