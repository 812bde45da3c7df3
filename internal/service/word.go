package service

import (
	"context"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/repository"
)

// WordStore handles the user's word collection
type WordStore struct {
	userRepo repository.UserRepository
	wordRepo repository.WordRepository
}

// NewWordStore creates a new word store
func NewWordStore(userRepo repository.UserRepository, wordRepo repository.WordRepository) *WordStore {
	return &WordStore{
		userRepo: userRepo,
		wordRepo: wordRepo,
	}
}

// AddUserWord normalizes both terms and adds the pair to the user's collection
func (s *WordStore) AddUserWord(ctx context.Context, userID int64, rus, eng string) (domain.Outcome, string, error) {
	rus = domain.NormalizeTerm(rus)
	eng = domain.NormalizeTerm(eng)
	if rus == "" || eng == "" {
		return 0, "", &domain.ValidationError{Field: "word", Reason: "word and translation cannot be empty"}
	}

	outcome, err := s.wordRepo.AddUserWord(ctx, userID, rus, eng)
	if err != nil {
		return 0, "", domain.NewStorageError("add user word", err)
	}

	return outcome, outcome.Message(), nil
}

// DeleteUserWord removes every version of rus from the user's collection.
// Returns false when no word with that term exists.
func (s *WordStore) DeleteUserWord(ctx context.Context, userID int64, rus string) (bool, error) {
	deleted, err := s.wordRepo.DeleteUserWord(ctx, userID, domain.NormalizeTerm(rus))
	if err != nil {
		return false, domain.NewStorageError("delete user word", err)
	}
	return deleted, nil
}

// ListUserWords returns the user's collection as (rus, eng) pairs
func (s *WordStore) ListUserWords(ctx context.Context, userID int64) ([]domain.WordPair, error) {
	pairs, err := s.wordRepo.ListUserWords(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("list user words", err)
	}
	return pairs, nil
}

// SetLearned updates the mastery flag. Returns false when the word was removed meanwhile.
func (s *WordStore) SetLearned(ctx context.Context, userWordID int64, learned bool) (bool, error) {
	ok, err := s.wordRepo.SetLearned(ctx, userWordID, learned)
	if err != nil {
		return false, domain.NewStorageError("set learned", err)
	}
	return ok, nil
}

// SetAttempts stores the attempt counter of the current round
func (s *WordStore) SetAttempts(ctx context.Context, userWordID int64, attempts int) (bool, error) {
	ok, err := s.wordRepo.SetAttempts(ctx, userWordID, attempts)
	if err != nil {
		return false, domain.NewStorageError("set attempts", err)
	}
	return ok, nil
}
