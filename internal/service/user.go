package service

import (
	"context"

	"vocabtrainer/internal/domain"
)

// GetOrCreateUser returns the internal user id and whether the user already existed.
// A new user gets every main word linked.
func (s *WordStore) GetOrCreateUser(ctx context.Context, telegramID int64, displayName string) (int64, bool, error) {
	userID, existed, err := s.userRepo.GetOrCreateUser(ctx, telegramID, displayName)
	if err != nil {
		return 0, false, domain.NewStorageError("get or create user", err)
	}
	return userID, existed, nil
}

// SeedMainWords makes sure every main word exists
func (s *WordStore) SeedMainWords(ctx context.Context) error {
	if err := s.wordRepo.SeedMainWords(ctx, domain.SeedWords); err != nil {
		return domain.NewStorageError("seed main words", err)
	}
	return nil
}
