package service

import (
	"context"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/repository"

	"go.uber.org/zap"
)

// StatsService handles statistics and cleanup
type StatsService struct {
	wordRepo repository.WordRepository
	logger   *zap.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(wordRepo repository.WordRepository, logger *zap.Logger) *StatsService {
	return &StatsService{
		wordRepo: wordRepo,
		logger:   logger,
	}
}

// Progress returns how many of the user's words are learned out of the total
func (s *StatsService) Progress(ctx context.Context, userID int64) (int, int, error) {
	learned, total, err := s.wordRepo.CountProgress(ctx, userID)
	if err != nil {
		return 0, 0, domain.NewStorageError("progress", err)
	}
	return learned, total, nil
}

// CleanupOrphanWords removes non-main words that no user references
func (s *StatsService) CleanupOrphanWords(ctx context.Context) error {
	s.logger.Info("Starting cleanup of orphaned words")

	removed, err := s.wordRepo.DeleteOrphanWords(ctx)
	if err != nil {
		s.logger.Error("Failed to cleanup orphaned words", zap.Error(err))
		return domain.NewStorageError("cleanup orphan words", err)
	}

	s.logger.Info("Cleanup completed successfully", zap.Int64("removed", removed))
	return nil
}
