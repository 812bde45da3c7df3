package service

import (
	"context"

	"vocabtrainer/internal/domain"
)

const (
	// lastLearningAttempt is the latest attempt on which a correct answer still counts as learned
	lastLearningAttempt = 2

	// regressionAttempt is the attempt count from which the word is marked unlearned
	regressionAttempt = 2
)

// ProgressTracker updates mastery from quiz answers.
// Within one turn the last call wins.
type ProgressTracker struct {
	words *WordStore
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(words *WordStore) *ProgressTracker {
	return &ProgressTracker{words: words}
}

// Begin starts a quiz round for the association and returns the first attempt number
func (t *ProgressTracker) Begin(ctx context.Context, userWordID int64) (int, error) {
	ok, err := t.words.SetAttempts(ctx, userWordID, 1)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &domain.NotFoundError{Entity: "user word", ID: userWordID}
	}
	return 1, nil
}

// Record applies one answer given on attempt and returns the attempt number for the next answer
func (t *ProgressTracker) Record(ctx context.Context, userWordID int64, attempt int, correct bool) (int, error) {
	if correct {
		if attempt <= lastLearningAttempt {
			return attempt, t.setLearned(ctx, userWordID, true)
		}
		return attempt, nil
	}

	attempt++
	ok, err := t.words.SetAttempts(ctx, userWordID, attempt)
	if err != nil {
		return attempt, err
	}
	if !ok {
		return attempt, &domain.NotFoundError{Entity: "user word", ID: userWordID}
	}

	if attempt >= regressionAttempt {
		return attempt, t.setLearned(ctx, userWordID, false)
	}
	return attempt, nil
}

func (t *ProgressTracker) setLearned(ctx context.Context, userWordID int64, learned bool) error {
	ok, err := t.words.SetLearned(ctx, userWordID, learned)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.NotFoundError{Entity: "user word", ID: userWordID}
	}
	return nil
}
