package service

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/repository"
)

const (
	// candidateCap bounds how many eligible words take part in the draw
	candidateCap = 10

	// DistractorCount is the number of wrong options shown with the answer
	DistractorCount = 3
)

// SelectionEngine picks quiz words and distractors from a user's collection
type SelectionEngine struct {
	wordRepo repository.WordRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelectionEngine creates a new selection engine.
// A nil rnd is replaced by a time-seeded source.
func NewSelectionEngine(wordRepo repository.WordRepository, rnd *rand.Rand) *SelectionEngine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SelectionEngine{
		wordRepo: wordRepo,
		rnd:      rnd,
	}
}

// NextQuizWord chooses the next word, never one with previousRus when another exists.
// Unlearned words are preferred; once all are learned any word qualifies.
// Returns nil when the user has no eligible word.
func (e *SelectionEngine) NextQuizWord(ctx context.Context, userID int64, previousRus string) (*domain.QuizWord, error) {
	words, err := e.wordRepo.GetUserWords(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("next quiz word", err)
	}

	var all, unlearned []domain.UserWord
	for _, uw := range words {
		if previousRus != "" && uw.Word.Rus == previousRus {
			continue
		}
		all = append(all, uw)
		if !uw.Learned {
			unlearned = append(unlearned, uw)
		}
	}

	candidates := unlearned
	if len(candidates) == 0 {
		candidates = all
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	if len(candidates) > candidateCap {
		candidates = candidates[:candidateCap]
	}

	pick := candidates[e.intn(len(candidates))]
	return &domain.QuizWord{
		UserWordID: pick.ID,
		WordID:     pick.Word.ID,
		Rus:        pick.Word.Rus,
		Eng:        pick.Word.Eng,
	}, nil
}

// Distractors returns count English terms from the user's collection that are not
// a translation of targetRus. Returns an empty slice when fewer than count qualify.
func (e *SelectionEngine) Distractors(ctx context.Context, userID int64, targetRus string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	translations, err := e.wordRepo.GetTranslations(ctx, targetRus)
	if err != nil {
		return nil, domain.NewStorageError("distractors", err)
	}
	words, err := e.wordRepo.GetUserWords(ctx, userID)
	if err != nil {
		return nil, domain.NewStorageError("distractors", err)
	}

	seen := make(map[string]bool, len(words)+len(translations))
	for _, eng := range translations {
		seen[strings.ToLower(eng)] = true
	}

	var pool []string
	for _, uw := range words {
		key := strings.ToLower(uw.Word.Eng)
		if uw.Word.Rus == targetRus || seen[key] {
			continue
		}
		seen[key] = true
		pool = append(pool, uw.Word.Eng)
	}

	if len(pool) < count {
		return nil, nil
	}

	e.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:count], nil
}

// Options shuffles the correct answer in among the distractors
func (e *SelectionEngine) Options(answer string, distractors []string) []domain.Option {
	options := make([]domain.Option, 0, len(distractors)+1)
	for _, d := range distractors {
		options = append(options, domain.Option{Text: d})
	}
	options = append(options, domain.Option{Text: answer})

	e.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

func (e *SelectionEngine) intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Intn(n)
}

func (e *SelectionEngine) shuffle(n int, swap func(i, j int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rnd.Shuffle(n, swap)
}
