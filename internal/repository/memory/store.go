// Package memory keeps users, words and their links in process memory.
// Words are indexed by id and links by (user, word); deleting a link checks
// the remaining references of its word explicitly.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vocabtrainer/internal/domain"
)

type linkKey struct {
	userID int64
	wordID int64
}

type link struct {
	id       int64
	learned  bool
	attempts int
}

// Store implements repository.UserRepository and repository.WordRepository.
// One mutex guards every table, so each operation is atomic.
type Store struct {
	mu sync.Mutex

	lastUserID int64
	lastWordID int64
	lastLinkID int64

	users      map[int64]*domain.User
	byTelegram map[int64]int64
	words      map[int64]*domain.Word
	links      map[linkKey]*link
	linkByID   map[int64]linkKey
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*domain.User),
		byTelegram: make(map[int64]int64),
		words:      make(map[int64]*domain.Word),
		links:      make(map[linkKey]*link),
		linkByID:   make(map[int64]linkKey),
	}
}

// GetOrCreateUser returns the internal id for a Telegram user
func (s *Store) GetOrCreateUser(_ context.Context, telegramID int64, username string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byTelegram[telegramID]; ok {
		s.users[id].Username = username
		return id, true, nil
	}

	s.lastUserID++
	user := &domain.User{ID: s.lastUserID, TelegramID: telegramID, Username: username, CreatedAt: time.Now()}
	s.users[user.ID] = user
	s.byTelegram[telegramID] = user.ID

	for _, w := range s.sortedWords() {
		if w.IsMain {
			s.linkLocked(user.ID, w.ID)
		}
	}

	return user.ID, false, nil
}

// SeedMainWords inserts missing main words and flags existing pairs as main
func (s *Store) SeedMainWords(_ context.Context, words []domain.Word) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, seed := range words {
		if existing := s.findPairLocked(seed.Rus, seed.Eng); existing != nil {
			existing.IsMain = true
			continue
		}
		s.insertWordLocked(seed.Rus, seed.Eng, seed.Number, true)
	}
	return nil
}

// AddUserWord attaches rus -> eng to the user, creating a new version when needed
func (s *Store) AddUserWord(_ context.Context, userID int64, rus, eng string) (domain.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []domain.Candidate
	for _, w := range s.sortedWords() {
		if w.Rus != rus {
			continue
		}
		_, linked := s.links[linkKey{userID: userID, wordID: w.ID}]
		candidates = append(candidates, domain.Candidate{Word: *w, Linked: linked})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Word.Number > candidates[j].Word.Number
	})

	plan := domain.PlanAddition(candidates, eng)
	switch plan.Outcome {
	case domain.OutcomeCreated, domain.OutcomeNewVersionCreated:
		w := s.insertWordLocked(rus, eng, plan.Number, false)
		s.linkLocked(userID, w.ID)
	case domain.OutcomeLinked:
		s.linkLocked(userID, plan.WordID)
	}

	return plan.Outcome, nil
}

// DeleteUserWord unlinks every version of rus and drops orphaned non-main versions
func (s *Store) DeleteUserWord(_ context.Context, userID int64, rus string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, w := range s.sortedWords() {
		if w.Rus != rus {
			continue
		}
		found = true

		key := linkKey{userID: userID, wordID: w.ID}
		if l, ok := s.links[key]; ok {
			delete(s.linkByID, l.id)
			delete(s.links, key)
		}
		if !w.IsMain && s.referencesLocked(w.ID) == 0 {
			delete(s.words, w.ID)
		}
	}

	return found, nil
}

// ListUserWords returns the user's collection ordered by term and version
func (s *Store) ListUserWords(ctx context.Context, userID int64) ([]domain.WordPair, error) {
	userWords, _ := s.GetUserWords(ctx, userID)
	sort.SliceStable(userWords, func(i, j int) bool {
		a, b := userWords[i].Word, userWords[j].Word
		if a.Rus != b.Rus {
			return a.Rus < b.Rus
		}
		return a.Number < b.Number
	})

	var pairs []domain.WordPair
	for _, uw := range userWords {
		pairs = append(pairs, domain.WordPair{Rus: uw.Word.Rus, Eng: uw.Word.Eng})
	}
	return pairs, nil
}

// GetUserWords returns every association of the user in link order
func (s *Store) GetUserWords(_ context.Context, userID int64) ([]domain.UserWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []domain.UserWord
	for key, l := range s.links {
		if key.userID != userID {
			continue
		}
		result = append(result, domain.UserWord{
			ID:       l.id,
			UserID:   userID,
			Word:     *s.words[key.wordID],
			Learned:  l.learned,
			Attempts: l.attempts,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

// GetTranslations returns every English term known for rus
func (s *Store) GetTranslations(_ context.Context, rus string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var translations []string
	for _, w := range s.sortedWords() {
		if w.Rus == rus {
			translations = append(translations, w.Eng)
		}
	}
	return translations, nil
}

// SetLearned updates the mastery flag, false when the association is gone
func (s *Store) SetLearned(_ context.Context, userWordID int64, learned bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.linkByIDLocked(userWordID)
	if l == nil {
		return false, nil
	}
	l.learned = learned
	return true, nil
}

// SetAttempts stores the attempt counter of the current round
func (s *Store) SetAttempts(_ context.Context, userWordID int64, attempts int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.linkByIDLocked(userWordID)
	if l == nil {
		return false, nil
	}
	l.attempts = attempts
	return true, nil
}

// CountProgress returns how many of the user's words are learned
func (s *Store) CountProgress(_ context.Context, userID int64) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	learned, total := 0, 0
	for key, l := range s.links {
		if key.userID != userID {
			continue
		}
		total++
		if l.learned {
			learned++
		}
	}
	return learned, total, nil
}

// DeleteOrphanWords removes non-main words without any user
func (s *Store) DeleteOrphanWords(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, w := range s.words {
		if !w.IsMain && s.referencesLocked(id) == 0 {
			delete(s.words, id)
			n++
		}
	}
	return n, nil
}

// WordCount returns the number of word rows
func (s *Store) WordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.words)
}

// HasWord reports whether the (rus, eng) pair exists as a word row
func (s *Store) HasWord(rus, eng string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findPairLocked(rus, eng) != nil
}

func (s *Store) sortedWords() []*domain.Word {
	words := make([]*domain.Word, 0, len(s.words))
	for _, w := range s.words {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool { return words[i].ID < words[j].ID })
	return words
}

func (s *Store) findPairLocked(rus, eng string) *domain.Word {
	for _, w := range s.words {
		if w.Rus == rus && w.Eng == eng {
			return w
		}
	}
	return nil
}

func (s *Store) insertWordLocked(rus, eng string, number int, isMain bool) *domain.Word {
	s.lastWordID++
	w := &domain.Word{ID: s.lastWordID, Rus: rus, Eng: eng, Number: number, IsMain: isMain}
	s.words[w.ID] = w
	return w
}

func (s *Store) linkLocked(userID, wordID int64) {
	key := linkKey{userID: userID, wordID: wordID}
	if _, ok := s.links[key]; ok {
		return
	}
	s.lastLinkID++
	s.links[key] = &link{id: s.lastLinkID}
	s.linkByID[s.lastLinkID] = key
}

func (s *Store) linkByIDLocked(userWordID int64) *link {
	key, ok := s.linkByID[userWordID]
	if !ok {
		return nil
	}
	return s.links[key]
}

func (s *Store) referencesLocked(wordID int64) int {
	n := 0
	for key := range s.links {
		if key.wordID == wordID {
			n++
		}
	}
	return n
}
