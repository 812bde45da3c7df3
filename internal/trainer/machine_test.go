package trainer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/repository"
	"vocabtrainer/internal/repository/memory"
	"vocabtrainer/internal/service"
	"vocabtrainer/internal/session"
	"vocabtrainer/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type presented struct {
	kind string
	text string
	quiz domain.Quiz
}

type fakePresenter struct {
	mu    sync.Mutex
	calls []presented
}

func (p *fakePresenter) PresentQuiz(_ context.Context, _ domain.ConversationKey, quiz domain.Quiz) error {
	p.record(presented{kind: "quiz", quiz: quiz})
	return nil
}

func (p *fakePresenter) PresentMessage(_ context.Context, _ domain.ConversationKey, text string) error {
	p.record(presented{kind: "message", text: text})
	return nil
}

func (p *fakePresenter) PresentPrompt(_ context.Context, _ domain.ConversationKey, text string) error {
	p.record(presented{kind: "prompt", text: text})
	return nil
}

func (p *fakePresenter) PresentCollectionTooSmall(_ context.Context, _ domain.ConversationKey) error {
	p.record(presented{kind: "too_small"})
	return nil
}

func (p *fakePresenter) record(c presented) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *fakePresenter) last() presented {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) == 0 {
		return presented{}
	}
	return p.calls[len(p.calls)-1]
}

func (p *fakePresenter) fromEnd(n int) presented {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.calls) < n {
		return presented{}
	}
	return p.calls[len(p.calls)-n]
}

// flakyStore fails SetLearned on demand
type flakyStore struct {
	*memory.Store
	failLearned bool
}

func (f *flakyStore) SetLearned(ctx context.Context, userWordID int64, learned bool) (bool, error) {
	if f.failLearned {
		return false, errors.New("connection reset")
	}
	return f.Store.SetLearned(ctx, userWordID, learned)
}

var testKey = domain.ConversationKey{UserID: 100, ChatID: 100}

type fixture struct {
	machine   *Machine
	presenter *fakePresenter
}

func newFixture(userRepo repository.UserRepository, wordRepo repository.WordRepository) *fixture {
	words := service.NewWordStore(userRepo, wordRepo)
	presenter := &fakePresenter{}
	machine := NewMachine(
		words,
		service.NewSelectionEngine(wordRepo, testutil.NewTestRand()),
		service.NewProgressTracker(words),
		service.NewStatsService(wordRepo, testutil.NewTestLogger()),
		session.NewMemoryStore(),
		presenter,
		testutil.NewTestLogger(),
	)
	return &fixture{machine: machine, presenter: presenter}
}

func (f *fixture) handle(t *testing.T, ev Event) *domain.Session {
	t.Helper()
	require.NoError(t, f.machine.Handle(context.Background(), testKey, ev))
	return f.state(t)
}

func (f *fixture) state(t *testing.T) *domain.Session {
	t.Helper()
	s, err := f.machine.State(context.Background(), testKey)
	require.NoError(t, err)
	return s
}

func findWord(t *testing.T, store *memory.Store, userID, userWordID int64) domain.UserWord {
	t.Helper()
	words, err := store.GetUserWords(context.Background(), userID)
	require.NoError(t, err)
	for _, w := range words {
		if w.ID == userWordID {
			return w
		}
	}
	t.Fatalf("user word %d not found", userWordID)
	return domain.UserWord{}
}

func wrongOption(s *domain.Session) string {
	for _, o := range s.Options {
		if !domain.SameTerm(o.Text, s.Target.Eng) {
			return o.Text
		}
	}
	return ""
}

func TestMachine_RequiresStart(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	for _, ev := range []Event{Text("Peace"), Command(EventNext), Command(EventAddWord), Command(EventListWords)} {
		s := f.handle(t, ev)
		assert.Equal(t, msgSendStart, f.presenter.last().text, ev.Kind.String())
		assert.False(t, s.Started())
	}
}

func TestMachine_StartShowsQuiz(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))

	assert.Equal(t, msgWelcome, f.presenter.fromEnd(2).text)
	quiz := f.presenter.last()
	require.Equal(t, "quiz", quiz.kind)
	assert.False(t, quiz.quiz.Retry)
	require.Len(t, quiz.quiz.Options, 4)

	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	require.NotNil(t, s.Target)
	assert.Equal(t, s.Target.Rus, quiz.quiz.Rus)
	assert.Equal(t, 1, s.Attempts)

	seen := make(map[string]bool)
	answers := 0
	for _, o := range quiz.quiz.Options {
		assert.False(t, seen[strings.ToLower(o.Text)], "duplicate option %s", o.Text)
		seen[strings.ToLower(o.Text)] = true
		if o.Text == s.Target.Eng {
			answers++
		}
	}
	assert.Equal(t, 1, answers)
}

func TestMachine_ReturningUserGreeting(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	f.handle(t, Start("Anna"))
	f.handle(t, Start("Anna"))

	assert.Equal(t, "С возвращением, Anna!\nВыучено слов: 0 из 12", f.presenter.fromEnd(2).text)
}

func TestMachine_CorrectAnswerFirstAttempt(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	target := *s.Target

	s = f.handle(t, Text(strings.ToUpper(target.Eng)))

	assert.Equal(t, "Верный ответ!\n"+target.Rus+" -> "+target.Eng, f.presenter.fromEnd(2).text)
	assert.True(t, findWord(t, store, s.UserID, target.UserWordID).Learned)

	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	require.NotNil(t, s.Target)
	assert.NotEqual(t, target.Rus, s.Target.Rus)
	assert.Equal(t, 1, s.Attempts)
}

func TestMachine_WrongAnswer(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	target := *s.Target
	wrong := wrongOption(s)
	require.NotEmpty(t, wrong)

	s = f.handle(t, Text(wrong))

	retry := f.presenter.last()
	require.Equal(t, "quiz", retry.kind)
	assert.True(t, retry.quiz.Retry)
	assert.Equal(t, target.Rus, retry.quiz.Rus)
	for _, o := range retry.quiz.Options {
		assert.Equal(t, o.Text == wrong, o.Tried, o.Text)
	}

	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	assert.Equal(t, target.UserWordID, s.Target.UserWordID)
	assert.Equal(t, 2, s.Attempts)

	w := findWord(t, store, s.UserID, target.UserWordID)
	assert.False(t, w.Learned)
	assert.Equal(t, 2, w.Attempts)

	// decorated button text still counts as the same answer
	f.handle(t, Text(domain.TriedMarker+target.Eng))
	assert.True(t, findWord(t, store, s.UserID, target.UserWordID).Learned)
}

func TestMachine_CorrectAfterTwoMistakesStaysUnlearned(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	target := *s.Target
	wrong := wrongOption(s)

	f.handle(t, Text(wrong))
	s = f.handle(t, Text(wrong))
	assert.Equal(t, 3, s.Attempts)

	f.handle(t, Text(target.Eng))
	w := findWord(t, store, s.UserID, target.UserWordID)
	assert.False(t, w.Learned)
	assert.Equal(t, 3, w.Attempts)
}

func TestMachine_NextSkipsCurrentWord(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	for i := 0; i < 10; i++ {
		previous := s.Target.Rus
		s = f.handle(t, Command(EventNext))
		require.NotNil(t, s.Target)
		assert.NotEqual(t, previous, s.Target.Rus)
		assert.Equal(t, previous, s.Previous)
	}
}

func TestMachine_AddWord(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	f.handle(t, Start("Anna"))

	s := f.handle(t, Command(EventAddWord))
	assert.Equal(t, domain.StateAwaitingRussian, s.State)
	assert.Equal(t, presented{kind: "prompt", text: msgAskRussian}, f.presenter.last())

	s = f.handle(t, Text("  кот "))
	assert.Equal(t, domain.StateAwaitingTranslation, s.State)
	assert.Equal(t, "Кот", s.PendingRus)
	assert.Equal(t, presented{kind: "prompt", text: "Укажите перевод слова Кот"}, f.presenter.last())

	s = f.handle(t, Text("CAT"))
	assert.Equal(t, domain.OutcomeCreated.Message(), f.presenter.fromEnd(2).text)
	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	assert.Empty(t, s.PendingRus)
	assert.NotEqual(t, "Кот", s.Target.Rus)
	assert.True(t, store.HasWord("Кот", "Cat"))

	pairs, err := store.ListUserWords(context.Background(), s.UserID)
	require.NoError(t, err)
	assert.Contains(t, pairs, domain.WordPair{Rus: "Кот", Eng: "Cat"})

	// adding again is a no-op
	f.handle(t, Command(EventAddWord))
	f.handle(t, Text("Кот"))
	f.handle(t, Text("cat"))
	assert.Equal(t, domain.OutcomeAlreadyInCollection.Message(), f.presenter.fromEnd(2).text)
}

func TestMachine_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		events   []Event
		input    string
		expected string
		state    domain.State
	}{
		{
			name:     "two russian words",
			events:   []Event{Command(EventAddWord)},
			input:    "два слова",
			expected: "Укажите одно слово",
			state:    domain.StateAwaitingRussian,
		},
		{
			name:     "latin instead of cyrillic",
			events:   []Event{Command(EventAddWord)},
			input:    "cat",
			expected: "Укажите слово на русском",
			state:    domain.StateAwaitingRussian,
		},
		{
			name:     "cyrillic instead of latin",
			events:   []Event{Command(EventAddWord), Text("кот")},
			input:    "кошка",
			expected: "Укажите слово на английском",
			state:    domain.StateAwaitingTranslation,
		},
		{
			name:     "empty translation",
			events:   []Event{Command(EventAddWord), Text("кот")},
			input:    "   ",
			expected: "Укажите одно слово",
			state:    domain.StateAwaitingTranslation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewSeededStore(t)
			f := newFixture(store, store)
			f.handle(t, Start("Anna"))
			for _, ev := range tt.events {
				f.handle(t, ev)
			}
			words := store.WordCount()

			s := f.handle(t, Text(tt.input))

			assert.Equal(t, presented{kind: "prompt", text: tt.expected}, f.presenter.last())
			assert.Equal(t, tt.state, s.State)
			assert.Equal(t, words, store.WordCount())
		})
	}
}

func TestMachine_CancelInput(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	current := s.Target.Rus
	words := store.WordCount()

	f.handle(t, Command(EventAddWord))
	f.handle(t, Text("кот"))
	s = f.handle(t, Command(EventCancel))

	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	assert.Empty(t, s.PendingRus)
	assert.NotEqual(t, current, s.Target.Rus)
	assert.Equal(t, words, store.WordCount())
}

func TestMachine_DeleteWord(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	target := *s.Target
	words := store.WordCount()

	s = f.handle(t, Command(EventDeleteWord))

	assert.Equal(t, "Слово \""+target.Rus+"\" удалено!", f.presenter.fromEnd(2).text)
	assert.Equal(t, domain.StateAwaitingAnswer, s.State)
	assert.NotEqual(t, target.Rus, s.Target.Rus)
	// main words are never removed from the catalogue
	assert.Equal(t, words, store.WordCount())

	pairs, err := store.ListUserWords(context.Background(), s.UserID)
	require.NoError(t, err)
	for _, p := range pairs {
		assert.NotEqual(t, target.Rus, p.Rus)
	}
}

func TestMachine_DeleteOwnWordRemovesOrphan(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.SeedMainWords(context.Background(), domain.SeedWords[2:5]))
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))
	require.Equal(t, domain.StateIdle, s.State)

	f.handle(t, Command(EventAddWord))
	f.handle(t, Text("кот"))
	s = f.handle(t, Text("cat"))
	require.True(t, store.HasWord("Кот", "Cat"))
	require.Equal(t, domain.StateAwaitingAnswer, s.State)

	for i := 0; i < 100 && s.Target.Rus != "Кот"; i++ {
		s = f.handle(t, Command(EventNext))
	}
	require.Equal(t, "Кот", s.Target.Rus)

	f.handle(t, Command(EventDeleteWord))
	assert.False(t, store.HasWord("Кот", "Cat"))
	assert.Equal(t, 3, store.WordCount())
}

func TestMachine_CollectionTooSmall(t *testing.T) {
	store := memory.NewStore()
	f := newFixture(store, store)

	s := f.handle(t, Start("Anna"))

	assert.Equal(t, presented{kind: "too_small"}, f.presenter.last())
	assert.True(t, s.Started())
	assert.Equal(t, domain.StateIdle, s.State)
	assert.Nil(t, s.Target)

	f.handle(t, Text("hello"))
	assert.Equal(t, msgUseButtons, f.presenter.last().text)

	f.handle(t, Command(EventDeleteWord))
	assert.Equal(t, msgNothingToDelete, f.presenter.fromEnd(2).text)

	s = f.handle(t, Command(EventAddWord))
	assert.Equal(t, domain.StateAwaitingRussian, s.State)
}

func TestMachine_ListWords(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)

	before := f.handle(t, Start("Anna"))
	after := f.handle(t, Command(EventListWords))

	text := f.presenter.last().text
	assert.True(t, strings.HasPrefix(text, "📚 Ваши слова (12):"), text)
	assert.Contains(t, text, "Мир — Peace")
	assert.Equal(t, before, after)
}

func TestMachine_StorageErrorOnStart(t *testing.T) {
	userRepo := new(testutil.MockUserRepository)
	wordRepo := new(testutil.MockWordRepository)
	userRepo.On("GetOrCreateUser", mock.Anything, int64(100), "Anna").
		Return(int64(0), false, errors.New("connection refused"))

	f := newFixture(userRepo, wordRepo)
	s := f.handle(t, Start("Anna"))

	assert.Equal(t, msgTryLater, f.presenter.last().text)
	assert.False(t, s.Started())
	userRepo.AssertExpectations(t)
	wordRepo.AssertNotCalled(t, "GetUserWords", mock.Anything, mock.Anything)
}

func TestMachine_StorageErrorKeepsState(t *testing.T) {
	store := testutil.NewSeededStore(t)
	flaky := &flakyStore{Store: store}
	f := newFixture(store, flaky)

	before := f.handle(t, Start("Anna"))
	flaky.failLearned = true

	after := f.handle(t, Text(before.Target.Eng))

	assert.Equal(t, msgTryLater, f.presenter.last().text)
	assert.Equal(t, before, after)

	flaky.failLearned = false
	f.handle(t, Text(before.Target.Eng))
	assert.True(t, findWord(t, store, before.UserID, before.Target.UserWordID).Learned)
}

func TestMachine_ConcurrentConversations(t *testing.T) {
	store := testutil.NewSeededStore(t)
	f := newFixture(store, store)
	ctx := context.Background()

	keys := []domain.ConversationKey{{UserID: 1, ChatID: 1}, {UserID: 2, ChatID: 2}, {UserID: 1, ChatID: 3}}
	for _, key := range keys {
		require.NoError(t, f.machine.Handle(ctx, key, Start("")))
	}

	var wg sync.WaitGroup
	for _, key := range keys {
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(key domain.ConversationKey) {
				defer wg.Done()
				assert.NoError(t, f.machine.Handle(ctx, key, Command(EventNext)))
			}(key)
		}
	}
	wg.Wait()

	for _, key := range keys {
		s, err := f.machine.State(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAwaitingAnswer, s.State)
		assert.Equal(t, 1, s.Attempts)
		require.NotNil(t, s.Target)
	}
}
