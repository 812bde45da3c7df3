// Package trainer drives the per-conversation quiz loop.
package trainer

import (
	"context"
	"errors"
	"sync"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/service"

	"go.uber.org/zap"
)

// Machine reacts to learner events and keeps conversation state.
// Events of one conversation are handled one at a time.
type Machine struct {
	words     *service.WordStore
	selection *service.SelectionEngine
	progress  *service.ProgressTracker
	stats     *service.StatsService
	sessions  SessionStore
	presenter Presenter
	logger    *zap.Logger

	locks    map[domain.ConversationKey]*sync.Mutex
	locksMux sync.Mutex
}

// NewMachine creates a new state machine
func NewMachine(
	words *service.WordStore,
	selection *service.SelectionEngine,
	progress *service.ProgressTracker,
	stats *service.StatsService,
	sessions SessionStore,
	presenter Presenter,
	logger *zap.Logger,
) *Machine {
	return &Machine{
		words:     words,
		selection: selection,
		progress:  progress,
		stats:     stats,
		sessions:  sessions,
		presenter: presenter,
		logger:    logger,
		locks:     make(map[domain.ConversationKey]*sync.Mutex),
	}
}

// Handle applies one event to the conversation identified by key
func (m *Machine) Handle(ctx context.Context, key domain.ConversationKey, ev Event) error {
	lock := m.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	s, err := m.sessions.Load(ctx, key)
	if err != nil {
		m.logger.Error("Failed to load session", zap.Stringer("key", key), zap.Error(err))
		return m.presenter.PresentMessage(ctx, key, msgTryLater)
	}

	save, presentErr := m.dispatch(ctx, s, ev)
	if save {
		if err := m.sessions.Save(ctx, s); err != nil {
			m.logger.Error("Failed to save session", zap.Stringer("key", key), zap.Error(err))
		}
	}
	return presentErr
}

// State returns a copy of the conversation's current state
func (m *Machine) State(ctx context.Context, key domain.ConversationKey) (*domain.Session, error) {
	return m.sessions.Load(ctx, key)
}

func (m *Machine) lockFor(key domain.ConversationKey) *sync.Mutex {
	m.locksMux.Lock()
	defer m.locksMux.Unlock()

	lock, exists := m.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// dispatch mutates s and reports whether it must be persisted
func (m *Machine) dispatch(ctx context.Context, s *domain.Session, ev Event) (bool, error) {
	if ev.Kind == EventStart {
		return m.start(ctx, s, ev.DisplayName)
	}
	if !s.Started() {
		return false, m.presenter.PresentMessage(ctx, s.Key, msgSendStart)
	}

	switch ev.Kind {
	case EventNext, EventCancel:
		return true, m.startTurn(ctx, s, s.Current())
	case EventAddWord:
		s.State = domain.StateAwaitingRussian
		s.PendingRus = ""
		return true, m.presenter.PresentPrompt(ctx, s.Key, msgAskRussian)
	case EventDeleteWord:
		return m.deleteWord(ctx, s)
	case EventListWords:
		return false, m.listWords(ctx, s)
	case EventText:
		switch s.State {
		case domain.StateAwaitingAnswer:
			return m.answer(ctx, s, ev.Text)
		case domain.StateAwaitingRussian:
			return m.russianInput(ctx, s, ev.Text)
		case domain.StateAwaitingTranslation:
			return m.translationInput(ctx, s, ev.Text)
		default:
			return false, m.presenter.PresentMessage(ctx, s.Key, msgUseButtons)
		}
	}

	m.logger.Warn("Unknown event", zap.Stringer("kind", ev.Kind))
	return false, nil
}

func (m *Machine) start(ctx context.Context, s *domain.Session, displayName string) (bool, error) {
	userID, existed, err := m.words.GetOrCreateUser(ctx, s.Key.UserID, displayName)
	if err != nil {
		return false, m.fail(ctx, s.Key, "get or create user", err)
	}
	s.UserID = userID

	greeting := msgWelcome
	if existed {
		learned, total, err := m.stats.Progress(ctx, userID)
		if err != nil {
			m.logger.Warn("Failed to load progress", zap.Int64("user_id", userID), zap.Error(err))
			total = 0
		}
		greeting = welcomeBack(displayName, learned, total)
	} else {
		m.logger.Info("New user registered",
			zap.Int64("user_id", userID),
			zap.Int64("telegram_id", s.Key.UserID))
	}

	if err := m.presenter.PresentMessage(ctx, s.Key, greeting); err != nil {
		return true, err
	}
	return true, m.startTurn(ctx, s, "")
}

// startTurn resets s and shows a new quiz, leaving s idle when none can be built
func (m *Machine) startTurn(ctx context.Context, s *domain.Session, exclude string) error {
	s.State = domain.StateIdle
	s.Target = nil
	s.Options = nil
	s.Attempts = 0
	s.PendingRus = ""
	s.Previous = exclude

	word, err := m.selection.NextQuizWord(ctx, s.UserID, exclude)
	if err != nil {
		return m.fail(ctx, s.Key, "next quiz word", err)
	}
	if word == nil {
		return m.presenter.PresentCollectionTooSmall(ctx, s.Key)
	}

	distractors, err := m.selection.Distractors(ctx, s.UserID, word.Rus, service.DistractorCount)
	if err != nil {
		return m.fail(ctx, s.Key, "distractors", err)
	}
	if len(distractors) < service.DistractorCount {
		return m.presenter.PresentCollectionTooSmall(ctx, s.Key)
	}

	attempt, err := m.progress.Begin(ctx, word.UserWordID)
	if err != nil {
		return m.fail(ctx, s.Key, "begin quiz", err)
	}

	s.State = domain.StateAwaitingAnswer
	s.Target = word
	s.Options = m.selection.Options(word.Eng, distractors)
	s.Attempts = attempt

	return m.presenter.PresentQuiz(ctx, s.Key, domain.Quiz{Rus: word.Rus, Options: s.Options})
}

func (m *Machine) answer(ctx context.Context, s *domain.Session, text string) (bool, error) {
	target := s.Target
	if target == nil {
		return true, m.startTurn(ctx, s, s.Previous)
	}

	correct := domain.SameTerm(text, target.Eng)
	next, err := m.progress.Record(ctx, target.UserWordID, s.Attempts, correct)
	if err != nil {
		if domain.IsNotFoundError(err) {
			if err := m.presenter.PresentMessage(ctx, s.Key, msgWordGone); err != nil {
				return false, err
			}
			return true, m.startTurn(ctx, s, target.Rus)
		}
		return false, m.fail(ctx, s.Key, "record answer", err)
	}

	if correct {
		if err := m.presenter.PresentMessage(ctx, s.Key, correctAnswer(target)); err != nil {
			return false, err
		}
		return true, m.startTurn(ctx, s, target.Rus)
	}

	s.Attempts = next
	s.MarkTried(text)
	return true, m.presenter.PresentQuiz(ctx, s.Key, domain.Quiz{Rus: target.Rus, Options: s.Options, Retry: true})
}

func (m *Machine) russianInput(ctx context.Context, s *domain.Session, text string) (bool, error) {
	rus, err := domain.ParseRussianTerm(text)
	if err != nil {
		return false, m.presenter.PresentPrompt(ctx, s.Key, invalidInput(err))
	}

	s.PendingRus = rus
	s.State = domain.StateAwaitingTranslation
	return true, m.presenter.PresentPrompt(ctx, s.Key, askTranslation(rus))
}

func (m *Machine) translationInput(ctx context.Context, s *domain.Session, text string) (bool, error) {
	eng, err := domain.ParseEnglishTerm(text)
	if err != nil {
		return false, m.presenter.PresentPrompt(ctx, s.Key, invalidInput(err))
	}

	outcome, message, err := m.words.AddUserWord(ctx, s.UserID, s.PendingRus, eng)
	if err != nil {
		if domain.IsValidationError(err) {
			return false, m.presenter.PresentPrompt(ctx, s.Key, invalidInput(err))
		}
		return false, m.fail(ctx, s.Key, "add user word", err)
	}

	m.logger.Info("Word added",
		zap.Int64("user_id", s.UserID),
		zap.String("rus", s.PendingRus),
		zap.String("eng", eng),
		zap.Stringer("outcome", outcome))

	rus := s.PendingRus
	if err := m.presenter.PresentMessage(ctx, s.Key, message); err != nil {
		return false, err
	}
	return true, m.startTurn(ctx, s, rus)
}

func (m *Machine) deleteWord(ctx context.Context, s *domain.Session) (bool, error) {
	if s.Target == nil {
		if err := m.presenter.PresentMessage(ctx, s.Key, msgNothingToDelete); err != nil {
			return false, err
		}
		return true, m.startTurn(ctx, s, s.Previous)
	}

	rus := s.Target.Rus
	deleted, err := m.words.DeleteUserWord(ctx, s.UserID, rus)
	if err != nil {
		return false, m.fail(ctx, s.Key, "delete user word", err)
	}

	text := msgWordGone
	if deleted {
		text = wordDeleted(rus)
		m.logger.Info("Word deleted", zap.Int64("user_id", s.UserID), zap.String("rus", rus))
	}
	if err := m.presenter.PresentMessage(ctx, s.Key, text); err != nil {
		return false, err
	}
	return true, m.startTurn(ctx, s, rus)
}

func (m *Machine) listWords(ctx context.Context, s *domain.Session) error {
	pairs, err := m.words.ListUserWords(ctx, s.UserID)
	if err != nil {
		return m.fail(ctx, s.Key, "list user words", err)
	}
	return m.presenter.PresentMessage(ctx, s.Key, collectionList(pairs))
}

// fail logs err and tells the learner something went wrong
func (m *Machine) fail(ctx context.Context, key domain.ConversationKey, op string, err error) error {
	text := msgTryLater
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		text = msgWordGone
		m.logger.Warn("Entity disappeared", zap.String("op", op), zap.Stringer("key", key), zap.Error(err))
	} else {
		m.logger.Error("Trainer operation failed", zap.String("op", op), zap.Stringer("key", key), zap.Error(err))
	}
	return m.presenter.PresentMessage(ctx, key, text)
}
