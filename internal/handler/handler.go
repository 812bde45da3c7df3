package handler

import (
	"context"
	"strings"
	"time"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/trainer"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const handleTimeout = 30 * time.Second

// Machine consumes learner events
type Machine interface {
	Handle(ctx context.Context, key domain.ConversationKey, ev trainer.Event) error
}

// Handler manages all bot interactions
type Handler struct {
	bot     *tele.Bot
	machine Machine
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(bot *tele.Bot, machine Machine, logger *zap.Logger) *Handler {
	return &Handler{
		bot:     bot,
		machine: machine,
		logger:  logger,
	}
}

// RegisterHandlers registers all bot handlers
func (h *Handler) RegisterHandlers() {
	// Commands
	h.bot.Handle("/start", h.handleStart)
	h.bot.Handle("/cards", h.handleStart)
	h.bot.Handle("/words", h.handleCommand(trainer.EventListWords))

	// Reply keyboard buttons and answers
	h.bot.Handle(tele.OnText, h.handleText)
}

func (h *Handler) handleStart(c tele.Context) error {
	sender := c.Sender()
	h.logger.Info("User started bot",
		zap.Int64("user_id", sender.ID),
		zap.String("username", sender.Username),
	)
	return h.dispatch(c, trainer.Start(displayName(sender)))
}

func (h *Handler) handleCommand(kind trainer.EventKind) tele.HandlerFunc {
	return func(c tele.Context) error {
		return h.dispatch(c, trainer.Command(kind))
	}
}

// handleText handles all text messages, button presses included
func (h *Handler) handleText(c tele.Context) error {
	text := cleanText(c.Text())

	// Ignore unknown commands
	if strings.HasPrefix(text, "/") {
		return nil
	}

	return h.dispatch(c, eventFor(text))
}

func (h *Handler) dispatch(c tele.Context, ev trainer.Event) error {
	if c.Sender() == nil || c.Chat() == nil {
		h.logger.Warn("Update without sender or chat", zap.Stringer("event", ev.Kind))
		return nil
	}

	key := domain.ConversationKey{UserID: c.Sender().ID, ChatID: c.Chat().ID}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	if err := h.machine.Handle(ctx, key, ev); err != nil {
		h.logger.Error("Failed to handle event",
			zap.Stringer("key", key),
			zap.Stringer("event", ev.Kind),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// eventFor maps keyboard buttons to commands and anything else to free text
func eventFor(text string) trainer.Event {
	switch text {
	case btnNext.Text:
		return trainer.Command(trainer.EventNext)
	case btnCancel.Text:
		return trainer.Command(trainer.EventCancel)
	case btnAddWord.Text:
		return trainer.Command(trainer.EventAddWord)
	case btnDeleteWord.Text:
		return trainer.Command(trainer.EventDeleteWord)
	}
	return trainer.Text(text)
}

func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}
