package handler

import (
	"context"
	"fmt"

	"vocabtrainer/internal/domain"
	"vocabtrainer/internal/trainer"

	tele "gopkg.in/telebot.v3"
)

// Sender is the part of the bot used to deliver messages
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Reply keyboard buttons
var (
	btnNext       = tele.Btn{Text: "Дальше ⏭"}
	btnCancel     = tele.Btn{Text: "Отмена ❌"}
	btnAddWord    = tele.Btn{Text: "Добавить слово ➕"}
	btnDeleteWord = tele.Btn{Text: "Удалить слово🔙"}
)

const optionColumns = 2

// Presenter renders trainer output as Telegram messages
type Presenter struct {
	sender Sender
}

var _ trainer.Presenter = (*Presenter)(nil)

// NewPresenter creates a presenter sending through sender
func NewPresenter(sender Sender) *Presenter {
	return &Presenter{sender: sender}
}

// PresentQuiz sends the word to translate with the answer keyboard
func (p *Presenter) PresentQuiz(_ context.Context, key domain.ConversationKey, quiz domain.Quiz) error {
	text := fmt.Sprintf("Выбери перевод слова:\n🇷🇺 %s", quiz.Rus)
	if quiz.Retry {
		text = fmt.Sprintf("Допущена ошибка!\nПопробуй ещё раз вспомнить слово 🇷🇺%s", quiz.Rus)
	}
	return p.send(key, text, quizMarkup(quiz.Options))
}

// PresentMessage sends plain text, keeping the current keyboard
func (p *Presenter) PresentMessage(_ context.Context, key domain.ConversationKey, text string) error {
	return p.send(key, text)
}

// PresentPrompt asks for input and offers a cancel button
func (p *Presenter) PresentPrompt(_ context.Context, key domain.ConversationKey, text string) error {
	return p.send(key, text, promptMarkup())
}

// PresentCollectionTooSmall asks the learner to grow the collection
func (p *Presenter) PresentCollectionTooSmall(_ context.Context, key domain.ConversationKey) error {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(btnAddWord, btnNext))
	return p.send(key, "В вашем словаре недостаточно слов для тренировки. Добавьте новые слова ➕", menu)
}

func (p *Presenter) send(key domain.ConversationKey, text string, opts ...interface{}) error {
	if _, err := p.sender.Send(tele.ChatID(key.ChatID), text, opts...); err != nil {
		return fmt.Errorf("send to %d: %w", key.ChatID, err)
	}
	return nil
}

// quizMarkup lays options out in two columns followed by the actions
func quizMarkup(options []domain.Option) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	buttons := make([]tele.Btn, 0, len(options)+3)
	for _, o := range options {
		text := o.Text
		if o.Tried {
			text += domain.TriedMarker
		}
		buttons = append(buttons, menu.Text(text))
	}
	buttons = append(buttons, btnNext, btnAddWord, btnDeleteWord)

	menu.Reply(menu.Split(optionColumns, buttons)...)
	return menu
}

func promptMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}
	menu.Reply(menu.Row(btnCancel))
	return menu
}
