package trainer

import (
	"errors"
	"fmt"
	"strings"

	"vocabtrainer/internal/domain"
)

const (
	msgWelcome = "Привет 👋 Давай попрактикуемся в английском языке. Тренировки можешь проходить в удобном для себя темпе.\n" +
		"У тебя есть возможность использовать тренажёр, как конструктор, и собирать свою собственную базу для обучения. " +
		"Для этого воспользуйся инструментами:\n" +
		"   добавить слово ➕,\n" +
		"   удалить слово 🔙.\n" +
		"Ну что, начнём ⬇️"
	msgSendStart       = "Для начала работы бота напишите /start"
	msgTryLater        = "Произошла ошибка. Попробуйте позже."
	msgWordGone        = "Это слово уже удалено из вашего словаря"
	msgNothingToDelete = "Сейчас нет слова для удаления"
	msgUseButtons      = "Выберите действие на клавиатуре"
	msgAskRussian      = "Напиши какое слово хотите добавить:"
	msgEmptyCollection = "Ваш словарь пуст. Добавьте слово"
)

func welcomeBack(name string, learned, total int) string {
	text := "С возвращением"
	if name != "" {
		text += ", " + name
	}
	if total > 0 {
		text += fmt.Sprintf("!\nВыучено слов: %d из %d", learned, total)
	} else {
		text += "!"
	}
	return text
}

func askTranslation(rus string) string {
	return fmt.Sprintf("Укажите перевод слова %s", rus)
}

func correctAnswer(target *domain.QuizWord) string {
	return fmt.Sprintf("Верный ответ!\n%s -> %s", target.Rus, target.Eng)
}

func wordDeleted(rus string) string {
	return fmt.Sprintf("Слово \"%s\" удалено!", rus)
}

func invalidInput(err error) string {
	var reason string
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		reason = ve.Reason
	}
	switch reason {
	case domain.ReasonNotSingleWord:
		return "Укажите одно слово"
	case domain.ReasonNotRussian:
		return "Укажите слово на русском"
	case domain.ReasonNotEnglish:
		return "Укажите слово на английском"
	default:
		return "Некорректный ввод"
	}
}

func collectionList(pairs []domain.WordPair) string {
	if len(pairs) == 0 {
		return msgEmptyCollection
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Ваши слова (%d):\n\n", len(pairs))
	for i, p := range pairs {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, p.Rus, p.Eng)
	}
	return b.String()
}
