package domain

// Word is one accepted translation of a Russian term.
// Several words may share Rus, each with its own version Number.
type Word struct {
	ID     int64
	Rus    string
	Eng    string
	Number int
	IsMain bool
}

// UserWord links a user to a word in their collection
type UserWord struct {
	ID       int64
	UserID   int64
	Word     Word
	Learned  bool
	Attempts int
}

// WordPair is a simplified version for display
type WordPair struct {
	Rus string
	Eng string
}

// QuizWord is the word a learner is being asked to translate
type QuizWord struct {
	UserWordID int64  `json:"user_word_id"`
	WordID     int64  `json:"word_id"`
	Rus        string `json:"rus"`
	Eng        string `json:"eng"`
}

// SeedWords are linked to every new user.
var SeedWords = []Word{
	{Rus: "Мир", Eng: "Peace", Number: 1, IsMain: true},
	{Rus: "Мир", Eng: "Universe", Number: 2, IsMain: true},
	{Rus: "Покой", Eng: "Peace", Number: 1, IsMain: true},
	{Rus: "Солнце", Eng: "Sun", Number: 1, IsMain: true},
	{Rus: "Телефон", Eng: "Phone", Number: 1, IsMain: true},
	{Rus: "Мышь", Eng: "Mouse", Number: 1, IsMain: true},
	{Rus: "Кнопка", Eng: "Button", Number: 1, IsMain: true},
	{Rus: "Ручка", Eng: "Pen", Number: 1, IsMain: true},
	{Rus: "Шоколад", Eng: "Chocolate", Number: 1, IsMain: true},
	{Rus: "Кружка", Eng: "Cup", Number: 1, IsMain: true},
	{Rus: "Часы", Eng: "Watch", Number: 1, IsMain: true},
	{Rus: "Сыр", Eng: "Cheese", Number: 1, IsMain: true},
}
