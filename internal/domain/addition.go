package domain

// Outcome describes what AddUserWord did
type Outcome int

const (
	OutcomeCreated Outcome = iota + 1
	OutcomeLinked
	OutcomeNewVersionCreated
	OutcomeAlreadyInCollection
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeLinked:
		return "linked"
	case OutcomeNewVersionCreated:
		return "new_version_created"
	case OutcomeAlreadyInCollection:
		return "already_in_collection"
	default:
		return "unknown"
	}
}

// Message returns the text shown to the learner
func (o Outcome) Message() string {
	switch o {
	case OutcomeCreated:
		return "Слово успешно добавлено"
	case OutcomeLinked:
		return "Слово добавлено в словарь"
	case OutcomeNewVersionCreated:
		return "Создана новая версия слова"
	case OutcomeAlreadyInCollection:
		return "Слово уже существует в вашем словаре"
	default:
		return ""
	}
}

// Changed reports whether the outcome wrote anything
func (o Outcome) Changed() bool {
	return o == OutcomeCreated || o == OutcomeLinked || o == OutcomeNewVersionCreated
}

// Candidate is an existing word sharing the Russian term being added,
// with Linked set when the user already holds it.
type Candidate struct {
	Word   Word
	Linked bool
}

// AdditionPlan is what a store has to write for an addition.
// WordID is set for OutcomeLinked, Number for the creating outcomes.
type AdditionPlan struct {
	Outcome Outcome
	WordID  int64
	Number  int
}

// PlanAddition decides how eng is attached to a user given every existing
// version of the Russian term.
func PlanAddition(existing []Candidate, eng string) AdditionPlan {
	if len(existing) == 0 {
		return AdditionPlan{Outcome: OutcomeCreated, Number: 1}
	}

	maxNumber := 0
	for _, c := range existing {
		if c.Word.Number > maxNumber {
			maxNumber = c.Word.Number
		}
		if c.Word.Eng != eng {
			continue
		}
		if c.Linked {
			return AdditionPlan{Outcome: OutcomeAlreadyInCollection, WordID: c.Word.ID}
		}
		return AdditionPlan{Outcome: OutcomeLinked, WordID: c.Word.ID}
	}

	return AdditionPlan{Outcome: OutcomeNewVersionCreated, Number: maxNumber + 1}
}
