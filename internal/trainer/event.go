package trainer

// EventKind is the type of an inbound conversation event
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventText
	EventNext
	EventCancel
	EventAddWord
	EventDeleteWord
	EventListWords
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventText:
		return "text"
	case EventNext:
		return "next"
	case EventCancel:
		return "cancel"
	case EventAddWord:
		return "add_word"
	case EventDeleteWord:
		return "delete_word"
	case EventListWords:
		return "list_words"
	default:
		return "unknown"
	}
}

// Event is one learner action
type Event struct {
	Kind        EventKind
	Text        string
	DisplayName string
}

// Start begins (or restarts) a conversation
func Start(displayName string) Event {
	return Event{Kind: EventStart, DisplayName: displayName}
}

// Text carries free text typed or tapped by the learner
func Text(text string) Event {
	return Event{Kind: EventText, Text: text}
}

// Command builds an event without payload
func Command(kind EventKind) Event {
	return Event{Kind: kind}
}
