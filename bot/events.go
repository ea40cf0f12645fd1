package bot

// Source identifies who sent an event and where to reply
type Source struct {
	UserID int64
	ChatID int64
}

func (s Source) source() Source { return s }

// Event is one inbound chat notification. The set of variants is closed:
// Command, Text and ButtonPress are the only implementations.
type Event interface {
	source() Source
	Kind() string
}

// Command is a slash command such as "/forecast Москва"
type Command struct {
	Source
	Name string // without the slash or @botname
	Args string
}

// Text is a plain message, including presses of reply-keyboard buttons
type Text struct {
	Source
	Body string
}

// ButtonPress is an inline button callback
type ButtonPress struct {
	Source
	CallbackID string
	Data       string
}

func (Command) Kind() string     { return "command" }
func (Text) Kind() string        { return "text" }
func (ButtonPress) Kind() string { return "button" }

// SourceOf returns the sender of any event
func SourceOf(ev Event) Source {
	return ev.source()
}
