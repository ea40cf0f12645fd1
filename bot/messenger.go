package bot

import (
	"context"

	"weather-bot/formatter"
)

// Messenger is the outgoing half of the chat runtime
type Messenger interface {
	// Send posts a message, with inline buttons when msg has actions
	Send(ctx context.Context, chatID int64, msg formatter.Message) error

	// SendMenu posts text together with a persistent reply keyboard
	SendMenu(ctx context.Context, chatID int64, text string, menu [][]string) error

	// AnswerCallback acknowledges a button press; text may be empty
	AnswerCallback(ctx context.Context, callbackID, text string) error
}
