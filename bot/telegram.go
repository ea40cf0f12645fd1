package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"weather-bot/formatter"
	"weather-bot/logger"
)

// BotAPI is the part of *tgbotapi.BotAPI the runtime uses
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Telegram delivers updates from the Bot API and sends replies back.
// It implements Messenger.
type Telegram struct {
	api         BotAPI
	pollTimeout int
	logger      logger.Logger
}

// NewTelegram wraps a Bot API client. pollTimeout is the long polling
// timeout in seconds.
func NewTelegram(api BotAPI, pollTimeout int, l logger.Logger) *Telegram {
	if l == nil {
		l = logger.Discard()
	}
	return &Telegram{
		api:         api,
		pollTimeout: pollTimeout,
		logger:      l.WithField("component", "telegram"),
	}
}

// Send posts text, attaching inline buttons when msg has actions
func (t *Telegram) Send(_ context.Context, chatID int64, msg formatter.Message) error {
	out := tgbotapi.NewMessage(chatID, msg.Text)
	if len(msg.Actions) > 0 {
		out.ReplyMarkup = inlineKeyboard(msg.Actions)
	}
	if _, err := t.api.Send(out); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

// SendMenu posts text together with a persistent reply keyboard
func (t *Telegram) SendMenu(_ context.Context, chatID int64, text string, menu [][]string) error {
	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyMarkup = replyKeyboard(menu)
	if _, err := t.api.Send(out); err != nil {
		return fmt.Errorf("send menu to chat %d: %w", chatID, err)
	}
	return nil
}

// AnswerCallback acknowledges a button press so the client stops its spinner
func (t *Telegram) AnswerCallback(_ context.Context, callbackID, text string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}

// Run long-polls for updates and passes every recognised one to dispatch
// until ctx is cancelled or the update channel closes
func (t *Telegram) Run(ctx context.Context, dispatch func(context.Context, Event) error) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = t.pollTimeout

	updates := t.api.GetUpdatesChan(u)
	t.logger.Info("polling for updates")

	for {
		select {
		case <-ctx.Done():
			t.api.StopReceivingUpdates()
			t.logger.Info("polling stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			ev, ok := EventFromUpdate(update)
			if !ok {
				t.logger.Debugf("ignoring update %d", update.UpdateID)
				continue
			}
			if err := dispatch(ctx, ev); err != nil {
				t.logger.Warnf("update %d dropped: %v", update.UpdateID, err)
			}
		}
	}
}

// EventFromUpdate classifies a Telegram update. ok is false for update
// kinds the bot does not handle (edits, channel posts, stickers, ...).
func EventFromUpdate(u tgbotapi.Update) (Event, bool) {
	if cb := u.CallbackQuery; cb != nil {
		if cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
			return nil, false
		}
		return ButtonPress{
			Source:     Source{UserID: cb.From.ID, ChatID: cb.Message.Chat.ID},
			CallbackID: cb.ID,
			Data:       cb.Data,
		}, true
	}

	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return nil, false
	}
	src := Source{UserID: m.From.ID, ChatID: m.Chat.ID}

	if m.IsCommand() {
		return Command{Source: src, Name: m.Command(), Args: m.CommandArguments()}, true
	}
	return Text{Source: src, Body: m.Text}, true
}

func inlineKeyboard(actions []formatter.Action) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func replyKeyboard(menu [][]string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(menu))
	for _, labels := range menu {
		row := make([]tgbotapi.KeyboardButton, 0, len(labels))
		for _, label := range labels {
			row = append(row, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, row)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

var _ Messenger = (*Telegram)(nil)
