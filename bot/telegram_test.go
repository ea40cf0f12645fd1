package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-bot/formatter"
)

type fakeBotAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
	stopped  bool
	err      error
}

func (f *fakeBotAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeBotAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBotAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBotAPI) StopReceivingUpdates() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func commandMessage(userID, chatID int64, text string, cmdLen int) *tgbotapi.Message {
	return &tgbotapi.Message{
		From:     &tgbotapi.User{ID: userID},
		Chat:     &tgbotapi.Chat{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func TestEventFromUpdate(t *testing.T) {
	t.Run("command with argument", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{Message: commandMessage(1, 2, "/forecast Москва", len("/forecast"))})
		require.True(t, ok)
		assert.Equal(t, Command{Source: Source{UserID: 1, ChatID: 2}, Name: "forecast", Args: "Москва"}, ev)
	})

	t.Run("command addressed to the bot", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{Message: commandMessage(1, 2, "/start@weather_bot", len("/start@weather_bot"))})
		require.True(t, ok)
		assert.Equal(t, Command{Source: Source{UserID: 1, ChatID: 2}, Name: "start"}, ev)
	})

	t.Run("plain text", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 1},
			Chat: &tgbotapi.Chat{ID: 2},
			Text: "Нижний Новгород",
		}})
		require.True(t, ok)
		assert.Equal(t, Text{Source: Source{UserID: 1, ChatID: 2}, Body: "Нижний Новгород"}, ev)
	})

	t.Run("callback", func(t *testing.T) {
		ev, ok := EventFromUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb-1",
			From:    &tgbotapi.User{ID: 1},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 2}},
			Data:    "unit_f",
		}})
		require.True(t, ok)
		assert.Equal(t, ButtonPress{Source: Source{UserID: 1, ChatID: 2}, CallbackID: "cb-1", Data: "unit_f"}, ev)
	})

	t.Run("ignored updates", func(t *testing.T) {
		for _, u := range []tgbotapi.Update{
			{},
			{EditedMessage: &tgbotapi.Message{Text: "x"}},
			{Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 2}}},
			{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 2}, Text: "channel post"}},
			{CallbackQuery: &tgbotapi.CallbackQuery{ID: "inline", From: &tgbotapi.User{ID: 1}}},
		} {
			_, ok := EventFromUpdate(u)
			assert.False(t, ok)
		}
	})
}

func TestTelegram_Send(t *testing.T) {
	api := &fakeBotAPI{}
	tg := NewTelegram(api, 60, nil)
	ctx := context.Background()

	require.NoError(t, tg.Send(ctx, 5, formatter.Message{Text: "plain"}))
	require.NoError(t, tg.Send(ctx, 5, formatter.UnitsChoice()))
	require.NoError(t, tg.SendMenu(ctx, 5, formatter.Greeting, formatter.MainMenu()))
	require.NoError(t, tg.AnswerCallback(ctx, "cb", "ok"))

	require.Len(t, api.sent, 3)

	plain := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, int64(5), plain.ChatID)
	assert.Equal(t, "plain", plain.Text)
	assert.Nil(t, plain.ReplyMarkup)

	withButtons := api.sent[1].(tgbotapi.MessageConfig)
	kb, ok := withButtons.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.Len(t, kb.InlineKeyboard[0], 2)
	require.NotNil(t, kb.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, formatter.ActionUnitF, *kb.InlineKeyboard[0][1].CallbackData)

	menu := api.sent[2].(tgbotapi.MessageConfig)
	rk, ok := menu.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, rk.Keyboard, 2)
	assert.Equal(t, formatter.LabelWeather, rk.Keyboard[0][0].Text)
	assert.True(t, rk.ResizeKeyboard)

	require.Len(t, api.requests, 1)
	cb := api.requests[0].(tgbotapi.CallbackConfig)
	assert.Equal(t, "cb", cb.CallbackQueryID)
	assert.Equal(t, "ok", cb.Text)
}

func TestTelegram_SendError(t *testing.T) {
	api := &fakeBotAPI{err: errors.New("forbidden: bot was blocked by the user")}
	tg := NewTelegram(api, 60, nil)

	err := tg.Send(context.Background(), 5, formatter.Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.Error(t, tg.AnswerCallback(context.Background(), "cb", ""))
}

func TestTelegram_Run(t *testing.T) {
	api := &fakeBotAPI{updates: make(chan tgbotapi.Update, 3)}
	tg := NewTelegram(api, 1, nil)

	api.updates <- tgbotapi.Update{UpdateID: 1, Message: commandMessage(1, 1, "/help", 5)}
	api.updates <- tgbotapi.Update{UpdateID: 2}
	api.updates <- tgbotapi.Update{UpdateID: 3, Message: &tgbotapi.Message{From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1}, Text: "Омск"}}

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu   sync.Mutex
		got  []Event
		done = make(chan error, 1)
	)
	go func() {
		done <- tg.Run(ctx, func(_ context.Context, ev Event) error {
			mu.Lock()
			got = append(got, ev)
			n := len(got)
			mu.Unlock()
			if n == 2 {
				cancel()
			}
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, "command", got[0].Kind())
	assert.Equal(t, "text", got[1].Kind())
	assert.True(t, api.stopped)
}
