package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/stretchr/testify/mock"

	"weather-bot/formatter"
	"weather-bot/models"
)

type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) Name() string { return "mock" }

func (m *MockWeather) Current(ctx context.Context, city string, units models.Units) (models.WeatherRecord, error) {
	args := m.Called(ctx, city, units)
	return args.Get(0).(models.WeatherRecord), args.Error(1)
}

func (m *MockWeather) Forecast(ctx context.Context, city string, units models.Units) (models.Forecast, error) {
	args := m.Called(ctx, city, units)
	return args.Get(0).(models.Forecast), args.Error(1)
}

type sent struct {
	ChatID  int64
	Text    string
	Actions []formatter.Action
	Menu    [][]string
}

type answered struct {
	CallbackID string
	Text       string
}

// recorder is a Messenger that keeps everything it was asked to deliver
type recorder struct {
	mu       sync.Mutex
	messages []sent
	answers  []answered
	fail     bool
}

func (r *recorder) Send(_ context.Context, chatID int64, msg formatter.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("network down")
	}
	r.messages = append(r.messages, sent{ChatID: chatID, Text: msg.Text, Actions: msg.Actions})
	return nil
}

func (r *recorder) SendMenu(_ context.Context, chatID int64, text string, menu [][]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("network down")
	}
	r.messages = append(r.messages, sent{ChatID: chatID, Text: text, Menu: menu})
	return nil
}

func (r *recorder) AnswerCallback(_ context.Context, callbackID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("network down")
	}
	r.answers = append(r.answers, answered{CallbackID: callbackID, Text: text})
	return nil
}

func (r *recorder) Messages() []sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sent(nil), r.messages...)
}

func (r *recorder) Answers() []answered {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]answered(nil), r.answers...)
}

// failingStore is a preferences.Store whose backend is down
type failingStore struct{}

func (failingStore) Get(context.Context, int64) (models.Units, error) {
	return "", errors.New("db down")
}

func (failingStore) Set(context.Context, int64, models.Units) error {
	return errors.New("db down")
}
