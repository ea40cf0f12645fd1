// Package formatter renders weather data and bot notices as chat text.
// Everything here is pure: no I/O, no clocks.
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"weather-bot/models"
)

// Callback payloads carried by inline buttons
const (
	ActionForecastPrefix = "forecast_"
	ActionUnits          = "units"
	ActionUnitC          = "unit_c"
	ActionUnitF          = "unit_f"

	// Telegram rejects callback data longer than this many bytes
	maxCallbackData = 64
)

// Main menu labels. They come back to the bot as plain text.
const (
	LabelWeather  = "🌤 Погода"
	LabelForecast = "📅 Прогноз"
	LabelSettings = "⚙️ Настройки"
	LabelHelp     = "❓ Помощь"
)

// Mood annotations appended to current weather
const (
	MoodCold     = "🥶 Холодно, одевайтесь теплее!"
	MoodPleasant = "😎 Тепло и приятно!"
	MoodMild     = "🙂 Прохладно, но терпимо."
)

// Static replies
const (
	Greeting = "Привет! Отправь мне название города, и я покажу погоду.\n" +
		"Прогноз на 3 дня: /forecast <город>. Единицы измерения: /units."

	Help = "Я показываю погоду через OpenWeatherMap.\n\n" +
		"• Напишите название города, например: Москва\n" +
		"• /weather <город> — текущая погода\n" +
		"• /forecast <город> — прогноз на 3 дня\n" +
		"• /units — выбрать °C или °F\n" +
		"• /help — эта справка"

	AskCity           = "Отправьте название города."
	ForecastUsage     = "Укажите город: /forecast Москва"
	WeatherUsage      = "Укажите город: /weather Москва"
	UnitsPrompt       = "Выберите единицы измерения:"
	InvalidCity       = "Название города может содержать только буквы, пробелы и дефисы (от 2 до 50 символов)."
	CityNotFound      = "Город не найден. Попробуйте еще раз."
	ProviderFailure   = "Произошла ошибка. Попробуйте позже."
	SettingsFailure   = "Не удалось сохранить настройки. Попробуйте позже."
	UnknownCommand    = "Неизвестная команда. Наберите /help."
	UnknownAction     = "Неизвестное действие. Наберите /help."
	TooManyRequests   = "Слишком много запросов. Подождите немного."
	unitsSavedCelsius = "Готово! Температура будет показываться в градусах Цельсия (°C)."
	unitsSavedFahr    = "Готово! Температура будет показываться в градусах Фаренгейта (°F)."
)

// Action is an inline button: a label shown to the user and the payload
// that comes back when it's pressed
type Action struct {
	Label string
	Data  string
}

// Message is a rendered reply with optional inline actions
type Message struct {
	Text    string
	Actions []Action
}

// MainMenu returns the reply keyboard rows shown after /start
func MainMenu() [][]string {
	return [][]string{
		{LabelWeather, LabelForecast},
		{LabelSettings, LabelHelp},
	}
}

// Mood picks the annotation for a temperature. The thresholds are applied
// to the number as requested, so a Fahrenheit reading is compared against
// the same 0 and 20 as a Celsius one.
func Mood(temperature int) string {
	switch {
	case temperature < 0:
		return MoodCold
	case temperature > 20:
		return MoodPleasant
	default:
		return MoodMild
	}
}

// Weather renders current conditions and offers a forecast and a unit switch
func Weather(rec models.WeatherRecord) Message {
	units := rec.Units
	if !units.Valid() {
		units = models.DefaultUnits
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🌆 Город: %s\n", rec.City)
	fmt.Fprintf(&b, "🌡 Температура: %d%s\n", rec.Temperature, units.Symbol())
	fmt.Fprintf(&b, "💨 Ветер: %s %s\n", strconv.FormatFloat(rec.WindSpeed, 'f', -1, 64), units.WindUnit())
	fmt.Fprintf(&b, "☁️ Описание: %s\n", rec.Description)
	b.WriteString(Mood(rec.Temperature))

	var actions []Action
	if data, ok := ForecastAction(rec.City); ok {
		actions = append(actions, Action{Label: "📅 Прогноз на 3 дня", Data: data})
	}
	actions = append(actions, Action{Label: "🌡 Сменить единицы", Data: ActionUnits})

	return Message{Text: b.String(), Actions: actions}
}

// Forecast renders a header and one line per entry
func Forecast(f models.Forecast) Message {
	units := f.Units
	if !units.Valid() {
		units = models.DefaultUnits
	}

	lines := make([]string, 0, len(f.Entries)+1)
	lines = append(lines, fmt.Sprintf("📅 Прогноз для %s:", f.City))
	for _, e := range f.Entries {
		lines = append(lines, ForecastLine(e, units))
	}
	return Message{Text: strings.Join(lines, "\n")}
}

// ForecastLine renders a single forecast entry
func ForecastLine(e models.ForecastEntry, units models.Units) string {
	return fmt.Sprintf("• %s: %d%s, %s", e.Date.Format("02.01"), e.Temperature, units.Symbol(), e.Description)
}

// ForecastAction builds the callback payload for a city's forecast button.
// ok is false when the payload would not fit into a Telegram callback.
func ForecastAction(city string) (data string, ok bool) {
	data = ActionForecastPrefix + city
	if city == "" || len(data) > maxCallbackData {
		return "", false
	}
	return data, true
}

// UnitsChoice is the prompt with one button per unit system
func UnitsChoice() Message {
	return Message{
		Text: UnitsPrompt,
		Actions: []Action{
			{Label: "°C Цельсий", Data: ActionUnitC},
			{Label: "°F Фаренгейт", Data: ActionUnitF},
		},
	}
}

// UnitsSaved confirms a unit change
func UnitsSaved(u models.Units) string {
	if u == models.Fahrenheit {
		return unitsSavedFahr
	}
	return unitsSavedCelsius
}
