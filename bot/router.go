package bot

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"weather-bot/datasource"
	"weather-bot/formatter"
	"weather-bot/logger"
	"weather-bot/models"
	"weather-bot/preferences"
)

// menu intents reachable from free text
type intent int

const (
	intentAskCity intent = iota + 1
	intentForecastUsage
	intentUnits
	intentHelp
)

// menuText maps lower-cased menu labels and their plain-word aliases to an intent
var menuText = map[string]intent{
	strings.ToLower(formatter.LabelWeather):  intentAskCity,
	strings.ToLower(formatter.LabelForecast): intentForecastUsage,
	strings.ToLower(formatter.LabelSettings): intentUnits,
	strings.ToLower(formatter.LabelHelp):     intentHelp,
	"погода":                                 intentAskCity,
	"прогноз":                                intentForecastUsage,
	"настройки":                              intentUnits,
	"settings":                               intentUnits,
	"помощь":                                 intentHelp,
	"help":                                   intentHelp,
}

// Router turns chat events into weather lookups and replies
type Router struct {
	weather  datasource.Client
	prefs    preferences.Store
	out      Messenger
	throttle *Throttle
	stats    *Stats
	logger   logger.Logger
}

// RouterOption customizes a Router
type RouterOption func(*Router)

// WithThrottle limits events per user; nil disables limiting
func WithThrottle(t *Throttle) RouterOption {
	return func(r *Router) { r.throttle = t }
}

// WithRouterLogger attaches a logger
func WithRouterLogger(l logger.Logger) RouterOption {
	return func(r *Router) { r.logger = l }
}

// NewRouter wires the router to its collaborators
func NewRouter(weather datasource.Client, prefs preferences.Store, out Messenger, opts ...RouterOption) *Router {
	r := &Router{
		weather: weather,
		prefs:   prefs,
		out:     out,
		stats:   &Stats{},
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithField("component", "router")
	return r
}

// Stats exposes the router's counters
func (r *Router) Stats() *Stats {
	return r.stats
}

// Handle processes a single event to completion. Failures are reported to
// the user and logged; nothing is returned to the caller.
func (r *Router) Handle(ctx context.Context, ev Event) {
	src := SourceOf(ev)
	log := r.logger.WithFields(map[string]interface{}{
		"event_id": uuid.NewString(),
		"kind":     ev.Kind(),
		"user_id":  src.UserID,
		"chat_id":  src.ChatID,
	})
	r.stats.events.Add(1)

	if !r.throttle.Allow(src.UserID) {
		r.stats.throttled.Add(1)
		log.Warn("throttled")
		if b, ok := ev.(ButtonPress); ok {
			r.answer(ctx, log, b.CallbackID, formatter.TooManyRequests)
			return
		}
		r.reply(ctx, log, src.ChatID, formatter.TooManyRequests)
		return
	}

	switch e := ev.(type) {
	case Command:
		r.stats.commands.Add(1)
		r.handleCommand(ctx, log, e)
	case Text:
		r.stats.texts.Add(1)
		r.handleText(ctx, log, e)
	case ButtonPress:
		r.stats.buttons.Add(1)
		r.handleButton(ctx, log, e)
	default:
		log.Warnf("unsupported event %T", ev)
	}
}

func (r *Router) handleCommand(ctx context.Context, log logger.Logger, c Command) {
	log = log.WithField("command", c.Name)
	log.Debug("command received")

	switch strings.ToLower(c.Name) {
	case "start":
		if err := r.out.SendMenu(ctx, c.ChatID, formatter.Greeting, formatter.MainMenu()); err != nil {
			r.sendFailed(log, err)
		}
	case "help":
		r.reply(ctx, log, c.ChatID, formatter.Help)
	case "units", "settings":
		r.send(ctx, log, c.ChatID, formatter.UnitsChoice())
	case "forecast":
		if strings.TrimSpace(c.Args) == "" {
			r.reply(ctx, log, c.ChatID, formatter.ForecastUsage)
			return
		}
		if city, ok := r.validate(ctx, log, c.ChatID, c.Args); ok {
			r.forecast(ctx, log, c.Source, city)
		}
	case "weather":
		if strings.TrimSpace(c.Args) == "" {
			r.reply(ctx, log, c.ChatID, formatter.WeatherUsage)
			return
		}
		if city, ok := r.validate(ctx, log, c.ChatID, c.Args); ok {
			r.current(ctx, log, c.Source, city)
		}
	default:
		r.reply(ctx, log, c.ChatID, formatter.UnknownCommand)
	}
}

func (r *Router) handleText(ctx context.Context, log logger.Logger, t Text) {
	if in, ok := menuText[strings.ToLower(strings.TrimSpace(t.Body))]; ok {
		switch in {
		case intentAskCity:
			r.reply(ctx, log, t.ChatID, formatter.AskCity)
		case intentForecastUsage:
			r.reply(ctx, log, t.ChatID, formatter.ForecastUsage)
		case intentUnits:
			r.send(ctx, log, t.ChatID, formatter.UnitsChoice())
		case intentHelp:
			r.reply(ctx, log, t.ChatID, formatter.Help)
		}
		return
	}

	if city, ok := r.validate(ctx, log, t.ChatID, t.Body); ok {
		r.current(ctx, log, t.Source, city)
	}
}

func (r *Router) handleButton(ctx context.Context, log logger.Logger, b ButtonPress) {
	log = log.WithField("data", b.Data)

	switch {
	case b.Data == formatter.ActionUnitC || b.Data == formatter.ActionUnitF:
		units := models.Celsius
		if b.Data == formatter.ActionUnitF {
			units = models.Fahrenheit
		}
		if err := r.prefs.Set(ctx, b.UserID, units); err != nil {
			log.Errorf("failed to save units: %v", err)
			r.answer(ctx, log, b.CallbackID, formatter.SettingsFailure)
			return
		}
		log.Infof("units set to %s", units)
		r.answer(ctx, log, b.CallbackID, "")
		r.reply(ctx, log, b.ChatID, formatter.UnitsSaved(units))

	case b.Data == formatter.ActionUnits:
		r.answer(ctx, log, b.CallbackID, "")
		r.send(ctx, log, b.ChatID, formatter.UnitsChoice())

	case strings.HasPrefix(b.Data, formatter.ActionForecastPrefix):
		r.answer(ctx, log, b.CallbackID, "")
		// the payload was built from a provider city name, so it skips the validator
		city := strings.TrimSpace(strings.TrimPrefix(b.Data, formatter.ActionForecastPrefix))
		if city == "" {
			r.reply(ctx, log, b.ChatID, formatter.ForecastUsage)
			return
		}
		r.forecast(ctx, log, b.Source, city)

	default:
		log.Warn("unknown button payload")
		r.answer(ctx, log, b.CallbackID, formatter.UnknownAction)
	}
}

// validate applies the city rule to raw user input and returns the trimmed
// city. Rejections are answered here and never reach the provider.
func (r *Router) validate(ctx context.Context, log logger.Logger, chatID int64, raw string) (string, bool) {
	city := strings.TrimSpace(raw)
	if !ValidCity(raw) || city == "" {
		r.stats.validationErrors.Add(1)
		log.Debugf("rejected city input %q", raw)
		r.reply(ctx, log, chatID, formatter.InvalidCity)
		return "", false
	}
	return city, true
}

func (r *Router) current(ctx context.Context, log logger.Logger, src Source, city string) {
	units := r.units(ctx, log, src.UserID)
	log = log.WithFields(map[string]interface{}{"city": city, "units": string(units)})

	r.stats.lookups.Add(1)
	rec, err := r.weather.Current(ctx, city, units)
	if err != nil {
		r.lookupFailed(ctx, log, src.ChatID, err)
		return
	}

	log.Info("current weather sent")
	r.send(ctx, log, src.ChatID, formatter.Weather(rec))
}

func (r *Router) forecast(ctx context.Context, log logger.Logger, src Source, city string) {
	units := r.units(ctx, log, src.UserID)
	log = log.WithFields(map[string]interface{}{"city": city, "units": string(units)})

	r.stats.lookups.Add(1)
	f, err := r.weather.Forecast(ctx, city, units)
	if err != nil {
		r.lookupFailed(ctx, log, src.ChatID, err)
		return
	}

	log.Infof("forecast sent (%d entries)", len(f.Entries))
	r.send(ctx, log, src.ChatID, formatter.Forecast(f))
}

// units reads the user's preference; a store failure falls back to the default
func (r *Router) units(ctx context.Context, log logger.Logger, userID int64) models.Units {
	u, err := r.prefs.Get(ctx, userID)
	if err != nil {
		log.Warnf("failed to read units, using default: %v", err)
		return models.DefaultUnits
	}
	return u
}

func (r *Router) lookupFailed(ctx context.Context, log logger.Logger, chatID int64, err error) {
	if errors.Is(err, datasource.ErrLocationNotFound) {
		r.stats.notFound.Add(1)
		log.Info("city not found")
		r.reply(ctx, log, chatID, formatter.CityNotFound)
		return
	}

	r.stats.providerErrors.Add(1)
	var perr *datasource.ProviderError
	if errors.As(err, &perr) {
		log.WithField("status", perr.StatusCode).Errorf("weather provider failed: %v", err)
	} else {
		log.Errorf("weather lookup failed: %v", err)
	}
	r.reply(ctx, log, chatID, formatter.ProviderFailure)
}

func (r *Router) reply(ctx context.Context, log logger.Logger, chatID int64, text string) {
	r.send(ctx, log, chatID, formatter.Message{Text: text})
}

func (r *Router) send(ctx context.Context, log logger.Logger, chatID int64, msg formatter.Message) {
	if err := r.out.Send(ctx, chatID, msg); err != nil {
		r.sendFailed(log, err)
	}
}

func (r *Router) answer(ctx context.Context, log logger.Logger, callbackID, text string) {
	if err := r.out.AnswerCallback(ctx, callbackID, text); err != nil {
		r.sendFailed(log, err)
	}
}

func (r *Router) sendFailed(log logger.Logger, err error) {
	r.stats.sendErrors.Add(1)
	log.Errorf("failed to deliver reply: %v", err)
}
