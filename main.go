package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"weather-bot/api"
	"weather-bot/bot"
	"weather-bot/config"
	"weather-bot/datasource"
	"weather-bot/logger"
	"weather-bot/preferences"
)

// queued events per worker before Dispatch blocks the poller
const queueSize = 64

type preferenceStore interface {
	preferences.Store
	api.Counter
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("app", cfg.App.Name)

	weather := datasource.NewOpenWeatherMapProvider(cfg.OpenWeather.APIKey,
		datasource.WithBaseURL(cfg.OpenWeather.BaseURL),
		datasource.WithLang(cfg.OpenWeather.Lang),
		datasource.WithTimeout(cfg.OpenWeather.Timeout),
		datasource.WithLogger(appLog),
	)

	var prefs preferenceStore = preferences.NewMemoryStore()
	if cfg.Storage.SQLitePath != "" {
		store, err := preferences.NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			appLog.Errorf("failed to open preference store: %v", err)
			log.Fatal(err)
		}
		defer store.Close()
		prefs = store
		appLog.Infof("unit preferences stored in %s", cfg.Storage.SQLitePath)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		appLog.Errorf("failed to connect to Telegram: %v", err)
		log.Fatal(err)
	}
	botAPI.Debug = cfg.Telegram.Debug
	appLog.Infof("authorized as @%s", botAPI.Self.UserName)

	tg := bot.NewTelegram(botAPI, cfg.Telegram.PollTimeout, appLog)
	router := bot.NewRouter(weather, prefs, tg,
		bot.WithThrottle(bot.NewThrottle(cfg.Bot.RateLimit, cfg.Bot.Burst)),
		bot.WithRouterLogger(appLog),
	)
	dispatcher := bot.NewDispatcher(router, cfg.Bot.Workers, queueSize)

	// Handlers outlive the poller so queued events finish after a signal
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	dispatcher.Start(workCtx)

	var server *api.Server
	if cfg.API.Port > 0 {
		server = api.NewServer(router.Stats(), prefs, cfg.API.Port, appLog)
		go func() {
			if err := server.Start(); err != nil {
				appLog.Errorf("API server stopped: %v", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tg.Run(ctx, dispatcher.Dispatch); err != nil {
		appLog.Errorf("polling failed: %v", err)
	}

	appLog.Info("shutting down")
	dispatcher.Stop()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.Warnf("API server shutdown: %v", err)
		}
		cancel()
	}

	appLog.Info("shutdown complete")
}
