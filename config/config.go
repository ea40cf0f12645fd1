package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"
)

// Config represents the application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	OpenWeather OpenWeatherConfig `mapstructure:"openweather"`
	Bot         BotConfig         `mapstructure:"bot"`
	Storage     StorageConfig     `mapstructure:"storage"`
	API         APIConfig         `mapstructure:"api"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
}

type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // long polling timeout, seconds
	Debug       bool   `mapstructure:"debug"`
}

type OpenWeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Lang    string        `mapstructure:"lang"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type BotConfig struct {
	Workers   int     `mapstructure:"workers"`
	RateLimit float64 `mapstructure:"rate_limit"` // events per second per user, 0 disables
	Burst     int     `mapstructure:"burst"`
}

type StorageConfig struct {
	// SQLitePath enables durable preferences. Empty keeps them in memory.
	SQLitePath string `mapstructure:"sqlite_path"`
}

type APIConfig struct {
	Port int `mapstructure:"port"` // 0 disables the ops server
}

// env names that don't follow the SECTION_KEY convention
var envAliases = map[string][]string{
	"telegram.token":      {"TELEGRAM_BOT_TOKEN", "TELEGRAM_TOKEN"},
	"openweather.api_key": {"OWM_API_KEY", "OPENWEATHER_API_KEY"},
	"storage.sqlite_path": {"PREFERENCES_SQLITE_PATH"},
	"app.log_level":       {"LOG_LEVEL"},
	"app.env":             {"APP_ENV"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weather-bot")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)

	v.SetDefault("openweather.api_key", "")
	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.lang", "ru")
	v.SetDefault("openweather.timeout", 10*time.Second)

	v.SetDefault("bot.workers", 4)
	v.SetDefault("bot.rate_limit", 1.0)
	v.SetDefault("bot.burst", 5)

	v.SetDefault("storage.sqlite_path", "")
	v.SetDefault("api.port", 0)
}

// Read loads config.yaml (if any) and the environment without validating.
// Environment variables win over the file: OPENWEATHER_LANG overrides
// openweather.lang and so on.
func Read() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.OpenWeather.BaseURL = strings.TrimRight(cfg.OpenWeather.BaseURL, "/")

	return &cfg, nil
}

// Load reads and validates the configuration. A missing secret is an error.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields the bot cannot start without
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram bot token is required (TELEGRAM_BOT_TOKEN)")
	}
	if c.OpenWeather.APIKey == "" {
		return errors.New("OpenWeatherMap API key is required (OWM_API_KEY)")
	}
	if c.OpenWeather.BaseURL == "" {
		return errors.New("OpenWeatherMap base URL must not be empty")
	}
	if _, err := language.Parse(c.OpenWeather.Lang); err != nil {
		return fmt.Errorf("bad openweather.lang %q: %w", c.OpenWeather.Lang, err)
	}
	if c.OpenWeather.Timeout <= 0 {
		return errors.New("openweather.timeout must be positive")
	}
	if c.Bot.Workers <= 0 {
		return errors.New("bot.workers must be positive")
	}
	if c.Bot.RateLimit < 0 {
		return errors.New("bot.rate_limit must not be negative")
	}
	if c.Bot.RateLimit > 0 && c.Bot.Burst <= 0 {
		return errors.New("bot.burst must be positive when rate limiting is enabled")
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d out of range", c.API.Port)
	}
	return nil
}
