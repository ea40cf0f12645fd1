package datasource

import (
	"context"

	"weather-bot/models"
)

// WeatherProvider is an interface for services that can fetch current weather data
type WeatherProvider interface {
	// Current fetches current weather for a city in the given units
	Current(ctx context.Context, city string, units models.Units) (models.WeatherRecord, error)

	// Name returns the provider's name
	Name() string
}

// ForecastSource is an interface for services that can fetch a short multi-day outlook
type ForecastSource interface {
	// Forecast fetches a sampled forecast for a city in the given units
	Forecast(ctx context.Context, city string, units models.Units) (models.Forecast, error)

	// Name returns the source's name
	Name() string
}

// Client is what the bot needs from a weather backend
type Client interface {
	WeatherProvider
	ForecastSource
}
