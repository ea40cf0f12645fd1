package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"weather-bot/config"
	"weather-bot/datasource"
	"weather-bot/formatter"
	"weather-bot/logger"
	"weather-bot/models"
)

func main() {
	city := flag.String("city", "", "City to look up")
	unitsFlag := flag.String("units", string(models.DefaultUnits), "Temperature units: C or F")
	forecast := flag.Bool("forecast", false, "Print the 3-day forecast instead of current weather")
	flag.Parse()

	if *city == "" {
		fmt.Println("Usage: weather-lookup -city <name> [-units C|F] [-forecast]")
		os.Exit(2)
	}

	units, err := models.ParseUnits(*unitsFlag)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Read()
	if err != nil {
		fmt.Printf("Error reading configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.OpenWeather.APIKey == "" {
		fmt.Println("Error: OWM_API_KEY is not set")
		os.Exit(1)
	}

	provider := datasource.NewOpenWeatherMapProvider(cfg.OpenWeather.APIKey,
		datasource.WithBaseURL(cfg.OpenWeather.BaseURL),
		datasource.WithLang(cfg.OpenWeather.Lang),
		datasource.WithTimeout(cfg.OpenWeather.Timeout),
		datasource.WithLogger(logger.New(cfg.App.LogLevel, cfg.App.Env)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpenWeather.Timeout)
	defer cancel()

	var msg formatter.Message
	if *forecast {
		f, err := provider.Forecast(ctx, *city, units)
		if err != nil {
			fail(err)
		}
		msg = formatter.Forecast(f)
	} else {
		rec, err := provider.Current(ctx, *city, units)
		if err != nil {
			fail(err)
		}
		msg = formatter.Weather(rec)
	}

	fmt.Println(msg.Text)
}

func fail(err error) {
	if errors.Is(err, datasource.ErrLocationNotFound) {
		fmt.Println(formatter.CityNotFound)
		os.Exit(1)
	}
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
