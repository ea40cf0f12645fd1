package models

import (
	"time"
)

// ForecastEntry represents a single sampled point of a multi-day forecast
type ForecastEntry struct {
	Date        time.Time `json:"date"`        // time this sample is for, as reported by the provider
	Temperature int       `json:"temperature"` // truncated toward zero
	Description string    `json:"description"` // short text description
}

// Forecast is a short ordered outlook for a city
type Forecast struct {
	City    string          `json:"city"`
	Units   Units           `json:"units"`
	Entries []ForecastEntry `json:"entries"`
}
