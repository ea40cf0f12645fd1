package models

import (
	"fmt"
	"strings"
)

// Units is the temperature system a user wants to see
type Units string

const (
	Celsius    Units = "C"
	Fahrenheit Units = "F"
)

// DefaultUnits is used for users who never picked a unit system
const DefaultUnits = Celsius

// ParseUnits accepts "c", "f", "metric" and "imperial" in any case
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "metric":
		return Celsius, nil
	case "f", "imperial":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown units %q", s)
}

// Valid reports whether u is one of the supported unit systems
func (u Units) Valid() bool {
	return u == Celsius || u == Fahrenheit
}

// APIValue returns the value of the provider's "units" query parameter
func (u Units) APIValue() string {
	if u == Fahrenheit {
		return "imperial"
	}
	return "metric"
}

// Symbol returns the temperature suffix shown to users
func (u Units) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// WindUnit returns the label for wind speed in this unit system.
// The provider reports m/s for metric and miles/hour for imperial.
func (u Units) WindUnit() string {
	if u == Fahrenheit {
		return "миль/ч"
	}
	return "м/с"
}

// WeatherRecord is the current weather for a single city
type WeatherRecord struct {
	City        string  `json:"city"`
	Temperature int     `json:"temperature"` // truncated toward zero, in Units
	Units       Units   `json:"units"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"`
}
