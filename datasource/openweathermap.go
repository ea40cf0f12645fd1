package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"weather-bot/logger"
	"weather-bot/models"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// The forecast endpoint returns 3-hour steps, so every 8th entry is
	// roughly one day apart.
	forecastStep = 8
	forecastDays = 3

	forecastTimeLayout = "2006-01-02 15:04:05"
)

// OpenWeatherMapProvider implements both WeatherProvider and ForecastSource interfaces
type OpenWeatherMapProvider struct {
	apiKey     string
	baseURL    string
	lang       string
	tag        language.Tag
	httpClient *http.Client
	logger     logger.Logger
}

// Option customizes an OpenWeatherMapProvider
type Option func(*OpenWeatherMapProvider)

// WithBaseURL points the provider at another API root (tests, proxies)
func WithBaseURL(baseURL string) Option {
	return func(p *OpenWeatherMapProvider) { p.baseURL = baseURL }
}

// WithLang sets the "lang" query parameter and the capitalisation rules
// applied to descriptions
func WithLang(lang string) Option {
	return func(p *OpenWeatherMapProvider) { p.lang = lang }
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(p *OpenWeatherMapProvider) { p.httpClient.Timeout = timeout }
}

// WithLogger attaches a logger
func WithLogger(l logger.Logger) Option {
	return func(p *OpenWeatherMapProvider) { p.logger = l }
}

// NewOpenWeatherMapProvider creates a new OpenWeatherMap provider
func NewOpenWeatherMapProvider(apiKey string, opts ...Option) *OpenWeatherMapProvider {
	p := &OpenWeatherMapProvider{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		lang:    "ru",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}

	tag, err := language.Parse(p.lang)
	if err != nil {
		tag = language.Und
	}
	p.tag = tag
	p.logger = p.logger.WithField("component", "openweathermap")

	return p
}

// Name returns the provider name
func (p *OpenWeatherMapProvider) Name() string {
	return "OpenWeatherMap"
}

// currentResponse is the subset of /weather we use
type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// forecastResponse is the subset of /forecast we use
type forecastResponse struct {
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	List []struct {
		DtTxt string `json:"dt_txt"`
		Main  struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
	} `json:"list"`
}

// Current fetches current weather for a city
func (p *OpenWeatherMapProvider) Current(ctx context.Context, city string, units models.Units) (models.WeatherRecord, error) {
	var response currentResponse
	if err := p.get(ctx, "weather", city, units, &response); err != nil {
		return models.WeatherRecord{}, err
	}

	description := ""
	if len(response.Weather) > 0 {
		description = response.Weather[0].Description
	}

	name := response.Name
	if name == "" {
		name = city
	}

	return models.WeatherRecord{
		City:        name,
		Temperature: int(response.Main.Temp),
		Units:       units,
		WindSpeed:   response.Wind.Speed,
		Description: p.capitalize(description),
	}, nil
}

// Forecast fetches the 5-day/3-hour series and samples one entry per day
// for the first three days
func (p *OpenWeatherMapProvider) Forecast(ctx context.Context, city string, units models.Units) (models.Forecast, error) {
	var response forecastResponse
	if err := p.get(ctx, "forecast", city, units, &response); err != nil {
		return models.Forecast{}, err
	}

	name := response.City.Name
	if name == "" {
		name = city
	}

	forecast := models.Forecast{
		City:    name,
		Units:   units,
		Entries: make([]models.ForecastEntry, 0, forecastDays),
	}

	for _, i := range SampleIndices(len(response.List)) {
		item := response.List[i]

		date, err := time.Parse(forecastTimeLayout, item.DtTxt)
		if err != nil {
			return models.Forecast{}, &ProviderError{
				Provider:   p.Name(),
				StatusCode: http.StatusOK,
				Err:        fmt.Errorf("bad dt_txt %q: %w", item.DtTxt, err),
			}
		}

		description := ""
		if len(item.Weather) > 0 {
			description = item.Weather[0].Description
		}

		forecast.Entries = append(forecast.Entries, models.ForecastEntry{
			Date:        date,
			Temperature: int(item.Main.Temp),
			Description: p.capitalize(description),
		})
	}

	return forecast, nil
}

// SampleIndices returns the positions picked from a series of n 3-hour
// steps: 0, 8, 16, capped at the series length.
func SampleIndices(n int) []int {
	indices := make([]int, 0, forecastDays)
	for i := 0; i < n && len(indices) < forecastDays; i += forecastStep {
		indices = append(indices, i)
	}
	return indices
}

// get performs one GET against endpoint and decodes a 200 body into out.
// 404 maps to ErrLocationNotFound; everything else to *ProviderError.
func (p *OpenWeatherMapProvider) get(ctx context.Context, endpoint, city string, units models.Units, out interface{}) error {
	params := url.Values{}
	params.Add("q", city)
	params.Add("appid", p.apiKey)
	params.Add("units", units.APIValue())
	params.Add("lang", p.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("failed to create request: %w", err)}
	}

	p.logger.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"city":     city,
		"units":    units.APIValue(),
	}).Debug("requesting OpenWeatherMap")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &ProviderError{Provider: p.Name(), Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %q: %w", endpoint, city, ErrLocationNotFound)
	case resp.StatusCode != http.StatusOK:
		return &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode, Err: errors.New(apiMessage(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ProviderError{Provider: p.Name(), StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	return nil
}

// apiMessage extracts {"message": ...} from an error body, falling back to the raw text
func apiMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

// capitalize upper-cases the first letter only, leaving the rest alone.
// Casers are stateful, so each call gets its own.
func (p *OpenWeatherMapProvider) capitalize(s string) string {
	if s == "" {
		return s
	}
	_, size := utf8.DecodeRuneInString(s)
	return cases.Upper(p.tag).String(s[:size]) + s[size:]
}

// Verify that the provider implements the required interfaces
var (
	_ WeatherProvider = (*OpenWeatherMapProvider)(nil)
	_ ForecastSource  = (*OpenWeatherMapProvider)(nil)
	_ Client          = (*OpenWeatherMapProvider)(nil)
)
