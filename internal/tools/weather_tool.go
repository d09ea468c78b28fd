// In file: internal/tools/weather_tool.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// --- Weather Tool Implementation ---

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherTool fetches weather from Open-Meteo (free, no API key). A lookup is
// two-stage: resolve the place name to coordinates, then fetch either current
// conditions or the daily forecast for one date.
type WeatherTool struct {
	geocodeURL  string
	forecastURL string
	client      *lookupClient
}

// Statically verify that WeatherTool implements the WeatherLookup interface.
var _ WeatherLookup = (*WeatherTool)(nil)

// NewWeatherTool creates a WeatherTool against the public Open-Meteo endpoints.
func NewWeatherTool() *WeatherTool {
	return NewWeatherToolWithEndpoints(defaultGeocodeURL, defaultForecastURL)
}

// NewWeatherToolWithEndpoints points the tool at other endpoints (tests, mirrors).
func NewWeatherToolWithEndpoints(geocodeURL, forecastURL string) *WeatherTool {
	return &WeatherTool{
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
		client:      newLookupClient(10 * time.Second),
	}
}

func weatherDefinition() Tool {
	return NewFunctionTool(
		NameGetWeather,
		"Get weather for a city. For current conditions call with location only. "+
			"If the user asks about a specific day (e.g., exam day), pass on_date in YYYY-MM-DD.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"location": {
					Type:        "string",
					Description: "A real city name, e.g., 'Haifa, Israel'. Never a placeholder like 'here'.",
				},
				"on_date": {
					Type:        "string",
					Description: "Optional date in YYYY-MM-DD for a daily forecast.",
				},
			},
			Required: []string{"location"},
		},
	)
}

// place is a geocoded location.
type place struct {
	Lat, Lon float64
	Name     string
	Country  string
}

func (p place) label() string {
	if p.Country == "" {
		return p.Name
	}
	return p.Name + ", " + p.Country
}

// Weather resolves the location and returns current conditions, or the
// forecast for args.OnDate when set. Location-not-found, forecast-unavailable
// and service failures come back as distinct *ToolError kinds.
func (wt *WeatherTool) Weather(ctx context.Context, args WeatherArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}

	p, err := wt.geocode(ctx, args.Location)
	if err != nil {
		return "", err
	}
	if args.OnDate != "" {
		return wt.dailyForecast(ctx, p, args.OnDate)
	}
	return wt.currentWeather(ctx, p)
}

func (wt *WeatherTool) geocode(ctx context.Context, location string) (place, error) {
	var resp struct {
		Results []struct {
			Name      string   `json:"name"`
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
			Country   string   `json:"country"`
		} `json:"results"`
	}
	params := url.Values{}
	params.Set("name", location)
	params.Set("count", "1")
	params.Set("language", "en")
	params.Set("format", "json")

	if err := wt.client.getJSON(ctx, wt.geocodeURL, params, &resp); err != nil {
		return place{}, serviceErrorf("Error connecting to geocoding service: %v", err)
	}
	if len(resp.Results) == 0 {
		return place{}, newToolError(ErrLocationNotFound,
			"Error: Location '%s' not found. Try a more specific name (e.g., 'Haifa, Israel').", location)
	}

	top := resp.Results[0]
	if top.Latitude == nil || top.Longitude == nil {
		return place{}, serviceErrorf("Error parsing geocoding response: missing coordinates")
	}
	name := top.Name
	if name == "" {
		name = location
	}
	return place{Lat: *top.Latitude, Lon: *top.Longitude, Name: name, Country: top.Country}, nil
}

func (wt *WeatherTool) currentWeather(ctx context.Context, p place) (string, error) {
	var resp struct {
		CurrentWeather *struct {
			Temperature *float64 `json:"temperature"`
			WindSpeed   *float64 `json:"windspeed"`
			WeatherCode *int     `json:"weathercode"`
			Time        string   `json:"time"`
		} `json:"current_weather"`
	}
	params := coordinates(p)
	params.Set("current_weather", "true")
	params.Set("timezone", "auto")

	if err := wt.client.getJSON(ctx, wt.forecastURL, params, &resp); err != nil {
		return "", serviceErrorf("Error connecting to weather service: %v", err)
	}
	cw := resp.CurrentWeather
	if cw == nil {
		return "", serviceErrorf("Error: Weather service returned no current weather.")
	}

	code := "n/a"
	if cw.WeatherCode != nil {
		code = strconv.Itoa(*cw.WeatherCode)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current weather in %s:\n", p.label())
	fmt.Fprintf(&b, "- Temperature: %s°C\n", formatReading(cw.Temperature))
	fmt.Fprintf(&b, "- Wind: %s km/h\n", formatReading(cw.WindSpeed))
	fmt.Fprintf(&b, "- Weather code: %s\n", code)
	fmt.Fprintf(&b, "- Time: %s", cw.Time)
	return b.String(), nil
}

func (wt *WeatherTool) dailyForecast(ctx context.Context, p place, onDate string) (string, error) {
	var resp struct {
		Daily struct {
			Time        []string   `json:"time"`
			TempMax     []*float64 `json:"temperature_2m_max"`
			TempMin     []*float64 `json:"temperature_2m_min"`
			PrecipProb  []*float64 `json:"precipitation_probability_max"`
			WindSpeedMx []*float64 `json:"wind_speed_10m_max"`
		} `json:"daily"`
	}
	params := coordinates(p)
	params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,wind_speed_10m_max")
	params.Set("timezone", "auto")

	if err := wt.client.getJSON(ctx, wt.forecastURL, params, &resp); err != nil {
		return "", serviceErrorf("Error connecting to weather service: %v", err)
	}
	days := resp.Daily.Time
	if len(days) == 0 {
		return "", serviceErrorf("Error: Weather service returned no daily forecast.")
	}

	idx := -1
	for i, d := range days {
		if d == onDate {
			idx = i
			break
		}
	}
	if idx < 0 {
		return "", newToolError(ErrForecastUnavailable,
			"Forecast not available for %s.\nAvailable forecast range: %s to %s.\nTry again closer to the date.",
			onDate, days[0], days[len(days)-1])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Forecast for %s on %s:\n", p.label(), onDate)
	fmt.Fprintf(&b, "- Temperature: %s°C to %s°C\n", formatReading(at(resp.Daily.TempMin, idx)), formatReading(at(resp.Daily.TempMax, idx)))
	fmt.Fprintf(&b, "- Max precipitation probability: %s%%\n", formatReading(at(resp.Daily.PrecipProb, idx)))
	fmt.Fprintf(&b, "- Max wind: %s km/h", formatReading(at(resp.Daily.WindSpeedMx, idx)))
	return b.String(), nil
}

// LocationResolved reports whether a weather error still means the place
// itself was found (the date was the problem, not the city).
func LocationResolved(err error) bool {
	return err == nil || errors.Is(err, ErrForecastUnavailable)
}

func coordinates(p place) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	return params
}

func at(values []*float64, i int) *float64 {
	if i < 0 || i >= len(values) {
		return nil
	}
	return values[i]
}

func formatReading(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
