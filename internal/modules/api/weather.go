package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"fishbot/internal/core/domain/command"

	"github.com/rs/zerolog/log"
)

// weatherCodes maps WMO interpretation codes from Open-Meteo to text.
var weatherCodes = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "drizzle",
	55: "dense drizzle",
	61: "light rain",
	63: "rain",
	65: "heavy rain",
	66: "freezing rain",
	67: "heavy freezing rain",
	71: "light snow",
	73: "snow",
	75: "heavy snow",
	77: "snow grains",
	80: "light showers",
	81: "showers",
	82: "violent showers",
	85: "snow showers",
	86: "heavy snow showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with heavy hail",
}

// weather geocodes the city, then fetches current conditions. Open-Meteo
// needs no API key.
func (m *Module) weather(ctx context.Context, inv *command.Invocation, args string) error {
	city := strings.TrimSpace(args)
	if city == "" {
		return inv.Reply(ctx, "Usage: !weather <city>")
	}

	var geo struct {
		Results []struct {
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	geoURL := fmt.Sprintf("https://geocoding-api.open-meteo.com/v1/search?name=%s&count=1",
		url.QueryEscape(city))
	if err := m.getJSON(ctx, geoURL, &geo); err != nil {
		log.Error().Err(err).Str("city", city).Msg("geocoding failed")
		return inv.Reply(ctx, "Weather lookup failed, try again later!")
	}

	if len(geo.Results) == 0 {
		return inv.Reply(ctx, fmt.Sprintf("Couldn't find '%s'", city))
	}
	loc := geo.Results[0]

	var forecast struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			WindSpeed   float64 `json:"wind_speed_10m"`
			Humidity    int     `json:"relative_humidity_2m"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}

	fcURL := fmt.Sprintf(
		"https://api.open-meteo.com/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m",
		loc.Latitude, loc.Longitude)
	if err := m.getJSON(ctx, fcURL, &forecast); err != nil {
		log.Error().Err(err).Str("city", city).Msg("forecast failed")
		return inv.Reply(ctx, "Weather lookup failed, try again later!")
	}

	conditions, ok := weatherCodes[forecast.Current.WeatherCode]
	if !ok {
		conditions = "unknown conditions"
	}

	return inv.Reply(ctx, fmt.Sprintf("%s, %s: %.1f°C, %s, %d%% humidity, wind %.1f km/h",
		loc.Name, loc.Country, forecast.Current.Temperature, conditions,
		forecast.Current.Humidity, forecast.Current.WindSpeed))
}
