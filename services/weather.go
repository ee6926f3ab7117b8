package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// WeatherSnapshot is the coarse weather input the engine works with.
type WeatherSnapshot struct {
	TemperatureC float64 `json:"temperature"`
	Condition    string  `json:"condition"` // clear, clouds, rain, snow
}

// DefaultWeather is used when the weather provider is unavailable: a mild
// clear day, so generation degrades instead of failing.
func DefaultWeather() WeatherSnapshot {
	return WeatherSnapshot{TemperatureC: 18, Condition: "clear"}
}

// WeatherBucket collapses a snapshot into the coarse range used for cache
// fingerprinting and season filtering. Raw floats would kill the hit rate.
func WeatherBucket(w WeatherSnapshot) string {
	var temp string
	switch {
	case w.TemperatureC < 0:
		temp = "freezing"
	case w.TemperatureC < 10:
		temp = "cold"
	case w.TemperatureC < 19:
		temp = "mild"
	case w.TemperatureC < 27:
		temp = "warm"
	default:
		temp = "hot"
	}
	cond := w.Condition
	switch cond {
	case "clear", "clouds", "rain", "snow":
	default:
		cond = "clear"
	}
	return temp + "/" + cond
}

// SeasonsForWeather maps a snapshot to the wardrobe season tags that are
// acceptable under strict filtering. Untagged items always pass.
func SeasonsForWeather(w WeatherSnapshot) []string {
	switch {
	case w.TemperatureC < 10:
		return []string{"winter", "fall"}
	case w.TemperatureC < 19:
		return []string{"spring", "fall"}
	case w.TemperatureC < 27:
		return []string{"spring", "summer"}
	default:
		return []string{"summer"}
	}
}

type WeatherProvider interface {
	CurrentWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// OpenMeteoService fetches current conditions from the Open-Meteo API.
type OpenMeteoService struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewOpenMeteoService() *OpenMeteoService {
	return &OpenMeteoService{
		BaseURL:    GetEnv("WEATHER_API_URL", "https://api.open-meteo.com"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type openMeteoCurrent struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

func (s *OpenMeteoService) CurrentWeather(ctx context.Context, lat, lon float64) (WeatherSnapshot, error) {
	url := fmt.Sprintf("%s/v1/forecast?latitude=%.4f&longitude=%.4f&current=temperature_2m,weather_code", s.BaseURL, lat, lon)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WeatherSnapshot{}, err
	}
	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return WeatherSnapshot{}, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return WeatherSnapshot{}, fmt.Errorf("weather provider returned %d", resp.StatusCode)
	}
	var out openMeteoCurrent
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return WeatherSnapshot{}, fmt.Errorf("decode weather response: %w", err)
	}
	return WeatherSnapshot{
		TemperatureC: out.Current.Temperature,
		Condition:    conditionForCode(out.Current.WeatherCode),
	}, nil
}

// WMO weather interpretation codes, coarsely.
func conditionForCode(code int) string {
	switch {
	case code == 0:
		return "clear"
	case code <= 48:
		return "clouds"
	case code <= 67 || (code >= 80 && code <= 82) || code >= 95:
		return "rain"
	case code <= 86:
		return "snow"
	default:
		return "clouds"
	}
}
