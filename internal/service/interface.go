package service

import (
	"context"

	"github.com/vzahanych/weather-display/internal/weather"
)

// WeatherService fetches current conditions and the daily forecast as one
// report. Both calls succeed or the whole fetch fails with weather.ErrNetwork.
type WeatherService interface {
	FetchByCity(ctx context.Context, city string) (*weather.Report, error)
	FetchByCoordinates(ctx context.Context, lat, lon float64) (*weather.Report, error)
	Name() string
}
