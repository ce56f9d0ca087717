package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-display/internal/config"
	"github.com/vzahanych/weather-display/internal/weather"
	"github.com/vzahanych/weather-display/pkg/telemetry"
)

const (
	currentEndpoint  = "/weather"
	forecastEndpoint = "/forecast"
	unitsMetric      = "metric"
)

var ErrMissingAPIKey = errors.New("openweather api key is not configured")

// statusError is a non-2xx reply from the provider.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed with status: %d", e.code)
}

// providerHealthy reports whether err leaves the provider's health intact.
// A 4xx is a bad query, e.g. an unknown city, and must not trip the breaker.
func providerHealthy(err error) bool {
	var serr *statusError
	if errors.As(err, &serr) {
		return serr.code >= 400 && serr.code < 500
	}
	return err == nil
}

type OpenWeatherService struct {
	client  *resty.Client
	apiKey  string
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Icon        string `json:"icon"`
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []struct {
			Icon string `json:"icon"`
		} `json:"weather"`
	} `json:"list"`
}

func NewOpenWeatherServiceWithConfig(cfg config.WeatherConfig, logger *zap.Logger, tele *telemetry.Telemetry) (*OpenWeatherService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("OpenWeather response",
			zap.String("path", resp.Request.RawRequest.URL.Path),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("latency", resp.Time()),
			zap.Int("body_size", len(resp.Body())))
		return nil
	})

	s := &OpenWeatherService{
		client: client,
		apiKey: cfg.APIKey,
		logger: logger,
		tele:   tele,
	}

	if cfg.Breaker.Enabled {
		s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         "openweather",
			MaxRequests:  1,
			IsSuccessful: providerHealthy,
			Timeout:      time.Duration(cfg.Breaker.OpenTimeout) * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= cfg.Breaker.MaxFailures
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Info("Circuit breaker state changed",
					zap.String("client", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}

	return s, nil
}

func (s *OpenWeatherService) Name() string {
	return "openweather"
}

func (s *OpenWeatherService) FetchByCity(ctx context.Context, city string) (*weather.Report, error) {
	return s.fetch(ctx, "openweather.FetchByCity", map[string]string{"q": city},
		attribute.String("city", city))
}

func (s *OpenWeatherService) FetchByCoordinates(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	return s.fetch(ctx, "openweather.FetchByCoordinates", map[string]string{
		"lat": fmt.Sprintf("%.6f", lat),
		"lon": fmt.Sprintf("%.6f", lon),
	}, attribute.Float64("lat", lat), attribute.Float64("lon", lon))
}

// fetch runs the current-conditions call to completion before the forecast
// call starts. Any failure discards whatever was already decoded.
func (s *OpenWeatherService) fetch(ctx context.Context, spanName string, query map[string]string, attrs ...attribute.KeyValue) (*weather.Report, error) {
	ctx, span := s.tele.GetTracer().Start(ctx, spanName)
	defer span.End()
	span.SetAttributes(attrs...)

	query["units"] = unitsMetric
	query["appid"] = s.apiKey

	var current currentResponse
	if err := s.get(ctx, currentEndpoint, query, &current); err != nil {
		return nil, s.fail(ctx, span, "current conditions", err)
	}
	if len(current.Weather) == 0 {
		return nil, s.fail(ctx, span, "current conditions", errors.New("response has no weather entry"))
	}

	var forecast forecastResponse
	if err := s.get(ctx, forecastEndpoint, query, &forecast); err != nil {
		return nil, s.fail(ctx, span, "forecast", err)
	}

	entries := make([]weather.ForecastEntry, 0, len(forecast.List))
	for i, item := range forecast.List {
		if len(item.Weather) == 0 {
			return nil, s.fail(ctx, span, "forecast", fmt.Errorf("entry %d has no weather entry", i))
		}
		entries = append(entries, weather.ForecastEntry{
			TimestampUnixSeconds: item.Dt,
			TemperatureCelsius:   item.Main.Temp,
			ConditionCode:        item.Weather[0].Icon,
		})
	}

	report := &weather.Report{
		Snapshot: weather.Snapshot{
			LocationName:             current.Name,
			TemperatureCelsius:       current.Main.Temp,
			ConditionCode:            current.Weather[0].Icon,
			Description:              current.Weather[0].Description,
			HumidityPercent:          current.Main.Humidity,
			WindSpeedMetersPerSecond: current.Wind.Speed,
		},
		Forecast: weather.Downsample(entries, weather.DailyStride),
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.String("location", report.Snapshot.LocationName),
		attribute.Int("forecast_days", len(report.Forecast)),
	)

	s.logger.Debug("OpenWeather report fetched",
		zap.String("location", report.Snapshot.LocationName),
		zap.Int("forecast_entries", len(entries)),
		zap.Int("forecast_days", len(report.Forecast)))

	return report, nil
}

func (s *OpenWeatherService) get(ctx context.Context, path string, query map[string]string, out interface{}) error {
	call := func() (interface{}, error) {
		resp, err := s.client.R().
			SetContext(ctx).
			SetQueryParams(query).
			Get(path)
		if err != nil {
			// url.Error carries the full URL, appid included.
			var uerr *url.Error
			if errors.As(err, &uerr) {
				return nil, fmt.Errorf("%s %s: %w", uerr.Op, path, uerr.Err)
			}
			return nil, errors.New(strings.ReplaceAll(err.Error(), s.apiKey, "REDACTED"))
		}
		if !resp.IsSuccess() {
			return nil, &statusError{code: resp.StatusCode()}
		}
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		return nil, nil
	}

	if s.breaker == nil {
		_, err := call()
		return err
	}

	_, err := s.breaker.Execute(call)
	return err
}

func (s *OpenWeatherService) fail(ctx context.Context, span trace.Span, stage string, err error) error {
	span.SetAttributes(attribute.Bool("success", false), attribute.String("stage", stage))
	span.SetStatus(codes.Error, err.Error())
	s.tele.RecordError(ctx, err, map[string]interface{}{"stage": stage})

	s.logger.Warn("OpenWeather fetch failed",
		zap.String("stage", stage),
		zap.Error(err))

	return fmt.Errorf("%w: %s: %v", weather.ErrNetwork, stage, err)
}
