package controller

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-display/internal/location"
	"github.com/vzahanych/weather-display/internal/service"
	"github.com/vzahanych/weather-display/internal/state"
	"github.com/vzahanych/weather-display/pkg/telemetry"
)

// Messages shown to the user; each failure maps to exactly one of them.
const (
	MsgPermissionDenied = "Permission to access location was denied"
	MsgLocationFailed   = "Failed to fetch location weather"
	MsgSearchFailed     = "Failed to fetch weather data"
)

const (
	SourceLocation = "location"
	SourceSearch   = "search"
)

var ErrEmptyQuery = errors.New("city name is empty")

type LocationResolver interface {
	Resolve(ctx context.Context) (location.Coordinates, error)
}

// MetricsRecorder interface for recording fetch outcomes
type MetricsRecorder interface {
	RecordFetch(ctx context.Context, source string, success bool)
	RecordDiscarded(ctx context.Context, source string)
}

// Controller drives the display state. Every fetch cycle takes a fresh token
// from the store, so a slower earlier cycle can never overwrite a newer one.
type Controller struct {
	weather  service.WeatherService
	resolver LocationResolver
	store    *state.Store
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	metrics  MetricsRecorder
}

func New(weatherSvc service.WeatherService, resolver LocationResolver, store *state.Store, logger *zap.Logger, tele *telemetry.Telemetry) *Controller {
	return &Controller{
		weather:  weatherSvc,
		resolver: resolver,
		store:    store,
		logger:   logger,
		tele:     tele,
	}
}

// SetMetricsRecorder sets the metrics recorder for the controller
func (c *Controller) SetMetricsRecorder(metrics MetricsRecorder) {
	c.metrics = metrics
}

// LoadCurrentLocation resolves the device position and fetches its weather.
// A refused permission fails the cycle before any network call is made.
func (c *Controller) LoadCurrentLocation(ctx context.Context) error {
	ctx, span := c.tele.GetTracer().Start(ctx, "controller.LoadCurrentLocation")
	defer span.End()

	token := c.store.Begin()
	span.SetAttributes(attribute.Int64("token", int64(token)))
	log := c.logger.With(zap.Uint64("token", token), zap.String("source", SourceLocation))

	coords, err := c.resolver.Resolve(ctx)
	if err != nil {
		msg := MsgLocationFailed
		if errors.Is(err, location.ErrPermissionDenied) {
			msg = MsgPermissionDenied
		}
		log.Warn("Location unavailable", zap.Error(err))
		span.SetAttributes(attribute.Bool("success", false))
		c.finish(ctx, SourceLocation, state.FetchFailed{Token: token, Message: msg})
		return err
	}

	span.SetAttributes(
		attribute.Float64("lat", coords.Latitude),
		attribute.Float64("lon", coords.Longitude),
	)

	report, err := c.weather.FetchByCoordinates(ctx, coords.Latitude, coords.Longitude)
	if err != nil {
		log.Error("Failed to fetch location weather", zap.Error(err))
		span.SetAttributes(attribute.Bool("success", false))
		c.finish(ctx, SourceLocation, state.FetchFailed{Token: token, Message: MsgLocationFailed})
		return err
	}

	span.SetAttributes(attribute.Bool("success", true))
	log.Info("Location weather loaded", zap.String("location", report.Snapshot.LocationName))
	c.finish(ctx, SourceLocation, state.FetchSucceeded{Token: token, Report: report})
	return nil
}

// Search fetches the weather for a city. A blank name is rejected before a
// fetch cycle starts, so the current display is left alone.
func (c *Controller) Search(ctx context.Context, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return ErrEmptyQuery
	}

	ctx, span := c.tele.GetTracer().Start(ctx, "controller.Search")
	defer span.End()

	token := c.store.Begin()
	span.SetAttributes(
		attribute.Int64("token", int64(token)),
		attribute.String("city", city),
	)
	log := c.logger.With(zap.Uint64("token", token), zap.String("source", SourceSearch), zap.String("city", city))

	report, err := c.weather.FetchByCity(ctx, city)
	if err != nil {
		log.Error("Failed to fetch weather data", zap.Error(err))
		span.SetAttributes(attribute.Bool("success", false))
		c.finish(ctx, SourceSearch, state.FetchFailed{Token: token, Message: MsgSearchFailed})
		return err
	}

	span.SetAttributes(attribute.Bool("success", true))
	log.Info("City weather loaded", zap.String("location", report.Snapshot.LocationName))
	c.finish(ctx, SourceSearch, state.FetchSucceeded{Token: token, Report: report})
	return nil
}

func (c *Controller) ToggleUnits() state.State {
	c.store.Dispatch(state.UnitsToggled{})
	return c.store.Current()
}

func (c *Controller) State() state.State {
	return c.store.Current()
}

func (c *Controller) Subscribe() (<-chan state.State, func()) {
	return c.store.Subscribe()
}

func (c *Controller) finish(ctx context.Context, source string, a state.Action) {
	_, failed := a.(state.FetchFailed)
	if c.metrics != nil {
		c.metrics.RecordFetch(ctx, source, !failed)
	}

	if !c.store.Dispatch(a) {
		c.logger.Info("Discarded stale fetch result", zap.String("source", source))
		if c.metrics != nil {
			c.metrics.RecordDiscarded(ctx, source)
		}
	}
}
