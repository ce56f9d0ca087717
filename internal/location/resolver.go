package location

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrPermissionDenied = errors.New("location permission denied")

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// PermissionGate asks for foreground location access.
type PermissionGate interface {
	RequestForegroundPermission(ctx context.Context) (bool, error)
}

type Positioner interface {
	CurrentPosition(ctx context.Context) (Coordinates, error)
}

// Resolver only consults its positioner once the gate grants access.
// There is no retry and no fallback position.
type Resolver struct {
	gate       PermissionGate
	positioner Positioner
	logger     *zap.Logger
}

func NewResolver(gate PermissionGate, positioner Positioner, logger *zap.Logger) *Resolver {
	return &Resolver{
		gate:       gate,
		positioner: positioner,
		logger:     logger,
	}
}

func (r *Resolver) Resolve(ctx context.Context) (Coordinates, error) {
	granted, err := r.gate.RequestForegroundPermission(ctx)
	if err != nil {
		return Coordinates{}, fmt.Errorf("request location permission: %w", err)
	}
	if !granted {
		r.logger.Info("Location permission refused")
		return Coordinates{}, ErrPermissionDenied
	}

	coords, err := r.positioner.CurrentPosition(ctx)
	if err != nil {
		return Coordinates{}, fmt.Errorf("current position: %w", err)
	}

	r.logger.Debug("Location resolved",
		zap.Float64("lat", coords.Latitude),
		zap.Float64("lon", coords.Longitude))

	return coords, nil
}

// StaticGate answers every permission request with the configured grant.
type StaticGate bool

func (g StaticGate) RequestForegroundPermission(context.Context) (bool, error) {
	return bool(g), nil
}

type FixedPositioner Coordinates

func (p FixedPositioner) CurrentPosition(context.Context) (Coordinates, error) {
	return Coordinates(p), nil
}
