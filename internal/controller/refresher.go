package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher re-runs one fetch on a cron schedule: a fixed city search when
// city is set, otherwise the current-location load.
type Refresher struct {
	controller *Controller
	schedule   string
	city       string
	logger     *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	running sync.WaitGroup
}

func NewRefresher(controller *Controller, schedule, city string) *Refresher {
	return &Refresher{
		controller: controller,
		schedule:   schedule,
		city:       city,
		logger:     controller.logger.With(zap.String("schedule", schedule), zap.String("city", city)),
	}
}

// Start runs one refresh immediately and then on every schedule tick until
// ctx is done or Stop is called.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cron != nil {
		return fmt.Errorf("refresher already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc(r.schedule, func() { r.runOnce(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("invalid refresh schedule %q: %w", r.schedule, err)
	}

	r.cron = c
	r.cancel = cancel

	r.logger.Info("Refresher started")

	r.running.Add(1)
	go func() {
		defer r.running.Done()
		r.runOnce(ctx)
	}()
	c.Start()

	return nil
}

func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	c, cancel := r.cron, r.cancel
	r.cron, r.cancel = nil, nil
	r.mu.Unlock()

	if c == nil {
		return nil
	}

	cancel()
	done := c.Stop()

	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}

	r.running.Wait()
	r.logger.Info("Refresher stopped")
	return nil
}

func (r *Refresher) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	var err error
	if r.city != "" {
		err = r.controller.Search(ctx, r.city)
	} else {
		err = r.controller.LoadCurrentLocation(ctx)
	}

	if err != nil {
		r.logger.Warn("Scheduled refresh failed", zap.Error(err))
		return
	}
	r.logger.Debug("Scheduled refresh completed")
}
