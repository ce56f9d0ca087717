package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-display/internal/config"
	"github.com/vzahanych/weather-display/internal/controller"
	"github.com/vzahanych/weather-display/internal/presentation"
	"go.uber.org/zap"
)

func cityCmd() *cobra.Command {
	var fahrenheit bool

	cmd := &cobra.Command{
		Use:   "city <name>",
		Short: "Show the weather for a city",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			city := strings.Join(args, " ")
			return showOnce(cmd, fahrenheit, func(ctx context.Context, ctrl *controller.Controller) error {
				return ctrl.Search(ctx, city)
			})
		},
	}

	cmd.Flags().BoolVar(&fahrenheit, "fahrenheit", false, "show temperatures in °F")
	return cmd
}

func locateCmd() *cobra.Command {
	var fahrenheit bool

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Show the weather for the current location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showOnce(cmd, fahrenheit, func(ctx context.Context, ctrl *controller.Controller) error {
				return ctrl.LoadCurrentLocation(ctx)
			})
		},
	}

	cmd.Flags().BoolVar(&fahrenheit, "fahrenheit", false, "show temperatures in °F")
	return cmd
}

func watchCmd() *cobra.Command {
	var (
		fahrenheit bool
		city       string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep the display refreshed until interrupted",
		Long:  `Refreshes on refresh.schedule, by city when --city is given and by current location otherwise, and prints every display update.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, strings.TrimSpace(city), fahrenheit)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city to watch instead of the current location")
	cmd.Flags().BoolVar(&fahrenheit, "fahrenheit", false, "show temperatures in °F")
	return cmd
}

// showOnce runs one fetch and prints the resulting view. A failed fetch still
// prints the view, which carries the user-visible message.
func showOnce(cmd *cobra.Command, fahrenheit bool, fetch func(context.Context, *controller.Controller) error) error {
	cfg := config.GetConfig()
	defer shutdownTelemetry()

	ctrl, err := newController(cfg, useCelsius(cfg, fahrenheit))
	if err != nil {
		return err
	}

	fetchErr := fetch(cmd.Context(), ctrl)
	if fetchErr != nil {
		log.Debug("Fetch failed", zap.Error(fetchErr))
	}

	if err := presentation.WriteText(cmd.OutOrStdout(), presentation.Render(ctrl.State())); err != nil {
		return err
	}
	return fetchErr
}

func runWatch(cmd *cobra.Command, city string, fahrenheit bool) error {
	cfg := config.GetConfig()
	defer shutdownTelemetry()

	ctrl, err := newController(cfg, useCelsius(cfg, fahrenheit))
	if err != nil {
		return err
	}

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	refresher := controller.NewRefresher(ctrl, cfg.Refresh.Schedule, city)
	if err := refresher.Start(cmd.Context()); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := refresher.Stop(stopCtx); err != nil {
			log.Warn("Refresher did not stop in time", zap.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case s, ok := <-states:
			if !ok {
				return nil
			}
			if err := presentation.WriteText(out, presentation.Render(s)); err != nil {
				return err
			}
		}
	}
}

func useCelsius(cfg *config.Config, fahrenheit bool) bool {
	if fahrenheit {
		return false
	}
	return cfg.Display.UseCelsius
}
