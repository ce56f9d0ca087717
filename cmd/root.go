package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-display/internal/config"
	"github.com/vzahanych/weather-display/internal/controller"
	"github.com/vzahanych/weather-display/internal/location"
	"github.com/vzahanych/weather-display/internal/service"
	"github.com/vzahanych/weather-display/internal/state"
	"github.com/vzahanych/weather-display/pkg/logger"
	"github.com/vzahanych/weather-display/pkg/telemetry"
	"go.uber.org/zap"
)

var (
	log        *zap.Logger
	tele       *telemetry.Telemetry
	configPath string
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Weather display",
		Long: `Fetches current conditions and a five day forecast from OpenWeather and renders them
as a display: a terminal view for the city, locate and watch commands, or an HTTP and
websocket display server.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeServices(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to configuration file (default: ./config.yaml)")

	cmd.AddCommand(serverCmd())
	cmd.AddCommand(cityCmd())
	cmd.AddCommand(locateCmd())
	cmd.AddCommand(watchCmd())

	return cmd
}

func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			if log != nil {
				log.Info("Received shutdown signal", zap.String("signal", sig.String()))
			}
			cancel()
		case <-ctx.Done():
		}
	}()

	err := rootCmd().ExecuteContext(ctx)

	if log != nil {
		_ = log.Sync()
	}
	return err
}

func initializeServices(ctx context.Context) error {
	// 1. Load config: defaults, then config file, .env and environment
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 2. Set config
	// Having config in atomic allows changing it during runtime
	config.SetConfig(cfg)

	// 3. Initialize logger
	log, err = logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// 4. Telemetry is optional; a failure leaves tracing off
	tele, err = telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("Failed to initialize telemetry", zap.Error(err))
		tele = &telemetry.Telemetry{}
	}

	return nil
}

func shutdownTelemetry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tele.Shutdown(ctx); err != nil {
		log.Warn("Telemetry shutdown failed", zap.Error(err))
	}
}

// newController wires the provider client, the location resolver and the
// display store from the loaded config.
func newController(cfg *config.Config, useCelsius bool) (*controller.Controller, error) {
	weatherSvc, err := service.NewOpenWeatherServiceWithConfig(cfg.Weather, log, tele)
	if err != nil {
		return nil, err
	}

	var positioner location.Positioner
	switch cfg.Location.Source {
	case "fixed":
		positioner = location.FixedPositioner{
			Latitude:  cfg.Location.Latitude,
			Longitude: cfg.Location.Longitude,
		}
	default:
		positioner = location.NewIPPositioner(cfg.Location.LookupURL, time.Duration(cfg.Weather.Timeout)*time.Second)
	}

	resolver := location.NewResolver(location.StaticGate(cfg.Location.PermissionGranted), positioner, log)
	store := state.NewStore(useCelsius, log)

	return controller.New(weatherSvc, resolver, store, log, tele), nil
}
