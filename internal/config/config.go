package config

import (
	"sync/atomic"
)

var configValue atomic.Value

func GetConfig() *Config {
	return configValue.Load().(*Config)
}

func SetConfig(cfg *Config) {
	configValue.Store(cfg)
}

type Config struct {
	Version     string          `mapstructure:"version"`
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Weather     WeatherConfig   `mapstructure:"weather"`
	Location    LocationConfig  `mapstructure:"location"`
	Display     DisplayConfig   `mapstructure:"display"`
	Refresh     RefreshConfig   `mapstructure:"refresh"`
	Logging     LoggingConfig   `mapstructure:"logging"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string `mapstructure:"host"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	IdleTimeout  int    `mapstructure:"idle_timeout"`
}

// WeatherConfig describes the OpenWeather endpoint. The API key has no
// default and must come from the environment, .env or a config file.
type WeatherConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	APIKey  string        `mapstructure:"api_key" validate:"required"`
	Timeout int           `mapstructure:"timeout" validate:"min=1"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MaxFailures uint32 `mapstructure:"max_failures"`
	OpenTimeout int    `mapstructure:"open_timeout"`
}

type LocationConfig struct {
	PermissionGranted bool    `mapstructure:"permission_granted"`
	Source            string  `mapstructure:"source" validate:"oneof=fixed ip"`
	Latitude          float64 `mapstructure:"latitude" validate:"min=-90,max=90"`
	Longitude         float64 `mapstructure:"longitude" validate:"min=-180,max=180"`
	LookupURL         string  `mapstructure:"lookup_url" validate:"required_if=Source ip"`
}

type DisplayConfig struct {
	UseCelsius bool `mapstructure:"use_celsius"`
}

type RefreshConfig struct {
	Schedule string `mapstructure:"schedule" validate:"required"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `mapstructure:"output_path"`
}

type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Version:     "1.0.0",
		Environment: "development",
		Server: ServerConfig{
			Port:         8080,
			Host:         "0.0.0.0",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  60,
		},
		Weather: WeatherConfig{
			BaseURL: "https://api.openweathermap.org/data/2.5",
			APIKey:  "",
			Timeout: 10,
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				OpenTimeout: 30,
			},
		},
		Location: LocationConfig{
			PermissionGranted: false,
			Source:            "ip",
			LookupURL:         "http://ip-api.com/json",
		},
		Display: DisplayConfig{
			UseCelsius: true,
		},
		Refresh: RefreshConfig{
			Schedule: "@every 10m",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "",
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Endpoint: "tempo:4317",
		},
	}
}
