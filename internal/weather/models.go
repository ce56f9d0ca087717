package weather

import "errors"

// ErrNetwork covers every failed or malformed exchange with the provider.
// Callers do not get to tell "city not found" apart from "network down".
var ErrNetwork = errors.New("weather network error")

// DailyStride turns the provider's 3-hour forecast list into one entry per day.
const DailyStride = 8

type Snapshot struct {
	LocationName             string  `json:"location_name"`
	TemperatureCelsius       float64 `json:"temperature_celsius"`
	ConditionCode            string  `json:"condition_code"`
	Description              string  `json:"description"`
	HumidityPercent          float64 `json:"humidity_percent"`
	WindSpeedMetersPerSecond float64 `json:"wind_speed_mps"`
}

type ForecastEntry struct {
	TimestampUnixSeconds int64   `json:"dt"`
	TemperatureCelsius   float64 `json:"temperature_celsius"`
	ConditionCode        string  `json:"condition_code"`
}

// Report is the result of one paired fetch: current conditions plus the
// downsampled forecast. It is never built from a half-finished exchange.
type Report struct {
	Snapshot Snapshot        `json:"snapshot"`
	Forecast []ForecastEntry `json:"forecast"`
}

// Downsample keeps entries at indices 0, stride, 2*stride, ...
// No date grouping is done; the provider list is assumed to start at the
// current 3-hour bucket.
func Downsample(entries []ForecastEntry, stride int) []ForecastEntry {
	if stride <= 0 {
		return entries
	}

	out := make([]ForecastEntry, 0, (len(entries)+stride-1)/stride)
	for i := 0; i < len(entries); i += stride {
		out = append(out, entries[i])
	}
	return out
}
