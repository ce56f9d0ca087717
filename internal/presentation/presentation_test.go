package presentation

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weather-display/internal/state"
	"github.com/vzahanych/weather-display/internal/weather"
)

func TestIconFor(t *testing.T) {
	tests := map[string]Icon{
		"01d": IconSunny,
		"01n": IconMoon,
		"02d": IconPartlySunny,
		"02n": IconCloudyNight,
		"03d": IconCloud,
		"03n": IconCloud,
		"04d": IconCloud,
		"04n": IconCloud,
		"09d": IconRainy,
		"09n": IconRainy,
		"10d": IconRainy,
		"10n": IconRainy,
		"11d": IconThunderstorm,
		"11n": IconThunderstorm,
		"13d": IconSnow,
		"13n": IconSnow,
		"50d": IconWater,
		"50n": IconWater,
	}

	for code, want := range tests {
		assert.Equal(t, want, IconFor(code), "code %s", code)
	}
}

func TestIconFor_UnknownDefaultsToCloud(t *testing.T) {
	for _, code := range []string{"", "99d", "01", "01D", "sunny"} {
		assert.Equal(t, IconCloud, IconFor(code), "code %q", code)
	}
}

func TestConvertTemperature(t *testing.T) {
	assert.Equal(t, 20, ConvertTemperature(20, false))
	assert.Equal(t, 32, ConvertTemperature(0, true))
	assert.Equal(t, 212, ConvertTemperature(100, true))
	assert.Equal(t, -40, ConvertTemperature(-40, true))
	assert.Equal(t, 22, ConvertTemperature(21.5, false))
	assert.Equal(t, 21, ConvertTemperature(21.49, false))
	assert.Equal(t, 0, ConvertTemperature(-0.5, false))
	assert.Equal(t, 71, ConvertTemperature(21.4, true))
}

func TestBackgroundGradientFor(t *testing.T) {
	tests := []struct {
		code string
		want Gradient
	}{
		{"01d", GradientClearDay},
		{"01n", GradientClearNight},
		{"02d", GradientClouds},
		{"03n", GradientClouds},
		{"04d", GradientClouds},
		{"09n", GradientRain},
		{"10d", GradientRain},
		{"11d", GradientThunderstorm},
		{"13n", GradientSnow},
		{"50d", GradientMist},
		{"", GradientDefault},
		{"77x", GradientDefault},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, BackgroundGradientFor(tt.code), "code %q", tt.code)
	}

	assert.Equal(t, Gradient{"#4A90E2", "#87CEEB"}, BackgroundGradientFor("01d"))
	assert.Equal(t, Gradient{"#B0C4DE", "#E6E6FA"}, BackgroundGradientFor("13n"))
}

// 2023-11-13 is a Monday.
var monday = time.Date(2023, 11, 13, 12, 0, 0, 0, time.UTC).Unix()

func sampleState(useCelsius bool) state.State {
	return state.State{
		Status:     state.StatusSuccess,
		Token:      1,
		UseCelsius: useCelsius,
		Report: &weather.Report{
			Snapshot: weather.Snapshot{
				LocationName:             "Kyiv",
				TemperatureCelsius:       21.4,
				ConditionCode:            "10n",
				Description:              "light rain",
				HumidityPercent:          63,
				WindSpeedMetersPerSecond: 3.6,
			},
			Forecast: []weather.ForecastEntry{
				{TimestampUnixSeconds: monday, TemperatureCelsius: 0, ConditionCode: "13d"},
				{TimestampUnixSeconds: monday + 86400, TemperatureCelsius: 100, ConditionCode: "01d"},
			},
		},
	}
}

func TestRenderIn_Celsius(t *testing.T) {
	v := RenderIn(sampleState(true), time.UTC)

	assert.Equal(t, "success", v.Status)
	assert.False(t, v.Loading)
	assert.Equal(t, "°C", v.Unit)
	assert.Equal(t, GradientRain, v.Background)

	require.NotNil(t, v.Current)
	assert.Equal(t, CurrentView{
		Location:    "Kyiv",
		Temperature: 21,
		Description: "light rain",
		Humidity:    63,
		WindSpeed:   3.6,
		Icon:        IconRainy,
	}, *v.Current)

	assert.Equal(t, []DayView{
		{Timestamp: monday, Weekday: "Mon", Icon: IconSnow, Temperature: 0},
		{Timestamp: monday + 86400, Weekday: "Tue", Icon: IconSunny, Temperature: 100},
	}, v.Forecast)
}

func TestRenderIn_Fahrenheit(t *testing.T) {
	v := RenderIn(sampleState(false), time.UTC)

	assert.Equal(t, "°F", v.Unit)
	assert.Equal(t, 71, v.Current.Temperature)
	assert.Equal(t, 32, v.Forecast[0].Temperature)
	assert.Equal(t, 212, v.Forecast[1].Temperature)
}

func TestRenderIn_NoReport(t *testing.T) {
	v := RenderIn(state.State{Status: state.StatusError, UseCelsius: true, Err: "Permission to access location was denied"}, time.UTC)

	assert.Nil(t, v.Current)
	assert.Empty(t, v.Forecast)
	assert.Equal(t, GradientDefault, v.Background)
	assert.Equal(t, "Permission to access location was denied", v.Error)
}

func TestRenderIn_LoadingKeepsPreviousReport(t *testing.T) {
	s := sampleState(true)
	s.Status = state.StatusLoading

	v := RenderIn(s, time.UTC)
	assert.True(t, v.Loading)
	assert.NotNil(t, v.Current)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, RenderIn(sampleState(true), time.UTC)))

	out := buf.String()
	assert.Contains(t, out, "Kyiv")
	assert.Contains(t, out, "21°")
	assert.Contains(t, out, "light rain")
	assert.Contains(t, out, "63%")
	assert.Contains(t, out, "3.6 m/s")
	assert.Contains(t, out, "Next 2 Days")
	assert.Contains(t, out, "Tue")
}

func TestWriteText_ErrorOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, View{Unit: "°C", Error: "Failed to fetch weather data"}))

	assert.Contains(t, buf.String(), "Loading...")
	assert.Contains(t, buf.String(), "Failed to fetch weather data")
}
