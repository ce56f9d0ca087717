package presentation

import (
	"math"
	"strings"
)

type Icon string

const (
	IconSunny        Icon = "sunny"
	IconMoon         Icon = "moon"
	IconPartlySunny  Icon = "partly-sunny"
	IconCloudyNight  Icon = "cloudy-night"
	IconCloud        Icon = "cloud"
	IconRainy        Icon = "rainy"
	IconThunderstorm Icon = "thunderstorm"
	IconSnow         Icon = "snow"
	IconWater        Icon = "water"
)

var icons = map[string]Icon{
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

// IconFor maps a provider condition code to an icon. Unknown codes get IconCloud.
func IconFor(code string) Icon {
	if icon, ok := icons[code]; ok {
		return icon
	}
	return IconCloud
}

// ConvertTemperature rounds half up, so -0.5 becomes 0 and 0.5 becomes 1.
func ConvertTemperature(celsius float64, useFahrenheit bool) int {
	value := celsius
	if useFahrenheit {
		value = celsius*9/5 + 32
	}
	return int(math.Floor(value + 0.5))
}

// Gradient is a top-to-bottom background colour pair.
type Gradient [2]string

var (
	GradientClearDay     = Gradient{"#4A90E2", "#87CEEB"}
	GradientClearNight   = Gradient{"#172B4D", "#304878"}
	GradientClouds       = Gradient{"#4A90E2", "#B6B6B6"}
	GradientRain         = Gradient{"#4682B4", "#778899"}
	GradientThunderstorm = Gradient{"#2F4F4F", "#483D8B"}
	GradientSnow         = Gradient{"#B0C4DE", "#E6E6FA"}
	GradientMist         = Gradient{"#B8B8B8", "#A9A9A9"}
	GradientDefault      = Gradient{"#4A90E2", "#357ABD"}
)

// Checked in order; the first matching prefix wins.
var gradients = []struct {
	prefixes []string
	gradient Gradient
}{
	{[]string{"01d"}, GradientClearDay},
	{[]string{"01n"}, GradientClearNight},
	{[]string{"02", "03", "04"}, GradientClouds},
	{[]string{"09", "10"}, GradientRain},
	{[]string{"11"}, GradientThunderstorm},
	{[]string{"13"}, GradientSnow},
	{[]string{"50"}, GradientMist},
}

func BackgroundGradientFor(code string) Gradient {
	for _, g := range gradients {
		for _, prefix := range g.prefixes {
			if strings.HasPrefix(code, prefix) {
				return g.gradient
			}
		}
	}
	return GradientDefault
}
