package presentation

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/vzahanych/weather-display/internal/state"
)

type CurrentView struct {
	Location    string  `json:"location"`
	Temperature int     `json:"temperature"`
	Description string  `json:"description"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        Icon    `json:"icon"`
}

type DayView struct {
	Timestamp   int64  `json:"dt"`
	Weekday     string `json:"weekday"`
	Icon        Icon   `json:"icon"`
	Temperature int    `json:"temperature"`
}

// View is everything a screen needs to draw one frame.
type View struct {
	Status     string       `json:"status"`
	Loading    bool         `json:"loading"`
	UseCelsius bool         `json:"use_celsius"`
	Unit       string       `json:"unit"`
	Background Gradient     `json:"background"`
	Current    *CurrentView `json:"current,omitempty"`
	Forecast   []DayView    `json:"forecast,omitempty"`
	Error      string       `json:"error,omitempty"`
}

func Render(s state.State) View {
	return RenderIn(s, time.Local)
}

// RenderIn formats forecast weekdays in loc.
func RenderIn(s state.State, loc *time.Location) View {
	fahrenheit := !s.UseCelsius

	v := View{
		Status:     s.Status.String(),
		Loading:    s.Status == state.StatusLoading,
		UseCelsius: s.UseCelsius,
		Unit:       "°C",
		Background: GradientDefault,
		Error:      s.Err,
	}
	if fahrenheit {
		v.Unit = "°F"
	}

	if s.Report == nil {
		return v
	}

	snap := s.Report.Snapshot
	v.Background = BackgroundGradientFor(snap.ConditionCode)
	v.Current = &CurrentView{
		Location:    snap.LocationName,
		Temperature: ConvertTemperature(snap.TemperatureCelsius, fahrenheit),
		Description: snap.Description,
		Humidity:    snap.HumidityPercent,
		WindSpeed:   snap.WindSpeedMetersPerSecond,
		Icon:        IconFor(snap.ConditionCode),
	}

	v.Forecast = make([]DayView, 0, len(s.Report.Forecast))
	for _, entry := range s.Report.Forecast {
		v.Forecast = append(v.Forecast, DayView{
			Timestamp:   entry.TimestampUnixSeconds,
			Weekday:     time.Unix(entry.TimestampUnixSeconds, 0).In(loc).Format("Mon"),
			Icon:        IconFor(entry.ConditionCode),
			Temperature: ConvertTemperature(entry.TemperatureCelsius, fahrenheit),
		})
	}

	return v
}

// WriteText prints v the way a terminal user reads it.
func WriteText(w io.Writer, v View) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	location := "Loading..."
	if v.Current != nil {
		location = v.Current.Location
	}
	fmt.Fprintf(tw, "%s\t%s\n", location, v.Unit)

	if v.Error != "" {
		fmt.Fprintf(tw, "Error:\t%s\n", v.Error)
	}

	if c := v.Current; c != nil {
		fmt.Fprintf(tw, "%d°\t%s\t%s\n", c.Temperature, c.Description, c.Icon)
		fmt.Fprintf(tw, "Humidity\t%s%%\n", strconv.FormatFloat(c.Humidity, 'f', -1, 64))
		fmt.Fprintf(tw, "Wind\t%s m/s\n", strconv.FormatFloat(c.WindSpeed, 'f', -1, 64))
	}

	if len(v.Forecast) > 0 {
		fmt.Fprintf(tw, "\nNext %d Days\n", len(v.Forecast))
		for _, day := range v.Forecast {
			fmt.Fprintf(tw, "%s\t%s\t%d°\n", day.Weekday, day.Icon, day.Temperature)
		}
	}

	return tw.Flush()
}
