package report

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	downColor = drawing.Color{R: 214, G: 69, B: 65, A: 255}
	upColor   = drawing.Color{R: 46, G: 160, B: 67, A: 255}
)

// BarChartPNG renders one bar per successful entry, in entry order, with
// knockdowns that lower the phenotype in red and those raising it in green.
func BarChartPNG(w io.Writer, title string, entries []Entry) error {
	bars := make([]chart.Value, 0, len(entries))
	lo, hi := 0.0, 0.0
	for _, e := range entries {
		if e.Status == StatusFailed {
			continue
		}
		color := upColor
		if e.Delta < 0 {
			color = downColor
		}
		bars = append(bars, chart.Value{
			Label: e.Species,
			Value: e.Delta,
			Style: chart.Style{FillColor: color, StrokeColor: color, StrokeWidth: 1},
		})
		lo = math.Min(lo, e.Delta)
		hi = math.Max(hi, e.Delta)
	}
	if len(bars) == 0 {
		return fmt.Errorf("no successful scenarios to chart")
	}
	if hi-lo < 1e-9 {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := 0.05 * (hi - lo)

	graph := chart.BarChart{
		Title:        title,
		Width:        max(480, 60*len(bars)+160),
		Height:       480,
		BarWidth:     40,
		UseBaseValue: true,
		BaseValue:    0,
		Background:   chart.Style{Padding: chart.Box{Top: 40, Bottom: 20}},
		XAxis:        chart.Style{FontSize: 9, TextRotationDegrees: 45},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 10},
			Range: &chart.ContinuousRange{Min: lo - pad, Max: hi + pad},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}
