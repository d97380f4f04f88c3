package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/netsens/internal/dynamo"
)

// PlotDeltas draws phenotype deltas in the given entry order. Failed
// entries are skipped. The caption lists the plotted species left to right.
func PlotDeltas(entries []Entry, width, height int) string {
	var data []float64
	var names []string
	for _, e := range entries {
		if e.Status == StatusFailed {
			continue
		}
		data = append(data, e.Delta)
		names = append(names, e.Species)
	}
	if len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("delta: "+strings.Join(names, " ")))
}

// PlotTrajectory draws the named species of a kept trajectory.
func PlotTrajectory(res *dynamo.Result, names []string, species []int, width, height int) (string, error) {
	if res == nil || len(res.States) < 2 {
		return "", fmt.Errorf("trajectory not recorded")
	}
	series := make([][]float64, 0, len(species))
	labels := make([]string, 0, len(species))
	for _, i := range species {
		if i < 0 || i >= len(res.States[0]) {
			return "", fmt.Errorf("species %d out of range", i)
		}
		s := make([]float64, len(res.States))
		for k, x := range res.States {
			s[k] = x[i]
		}
		series = append(series, s)
		if i < len(names) {
			labels = append(labels, names[i])
		}
	}
	if len(series) == 0 {
		return "", fmt.Errorf("no species selected")
	}

	caption := fmt.Sprintf("%s over t=[0, %.4g]", strings.Join(labels, ", "), res.Times[len(res.Times)-1])
	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Cyan, asciigraph.Yellow, asciigraph.Magenta, asciigraph.Red}
	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	}
	if len(series) <= len(colors) {
		opts = append(opts, asciigraph.SeriesColors(colors[:len(series)]...))
	}
	return asciigraph.PlotMany(series, opts...), nil
}

// PlotSeries draws y against evenly spaced samples; used for dose curves.
func PlotSeries(y []float64, caption string, width, height int) string {
	clean := make([]float64, 0, len(y))
	for _, v := range y {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	if len(clean) == 1 {
		clean = append(clean, clean[0])
	}
	return asciigraph.Plot(clean,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption))
}
