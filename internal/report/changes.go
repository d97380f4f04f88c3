package report

import (
	"math"
	"sort"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/sweep"
)

// Change is one species' move under a single knockdown.
type Change struct {
	Index     int
	Species   string
	Baseline  float64
	Perturbed float64
	Delta     float64
}

// SpeciesChanges compares every species between two steady states, sorted
// by |delta| descending with ties by index.
func SpeciesChanges(names []string, baseline, perturbed dynamo.State) []Change {
	n := min(len(names), len(baseline), len(perturbed))
	out := make([]Change, n)
	for i := 0; i < n; i++ {
		out[i] = Change{
			Index:     i,
			Species:   names[i],
			Baseline:  baseline[i],
			Perturbed: perturbed[i],
			Delta:     perturbed[i] - baseline[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].Delta), math.Abs(out[j].Delta)
		if ai != aj {
			return ai > aj
		}
		return out[i].Index < out[j].Index
	})
	return out
}

// InfluenceMatrix returns m[k][i], the change in species i when scenario k
// is applied. Rows of failed scenarios are NaN.
func InfluenceMatrix(baseline dynamo.State, scenarios []sweep.Scenario) [][]float64 {
	out := make([][]float64, len(scenarios))
	for k, s := range scenarios {
		row := make([]float64, len(baseline))
		if s.Failed() || len(s.Perturbed) != len(baseline) {
			for i := range row {
				row[i] = math.NaN()
			}
		} else {
			for i := range row {
				row[i] = s.Perturbed[i] - baseline[i]
			}
		}
		out[k] = row
	}
	return out
}
