package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/network"
)

// DosePoint is the steady state reached with one species held at a fraction
// of its ymax.
type DosePoint struct {
	Level   float64
	Values  dynamo.State
	Stable  bool
	Drift   float64
	Err     error
	Warning string
}

// Levels returns steps evenly spaced values from 1 down to 0.
func Levels(steps int) []float64 {
	if steps <= 1 {
		steps = 2
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = 1 - float64(i)/float64(steps-1)
	}
	return out
}

// DoseResponse sweeps ymax[species] over levels and records the steady state
// at each. Each level starts from the system's y0. A failed level is
// recorded in its point and the sweep continues; only context cancellation
// stops it early.
func DoseResponse(
	ctx context.Context,
	sys *network.System,
	integ dynamo.Integrator,
	species int,
	levels []float64,
	cfg dynamo.Config,
	tol float64,
) ([]DosePoint, error) {
	if species < 0 || species >= sys.StateDim() {
		return nil, fmt.Errorf("species %d out of range [0, %d)", species, sys.StateDim())
	}

	base := sys.Params()
	cfg.KeepTrajectory = false
	results := make([]DosePoint, 0, len(levels))

	for _, level := range levels {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		pt := DosePoint{Level: level}

		perturbed, err := sys.WithParams(base.ScaleYmax(species, level))
		if err != nil {
			return nil, err
		}
		sim := dynamo.New(perturbed, integ)
		st, err := SteadyState(ctx, sim, perturbed.Initial(), cfg, tol)
		if err != nil {
			pt.Err = err
			results = append(results, pt)
			continue
		}
		pt.Values = st.Final
		pt.Stable = st.Stable
		pt.Drift = st.Drift
		pt.Warning = st.Warning()
		results = append(results, pt)
	}

	return results, nil
}

// Series extracts one species' value across dose points, skipping failures.
func Series(points []DosePoint, species int) (levels, values []float64) {
	for _, p := range points {
		if p.Err != nil || species >= len(p.Values) {
			continue
		}
		levels = append(levels, p.Level)
		values = append(values, p.Values[species])
	}
	return levels, values
}
