package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/netsens/internal/dynamo"
)

// DefaultStabilityTol bounds the drift allowed between the steady state and
// one further horizon of integration.
const DefaultStabilityTol = 1e-4

type Steady struct {
	Final    dynamo.State
	Residual float64
	Drift    float64
	Stable   bool
	// Result is the first integration; its trajectory is kept only when
	// cfg.KeepTrajectory is set.
	Result *dynamo.Result
}

// Warning describes an unstable steady state, or "" when stable.
func (s *Steady) Warning() string {
	if s.Stable {
		return ""
	}
	return fmt.Sprintf("not at steady state: drift %.3g over one more horizon (residual %.3g)", s.Drift, s.Residual)
}

// SteadyState integrates from x0 to cfg.Duration and checks the last state
// by integrating one more horizon from it. Integration failure of either
// leg is returned as an error; an unsettled network is not an error.
func SteadyState(ctx context.Context, sim *dynamo.Simulator, x0 dynamo.State, cfg dynamo.Config, tol float64) (*Steady, error) {
	if tol <= 0 {
		tol = DefaultStabilityTol
	}

	res, err := sim.Run(ctx, x0, cfg)
	if err != nil {
		return nil, err
	}
	final := res.Final().Clone()

	check := cfg
	check.KeepTrajectory = false
	again, err := sim.Run(ctx, final, check)
	if err != nil {
		return nil, fmt.Errorf("stability check: %w", err)
	}

	drift := 0.0
	for i, v := range again.Final() {
		drift = math.Max(drift, math.Abs(v-final[i]))
	}

	return &Steady{
		Final:    final,
		Residual: sim.System().Derive(final, cfg.Duration).MaxAbs(),
		Drift:    drift,
		Stable:   drift <= tol,
		Result:   res,
	}, nil
}
