package sweep

import (
	"math"
	"time"

	"github.com/san-kum/netsens/internal/dynamo"
)

// Baseline is the steady state of the unperturbed network.
type Baseline struct {
	Values     dynamo.State
	Trajectory *dynamo.Result
	Residual   float64
	Drift      float64
	Stable     bool
	Warning    string
}

// Scenario is the outcome of knocking down one species. Perturbed is nil
// and Err is set when integration failed. Reaches is false when no
// reaction path leads from the species to the phenotype, so its delta is
// expected to be zero.
type Scenario struct {
	Index     int
	Species   string
	Reaches   bool
	Perturbed dynamo.State
	// Baseline and Phenotype are the phenotype species' activity before
	// and after the knockdown.
	Baseline  float64
	Phenotype float64
	Delta     float64
	Magnitude float64
	Err       error
	Drift     float64
	Residual  float64
	Warning   string
	Steps     int
	Elapsed   time.Duration
}

func (s Scenario) Failed() bool { return s.Err != nil }

// fail marks the scenario failed; a failed scenario has no delta.
func (s *Scenario) fail(err error) {
	s.Err = err
	s.Perturbed = nil
	s.Delta, s.Magnitude = math.NaN(), math.NaN()
}

// Changes returns perturbed minus baseline for every species.
func (s Scenario) Changes(base dynamo.State) dynamo.State {
	if s.Perturbed == nil {
		return nil
	}
	return s.Perturbed.Sub(base)
}
