package metrics

import (
	"math"

	"github.com/san-kum/netsens/internal/dynamo"
)

// Residual tracks max |dy/dt| at the most recently observed state.
type Residual struct {
	name string
	sys  dynamo.System
	last float64
	peak float64
}

func NewResidual(sys dynamo.System) *Residual {
	return &Residual{name: "residual", sys: sys}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(x dynamo.State, t float64) {
	r.last = r.sys.Derive(x, t).MaxAbs()
	r.peak = math.Max(r.peak, r.last)
}

// Value is the residual at the last observation.
func (r *Residual) Value() float64 { return r.last }

// Peak is the largest residual seen during the run.
func (r *Residual) Peak() float64 { return r.peak }

func (r *Residual) Reset() {
	r.last = 0
	r.peak = 0
}

// Settling reports the last time at which the residual was above threshold,
// i.e. how long the network took to come to rest. It is 0 for a run that
// started at rest.
type Settling struct {
	name      string
	sys       dynamo.System
	threshold float64
	settled   float64
}

func NewSettling(sys dynamo.System, threshold float64) *Settling {
	return &Settling{name: "settling_time", sys: sys, threshold: threshold}
}

func (s *Settling) Name() string { return s.name }

func (s *Settling) Observe(x dynamo.State, t float64) {
	if s.sys.Derive(x, t).MaxAbs() > s.threshold {
		s.settled = t
	}
}

func (s *Settling) Value() float64 { return s.settled }

func (s *Settling) Reset() { s.settled = 0 }
