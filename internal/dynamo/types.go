package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MaxAbs is the infinity norm.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		m = math.Max(m, math.Abs(v))
	}
	return m
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt             float64
	Duration       float64
	Tolerance      float64
	MaxDt          float64
	MinDt          float64
	MaxSteps       int
	Adaptive       bool
	ValidateState  bool
	KeepTrajectory bool
}

// DefaultHorizon is long enough for the networks this tool targets to
// settle; it is a policy constant, not derived per model.
const DefaultHorizon = 40.0

func DefaultConfig() Config {
	return Config{
		Dt:             0.01,
		Duration:       DefaultHorizon,
		Tolerance:      1e-6,
		MaxDt:          1.0,
		MinDt:          1e-10,
		MaxSteps:       200000,
		Adaptive:       true,
		ValidateState:  true,
		KeepTrajectory: true,
	}
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}

// Final returns the last recorded state.
func (r *Result) Final() State {
	if r == nil || len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
