package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	sys        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// System returns the system being integrated.
func (s *Simulator) System() System { return s.sys }

// Run integrates from x0 over [0, cfg.Duration]. The last recorded state is
// exactly at the horizon or an error is returned.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d entries, system has %d", ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}

	capHint := 2
	if cfg.KeepTrajectory && !cfg.Adaptive {
		capHint = int(math.Ceil(cfg.Duration/cfg.Dt)) + 1
	}
	result := &Result{
		States:  make([]State, 0, capHint),
		Times:   make([]float64, 0, capHint),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt
	if cfg.Adaptive && dt > cfg.MaxDt {
		dt = cfg.MaxDt
	}
	eps := 1e-12 * math.Max(1, cfg.Duration)

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	s.observe(x, t)

	attempts := 0
	for cfg.Duration-t > eps {
		select {
		case <-ctx.Done():
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: fmt.Errorf("%w: %w", ErrContextCanceled, ctx.Err())}
		default:
		}

		if attempts >= cfg.MaxSteps {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrStepBudget}
		}
		attempts++

		h := math.Min(dt, cfg.Duration-t)

		var newX State
		if cfg.Adaptive {
			var next float64
			var err error
			newX, next, err = s.adaptiveStep(x, t, h, cfg)
			if errors.Is(err, ErrStepRejected) {
				result.Rejected++
				dt = next
				if dt < cfg.MinDt {
					return nil, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrStepTooSmall}
				}
				continue
			}
			if err != nil {
				return nil, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: err}
			}
			// a clipped final step should not shrink the controller's step
			if h < dt && next < dt {
				next = dt
			}
			dt = math.Min(next, cfg.MaxDt)
		} else {
			newX = s.integrator.Step(s.sys, x, t, h)
		}

		if cfg.ValidateState && !newX.IsValid() {
			return nil, &SimulationError{Step: result.StepsTaken, Time: t, State: x.Clone(), Wrapped: ErrInvalidState}
		}

		x = newX
		t += h
		result.StepsTaken++
		s.observe(x, t)

		if cfg.KeepTrajectory {
			result.States = append(result.States, x.Clone())
			result.Times = append(result.Times, t)
		}
	}

	if !cfg.KeepTrajectory && result.StepsTaken > 0 {
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) observe(x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be positive, got %d", cfg.MaxSteps)
	}
	if cfg.Adaptive {
		if cfg.Tolerance <= 0 {
			return fmt.Errorf("tolerance must be positive for adaptive stepping")
		}
		if cfg.MinDt <= 0 || cfg.MaxDt < cfg.MinDt {
			return fmt.Errorf("invalid adaptive step bounds [%g, %g]", cfg.MinDt, cfg.MaxDt)
		}
	}
	return nil
}

func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
	}

	// step doubling for fixed-step integrators
	x1 := s.integrator.Step(s.sys, x, t, dt)
	xHalf := s.integrator.Step(s.sys, x, t, dt/2)
	x2 := s.integrator.Step(s.sys, xHalf, t+dt/2, dt/2)

	err := x1.Sub(x2).MaxAbs()

	if err > cfg.Tolerance {
		return x, dt / 2, ErrStepRejected
	}

	if err < cfg.Tolerance/10 {
		dt = math.Min(dt*2, cfg.MaxDt)
	}

	return x2, dt, nil
}
