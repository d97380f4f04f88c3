package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/netsens/internal/analysis"
	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/integrators"
	"github.com/san-kum/netsens/internal/logging"
	"github.com/san-kum/netsens/internal/network"
)

type Driver struct {
	model  *network.Model
	sys    *network.System
	params network.Params
	cfg    Config
	logger *slog.Logger
	events *logging.EventLog
	// reach[i] is true when knocking i can move the phenotype
	reach []bool
}

// NewDriver validates the model, its parameters and cfg. All errors are
// configuration errors and no integration has happened yet.
func NewDriver(m *network.Model, cfg Config, logger *slog.Logger) (*Driver, error) {
	sys, err := network.NewSystem(m, m.Params())
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(m.Len()); err != nil {
		return nil, err
	}
	if _, err := integrators.New(cfg.Integrator); err != nil {
		return nil, err
	}
	cfg.Sim.Adaptive = integrators.Adaptive(cfg.Integrator)
	if logger == nil {
		logger = logging.Discard()
	}
	reach := make([]bool, m.Len())
	for i := range reach {
		reach[i] = i == cfg.Phenotype || m.Downstream(i)[cfg.Phenotype]
	}
	return &Driver{
		model:  m,
		sys:    sys,
		params: sys.Params(),
		cfg:    cfg,
		logger: logger,
		reach:  reach,
	}, nil
}

// SetEventLog records one event per scenario. A nil log disables events.
func (d *Driver) SetEventLog(events *logging.EventLog) { d.events = events }

func (d *Driver) Model() *network.Model   { return d.model }
func (d *Driver) System() *network.System { return d.sys }
func (d *Driver) Config() Config          { return d.cfg }

// Targets lists the species a sweep knocks down, in index order.
func (d *Driver) Targets() []int {
	skip := make(map[int]bool, len(d.cfg.Excluded))
	for _, i := range d.cfg.Excluded {
		skip[i] = true
	}
	out := make([]int, 0, d.model.Len())
	for i := 0; i < d.model.Len(); i++ {
		if !skip[i] {
			out = append(out, i)
		}
	}
	return out
}

func (d *Driver) simulator(sys dynamo.System, label string) *dynamo.Simulator {
	integ, _ := integrators.New(d.cfg.Integrator)
	sim := dynamo.New(sys, integ)
	if logging.Tracing(d.logger) {
		sim.AddObserver(stepTrace{logger: d.logger, label: label})
	}
	return sim
}

// stepTrace logs every accepted solver step at trace level.
type stepTrace struct {
	logger *slog.Logger
	label  string
}

func (o stepTrace) OnStep(x dynamo.State, t float64) {
	o.logger.Log(context.Background(), logging.LevelTrace, "step",
		"scenario", o.label, "t", t, "max", x.MaxAbs())
}

// Baseline integrates the unmodified network with its trajectory kept.
// Failure here is fatal for the sweep.
func (d *Driver) Baseline(ctx context.Context) (*Baseline, error) {
	cfg := d.cfg.Sim
	cfg.KeepTrajectory = true

	start := time.Now()
	st, err := analysis.SteadyState(ctx, d.simulator(d.sys, "baseline"), d.sys.Initial(), cfg, d.cfg.StabilityTol)
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}

	b := &Baseline{
		Values:     st.Final,
		Trajectory: st.Result,
		Residual:   st.Residual,
		Drift:      st.Drift,
		Stable:     st.Stable,
		Warning:    st.Warning(),
	}
	if !b.Stable {
		d.logger.Warn("baseline not at steady state", "model", d.model.Name, "drift", b.Drift)
	}
	d.logger.Debug("baseline done",
		"model", d.model.Name,
		"steps", st.Result.StepsTaken,
		"residual", b.Residual,
		"elapsed", time.Since(start))
	return b, nil
}

// Run knocks down every target species concurrently and returns one
// Scenario per target, ordered by species index. It returns an error only
// when ctx is canceled.
func (d *Driver) Run(ctx context.Context, base *Baseline) ([]Scenario, error) {
	if base == nil || len(base.Values) != d.model.Len() {
		return nil, errors.New("sweep: baseline missing or misaligned with model")
	}

	targets := d.Targets()
	results := make([]Scenario, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.cfg.workers())

	d.logger.Info("sweep started",
		"model", d.model.Name,
		"scenarios", len(targets),
		"workers", d.cfg.workers(),
		"phenotype", d.model.Species[d.cfg.Phenotype].Name)

	for k, i := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each goroutine writes only its own slot
			results[k] = d.scenario(gctx, base, i)
			if results[k].Failed() && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for _, s := range results {
		if s.Failed() {
			failed++
		}
	}
	d.logger.Info("sweep done", "model", d.model.Name, "scenarios", len(results), "failed", failed)
	return results, nil
}

// Knockdown runs a single scenario for species i, excluded or not.
func (d *Driver) Knockdown(ctx context.Context, base *Baseline, i int) (Scenario, error) {
	if i < 0 || i >= d.model.Len() {
		return Scenario{}, fmt.Errorf("sweep: species %d out of range", i)
	}
	if base == nil || len(base.Values) != d.model.Len() {
		return Scenario{}, errors.New("sweep: baseline missing or misaligned with model")
	}
	s := d.scenario(ctx, base, i)
	if s.Failed() && ctx.Err() != nil {
		return s, ctx.Err()
	}
	return s, nil
}

func (d *Driver) scenario(ctx context.Context, base *Baseline, i int) (s Scenario) {
	s = Scenario{
		Index:    i,
		Species:  d.model.Species[i].Name,
		Baseline: base.Values[d.cfg.Phenotype],
		Reaches:  d.reach[i],
	}
	start := time.Now()
	defer func() {
		s.Elapsed = time.Since(start)
		d.record(s)
	}()

	if d.cfg.ScenarioTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.ScenarioTimeout)
		defer cancel()
	}

	sys, err := d.sys.WithParams(d.params.ScaleYmax(i, d.cfg.Level))
	if err != nil {
		s.fail(err)
		return s
	}

	cfg := d.cfg.Sim
	cfg.KeepTrajectory = false

	d.logger.Debug("scenario started", "species", s.Species, "index", i)
	st, err := analysis.SteadyState(ctx, d.simulator(sys, s.Species), sys.Initial(), cfg, d.cfg.StabilityTol)
	if err != nil {
		s.fail(err)
		return s
	}

	s.Perturbed = st.Final
	s.Phenotype = st.Final[d.cfg.Phenotype]
	s.Delta = s.Phenotype - s.Baseline
	s.Magnitude = math.Abs(s.Delta)
	s.Drift = st.Drift
	s.Residual = st.Residual
	s.Warning = st.Warning()
	s.Steps = st.Result.StepsTaken
	return s
}

func (d *Driver) record(s Scenario) {
	event := logging.ScenarioEvent{
		Model:   d.model.Name,
		Index:   s.Index,
		Species: s.Species,
		Reaches: s.Reaches,
		Steps:   s.Steps,
		Elapsed: s.Elapsed.String(),
	}
	switch {
	case s.Failed():
		d.logger.Warn("scenario failed", "species", s.Species, "error", s.Err)
		event.Status = "failed"
		event.Error = s.Err.Error()
	case s.Warning != "":
		d.logger.Warn("scenario unstable", "species", s.Species, "drift", s.Drift)
		event.Status = "warning"
		event.Delta = &s.Delta
		event.Warning = s.Warning
	default:
		d.logger.Debug("scenario done", "species", s.Species, "delta", s.Delta, "steps", s.Steps)
		event.Status = "ok"
		event.Delta = &s.Delta
	}
	d.events.Scenario(event)
}
