package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/netsens/internal/network"
)

// Analysis is everything one sensitivity run produces.
type Analysis struct {
	Model     *network.Model
	Config    Config
	Baseline  *Baseline
	Scenarios []Scenario
	Started   time.Time
	Elapsed   time.Duration
}

// PhenotypeName is the name of the species being observed.
func (a *Analysis) PhenotypeName() string {
	return a.Model.Species[a.Config.Phenotype].Name
}

// Analyze runs baseline then sweep. Configuration errors and baseline
// failure are returned before any scenario starts.
func Analyze(ctx context.Context, m *network.Model, cfg Config, logger *slog.Logger) (*Analysis, error) {
	d, err := NewDriver(m, cfg, logger)
	if err != nil {
		return nil, err
	}
	return d.Analyze(ctx)
}

func (d *Driver) Analyze(ctx context.Context) (*Analysis, error) {
	start := time.Now()
	base, err := d.Baseline(ctx)
	if err != nil {
		return nil, err
	}
	scenarios, err := d.Run(ctx, base)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		Model:     d.model,
		Config:    d.cfg,
		Baseline:  base,
		Scenarios: scenarios,
		Started:   start,
		Elapsed:   time.Since(start),
	}, nil
}
