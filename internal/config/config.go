package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/netsens/internal/analysis"
	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/loader"
	"github.com/san-kum/netsens/internal/sweep"
)

const (
	DefaultModel      = "ccm"
	DefaultIntegrator = "rk45"
	DefaultDt         = 0.01
	DefaultTolerance  = 1e-6
	DefaultMaxSteps   = 200000
)

// Config is the YAML run configuration. Outputs excludes that many
// trailing species, the usual place for phenotype nodes in a network file.
type Config struct {
	Model           string        `yaml:"model"`
	Phenotype       string        `yaml:"phenotype,omitempty"`
	Excluded        []string      `yaml:"excluded,omitempty"`
	Outputs         int           `yaml:"outputs,omitempty"`
	Horizon         float64       `yaml:"horizon"`
	Integrator      string        `yaml:"integrator"`
	Dt              float64       `yaml:"dt"`
	Tolerance       float64       `yaml:"tolerance"`
	MaxSteps        int           `yaml:"max_steps"`
	Workers         int           `yaml:"workers,omitempty"`
	ScenarioTimeout time.Duration `yaml:"scenario_timeout,omitempty"`
	Level           float64       `yaml:"level,omitempty"`
	StabilityTol    float64       `yaml:"stability_tol"`
	LogLevel        string        `yaml:"log_level,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:        DefaultModel,
		Horizon:      dynamo.DefaultHorizon,
		Integrator:   DefaultIntegrator,
		Dt:           DefaultDt,
		Tolerance:    DefaultTolerance,
		MaxSteps:     DefaultMaxSteps,
		StabilityTol: analysis.DefaultStabilityTol,
		LogLevel:     "info",
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base. Fields the file does not
// set keep their value from base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	cfg.Excluded = append([]string(nil), base.Excluded...)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SimConfig builds the integration settings.
func (c *Config) SimConfig() dynamo.Config {
	sc := dynamo.DefaultConfig()
	sc.Duration = c.Horizon
	sc.Dt = c.Dt
	sc.Tolerance = c.Tolerance
	sc.MaxSteps = c.MaxSteps
	return sc
}

// Resolve turns names into indices against a loaded network. An empty
// phenotype falls back to the network's own; output species named by the
// network are excluded when neither Excluded nor Outputs is set.
func (c *Config) Resolve(n *loader.Network) (sweep.Config, error) {
	m := n.Model
	sc := sweep.DefaultConfig()
	sc.Sim = c.SimConfig()
	sc.Integrator = c.Integrator
	sc.Level = c.Level
	sc.ScenarioTimeout = c.ScenarioTimeout
	sc.StabilityTol = c.StabilityTol
	if c.Workers > 0 {
		sc.Workers = c.Workers
	}

	phenotype := c.Phenotype
	if phenotype == "" {
		phenotype = n.Phenotype
	}
	if phenotype == "" {
		return sc, fmt.Errorf("%w: no phenotype given for network %s", sweep.ErrInvalidPhenotype, m.Name)
	}
	sc.Phenotype = m.Index(phenotype)
	if sc.Phenotype < 0 {
		return sc, fmt.Errorf("%w: unknown species %q", sweep.ErrInvalidPhenotype, phenotype)
	}

	excluded := c.Excluded
	if len(excluded) == 0 && c.Outputs == 0 {
		excluded = n.Outputs
	}
	for _, name := range excluded {
		i := m.Index(name)
		if i < 0 {
			return sc, fmt.Errorf("%w: unknown species %q", sweep.ErrInvalidExcluded, name)
		}
		sc.Excluded = append(sc.Excluded, i)
	}
	if c.Outputs > 0 {
		if c.Outputs > m.Len() {
			return sc, fmt.Errorf("%w: %d outputs but only %d species", sweep.ErrInvalidExcluded, c.Outputs, m.Len())
		}
		for i := m.Len() - c.Outputs; i < m.Len(); i++ {
			sc.Excluded = append(sc.Excluded, i)
		}
	}
	return sc, nil
}
