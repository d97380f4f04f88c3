package config

import "sort"

// Presets trade accuracy for speed. They only carry solver settings and
// are applied before a config file, which overrides only the fields it
// sets.
var Presets = map[string]*Config{
	"quick": {
		Horizon: 20, Integrator: "rk45", Dt: 0.05, Tolerance: 1e-4, MaxSteps: 20000, StabilityTol: 1e-3,
	},
	"default": {
		Horizon: 40, Integrator: "rk45", Dt: 0.01, Tolerance: 1e-6, MaxSteps: 200000, StabilityTol: 1e-4,
	},
	"strict": {
		Horizon: 100, Integrator: "rk45", Dt: 0.001, Tolerance: 1e-9, MaxSteps: 2000000, StabilityTol: 1e-6,
	},
}

func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's solver settings into c.
func (c *Config) Apply(p *Config) {
	c.Horizon = p.Horizon
	c.Integrator = p.Integrator
	c.Dt = p.Dt
	c.Tolerance = p.Tolerance
	c.MaxSteps = p.MaxSteps
	c.StabilityTol = p.StabilityTol
}
