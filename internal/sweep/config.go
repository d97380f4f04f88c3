package sweep

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/san-kum/netsens/internal/analysis"
	"github.com/san-kum/netsens/internal/dynamo"
)

var (
	ErrInvalidPhenotype = errors.New("sweep: phenotype index out of range")
	ErrInvalidExcluded  = errors.New("sweep: excluded index out of range")
	ErrInvalidLevel     = errors.New("sweep: knockdown level must be in [0, 1)")
)

type Config struct {
	Phenotype int
	// Excluded species are never knocked down (typically output nodes).
	Excluded []int
	// Workers bounds concurrent scenarios; <= 0 means runtime.NumCPU().
	Workers int
	// ScenarioTimeout fails a single scenario that runs longer; 0 disables.
	ScenarioTimeout time.Duration
	// Level is the fraction of ymax a knocked species keeps.
	Level        float64
	StabilityTol float64
	Sim          dynamo.Config
	Integrator   string
}

func DefaultConfig() Config {
	return Config{
		Workers:      runtime.NumCPU(),
		StabilityTol: analysis.DefaultStabilityTol,
		Sim:          dynamo.DefaultConfig(),
		Integrator:   "rk45",
	}
}

func (c Config) validate(n int) error {
	if c.Phenotype < 0 || c.Phenotype >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPhenotype, c.Phenotype, n)
	}
	for _, i := range c.Excluded {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidExcluded, i, n)
		}
	}
	if c.Level < 0 || c.Level >= 1 {
		return fmt.Errorf("%w: got %g", ErrInvalidLevel, c.Level)
	}
	return nil
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}
