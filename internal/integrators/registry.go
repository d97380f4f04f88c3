package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/netsens/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"rk45":  func() dynamo.Integrator { return NewRK45() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"euler": func() dynamo.Integrator { return NewEuler() },
}

// New returns a fresh integrator. Callers running in parallel must call New
// per goroutine since RK4 is stateful.
func New(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// Adaptive reports whether the named integrator controls its own step.
func Adaptive(name string) bool {
	return name == "rk45"
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
