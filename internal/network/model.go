// Package network describes a logic-based signaling network and evaluates
// its ODE right-hand side.
//
// Each species i relaxes toward the activity its regulators imply:
//
//	dy_i/dt = (ymax_i * target_i(y) - y_i) / tau_i
//
// where target_i is the OR of the reactions producing i, each reaction being
// the AND of its (activating or inhibiting) inputs. Species without any
// producing reaction have target 1 and relax to ymax.
package network

import (
	"fmt"
	"strings"
)

// Species is one network node. Order inside a Model is the addressing scheme.
type Species struct {
	Name string
	Tau  float64
	Ymax float64
	Y0   float64
	N    float64
	EC50 float64
}

type Input struct {
	Species int
	Inhibit bool
}

// Reaction feeds Output with the AND of its Inputs. A reaction with no
// inputs is a constant basal input of value Weight. Zero N or EC50 fall back
// to the output species' values.
type Reaction struct {
	ID     string
	Inputs []Input
	Output int
	Weight float64
	N      float64
	EC50   float64
}

type Model struct {
	Name      string
	Species   []Species
	Reactions []Reaction
}

func (m *Model) Len() int { return len(m.Species) }

func (m *Model) Names() []string {
	names := make([]string, len(m.Species))
	for i, s := range m.Species {
		names[i] = s.Name
	}
	return names
}

// Index returns the position of the named species or -1.
func (m *Model) Index(name string) int {
	for i, s := range m.Species {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Params extracts the parameter set, resolving reaction-level fallbacks.
func (m *Model) Params() Params {
	p := Params{
		Tau:  make([]float64, len(m.Species)),
		Ymax: make([]float64, len(m.Species)),
		Y0:   make([]float64, len(m.Species)),
		W:    make([]float64, len(m.Reactions)),
		N:    make([]float64, len(m.Reactions)),
		EC50: make([]float64, len(m.Reactions)),
	}
	for i, s := range m.Species {
		p.Tau[i], p.Ymax[i], p.Y0[i] = s.Tau, s.Ymax, s.Y0
	}
	for j, r := range m.Reactions {
		p.W[j], p.N[j], p.EC50[j] = r.Weight, r.N, r.EC50
		if r.Output >= 0 && r.Output < len(m.Species) {
			if p.N[j] == 0 {
				p.N[j] = m.Species[r.Output].N
			}
			if p.EC50[j] == 0 {
				p.EC50[j] = m.Species[r.Output].EC50
			}
		}
	}
	return p
}

// Validate checks topology: unique names and in-range reaction indices.
// Numeric parameters are checked by Params.Validate.
func (m *Model) Validate() error {
	if len(m.Species) == 0 {
		return &ConfigError{Field: "species", Index: -1, Reason: "model has no species"}
	}
	seen := make(map[string]int, len(m.Species))
	for i, s := range m.Species {
		if strings.TrimSpace(s.Name) == "" {
			return &ConfigError{Field: "name", Index: i, Reason: "empty species name"}
		}
		if j, dup := seen[s.Name]; dup {
			return &ConfigError{Field: "name", Index: i, Reason: fmt.Sprintf("duplicate of species %d (%s)", j, s.Name)}
		}
		seen[s.Name] = i
	}
	for j, r := range m.Reactions {
		if r.Output < 0 || r.Output >= len(m.Species) {
			return &ConfigError{Field: "reaction.output", Index: j, Reason: fmt.Sprintf("output %d out of range", r.Output)}
		}
		for _, in := range r.Inputs {
			if in.Species < 0 || in.Species >= len(m.Species) {
				return &ConfigError{Field: "reaction.input", Index: j, Reason: fmt.Sprintf("input %d out of range", in.Species)}
			}
		}
	}
	return nil
}

// Rule renders a reaction in "A & !B => C" form.
func (m *Model) Rule(j int) string {
	r := m.Reactions[j]
	parts := make([]string, len(r.Inputs))
	for k, in := range r.Inputs {
		name := m.Species[in.Species].Name
		if in.Inhibit {
			name = "!" + name
		}
		parts[k] = name
	}
	lhs := strings.Join(parts, " & ")
	if lhs == "" {
		return "=> " + m.Species[r.Output].Name
	}
	return lhs + " => " + m.Species[r.Output].Name
}

// Downstream returns the species reachable from i along reaction edges,
// excluding i unless it lies on a cycle.
func (m *Model) Downstream(i int) []bool {
	out := make([][]int, len(m.Species))
	for _, r := range m.Reactions {
		for _, in := range r.Inputs {
			out[in.Species] = append(out[in.Species], r.Output)
		}
	}
	reach := make([]bool, len(m.Species))
	stack := append([]int(nil), out[i]...)
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reach[k] {
			continue
		}
		reach[k] = true
		stack = append(stack, out[k]...)
	}
	return reach
}
