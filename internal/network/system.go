package network

import (
	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/hill"
)

// System binds an immutable topology to one parameter set and implements
// dynamo.System. It holds no mutable state and is safe for concurrent use.
type System struct {
	model    *Model
	params   Params
	incoming [][]int
}

// NewSystem validates m and p and compiles the incoming reaction lists.
func NewSystem(m *Model, p Params) (*System, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(m); err != nil {
		return nil, err
	}
	incoming := make([][]int, len(m.Species))
	for j, r := range m.Reactions {
		incoming[r.Output] = append(incoming[r.Output], j)
	}
	return &System{model: m, params: p.Clone(), incoming: incoming}, nil
}

// WithParams returns a system sharing the compiled topology with a new
// parameter set.
func (s *System) WithParams(p Params) (*System, error) {
	if err := p.Validate(s.model); err != nil {
		return nil, err
	}
	return &System{model: s.model, params: p.Clone(), incoming: s.incoming}, nil
}

func (s *System) Model() *Model  { return s.model }
func (s *System) Params() Params { return s.params.Clone() }
func (s *System) StateDim() int  { return len(s.model.Species) }

// Initial returns the y0 vector.
func (s *System) Initial() dynamo.State {
	return dynamo.State(s.params.Y0).Clone()
}

func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	return s.Derivative(t, x, s.params)
}

// Derivative evaluates dy/dt for state y under parameter set p using this
// system's topology. p must be aligned with the model.
func (s *System) Derivative(t float64, y dynamo.State, p Params) dynamo.State {
	dy := make(dynamo.State, len(y))
	for i := range y {
		dy[i] = (p.Ymax[i]*s.target(i, y, p) - y[i]) / p.Tau[i]
	}
	return dy
}

// Targets returns the normalized activity each species is relaxing toward.
func (s *System) Targets(y dynamo.State) []float64 {
	out := make([]float64, len(y))
	for i := range y {
		out[i] = s.target(i, y, s.params)
	}
	return out
}

// Residual is the largest |dy/dt| at y.
func (s *System) Residual(y dynamo.State) float64 {
	return s.Derive(y, 0).MaxAbs()
}

func (s *System) target(i int, y dynamo.State, p Params) float64 {
	rs := s.incoming[i]
	if len(rs) == 0 {
		return 1
	}
	vs := make([]float64, len(rs))
	for k, j := range rs {
		vs[k] = s.reaction(j, y, p)
	}
	return hill.Or(vs...)
}

// reaction gates all inputs of reaction j with AND. A reaction without
// inputs is a constant basal input of its weight.
func (s *System) reaction(j int, y dynamo.State, p Params) float64 {
	r := &s.model.Reactions[j]
	terms := make([]hill.Term, len(r.Inputs))
	for k, in := range r.Inputs {
		terms[k] = hill.Term{Value: y[in.Species], Inhibit: in.Inhibit}
	}
	return hill.Combine(hill.RuleAnd, p.W[j], p.N[j], p.EC50[j], terms)
}
