package network

import (
	"fmt"
	"math"

	"github.com/san-kum/netsens/internal/hill"
)

// Params is the mutable parameter set. Species-indexed slices are Tau, Ymax
// and Y0; reaction-indexed slices are W, N and EC50. Every modifier returns
// a fresh deep copy so scenarios never share buffers.
type Params struct {
	Tau  []float64
	Ymax []float64
	Y0   []float64
	W    []float64
	N    []float64
	EC50 []float64
}

func (p Params) Clone() Params {
	return Params{
		Tau:  append([]float64(nil), p.Tau...),
		Ymax: append([]float64(nil), p.Ymax...),
		Y0:   append([]float64(nil), p.Y0...),
		W:    append([]float64(nil), p.W...),
		N:    append([]float64(nil), p.N...),
		EC50: append([]float64(nil), p.EC50...),
	}
}

// Knockdown returns a copy with species i's capacity removed.
func (p Params) Knockdown(i int) Params {
	return p.ScaleYmax(i, 0)
}

// ScaleYmax returns a copy with ymax[i] multiplied by f.
func (p Params) ScaleYmax(i int, f float64) Params {
	c := p.Clone()
	c.Ymax[i] *= f
	return c
}

// Validate checks array alignment against m and numeric preconditions.
func (p Params) Validate(m *Model) error {
	ns, nr := len(m.Species), len(m.Reactions)
	for _, arr := range []struct {
		name string
		got  int
		want int
	}{
		{"tau", len(p.Tau), ns},
		{"ymax", len(p.Ymax), ns},
		{"y0", len(p.Y0), ns},
		{"w", len(p.W), nr},
		{"n", len(p.N), nr},
		{"ec50", len(p.EC50), nr},
	} {
		if arr.got != arr.want {
			return &ConfigError{Field: arr.name, Index: -1, Reason: fmt.Sprintf("length %d, want %d", arr.got, arr.want)}
		}
	}
	for i := 0; i < ns; i++ {
		if !(p.Tau[i] > 0) || math.IsInf(p.Tau[i], 0) {
			return &ConfigError{Field: "tau", Index: i, Reason: fmt.Sprintf("must be > 0, got %g", p.Tau[i])}
		}
		if !(p.Ymax[i] >= 0) || math.IsInf(p.Ymax[i], 0) {
			return &ConfigError{Field: "ymax", Index: i, Reason: fmt.Sprintf("must be >= 0, got %g", p.Ymax[i])}
		}
		if math.IsNaN(p.Y0[i]) || math.IsInf(p.Y0[i], 0) {
			return &ConfigError{Field: "y0", Index: i, Reason: "not finite"}
		}
	}
	for j := 0; j < nr; j++ {
		if !(p.W[j] > 0) || math.IsInf(p.W[j], 0) {
			return &ConfigError{Field: "w", Index: j, Reason: fmt.Sprintf("must be > 0, got %g", p.W[j])}
		}
		if len(m.Reactions[j].Inputs) == 0 {
			continue
		}
		if !hill.Valid(p.N[j], p.EC50[j]) {
			return &ConfigError{Field: "n/ec50", Index: j, Reason: fmt.Sprintf("invalid hill curve n=%g ec50=%g", p.N[j], p.EC50[j])}
		}
	}
	return nil
}
