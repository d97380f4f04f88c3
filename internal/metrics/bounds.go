package metrics

import (
	"github.com/san-kum/netsens/internal/dynamo"
)

// Bounds reports the fraction of observed states whose every entry stays
// inside [lo, hi]. Normalized activities should never leave [0, ymax].
type Bounds struct {
	name       string
	lo, hi     float64
	violations int
	samples    int
}

func NewBounds(lo, hi float64) *Bounds {
	return &Bounds{
		name: "bounds",
		lo:   lo,
		hi:   hi,
	}
}

func (b *Bounds) Name() string {
	return b.name
}

func (b *Bounds) Observe(x dynamo.State, t float64) {
	b.samples++
	for _, val := range x {
		if val < b.lo || val > b.hi {
			b.violations++
			break
		}
	}
}

func (b *Bounds) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounds) Reset() {
	b.violations = 0
	b.samples = 0
}
