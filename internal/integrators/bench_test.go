package integrators

import (
	"testing"

	"github.com/san-kum/netsens/internal/dynamo"
)

type benchCascade struct{ n int }

func (b *benchCascade) StateDim() int { return b.n }

// linear cascade: species i relaxes toward species i-1
func (b *benchCascade) Derive(x dynamo.State, t float64) dynamo.State {
	dx := make(dynamo.State, b.n)
	dx[0] = 1 - x[0]
	for i := 1; i < b.n; i++ {
		dx[i] = x[i-1] - x[i]
	}
	return dx
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler()
	sys := &benchCascade{n: 40}
	x := make(dynamo.State, 40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4()
	sys := &benchCascade{n: 40}
	x := make(dynamo.State, 40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45()
	sys := &benchCascade{n: 40}
	x := make(dynamo.State, 40)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(sys, x, 0, 0.01)
	}
}
