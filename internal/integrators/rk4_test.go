package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/netsens/internal/dynamo"
)

func TestRK4Accuracy(t *testing.T) {
	sys := &harmonicOscillator{}
	integ := NewRK4()

	dt := 0.01
	steps := 100

	x := dynamo.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-4 {
		t.Errorf("position error too large: got %.6f, expected %.6f", x[0], expectedX)
	}

	if math.Abs(x[1]-expectedV) > 1e-4 {
		t.Errorf("velocity error too large: got %.6f, expected %.6f", x[1], expectedV)
	}
}

func TestEulerRelaxation(t *testing.T) {
	sys := &relaxation{target: 1, tau: 1}
	integ := NewEuler()

	x := dynamo.State{0}
	dt := 0.001
	for i := 0; i < 5000; i++ {
		x = integ.Step(sys, x, float64(i)*dt, dt)
	}

	if math.Abs(x[0]-sys.exact(0, 5)) > 1e-3 {
		t.Errorf("euler x(5) = %.6f, want %.6f", x[0], sys.exact(0, 5))
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range Names() {
		integ, err := New(name)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if integ == nil {
			t.Fatalf("New(%q) returned nil", name)
		}
	}

	if _, err := New("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}

	if !Adaptive("rk45") || Adaptive("rk4") {
		t.Error("only rk45 should report adaptive")
	}
}
