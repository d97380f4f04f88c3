// Package dynamo provides the simulation primitives shared by the network
// model, the integrators and the sweep driver.
//
// The package defines the fundamental interfaces and types for numerical
// integration of autonomous ODE systems (dX/dt = f(X, t)):
//
//   - [State]: vector of species activities
//   - [System]: interface for ODE right-hand sides
//   - [Integrator], [AdaptiveIntegrator]: numerical steppers
//   - [Simulator]: drives a stepper over a fixed horizon
//
// # Example
//
//	sys, _ := network.NewSystem(model, model.Params())
//	sim := dynamo.New(sys, integrators.NewRK45())
//	result, err := sim.Run(ctx, sys.Initial(), dynamo.DefaultConfig())
//
// # Failure
//
// Run never returns a silently truncated trajectory. Exhausting the step
// budget, shrinking below the minimum step, producing NaN/Inf or losing the
// context all surface as a [*SimulationError] wrapping one of the sentinel
// errors in this package.
//
// # Thread Safety
//
// A Simulator without metrics holds no per-run state and may be shared
// across goroutines as long as its System and Integrator are safe for
// concurrent use. RK4 keeps
// scratch buffers and is not; RK45 and Euler are.
package dynamo
