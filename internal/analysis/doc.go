// Package analysis extracts steady states from integrated trajectories and
// measures how a network responds to graded perturbations.
//
//   - [SteadyState]: integrate to the horizon, then re-integrate once more
//     to check the final state is a fixed point
//   - [DoseResponse]: sweep the fraction of one species' ymax and record the
//     steady state at each level
//
// # Stability
//
// The horizon is a fixed policy constant, not a convergence guarantee. A
// result is flagged unstable when the second integration moves any species
// by more than the tolerance:
//
//	st, err := analysis.SteadyState(ctx, sim, x0, cfg, 1e-4)
//	if err == nil && !st.Stable {
//	    // oscillating or slow network; treat values with care
//	}
package analysis
