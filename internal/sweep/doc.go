// Package sweep runs single-node knockdown scenarios against a baseline
// steady state.
//
// A [Driver] owns one immutable network model. [Driver.Baseline] integrates
// the unmodified network once; [Driver.Run] then knocks down every species
// not excluded, each in its own goroutine with a private parameter copy,
// and reports how the phenotype species moved:
//
//	d, err := sweep.NewDriver(model, cfg, logger)
//	base, err := d.Baseline(ctx)
//	scenarios, err := d.Run(ctx, base)
//
// Scenario failures are recorded on the [Scenario] and never abort the
// sweep. Only cancellation of the parent context does.
package sweep
