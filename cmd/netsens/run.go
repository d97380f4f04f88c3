package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/netsens/internal/analysis"
	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/integrators"
	"github.com/san-kum/netsens/internal/logging"
	"github.com/san-kum/netsens/internal/metrics"
	"github.com/san-kum/netsens/internal/network"
	"github.com/san-kum/netsens/internal/report"
	"github.com/san-kum/netsens/internal/storage"
	"github.com/san-kum/netsens/internal/sweep"
	"github.com/san-kum/netsens/internal/viz"
)

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, net, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	m := net.Model
	names := m.Names()
	species, err := speciesIndices(plotNames, names)
	if err != nil {
		return err
	}

	sys, err := network.NewSystem(m, m.Params())
	if err != nil {
		return err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}

	sim := dynamo.New(sys, integ)
	residual := metrics.NewResidual(sys)
	sim.AddMetric(residual)
	sim.AddMetric(metrics.NewSettling(sys, cfg.StabilityTol))
	sim.AddMetric(metrics.NewBounds(0, 1))

	simCfg := cfg.SimConfig()
	simCfg.Adaptive = integrators.Adaptive(cfg.Integrator)

	fmt.Printf("simulating %s with %s for %.1f time units\n", m.Name, cfg.Integrator, simCfg.Duration)
	result, err := sim.Run(cmd.Context(), sys.Initial(), simCfg)
	if err != nil {
		return err
	}
	result.Metrics["peak_residual"] = residual.Peak()
	logger.Debug("simulation done", "steps", result.StepsTaken, "rejected", result.Rejected)

	graph, err := report.PlotTrajectory(result, names, species, width, height)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(graph)
	fmt.Println()

	final := result.Final()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPECIES\tFINAL\tTARGET")
	targets := sys.Targets(final)
	for _, i := range species {
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", names[i], final[i], targets[i]*m.Species[i].Ymax)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nsteps: %d (rejected %d)\n", result.StepsTaken, result.Rejected)
	for _, name := range []string{"residual", "peak_residual", "settling_time", "bounds"} {
		fmt.Printf("  %-14s %.6g\n", name+":", result.Metrics[name])
	}

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID := storage.NewRunID(m.Name)
	if err := st.SaveTrajectory(runID, m.Name, names, result); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

// newDriver resolves the config against the loaded network.
func newDriver(cmd *cobra.Command) (*sweep.Driver, error) {
	cfg, net, logger, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	sc, err := cfg.Resolve(net)
	if err != nil {
		return nil, err
	}
	return sweep.NewDriver(net.Model, sc, logger)
}

func runSweep(cmd *cobra.Command, args []string) error {
	d, err := newDriver(cmd)
	if err != nil {
		return err
	}
	m := d.Model()

	st := storage.New(dataDir)
	runID := storage.NewRunID(m.Name)
	if !noSave {
		if err := st.Init(); err != nil {
			return err
		}
		events := logging.NewEventLog(st.Dir(runID))
		defer events.Close()
		d.SetEventLog(events)
	}

	fmt.Printf("sweeping %d of %d species in %s\n", len(d.Targets()), m.Len(), m.Name)
	a, err := d.Analyze(cmd.Context())
	if err != nil {
		return err
	}
	r := report.FromAnalysis(a)

	printAnalysis(a, r)

	if !noSave {
		if err := st.SaveAnalysis(runID, a, r); err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}
		fmt.Printf("\nsaved: %s\n", runID)
	}

	if browse {
		return viz.Run(r, changesFor(a))
	}
	return nil
}

func printAnalysis(a *sweep.Analysis, r *report.Report) {
	title := fmt.Sprintf("%s: knockdown effect on %s", r.Model, r.Phenotype)
	fmt.Println()
	fmt.Println(report.RenderTable(title, r.Top(top)))

	if graph := report.PlotDeltas(r.ByDirection(), width, height); graph != "" {
		fmt.Println()
		fmt.Println(graph)
	}

	fmt.Printf("\nbaseline %s = %.4f  residual %.2e  elapsed %s\n",
		r.Phenotype, a.Baseline.Values[a.Config.Phenotype], a.Baseline.Residual, a.Elapsed.Round(time.Millisecond))
	if a.Baseline.Warning != "" {
		fmt.Println("warning: baseline", a.Baseline.Warning)
	}
	if n := r.Failed(); n > 0 {
		fmt.Printf("warning: %d of %d scenarios failed\n", n, len(r.Entries))
	}
}

// changesFor lets the browser show how every species moved under the
// selected knockdown.
func changesFor(a *sweep.Analysis) viz.ChangesFunc {
	byIndex := make(map[int]sweep.Scenario, len(a.Scenarios))
	for _, s := range a.Scenarios {
		byIndex[s.Index] = s
	}
	names := a.Model.Names()
	return func(i int) []report.Change {
		s, ok := byIndex[i]
		if !ok || s.Failed() {
			return nil
		}
		return report.SpeciesChanges(names, a.Baseline.Values, s.Perturbed)
	}
}

func runKnock(cmd *cobra.Command, args []string) error {
	d, err := newDriver(cmd)
	if err != nil {
		return err
	}
	m := d.Model()
	i := m.Index(args[0])
	if i < 0 {
		return fmt.Errorf("unknown species %q in %s", args[0], m.Name)
	}

	base, err := d.Baseline(cmd.Context())
	if err != nil {
		return err
	}
	s, err := d.Knockdown(cmd.Context(), base, i)
	if err != nil {
		return err
	}
	if s.Failed() {
		return fmt.Errorf("knockdown %s: %w", s.Species, s.Err)
	}

	changes := report.SpeciesChanges(m.Names(), base.Values, s.Perturbed)
	fmt.Println(report.RenderChanges(fmt.Sprintf("%s: knockdown of %s", m.Name, s.Species), changes))

	p := m.Species[d.Config().Phenotype].Name
	fmt.Printf("\n%s: %.4f -> %.4f (%+.4f)\n", p, s.Baseline, s.Phenotype, s.Delta)
	if s.Warning != "" {
		fmt.Println("warning:", s.Warning)
	}

	if outFile == "" {
		return nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteChanges(f, changes); err != nil {
		return err
	}
	fmt.Printf("change vector written to %s\n", outFile)
	return nil
}

func runDose(cmd *cobra.Command, args []string) error {
	cfg, net, _, err := setup(cmd)
	if err != nil {
		return err
	}
	m := net.Model
	i := m.Index(args[0])
	if i < 0 {
		return fmt.Errorf("unknown species %q in %s", args[0], m.Name)
	}
	sc, err := cfg.Resolve(net)
	if err != nil {
		return err
	}

	sys, err := network.NewSystem(m, m.Params())
	if err != nil {
		return err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return err
	}
	simCfg := sc.Sim
	simCfg.Adaptive = integrators.Adaptive(cfg.Integrator)

	points, err := analysis.DoseResponse(cmd.Context(), sys, integ, i, analysis.Levels(steps), simCfg, sc.StabilityTol)
	if err != nil {
		return err
	}

	observed := m.Species[sc.Phenotype].Name
	levels, values := analysis.Series(points, sc.Phenotype)
	if len(values) > 0 {
		caption := fmt.Sprintf("%s as %s ymax goes from %.2f to %.2f", observed, args[0], levels[0], levels[len(levels)-1])
		fmt.Println(report.PlotSeries(values, caption, width, height))
		fmt.Println()
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "LEVEL\t%s\tSTATUS\n", observed)
	for _, p := range points {
		switch {
		case p.Err != nil:
			fmt.Fprintf(w, "%.2f\t-\tfailed: %v\n", p.Level, p.Err)
		case p.Warning != "":
			fmt.Fprintf(w, "%.2f\t%.4f\t%s\n", p.Level, p.Values[sc.Phenotype], p.Warning)
		default:
			fmt.Fprintf(w, "%.2f\t%.4f\tok\n", p.Level, p.Values[sc.Phenotype])
		}
	}
	return w.Flush()
}

func browseRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		r, err := loadReport(args[0])
		if err != nil {
			return err
		}
		return viz.Run(r, nil)
	}

	d, err := newDriver(cmd)
	if err != nil {
		return err
	}
	fmt.Printf("sweeping %d species in %s\n", len(d.Targets()), d.Model().Name)
	a, err := d.Analyze(cmd.Context())
	if err != nil {
		return err
	}
	return viz.Run(report.FromAnalysis(a), changesFor(a))
}
