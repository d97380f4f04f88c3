package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/netsens/internal/config"
	"github.com/san-kum/netsens/internal/loader"
	"github.com/san-kum/netsens/internal/logging"
	"github.com/san-kum/netsens/internal/network"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	model      string
	integrator string
	horizon    float64
	dt         float64
	tolerance  float64
	workers    int

	phenotype string
	excluded  []string
	outputs   int
	level     float64
	timeout   time.Duration

	top       int
	noSave    bool
	browse    bool
	plotNames []string
	outFile   string
	steps     int
	showRules bool
	width     int
	height    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "netsens",
		Short:         "knockdown sensitivity analysis for logic-based signaling networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".netsens", "data directory")
	pf.StringVarP(&configFile, "config", "c", "", "config file (YAML)")
	pf.StringVarP(&preset, "preset", "p", "", "solver preset (quick, default, strict)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, trace)")
	pf.StringVarP(&model, "model", "m", "", "built-in network name or path to a network file")
	pf.StringVarP(&integrator, "integrator", "i", "", "integrator (rk45, rk4, euler)")
	pf.Float64Var(&horizon, "horizon", 0, "integration horizon per leg")
	pf.Float64Var(&dt, "dt", 0, "initial or fixed time step")
	pf.Float64Var(&tolerance, "tol", 0, "adaptive step tolerance")
	pf.IntVarP(&workers, "workers", "w", 0, "parallel scenarios (0 = all CPUs)")

	simulateCmd := &cobra.Command{
		Use:   "simulate",
		Short: "integrate the unperturbed network and plot its trajectory",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	simulateCmd.Flags().StringSliceVarP(&plotNames, "species", "s", nil, "species to plot (default: all)")
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	addPlotSize(simulateCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "knock down every species and rank its effect on the phenotype",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addSweepFlags(sweepCmd)
	sweepCmd.Flags().IntVarP(&top, "top", "n", 0, "show only the n most influential species")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	sweepCmd.Flags().BoolVarP(&browse, "browse", "b", false, "open the interactive browser when done")
	addPlotSize(sweepCmd)

	knockCmd := &cobra.Command{
		Use:   "knock <species>",
		Short: "knock down one species and show how every species moves",
		Args:  cobra.ExactArgs(1),
		RunE:  runKnock,
	}
	addSweepFlags(knockCmd)
	knockCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the change vector to this file")

	doseCmd := &cobra.Command{
		Use:   "dose <species>",
		Short: "partial knockdown dose response of one species",
		Args:  cobra.ExactArgs(1),
		RunE:  runDose,
	}
	doseCmd.Flags().StringVar(&phenotype, "phenotype", "", "observed species (default: the network's phenotype)")
	doseCmd.Flags().IntVar(&steps, "steps", 11, "number of ymax levels from 1 down to 0")
	addPlotSize(doseCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "show the sensitivity table of a stored sweep",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVarP(&top, "top", "n", 0, "show only the n most influential species")

	plotCmd := &cobra.Command{
		Use:   "plot <run-id>",
		Short: "plot the baseline trajectory of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&plotNames, "species", "s", nil, "species to plot (default: all)")
	addPlotSize(plotCmd)

	chartCmd := &cobra.Command{
		Use:   "chart <run-id>",
		Short: "render a PNG bar chart of phenotype change per knockdown",
		Args:  cobra.ExactArgs(1),
		RunE:  chartRun,
	}
	chartCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: <run-id>.png)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv <run-id>",
		Short: "export the sensitivity table of a sweep as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json <run-id>",
		Short: "export the ranked report of a sweep as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	browseCmd := &cobra.Command{
		Use:   "browse [run-id]",
		Short: "browse a ranked report interactively",
		Long:  "Without a run id a fresh sweep is run so per-species changes can be inspected.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  browseRun,
	}
	addSweepFlags(browseCmd)

	modelsCmd := &cobra.Command{
		Use:   "models [name]",
		Short: "list built-in networks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listModels,
	}
	modelsCmd.Flags().BoolVarP(&showRules, "rules", "r", false, "print reaction rules")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list solver presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tHORIZON\tINTEG\tDT\tTOL\tMAX STEPS\tSTABILITY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%s\t%g\t%g\t%d\t%g\n",
					name, p.Horizon, p.Integrator, p.Dt, p.Tolerance, p.MaxSteps, p.StabilityTol)
			}
			w.Flush()
		},
	}

	rootCmd.AddCommand(simulateCmd, sweepCmd, knockCmd, doseCmd, listCmd, showCmd, plotCmd,
		chartCmd, exportCSVCmd, exportJSONCmd, browseCmd, modelsCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addSweepFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&phenotype, "phenotype", "", "phenotype species (default: the network's phenotype)")
	f.StringSliceVarP(&excluded, "exclude", "x", nil, "species never knocked down")
	f.IntVar(&outputs, "outputs", 0, "exclude this many trailing species")
	f.Float64Var(&level, "level", 0, "fraction of ymax kept by a knockdown")
	f.DurationVar(&timeout, "timeout", 0, "per-scenario time limit (0 = none)")
}

func addPlotSize(cmd *cobra.Command) {
	cmd.Flags().IntVar(&width, "width", 70, "plot width")
	cmd.Flags().IntVar(&height, "height", 15, "plot height")
}

// loadConfig layers defaults, preset, config file and explicitly set flags,
// in that order. Each layer overrides only what it sets.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	if configFile != "" {
		fileCfg, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Model = model
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("horizon") {
		cfg.Horizon = horizon
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("tol") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("phenotype") {
		cfg.Phenotype = phenotype
	}
	if flags.Changed("exclude") {
		cfg.Excluded = excluded
	}
	if flags.Changed("outputs") {
		cfg.Outputs = outputs
	}
	if flags.Changed("level") {
		cfg.Level = level
	}
	if flags.Changed("timeout") {
		cfg.ScenarioTimeout = timeout
	}
	return cfg, nil
}

// setup loads the config and the network it names.
func setup(cmd *cobra.Command) (*config.Config, *loader.Network, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	net, err := loader.Load(cfg.Model)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	logger.Debug("network loaded",
		"model", net.Model.Name,
		"species", net.Model.Len(),
		"reactions", len(net.Model.Reactions),
		"integrator", cfg.Integrator)
	return cfg, net, logger, nil
}

// speciesIndices resolves names against all; an empty list selects every
// species.
func speciesIndices(names []string, all []string) ([]int, error) {
	if len(names) == 0 {
		out := make([]int, len(all))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	index := make(map[string]int, len(all))
	for i, n := range all {
		index[n] = i
	}
	out := make([]int, 0, len(names))
	for _, n := range names {
		i, ok := index[n]
		if !ok {
			return nil, fmt.Errorf("unknown species %q", n)
		}
		out = append(out, i)
	}
	return out, nil
}

func listModels(cmd *cobra.Command, args []string) error {
	names := loader.Builtins()
	if len(args) > 0 {
		names = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSPECIES\tREACTIONS\tPHENOTYPE\tDESCRIPTION")
	var nets []*loader.Network
	for _, name := range names {
		net, err := loader.Load(name)
		if err != nil {
			return err
		}
		nets = append(nets, net)
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n",
			name, net.Model.Len(), len(net.Model.Reactions), net.Phenotype, net.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !showRules {
		return nil
	}
	for _, net := range nets {
		fmt.Printf("\n%s:\n", net.Model.Name)
		printRules(net.Model)
	}
	return nil
}

func printRules(m *network.Model) {
	for j, r := range m.Reactions {
		id := r.ID
		if id == "" {
			id = fmt.Sprintf("r%d", j+1)
		}
		fmt.Printf("  %-6s %-40s w=%g\n", id, m.Rule(j), r.Weight)
	}
}
