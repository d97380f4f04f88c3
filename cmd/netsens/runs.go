package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/netsens/internal/report"
	"github.com/san-kum/netsens/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMODEL\tTIME\tPHENOTYPE\tSCENARIOS\tFAILED\tINTEG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.Kind,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			orDash(run.Phenotype),
			run.Scenarios,
			run.Failed,
			orDash(run.Integrator),
		)
	}

	return w.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// loadReport rebuilds a report from a stored sweep.
func loadReport(runID string) (*report.Report, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Kind != "sweep" {
		return nil, fmt.Errorf("run %s is a %s run and has no sensitivity table", runID, meta.Kind)
	}
	entries, err := st.LoadSensitivity(runID)
	if err != nil {
		return nil, err
	}
	return &report.Report{Model: meta.Model, Phenotype: meta.Phenotype, Entries: entries}, nil
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	r, err := loadReport(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run:        %s\n", meta.ID)
	fmt.Printf("model:      %s (%d species)\n", meta.Model, len(meta.Species))
	fmt.Printf("time:       %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("integrator: %s  horizon %g  tol %g\n", meta.Integrator, meta.Horizon, meta.Tolerance)
	if meta.Level > 0 {
		fmt.Printf("level:      %.2f of ymax kept\n", meta.Level)
	}
	if len(meta.Excluded) > 0 {
		fmt.Printf("excluded:   %v\n", meta.Excluded)
	}
	if !meta.BaselineStable {
		fmt.Println("warning:    baseline did not reach steady state")
	}
	fmt.Println()
	fmt.Println(report.RenderTable(fmt.Sprintf("knockdown effect on %s", r.Phenotype), r.Top(top)))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	names, res, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	species, err := speciesIndices(plotNames, names)
	if err != nil {
		return err
	}
	graph, err := report.PlotTrajectory(res, names, species, width, height)
	if err != nil {
		return err
	}
	fmt.Println(graph)
	return nil
}

func chartRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	r, err := loadReport(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".png"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	title := fmt.Sprintf("%s: change in %s per knockdown", r.Model, r.Phenotype)
	if err := report.BarChartPNG(f, title, r.ByDirection()); err != nil {
		return err
	}
	fmt.Printf("chart written to %s\n", path)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	r, err := loadReport(args[0])
	if err != nil {
		return err
	}
	return report.WriteCSV(os.Stdout, r.ByImpact())
}

func exportJSON(cmd *cobra.Command, args []string) error {
	r, err := loadReport(args[0])
	if err != nil {
		return err
	}
	return report.WriteJSON(os.Stdout, r)
}
