package storage

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/loader"
	"github.com/san-kum/netsens/internal/report"
	"github.com/san-kum/netsens/internal/sweep"
)

func analysis(t *testing.T) (*sweep.Analysis, *report.Report) {
	t.Helper()
	n, err := loader.Builtin("chain3")
	if err != nil {
		t.Fatal(err)
	}
	cfg := sweep.DefaultConfig()
	cfg.Phenotype = 2
	cfg.Excluded = []int{2}
	a, err := sweep.Analyze(context.Background(), n.Model, cfg, nil)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	return a, report.FromAnalysis(a)
}

func TestNewRunID(t *testing.T) {
	id := NewRunID("ccm")
	if !strings.HasPrefix(id, "ccm_") || len(id) != len("ccm_")+8 {
		t.Errorf("unexpected run id %q", id)
	}
	if NewRunID("ccm") == id {
		t.Error("run ids should be unique")
	}
}

func TestSaveAnalysis(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	a, r := analysis(t)
	id := NewRunID(a.Model.Name)
	if err := st.SaveAnalysis(id, a, r); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, f := range []string{"metadata.json", "baseline.csv", "scenarios.csv", "sensitivity.csv", "influence.csv"} {
		if _, err := os.Stat(filepath.Join(st.Dir(id), f)); err != nil {
			t.Errorf("missing %s: %v", f, err)
		}
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != "sweep" || meta.Model != "chain3" || meta.Phenotype != "C" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Scenarios != 2 || meta.Failed != 0 {
		t.Errorf("scenarios = %d failed = %d", meta.Scenarios, meta.Failed)
	}
	if len(meta.Excluded) != 1 || meta.Excluded[0] != "C" {
		t.Errorf("excluded = %v", meta.Excluded)
	}

	names, traj, err := st.LoadTrajectory(id)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}
	if strings.Join(names, ",") != "A,B,C" {
		t.Errorf("names = %v", names)
	}
	if len(traj.States) != len(a.Baseline.Trajectory.States) {
		t.Errorf("trajectory rows = %d, want %d", len(traj.States), len(a.Baseline.Trajectory.States))
	}

	entries, err := st.LoadSensitivity(id)
	if err != nil {
		t.Fatalf("load sensitivity failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Species != "A" {
		t.Errorf("unexpected sensitivity %+v", entries)
	}
}

func TestSaveAnalysis_Influence(t *testing.T) {
	st := New(t.TempDir())
	a, r := analysis(t)
	a.Scenarios[1].Err = context.DeadlineExceeded
	a.Scenarios[1].Perturbed = nil
	id := NewRunID(a.Model.Name)
	if err := st.SaveAnalysis(id, a, r); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	f, err := os.Open(filepath.Join(st.Dir(id), "influence.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || strings.Join(rows[0], ",") != "knocked,A,B,C" {
		t.Fatalf("unexpected influence table %v", rows)
	}

	// knocking A drives the whole chain down
	if rows[1][0] != "A" {
		t.Errorf("first row knocked %q, want A", rows[1][0])
	}
	for col := 1; col <= 3; col++ {
		v, err := strconv.ParseFloat(rows[1][col], 64)
		if err != nil || v >= 0 {
			t.Errorf("A knockdown changed %s by %q, want a decrease", rows[0][col], rows[1][col])
		}
	}
	for col := 1; col <= 3; col++ {
		if rows[2][col] != "" {
			t.Errorf("failed scenario wrote %q for %s", rows[2][col], rows[0][col])
		}
	}
}

func TestSaveTrajectory(t *testing.T) {
	st := New(t.TempDir())
	res := &dynamo.Result{
		Times:   []float64{0, 0.5},
		States:  []dynamo.State{{0, 0}, {0.4, 0.1}},
		Metrics: map[string]float64{"residual": 0.2},
	}
	if err := st.SaveTrajectory("sim_1", "pair", []string{"A", "B"}, res); err != nil {
		t.Fatal(err)
	}

	meta, err := st.Load("sim_1")
	if err != nil {
		t.Fatal(err)
	}
	if meta.Kind != "simulate" || meta.Horizon != 0.5 || meta.Metrics["residual"] != 0.2 {
		t.Errorf("unexpected metadata %+v", meta)
	}
	_, traj, err := st.LoadTrajectory("sim_1")
	if err != nil {
		t.Fatal(err)
	}
	if traj.Final()[0] != 0.4 {
		t.Errorf("final = %v", traj.Final())
	}
	if _, err := st.LoadSensitivity("sim_1"); err == nil {
		t.Error("simulate run has no sensitivity table")
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	res := &dynamo.Result{Times: []float64{0, 1}, States: []dynamo.State{{0}, {1}}}
	for _, id := range []string{"a_1", "a_2"} {
		if err := st.SaveTrajectory(id, "a", []string{"A"}, res); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err := os.WriteFile(filepath.Join(st.Dir("stray.txt")), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "a_2" {
		t.Errorf("newest run should come first, got %s", runs[0].ID)
	}
}

func TestStoreList_Missing(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("missing dir should list nothing, got %v %v", runs, err)
	}
}
