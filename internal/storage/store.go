package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/report"
	"github.com/san-kum/netsens/internal/sweep"
)

const (
	metadataFile    = "metadata.json"
	baselineFile    = "baseline.csv"
	scenariosFile   = "scenarios.csv"
	sensitivityFile = "sensitivity.csv"
	influenceFile   = "influence.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID             string             `json:"id"`
	Kind           string             `json:"kind"`
	Model          string             `json:"model"`
	Timestamp      time.Time          `json:"timestamp"`
	Species        []string           `json:"species"`
	Phenotype      string             `json:"phenotype,omitempty"`
	Excluded       []string           `json:"excluded,omitempty"`
	Integrator     string             `json:"integrator"`
	Horizon        float64            `json:"horizon"`
	Tolerance      float64            `json:"tolerance"`
	Level          float64            `json:"level"`
	Scenarios      int                `json:"scenarios"`
	Failed         int                `json:"failed"`
	Warnings       int                `json:"warnings"`
	BaselineStable bool               `json:"baseline_stable"`
	Elapsed        string             `json:"elapsed,omitempty"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// NewRunID returns "<model>_<first 8 hex of a uuid>".
func NewRunID(model string) string {
	return fmt.Sprintf("%s_%s", model, uuid.NewString()[:8])
}

// Dir is the directory holding run id.
func (s *Store) Dir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

// SaveAnalysis writes a sweep run: metadata, baseline trajectory, the raw
// scenario table, the per-species influence matrix and the ranked
// sensitivity table.
func (s *Store) SaveAnalysis(runID string, a *sweep.Analysis, r *report.Report) error {
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	m := a.Model
	meta := RunMetadata{
		ID:             runID,
		Kind:           "sweep",
		Model:          m.Name,
		Timestamp:      a.Started,
		Species:        m.Names(),
		Phenotype:      a.PhenotypeName(),
		Integrator:     a.Config.Integrator,
		Horizon:        a.Config.Sim.Duration,
		Tolerance:      a.Config.Sim.Tolerance,
		Level:          a.Config.Level,
		Scenarios:      len(a.Scenarios),
		Failed:         r.Failed(),
		BaselineStable: a.Baseline.Stable,
		Elapsed:        a.Elapsed.Round(time.Millisecond).String(),
		Metrics: map[string]float64{
			"baseline_residual": a.Baseline.Residual,
			"baseline_drift":    a.Baseline.Drift,
		},
	}
	for _, i := range a.Config.Excluded {
		meta.Excluded = append(meta.Excluded, m.Species[i].Name)
	}
	for _, sc := range a.Scenarios {
		if sc.Warning != "" {
			meta.Warnings++
		}
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := writeTrajectory(filepath.Join(runDir, baselineFile), m.Names(), a.Baseline.Trajectory); err != nil {
		return err
	}
	if err := writeScenarios(filepath.Join(runDir, scenariosFile), m.Names(), a.Scenarios); err != nil {
		return err
	}
	if err := writeInfluence(filepath.Join(runDir, influenceFile), m.Names(), a); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(runDir, sensitivityFile))
	if err != nil {
		return err
	}
	defer f.Close()
	return report.WriteCSV(f, r.ByImpact())
}

// SaveTrajectory writes a single simulation run.
func (s *Store) SaveTrajectory(runID, model string, names []string, result *dynamo.Result) error {
	runDir := s.Dir(runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	meta := RunMetadata{
		ID:        runID,
		Kind:      "simulate",
		Model:     model,
		Timestamp: time.Now(),
		Species:   names,
		Horizon:   result.Times[len(result.Times)-1],
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	return writeTrajectory(filepath.Join(runDir, baselineFile), names, result)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTrajectory(path string, names []string, result *dynamo.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	if result != nil {
		for i := range result.States {
			row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
			for _, val := range result.States[i] {
				row = append(row, strconv.FormatFloat(val, 'g', 10, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

func writeScenarios(path string, names []string, scenarios []sweep.Scenario) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := append([]string{"knocked", "status", "steps", "drift", "residual"}, names...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, sc := range scenarios {
		status := "ok"
		switch {
		case sc.Failed():
			status = "failed"
		case sc.Warning != "":
			status = "warning"
		}
		row := []string{
			sc.Species,
			status,
			strconv.Itoa(sc.Steps),
			strconv.FormatFloat(sc.Drift, 'g', 6, 64),
			strconv.FormatFloat(sc.Residual, 'g', 6, 64),
		}
		for i := range names {
			if sc.Perturbed == nil {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(sc.Perturbed[i], 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeInfluence writes one row per scenario holding the steady-state change
// of every species. Failed scenarios leave their cells empty.
func writeInfluence(path string, names []string, a *sweep.Analysis) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(append([]string{"knocked"}, names...)); err != nil {
		return err
	}
	rows := report.InfluenceMatrix(a.Baseline.Values, a.Scenarios)
	for k, deltas := range rows {
		row := []string{a.Scenarios[k].Species}
		for _, d := range deltas {
			if math.IsNaN(d) {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.FormatFloat(d, 'g', 10, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns runs newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir(runID), metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads baseline.csv back into a result.
func (s *Store) LoadTrajectory(runID string) ([]string, *dynamo.Result, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), baselineFile))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("run %s: empty trajectory", runID)
	}

	names := records[0][1:]
	res := &dynamo.Result{
		Times:  make([]float64, 0, len(records)-1),
		States: make([]dynamo.State, 0, len(records)-1),
	}
	for k, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s row %d: %w", runID, k+1, err)
		}
		x := make(dynamo.State, len(rec)-1)
		for j := range x {
			if x[j], err = strconv.ParseFloat(rec[j+1], 64); err != nil {
				return nil, nil, fmt.Errorf("run %s row %d: %w", runID, k+1, err)
			}
		}
		res.Times = append(res.Times, t)
		res.States = append(res.States, x)
	}
	if len(res.States) > 0 {
		res.StepsTaken = len(res.States) - 1
	}
	return names, res, nil
}

// LoadSensitivity reads the ranked table of a sweep run.
func (s *Store) LoadSensitivity(runID string) ([]report.Entry, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), sensitivityFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return report.ReadCSV(f)
}
