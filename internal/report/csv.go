package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

var csvHeader = []string{"species", "baseline", "perturbed", "delta", "magnitude", "status", "error", "warning"}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 10, 64)
}

func parseFloat(s string) (float64, error) {
	if s == "NaN" || s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteCSV writes entries in the given order.
func WriteCSV(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Species,
			formatFloat(e.Baseline),
			formatFloat(e.Perturbed),
			formatFloat(e.Delta),
			formatFloat(e.Magnitude),
			string(e.Status),
			e.Error,
			e.Warning,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file written by WriteCSV. Index is the row order.
func ReadCSV(r io.Reader) ([]Entry, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty sensitivity file")
	}
	if strings.Join(records[0], ",") != strings.Join(csvHeader, ",") {
		return nil, fmt.Errorf("unexpected header %v", records[0])
	}

	entries := make([]Entry, 0, len(records)-1)
	for k, rec := range records[1:] {
		e := Entry{Index: k, Species: rec[0], Status: Status(rec[5]), Error: rec[6], Warning: rec[7]}
		vals := make([]float64, 4)
		for j := range vals {
			v, err := parseFloat(rec[1+j])
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", k+1, err)
			}
			vals[j] = v
		}
		e.Baseline, e.Perturbed, e.Delta, e.Magnitude = vals[0], vals[1], vals[2], vals[3]
		entries = append(entries, e)
	}
	return entries, nil
}

// WriteChanges writes the change vector of one knockdown as a single
// space-delimited line in species index order.
func WriteChanges(w io.Writer, changes []Change) error {
	ordered := make([]float64, len(changes))
	for _, c := range changes {
		if c.Index >= 0 && c.Index < len(ordered) {
			ordered[c.Index] = c.Delta
		}
	}
	parts := make([]string, len(ordered))
	for i, v := range ordered {
		parts[i] = formatFloat(v)
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, " "))
	return err
}

type jsonEntry struct {
	Species   string   `json:"species"`
	Baseline  float64  `json:"baseline"`
	Perturbed *float64 `json:"perturbed,omitempty"`
	Delta     *float64 `json:"delta,omitempty"`
	Status    Status   `json:"status"`
	Error     string   `json:"error,omitempty"`
	Warning   string   `json:"warning,omitempty"`
}

type jsonReport struct {
	Model     string      `json:"model,omitempty"`
	Phenotype string      `json:"phenotype"`
	Entries   []jsonEntry `json:"entries"`
}

// WriteJSON writes the report ranked by impact. Failed entries omit the
// numeric fields since JSON has no NaN.
func WriteJSON(w io.Writer, r *Report) error {
	out := jsonReport{Model: r.Model, Phenotype: r.Phenotype}
	for _, e := range r.ByImpact() {
		je := jsonEntry{Species: e.Species, Baseline: e.Baseline, Status: e.Status, Error: e.Error, Warning: e.Warning}
		if e.Status != StatusFailed {
			p, d := e.Perturbed, e.Delta
			je.Perturbed, je.Delta = &p, &d
		}
		out.Entries = append(out.Entries, je)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
