package report

import (
	"math"
	"sort"

	"github.com/san-kum/netsens/internal/dynamo"
	"github.com/san-kum/netsens/internal/sweep"
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusWarning Status = "warning"
	StatusFailed  Status = "failed"
)

// Entry is one knocked species' effect on the phenotype. Delta and
// Magnitude are NaN for failed entries.
type Entry struct {
	Index     int
	Species   string
	Baseline  float64
	Perturbed float64
	Delta     float64
	Magnitude float64
	Status    Status
	Error     string
	Warning   string
}

type Report struct {
	Model     string
	Phenotype string
	Entries   []Entry
}

// Rank builds a report from sweep scenarios. Entries keep scenario order
// until one of the sort methods is called.
func Rank(names []string, baseline dynamo.State, scenarios []sweep.Scenario, phenotype int) *Report {
	r := &Report{Entries: make([]Entry, 0, len(scenarios))}
	if phenotype >= 0 && phenotype < len(names) {
		r.Phenotype = names[phenotype]
	}
	for _, s := range scenarios {
		e := Entry{
			Index:   s.Index,
			Species: s.Species,
			Status:  StatusOK,
		}
		if e.Species == "" && s.Index < len(names) {
			e.Species = names[s.Index]
		}
		if phenotype >= 0 && phenotype < len(baseline) {
			e.Baseline = baseline[phenotype]
		}
		switch {
		case s.Failed():
			e.Status = StatusFailed
			e.Error = s.Err.Error()
			e.Perturbed, e.Delta, e.Magnitude = math.NaN(), math.NaN(), math.NaN()
		default:
			e.Perturbed = s.Phenotype
			e.Delta = e.Perturbed - e.Baseline
			e.Magnitude = math.Abs(e.Delta)
			if s.Warning != "" {
				e.Status = StatusWarning
				e.Warning = s.Warning
			}
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// FromAnalysis ranks a finished sweep.
func FromAnalysis(a *sweep.Analysis) *Report {
	r := Rank(a.Model.Names(), a.Baseline.Values, a.Scenarios, a.Config.Phenotype)
	r.Model = a.Model.Name
	return r
}

// ByImpact orders entries by magnitude, largest first.
func (r *Report) ByImpact() []Entry {
	return r.sorted(func(a, b Entry) bool { return a.Magnitude > b.Magnitude })
}

// ByDirection orders entries by signed delta, most negative first.
func (r *Report) ByDirection() []Entry {
	return r.sorted(func(a, b Entry) bool { return a.Delta < b.Delta })
}

// sorted returns a sorted copy. Ties break on species index; failed
// entries follow all others in index order.
func (r *Report) sorted(less func(a, b Entry) bool) []Entry {
	out := append([]Entry(nil), r.Entries...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		af, bf := a.Status == StatusFailed, b.Status == StatusFailed
		if af != bf {
			return bf
		}
		if af {
			return a.Index < b.Index
		}
		if less(a, b) {
			return true
		}
		if less(b, a) {
			return false
		}
		return a.Index < b.Index
	})
	return out
}

// Failed counts failed entries.
func (r *Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Top returns the first n entries by impact.
func (r *Report) Top(n int) []Entry {
	all := r.ByImpact()
	if n <= 0 || n > len(all) {
		return all
	}
	return all[:n]
}
