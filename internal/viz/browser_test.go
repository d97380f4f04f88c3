package viz

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/netsens/internal/report"
)

func testReport() *report.Report {
	return &report.Report{
		Model:     "chain3",
		Phenotype: "C",
		Entries: []report.Entry{
			{Index: 0, Species: "A", Baseline: 1, Perturbed: 0.5, Delta: -0.5, Magnitude: 0.5, Status: report.StatusOK},
			{Index: 1, Species: "B", Baseline: 1, Perturbed: 0, Delta: -1, Magnitude: 1, Status: report.StatusOK},
			{Index: 2, Species: "D", Baseline: 1, Perturbed: 1.25, Delta: 0.25, Magnitude: 0.25, Status: report.StatusWarning, Warning: "drift"},
			{Index: 3, Species: "E", Delta: math.NaN(), Magnitude: math.NaN(), Status: report.StatusFailed, Error: "step budget"},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(b Browser, keys ...string) Browser {
	var m tea.Model = b
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m.(Browser)
}

func TestBrowser_Navigation(t *testing.T) {
	b := NewBrowser(testReport(), nil)

	e, ok := b.Selected()
	if !ok || e.Species != "B" {
		t.Fatalf("first by impact should be B, got %+v", e)
	}

	b = send(b, "down", "down")
	if e, _ := b.Selected(); e.Species != "D" {
		t.Errorf("after two downs selected %s", e.Species)
	}

	b = send(b, "down", "down", "down")
	if e, _ := b.Selected(); e.Species != "E" {
		t.Errorf("cursor should stop at the last entry, got %s", e.Species)
	}

	b = send(b, "up", "k")
	if e, _ := b.Selected(); e.Species != "A" {
		t.Errorf("after moving up selected %s", e.Species)
	}
}

func TestBrowser_ToggleSort(t *testing.T) {
	b := send(NewBrowser(testReport(), nil), "s")
	var got []string
	for _, e := range b.entries {
		got = append(got, e.Species)
	}
	if strings.Join(got, "") != "BADE" {
		t.Errorf("direction order = %v", got)
	}
	if !strings.Contains(b.View(), "ranked by direction") {
		t.Error("view should name the active ranking")
	}
}

func TestBrowser_Detail(t *testing.T) {
	calls := 0
	changes := func(index int) []report.Change {
		calls++
		return []report.Change{
			{Index: 2, Species: "C", Delta: -1},
			{Index: 1, Species: "B", Delta: -1},
		}
	}
	b := NewBrowser(testReport(), changes)

	if strings.Contains(b.View(), "changes ") || calls != 0 {
		t.Error("detail should be hidden until enter")
	}

	b = send(b, "enter")
	view := b.View()
	if calls == 0 || !strings.Contains(view, "changes ") {
		t.Errorf("detail not rendered:\n%s", view)
	}
}

func TestBrowser_Quit(t *testing.T) {
	_, cmd := NewBrowser(testReport(), nil).Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestBrowser_ThemeAndResize(t *testing.T) {
	b := send(NewBrowser(testReport(), nil), "t")
	if !strings.Contains(b.View(), "theme minimal") {
		t.Error("theme should cycle")
	}

	m, _ := b.Update(tea.WindowSizeMsg{Width: 60, Height: 10})
	if m.(Browser).height != 10 {
		t.Error("window size not applied")
	}
}

func TestBrowser_Empty(t *testing.T) {
	b := NewBrowser(&report.Report{Phenotype: "C"}, nil)
	if _, ok := b.Selected(); ok {
		t.Error("empty report has no selection")
	}
	if !strings.Contains(b.View(), "no scenarios") {
		t.Error("empty view should say so")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 1}); got != "▁█" {
		t.Errorf("Sparkline = %q", got)
	}
	if got := Sparkline([]float64{math.NaN(), 2, 2}); got != " ▁▁" {
		t.Errorf("Sparkline = %q", got)
	}
	if Sparkline(nil) != "" {
		t.Error("empty sparkline")
	}
}
