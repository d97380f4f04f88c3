package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/netsens/internal/report"
)

type ranking int

const (
	byImpact ranking = iota
	byDirection
)

func (r ranking) String() string {
	if r == byDirection {
		return "direction"
	}
	return "impact"
}

// ChangesFunc returns the per-species changes for the knockdown of species
// index, or nil when they are not available (e.g. a run loaded from disk).
type ChangesFunc func(index int) []report.Change

type Browser struct {
	report  *report.Report
	changes ChangesFunc

	entries []report.Entry
	order   ranking
	cursor  int
	detail  bool
	theme   int
	styles  styles
	scale   float64

	width  int
	height int
}

func NewBrowser(r *report.Report, changes ChangesFunc) Browser {
	b := Browser{
		report:  r,
		changes: changes,
		styles:  newStyles(Themes[0]),
		width:   100,
		height:  30,
	}
	for _, e := range r.Entries {
		if !math.IsNaN(e.Magnitude) {
			b.scale = math.Max(b.scale, e.Magnitude)
		}
	}
	b.resort()
	return b
}

func (b *Browser) resort() {
	if b.order == byDirection {
		b.entries = b.report.ByDirection()
	} else {
		b.entries = b.report.ByImpact()
	}
	if b.cursor >= len(b.entries) {
		b.cursor = max(0, len(b.entries)-1)
	}
}

// Selected returns the entry under the cursor.
func (b Browser) Selected() (report.Entry, bool) {
	if len(b.entries) == 0 {
		return report.Entry{}, false
	}
	return b.entries[b.cursor], true
}

func (b Browser) Init() tea.Cmd { return nil }

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width, b.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if b.detail && msg.String() == "esc" {
				b.detail = false
				return b, nil
			}
			return b, tea.Quit
		case "up", "k":
			if b.cursor > 0 {
				b.cursor--
			}
		case "down", "j":
			if b.cursor < len(b.entries)-1 {
				b.cursor++
			}
		case "home", "g":
			b.cursor = 0
		case "end", "G":
			b.cursor = max(0, len(b.entries)-1)
		case "s":
			b.order = (b.order + 1) % 2
			b.resort()
		case "enter":
			b.detail = !b.detail
		case "t":
			b.theme = (b.theme + 1) % len(Themes)
			b.styles = newStyles(Themes[b.theme])
		}
	}
	return b, nil
}

func (b Browser) View() string {
	s := b.styles
	var out strings.Builder

	title := fmt.Sprintf("knockdown sensitivity of %s", b.report.Phenotype)
	if b.report.Model != "" {
		title += " in " + b.report.Model
	}
	out.WriteString(s.title.Render(title))
	out.WriteString(s.muted.Render(fmt.Sprintf("   ranked by %s   theme %s", b.order, Themes[b.theme].Name)))
	out.WriteString("\n\n")

	rows := max(5, b.height-8)
	start := 0
	if b.cursor >= rows {
		start = b.cursor - rows + 1
	}
	end := min(len(b.entries), start+rows)

	var list strings.Builder
	for i := start; i < end; i++ {
		e := b.entries[i]
		line := fmt.Sprintf("%3d %-14s %s %s", i+1, clip(e.Species, 14), signed(e.Delta), DeltaBar(e.Delta, b.scale, 24, s))
		switch {
		case i == b.cursor:
			line = s.selected.Render(fmt.Sprintf("%3d %-14s %s", i+1, clip(e.Species, 14), signed(e.Delta))) + " " + DeltaBar(e.Delta, b.scale, 24, s)
		case e.Status == report.StatusFailed:
			line = s.muted.Render(line)
		case e.Status == report.StatusWarning:
			line = s.warning.Render("!") + line[1:]
		}
		list.WriteString(line + "\n")
	}
	if len(b.entries) == 0 {
		list.WriteString(s.muted.Render("no scenarios"))
	}
	out.WriteString(s.panel.Render(strings.TrimRight(list.String(), "\n")))
	out.WriteString("\n")

	if e, ok := b.Selected(); ok {
		out.WriteString(b.viewSelected(e))
	}

	out.WriteString("\n" + s.muted.Render("↑/↓ move  s sort  enter detail  t theme  q quit"))
	return out.String()
}

func (b Browser) viewSelected(e report.Entry) string {
	s := b.styles
	var out strings.Builder

	fmt.Fprintf(&out, "%s  baseline %.4f  knocked %s  status %s\n",
		s.title.Render(e.Species), e.Baseline, signed(e.Perturbed), e.Status)
	switch e.Status {
	case report.StatusFailed:
		out.WriteString(s.down.Render(e.Error) + "\n")
	case report.StatusWarning:
		out.WriteString(s.warning.Render(e.Warning) + "\n")
	}

	if !b.detail || b.changes == nil {
		return out.String()
	}
	changes := b.changes(e.Index)
	if len(changes) == 0 {
		out.WriteString(s.muted.Render("no per-species changes recorded") + "\n")
		return out.String()
	}

	deltas := make([]float64, len(changes))
	scale := 0.0
	for i, c := range changes {
		deltas[i] = c.Delta
		scale = math.Max(scale, math.Abs(c.Delta))
	}
	out.WriteString(s.muted.Render("changes ") + Sparkline(deltas) + "\n")
	for _, c := range changes[:min(len(changes), 12)] {
		fmt.Fprintf(&out, "  %-14s %s %s\n", clip(c.Species, 14), signed(c.Delta), DeltaBar(c.Delta, scale, 24, s))
	}
	return out.String()
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Run starts the browser on the alternate screen.
func Run(r *report.Report, changes ChangesFunc) error {
	_, err := tea.NewProgram(NewBrowser(r, changes), tea.WithAltScreen()).Run()
	return err
}
