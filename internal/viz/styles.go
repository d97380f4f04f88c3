package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	panel    lipgloss.Style
	title    lipgloss.Style
	selected lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	up       lipgloss.Style
	down     lipgloss.Style
	warning  lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Secondary).
			Padding(0, 1),
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		selected: lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Reverse(true),
		text:     lipgloss.NewStyle().Foreground(t.Text),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		up:       lipgloss.NewStyle().Foreground(t.Up),
		down:     lipgloss.NewStyle().Foreground(t.Down),
		warning:  lipgloss.NewStyle().Foreground(t.Warning),
	}
}

// DeltaBar renders a signed horizontal bar centered on zero. scale is the
// magnitude that fills one half.
func DeltaBar(delta, scale float64, width int, s styles) string {
	half := width / 2
	if math.IsNaN(delta) || scale <= 0 {
		return strings.Repeat(" ", half) + s.muted.Render("·") + strings.Repeat(" ", width-half-1)
	}
	n := int(math.Round(math.Min(math.Abs(delta)/scale, 1) * float64(half)))
	if delta < 0 {
		return strings.Repeat(" ", half-n) + s.down.Render(strings.Repeat("█", n)) + "│" + strings.Repeat(" ", width-half-1)
	}
	return strings.Repeat(" ", half) + "│" + s.up.Render(strings.Repeat("█", n)) + strings.Repeat(" ", max(0, width-half-1-n))
}

// Sparkline renders values as block characters scaled to their own range.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 || math.IsInf(rng, 0) {
		rng = 1
	}

	var b strings.Builder
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteRune(' ')
			continue
		}
		idx := int((v - lo) / rng * float64(len(chars)-1))
		b.WriteRune(chars[max(0, min(idx, len(chars)-1))])
	}
	return b.String()
}

func signed(v float64) string {
	if math.IsNaN(v) {
		return "    -   "
	}
	return fmt.Sprintf("%+.4f", v)
}
