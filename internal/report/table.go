package report

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1)
	downStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Padding(0, 1)
	upStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Padding(0, 1)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Padding(0, 1)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

func signed(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%+.4f", v)
}

func plain(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

// RenderTable draws ranked entries as a bordered terminal table.
func RenderTable(title string, entries []Entry) string {
	rows := make([][]string, len(entries))
	for k, e := range entries {
		note := e.Warning
		if e.Status == StatusFailed {
			note = e.Error
		}
		rows[k] = []string{
			fmt.Sprintf("%d", k+1),
			e.Species,
			plain(e.Baseline),
			plain(e.Perturbed),
			signed(e.Delta),
			string(e.Status),
			truncate(note, 48),
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("#", "species", "baseline", "knocked", "delta", "status", "note").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			e := entries[row]
			switch {
			case e.Status == StatusFailed:
				return failStyle
			case col == 5 && e.Status == StatusWarning:
				return warnStyle
			case col == 4 && e.Delta < 0:
				return downStyle
			case col == 4 && e.Delta > 0:
				return upStyle
			}
			return cellStyle
		})

	if title == "" {
		return t.Render()
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}

// RenderChanges draws a single-knockdown table of every species.
func RenderChanges(title string, changes []Change) string {
	rows := make([][]string, len(changes))
	for k, c := range changes {
		rows[k] = []string{c.Species, plain(c.Baseline), plain(c.Perturbed), signed(c.Delta)}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("species", "baseline", "knocked", "delta").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 && changes[row].Delta < 0 {
				return downStyle
			}
			if col == 3 && changes[row].Delta > 0 {
				return upStyle
			}
			return cellStyle
		})
	return titleStyle.Render(title) + "\n" + t.Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
