package viz

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Up        lipgloss.Color
	Down      lipgloss.Color
	Warning   lipgloss.Color
}

var (
	ThemeDefault = Theme{
		Name:      "default",
		Primary:   lipgloss.Color("#00ffff"),
		Secondary: lipgloss.Color("#444466"),
		Text:      lipgloss.Color("#e0e0e0"),
		Muted:     lipgloss.Color("#666688"),
		Up:        lipgloss.Color("#00ff88"),
		Down:      lipgloss.Color("#ff4444"),
		Warning:   lipgloss.Color("#ffcc00"),
	}

	ThemeMinimal = Theme{
		Name:      "minimal",
		Primary:   lipgloss.Color("#ffffff"),
		Secondary: lipgloss.Color("#888888"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#888888"),
		Up:        lipgloss.Color("#0088ff"),
		Down:      lipgloss.Color("#ff8800"),
		Warning:   lipgloss.Color("#ffaa00"),
	}

	// red/green free for colorblind users
	ThemeContrast = Theme{
		Name:      "contrast",
		Primary:   lipgloss.Color("#ffff00"),
		Secondary: lipgloss.Color("#ffffff"),
		Text:      lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#aaaaaa"),
		Up:        lipgloss.Color("#00aaff"),
		Down:      lipgloss.Color("#ff00ff"),
		Warning:   lipgloss.Color("#ffff00"),
	}
)

var Themes = []Theme{ThemeDefault, ThemeMinimal, ThemeContrast}
