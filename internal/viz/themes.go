package viz

import "github.com/charmbracelet/lipgloss"

// Theme colours the sandbox view. Scene is the braille layer holding walls
// and particles; the remaining colours belong to the side panel.
type Theme struct {
	Name      string
	Scene     lipgloss.Color
	Frame     lipgloss.Color
	Title     lipgloss.Color
	Label     lipgloss.Color
	Value     lipgloss.Color
	Selected  lipgloss.Color
	Chart     lipgloss.Color
	Running   lipgloss.Color
	Paused    lipgloss.Color
	Recording lipgloss.Color
}

var (
	// ThemeNight draws pale walls and particles on a dark terminal.
	ThemeNight = Theme{
		Name:      "night",
		Scene:     lipgloss.Color("#d8e2f0"),
		Frame:     lipgloss.Color("#3a4a63"),
		Title:     lipgloss.Color("#7aa2f7"),
		Label:     lipgloss.Color("#6b7a93"),
		Value:     lipgloss.Color("#c0caf5"),
		Selected:  lipgloss.Color("#ff9e64"),
		Chart:     lipgloss.Color("#7dcfff"),
		Running:   lipgloss.Color("#9ece6a"),
		Paused:    lipgloss.Color("#e0af68"),
		Recording: lipgloss.Color("#f7768e"),
	}

	ThemePhosphor = Theme{
		Name:      "phosphor",
		Scene:     lipgloss.Color("#33ff66"),
		Frame:     lipgloss.Color("#0f5c24"),
		Title:     lipgloss.Color("#66ff99"),
		Label:     lipgloss.Color("#1f8f3f"),
		Value:     lipgloss.Color("#33ff66"),
		Selected:  lipgloss.Color("#ccffdd"),
		Chart:     lipgloss.Color("#33ff66"),
		Running:   lipgloss.Color("#66ff99"),
		Paused:    lipgloss.Color("#ccff33"),
		Recording: lipgloss.Color("#ff5533"),
	}

	// ThemeChalk suits light terminals.
	ThemeChalk = Theme{
		Name:      "chalk",
		Scene:     lipgloss.Color("#2b2b2b"),
		Frame:     lipgloss.Color("#b0b0b0"),
		Title:     lipgloss.Color("#005f87"),
		Label:     lipgloss.Color("#767676"),
		Value:     lipgloss.Color("#1c1c1c"),
		Selected:  lipgloss.Color("#af005f"),
		Chart:     lipgloss.Color("#005f87"),
		Running:   lipgloss.Color("#008700"),
		Paused:    lipgloss.Color("#af8700"),
		Recording: lipgloss.Color("#d70000"),
	}

	Themes = []Theme{ThemeNight, ThemePhosphor, ThemeChalk}

	CurrentTheme = ThemeNight
)

// GetTheme returns a theme by name, or the default one.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeNight
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

// NextTheme switches to the theme after the current one.
func NextTheme() {
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			CurrentTheme = Themes[(i+1)%len(Themes)]
			return
		}
	}
	CurrentTheme = Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}
