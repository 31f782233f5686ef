package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/particlebox/internal/config"
	"github.com/san-kum/particlebox/internal/experiment"
)

var presetInfo = map[string]string{
	"small":   "radius 10, light gravity",
	"large":   "radius 30, light gravity",
	"drop":    "straight drop onto the floor",
	"pinball": "two particles, no gravity",
	"floor":   "bottom wall only",
}

type menuModel struct {
	cursor  int
	presets []string
	chosen  string
}

func newMenu() menuModel {
	return menuModel{presets: config.ListPresets()}
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = m.presets[m.cursor]
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	var s strings.Builder
	s.WriteString(headerStyle().Render("PARTICLEBOX") + "\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-8s %s", name, presetInfo[name])
		if i == m.cursor {
			s.WriteString(activeStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + lipgloss.NewStyle().Foreground(CurrentTheme.Value).Render(line) + "\n")
		}
	}
	s.WriteString(helpStyle().Render("↑↓:Move Enter:Start Q:Quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}

// RunInteractive shows the preset menu and then runs the chosen scene.
func RunInteractive() error {
	final, err := tea.NewProgram(newMenu()).Run()
	if err != nil {
		return err
	}
	chosen := final.(menuModel).chosen
	if chosen == "" {
		return nil
	}
	return Run(config.GetPreset(chosen), chosen)
}

// Run builds the scene described by cfg and shows it full screen.
func Run(cfg *config.Config, name string) error {
	reg := experiment.NewRegistry()
	exp := experiment.New(cfg)
	if err := exp.Setup(reg, nil); err != nil {
		return err
	}

	m := NewModel(exp.GetSimulator(), exp.Store(), cfg.Dt, cfg.FrameRate, cfg.WindowExtents(), name)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
