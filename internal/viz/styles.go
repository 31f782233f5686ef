package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func canvasStyle() lipgloss.Style {
	return lipgloss.NewStyle().Padding(1, 2).Foreground(CurrentTheme.Scene)
}

func statsStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(CurrentTheme.Frame).
		Padding(1, 2).
		Width(44)
}

func headerStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Title).Bold(true).MarginBottom(1)
}

func labelStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Label).Width(12)
}

func valueStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Value)
}

func activeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Selected).Bold(true)
}

func graphStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Chart).Padding(1, 0)
}

func helpStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.Label).MarginTop(1)
}

func statusStyle(paused, recording bool) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case recording:
		return s.Foreground(CurrentTheme.Recording)
	case paused:
		return s.Foreground(CurrentTheme.Paused)
	}
	return s.Foreground(CurrentTheme.Running)
}

// SliderBar draws v's position inside [lo, hi] as a bar of width cells.
func SliderBar(v, lo, hi float64, width int) string {
	ratio := 0.0
	if hi > lo {
		ratio = (v - lo) / (hi - lo)
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}
