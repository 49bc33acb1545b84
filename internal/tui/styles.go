package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Focused  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Spinner  lipgloss.Style
	Question lipgloss.Style
	Footer   lipgloss.Style
}

func defaultStyles() styles {
	accent := lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#A78BFA"}
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Label:    lipgloss.NewStyle().Bold(true).Width(9),
		Focused:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		Spinner:  lipgloss.NewStyle().Foreground(accent),
		Question: lipgloss.NewStyle().Bold(true),
		Footer:   lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}).MarginTop(1),
	}
}
