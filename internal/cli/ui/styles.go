package ui

import "github.com/charmbracelet/lipgloss"

// Styles defines all lipgloss styles used in the CLI
var Styles = struct {
	Bold      lipgloss.Style
	Banner    lipgloss.Style
	SongCard  lipgloss.Style
	SongTitle lipgloss.Style
	Genre     lipgloss.Style
}{
	Bold: lipgloss.NewStyle().Bold(true),

	Banner: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(1, 2).
		Align(lipgloss.Center),

	SongCard: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("204")).
		Padding(0, 1),

	SongTitle: lipgloss.NewStyle().Bold(true),

	Genre: lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
}
