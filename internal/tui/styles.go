package tui

import "github.com/charmbracelet/lipgloss"

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 1).
			Bold(true)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	slotHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(12).
			Align(lipgloss.Center)

	nameStyle = lipgloss.NewStyle().Width(16)

	cellStyle = lipgloss.NewStyle().
			Width(12).
			Align(lipgloss.Center)

	cursorStyle = cellStyle.
			Background(lipgloss.Color("236")).
			Bold(true)

	takenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	timerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 2)

	dangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	docStyle = lipgloss.NewStyle().Padding(1, 2)
)

// dropStyle colors a drop's name with its configured color.
func dropStyle(color string) lipgloss.Style {
	if color == "" {
		return nameStyle
	}
	return nameStyle.Foreground(lipgloss.Color(color))
}
