package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorLavender lipgloss.Color = "#b4befe"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorText     lipgloss.Color = "#cdd6f4"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(colorLavender).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorText)
	focusStyle    = lipgloss.NewStyle().Foreground(colorPeach).Bold(true)
	hintStyle     = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle    = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	requiredStyle = lipgloss.NewStyle().Foreground(colorRed)
	inputStyle    = lipgloss.NewStyle().Foreground(colorText).Underline(true)
)
