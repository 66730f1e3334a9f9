package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/progressforms/pkg/domain"
)

// ProgressBar draws one segment per panel. layout is the percentage width of
// a segment, as reported by the navigator.
func ProgressBar(panels []domain.Panel, states []domain.IndicatorState, layout float64, width int) string {
	if len(panels) == 0 || width <= 0 {
		return ""
	}
	segment := int(layout * float64(width) / 100)
	if segment < 3 {
		segment = 3
	}

	cells := make([]string, len(panels))
	for i, p := range panels {
		style := lipgloss.NewStyle().Width(segment).Align(lipgloss.Center)
		state := domain.IndicatorPending
		if i < len(states) {
			state = states[i]
		}
		switch state {
		case domain.IndicatorCompleted:
			style = style.Background(colorGreen).Foreground(lipgloss.Color("#1e1e2e"))
		case domain.IndicatorActive:
			style = style.Background(colorLavender).Foreground(lipgloss.Color("#1e1e2e")).Bold(true)
		default:
			style = style.Background(colorSurface1).Foreground(colorOverlay1)
		}
		cells[i] = style.Render(truncate(p.Label(), segment-2))
	}
	return strings.Join(cells, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
