package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerGradient = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the form title framed in a colour gradient.
func PrintBanner(w io.Writer, title string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	rule := strings.Repeat("=", len(title)+4)
	lines := []string{rule, "  " + title, rule}

	fmt.Fprintln(w)
	for i, line := range lines {
		color := bannerGradient[(i*2)%len(bannerGradient)]
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(color)).Bold())
	}
	fmt.Fprintln(w)
}
