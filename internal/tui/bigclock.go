package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// glyphs are 5x5 digits for the big timer display
var glyphs = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
	'-': {"     ", "     ", "█████", "     ", "     "},
}

// bigClock renders an HH:MM:SS (or placeholder) reading in block digits.
// Unknown runes are skipped.
func bigClock(reading string, color string) string {
	var lines [5]strings.Builder

	for _, r := range reading {
		g, ok := glyphs[r]
		if !ok {
			continue
		}
		for i := range g {
			lines[i].WriteString(g[i])
			lines[i].WriteString(" ") // Space between digits
		}
	}

	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true)

	rows := make([]string, len(lines))
	for i := range lines {
		rows[i] = style.Render(strings.TrimRight(lines[i].String(), " "))
	}
	return strings.Join(rows, "\n")
}
