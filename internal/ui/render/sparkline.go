// internal/ui/render/sparkline.go
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline рисует путь цены токена по истории сделок
type Sparkline struct {
	data  []float64
	width int
}

// NewSparkline keeps at most width most recent points
func NewSparkline(width int, data []float64) *Sparkline {
	if width > 0 && len(data) > width {
		data = data[len(data)-width:]
	}
	return &Sparkline{data: append([]float64(nil), data...), width: width}
}

// Blocks returns the unstyled sparkline, padded with spaces to width
func (s *Sparkline) Blocks() string {
	if s.width <= 0 {
		return ""
	}
	if len(s.data) == 0 {
		return strings.Repeat(string(sparkChars[0]), s.width)
	}

	lo, hi := s.data[0], s.data[0]
	for _, v := range s.data {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var b strings.Builder
	for _, v := range s.data {
		idx := len(sparkChars) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkChars)-1))
		}
		b.WriteRune(sparkChars[idx])
	}
	b.WriteString(strings.Repeat(" ", s.width-len(s.data)))
	return b.String()
}

// Trend compares the last point with the first
func (s *Sparkline) Trend() string {
	if len(s.data) < 2 {
		return "→"
	}
	first, last := s.data[0], s.data[len(s.data)-1]
	switch {
	case last > first:
		return "↗"
	case last < first:
		return "↘"
	default:
		return "→"
	}
}

// View renders the colored sparkline with its trend arrow
func (s *Sparkline) View() string {
	palette := style.DefaultPalette()
	color := palette.TextMuted
	switch s.Trend() {
	case "↗":
		color = palette.Buy
	case "↘":
		color = palette.Sell
	}
	st := lipgloss.NewStyle().Foreground(color)
	return st.Render(s.Blocks()) + " " + st.Bold(true).Render(s.Trend())
}
