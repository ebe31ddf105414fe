// internal/ui/render/gauge.go
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/launchpad/internal/ui/style"
)

// ProgressGauge рисует прогресс выпуска токена с кривой
type ProgressGauge struct {
	percent   float64
	width     int
	graduated bool
	palette   style.Palette
}

// NewProgressGauge creates a gauge of the given width in cells
func NewProgressGauge(width int) *ProgressGauge {
	return &ProgressGauge{width: width, palette: style.DefaultPalette()}
}

// SetPercent sets progress, clamped to [0, 100]
func (g *ProgressGauge) SetPercent(percent float64) *ProgressGauge {
	if math.IsNaN(percent) {
		percent = 0
	}
	g.percent = math.Max(0, math.Min(percent, 100))
	return g
}

// SetGraduated switches the gauge to the graduated color
func (g *ProgressGauge) SetGraduated(graduated bool) *ProgressGauge {
	g.graduated = graduated
	return g
}

// Bar returns the unstyled bar
func (g *ProgressGauge) Bar() string {
	if g.width <= 0 {
		return ""
	}

	// Eighth blocks give sub-cell resolution on the leading edge.
	partials := []string{"", "▏", "▎", "▍", "▌", "▋", "▊", "▉"}

	eighths := int(math.Round(g.percent / 100 * float64(g.width*8)))
	full := eighths / 8
	rest := eighths % 8

	var b strings.Builder
	b.WriteString(strings.Repeat("█", full))
	cells := full
	if rest > 0 {
		b.WriteString(partials[rest])
		cells++
	}
	b.WriteString(strings.Repeat("░", g.width-cells))
	return b.String()
}

// View renders the gauge with its percentage
func (g *ProgressGauge) View() string {
	color := g.palette.Warning
	switch {
	case g.graduated || g.percent >= 100:
		color = g.palette.Graduated
	case g.percent >= 75:
		color = g.palette.Success
	case g.percent < 25:
		color = g.palette.TextMuted
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(g.Bar())
	text := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%6.2f%%", g.percent))
	return bar + " " + text
}
