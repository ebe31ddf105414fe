// internal/ui/style/palette.go
package style

import "github.com/charmbracelet/lipgloss"

var (
	Cyan    = lipgloss.Color("#00E5FF") // Primary highlight
	Magenta = lipgloss.Color("#FF1B6B") // Accent
	Yellow  = lipgloss.Color("#FFB500") // Warnings
	Green   = lipgloss.Color("#2AFFAA") // Buys / success
	Red     = lipgloss.Color("#FF5555") // Sells / errors
	Blue    = lipgloss.Color("#3B82F6") // Info
	Purple  = lipgloss.Color("#8B5CF6") // Graduation

	Base01 = lipgloss.Color("#6C7280") // Muted text
	Base2  = lipgloss.Color("#ECEFF4") // Primary text
	Base1  = lipgloss.Color("#B4BCC8") // Secondary text
)

// Palette provides a centralized color management
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
	Warning   lipgloss.Color
	Info      lipgloss.Color

	Text          lipgloss.Color
	TextMuted     lipgloss.Color
	TextSecondary lipgloss.Color

	Buy       lipgloss.Color
	Sell      lipgloss.Color
	Graduated lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:   Cyan,
		Secondary: Magenta,
		Success:   Green,
		Error:     Red,
		Warning:   Yellow,
		Info:      Blue,

		Text:          Base2,
		TextMuted:     Base01,
		TextSecondary: Base1,

		Buy:       Green,
		Sell:      Red,
		Graduated: Purple,
	}
}

// Styles: набор стилей для вывода CLI
type Styles struct {
	Box       lipgloss.Style
	Title     lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	Muted     lipgloss.Style
	Buy       lipgloss.Style
	Sell      lipgloss.Style
	Warning   lipgloss.Style
	Graduated lipgloss.Style
}

// NewStyles creates styles with the given palette
func NewStyles(palette Palette) Styles {
	return Styles{
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),
		Label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Width(22),
		Value: lipgloss.NewStyle().
			Foreground(palette.Text),
		Muted: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
		Buy: lipgloss.NewStyle().
			Foreground(palette.Buy).
			Bold(true),
		Sell: lipgloss.NewStyle().
			Foreground(palette.Sell).
			Bold(true),
		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning),
		Graduated: lipgloss.NewStyle().
			Foreground(palette.Graduated).
			Bold(true),
	}
}
