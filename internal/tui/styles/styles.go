package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	Accent     = lipgloss.Color("#38BDF8")
	SlateDark  = lipgloss.Color("#0F172A")
	SlateLight = lipgloss.Color("#334155")
	DimGray    = lipgloss.Color("#64748B")
	LightGray  = lipgloss.Color("#94A3B8")
	White      = lipgloss.Color("#F8FAFC")
	Green      = lipgloss.Color("#22C55E")
	Amber      = lipgloss.Color("#F59E0B")
	Red        = lipgloss.Color("#EF4444")
	Violet     = lipgloss.Color("#A78BFA")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(Accent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Amber)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Green)

	LabelStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Width(16)
)

// Tab styles
var (
	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Accent).
			Bold(true).
			Padding(0, 1)

	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(LightGray).
				Padding(0, 1)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(1, 2).
			Background(SlateDark)
)

// Badge styles
var (
	BadgeStyle = lipgloss.NewStyle().
			Foreground(SlateDark).
			Background(Accent).
			Padding(0, 1)

	DimBadgeStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateLight).
			Padding(0, 1)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Accent)
)

// Filter styles
var (
	FilterStyle = lipgloss.NewStyle().
			Foreground(Accent)

	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)
)

// Match highlight styles for filter results
var (
	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(Accent).
				Bold(true)

	MatchHighlightSelectedStyle = lipgloss.NewStyle().
					Foreground(Accent).
					Background(SlateLight).
					Bold(true)
)

// TypeColor returns the badge colour of a study type
func TypeColor(t string) lipgloss.Color {
	switch t {
	case "MRI":
		return Accent
	case "CT":
		return Violet
	case "Ultrasound":
		return Green
	case "X-Ray":
		return Amber
	default:
		return LightGray
	}
}

// StatusColor returns the colour for a lab or measurement status
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "abnormal":
		return Amber
	case "critical":
		return Red
	case "not_measured":
		return DimGray
	default:
		return Green
	}
}

// Helper functions

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// Pad pads a string to the given display width
func Pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// RenderListRow renders a complete list row with uniform background when selected.
// This function styles each part explicitly to avoid ANSI reset code issues.
// parts is a slice of {text, fgColor} pairs. Use nil for default foreground.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	bg := SlateLight
	defaultFg := LightGray
	selectedFg := White

	var result strings.Builder
	visibleLen := 0

	for _, part := range parts {
		style := lipgloss.NewStyle()
		if part.Foreground != nil {
			style = style.Foreground(*part.Foreground)
		} else if selected {
			style = style.Foreground(selectedFg)
		} else {
			style = style.Foreground(defaultFg)
		}
		if part.Bold {
			style = style.Bold(true)
		}
		if selected {
			style = style.Background(bg)
		}
		result.WriteString(style.Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Add padding to fill width (subtract 2 for left/right margin)
	paddingNeeded := width - visibleLen - 2
	if paddingNeeded > 0 {
		padStyle := lipgloss.NewStyle()
		if selected {
			padStyle = padStyle.Background(bg)
		}
		result.WriteString(padStyle.Render(strings.Repeat(" ", paddingNeeded)))
	}

	marginStyle := lipgloss.NewStyle()
	if selected {
		marginStyle = marginStyle.Background(bg)
	}
	margin := marginStyle.Render(" ")

	return margin + result.String() + margin
}

// RowPart represents a part of a row with optional foreground color
type RowPart struct {
	Text       string
	Foreground *lipgloss.Color
	Bold       bool
}
