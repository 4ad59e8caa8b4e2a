package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

// DocumentPanel is a scrollable text pane used by the Echo and Timeline tabs
type DocumentPanel struct {
	viewport viewport.Model
	empty    string
	content  string
	width    int
	height   int
}

// NewDocumentPanel creates a panel showing empty until content is set
func NewDocumentPanel(empty string) *DocumentPanel {
	return &DocumentPanel{viewport: viewport.New(0, 0), empty: empty}
}

// SetContent replaces the text and scrolls to the top
func (p *DocumentPanel) SetContent(content string) {
	p.content = content
	p.viewport.SetContent(content)
	p.viewport.GotoTop()
}

// SetSize sets the panel's outer dimensions
func (p *DocumentPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.viewport.Width = width
	p.viewport.Height = height
}

// Update scrolls the viewport
func (p *DocumentPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return cmd
}

func (p *DocumentPanel) View() string {
	if p.content == "" {
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center, styles.DimStyle.Render(p.empty))
	}
	return p.viewport.View()
}

// RenderEchoReports formats echocardiography reports for a DocumentPanel
func RenderEchoReports(reports []domain.EchoReport, width int) string {
	if len(reports) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range reports {
		if i > 0 {
			sb.WriteString("\n" + styles.DimStyle.Render(strings.Repeat("─", max(1, width-4))) + "\n\n")
		}
		sb.WriteString(styles.TitleStyle.Render("Echocardiography · "+r.Date) + "\n")
		sb.WriteString(styles.SubtitleStyle.Render(r.Hospital+" · "+r.Cardiologist) + "\n\n")

		ef := fmt.Sprintf("%d%%", r.EjectionFraction)
		efStyle := styles.SuccessStyle
		if r.EjectionFraction < 50 {
			efStyle = styles.WarningStyle
		}
		sb.WriteString(field("Ejection fraction", efStyle.Render(ef)) + "\n")
		sb.WriteString(field("LV function", r.LVFunction) + "\n\n")

		sb.WriteString(styles.AccentStyle.Render("Measurements") + "\n")
		for _, m := range r.Measurements {
			fg := styles.StatusColor(string(m.Status))
			value := strings.TrimSpace(m.PatientValue + " " + m.Unit)
			if m.Status == domain.MeasurementNotMeasured {
				value = "not measured"
			}
			sb.WriteString(fmt.Sprintf("  %-28s %-16s %s\n",
				styles.Truncate(m.Parameter, 28),
				styles.Truncate(m.NormalRange, 16),
				lipgloss.NewStyle().Foreground(fg).Render(value)))
		}

		writeList(&sb, "Remarks", r.Remarks)
		writeList(&sb, "Conclusion", r.Conclusion)
		if r.Recommendation != "" {
			sb.WriteString("\n" + styles.AccentStyle.Render("Recommendation") + "\n  " + r.Recommendation + "\n")
		}
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + styles.AccentStyle.Render(title) + "\n")
	for _, item := range items {
		sb.WriteString("  • " + item + "\n")
	}
}

// RenderTimeline formats the merged patient history for a DocumentPanel
func RenderTimeline(entries []domain.TimelineEntry, width int) string {
	if len(entries) == 0 {
		return ""
	}
	var sb strings.Builder
	lastDate := ""
	for _, e := range entries {
		if e.Date != lastDate {
			if lastDate != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(styles.AccentStyle.Render(e.Date) + "\n")
			lastDate = e.Date
		}
		icon, fg := "◆", styles.Accent
		switch e.Kind {
		case domain.TimelineLab:
			icon, fg = "◇", styles.LightGray
		case domain.TimelineEcho:
			icon, fg = "♥", styles.Red
		}
		line := lipgloss.NewStyle().Foreground(fg).Render(icon) + " " +
			styles.TitleStyle.Render(styles.Truncate(e.Title, max(10, width/2))) + "  " +
			styles.DimStyle.Render(e.Description)
		if e.Attachment != "" {
			line += styles.DimStyle.Render("  [report]")
		}
		sb.WriteString("  " + line + "\n")
	}
	return sb.String()
}
