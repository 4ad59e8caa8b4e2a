package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/tui/components"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}
	if m.State == StateHelp {
		return m.renderHelp()
	}

	l := m.calculateLayout()

	var content string
	switch {
	case !l.compact:
		content = lipgloss.JoinHorizontal(lipgloss.Top,
			m.StudyList.View(),
			m.renderContentPane(l),
		)
	case m.Focus == PaneStudies:
		content = m.StudyList.RenderSwitcher(m.Width) + "\n" + m.StudyList.View()
	default:
		content = m.StudyList.RenderSwitcher(m.Width) + "\n" + m.renderContentPane(l)
	}

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderFooter())
}

// renderContentPane renders the tab bar and the active tab inside a border
func (m Model) renderContentPane(l paneLayout) string {
	style := styles.InactiveBorder
	if m.Focus == PaneContent {
		style = styles.ActiveBorder
	}
	w, h := l.bodySize()

	body := lipgloss.NewStyle().Width(w).Height(h).MaxHeight(h).Render(m.renderTabBody(w, h))
	return style.Width(w).Height(h + TabBarHeight).Render(
		components.RenderTabBar(m.Tab, w) + "\n" + body)
}

func (m Model) renderTabBody(width, height int) string {
	if !m.RecordsLoaded {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			RenderSpinner(m.SpinnerFrame)+" "+styles.DimStyle.Render("Loading records..."))
	}

	switch m.Tab {
	case components.TabReport:
		study, ok := m.activeStudy()
		if !ok {
			return components.RenderReport(nil, "", width, height, m.now())
		}
		return components.RenderReport(&study, m.Opener.ReportLocation(study), width, height, m.now())
	case components.TabPatient:
		return components.RenderPatient(m.Records, width, height, m.now())
	case components.TabLabs:
		return m.Labs.View()
	case components.TabEcho:
		return m.Echo.View()
	case components.TabTimeline:
		return m.Timeline.View()
	default:
		return m.Viewer.View()
	}
}

// renderFooter renders the status line and context hints
func (m Model) renderFooter() string {
	var left string
	if m.Loading {
		left = RenderSpinner(m.SpinnerFrame) + " " + styles.DimStyle.Render("Loading records...")
	} else if m.StatusMsg != "" {
		if m.StatusIsErr {
			left = styles.ErrorStyle.Render(m.StatusMsg)
		} else {
			left = styles.DimStyle.Render(m.StatusMsg)
		}
	}

	// Center section: hints for the focused pane
	var center string
	switch {
	case m.Focus == PaneStudies:
		center = hint("enter", "open") + hint("/", "filter") + hint("t", "type") + hint("s", "sort")
	case m.Tab == components.TabImages:
		center = hint("←→", "image") + hint("↑↓", "series") + hint("space", "play") + hint("o", "open")
	case m.Tab == components.TabReport:
		center = hint("o", "open PDF")
	case m.Tab == components.TabLabs:
		center = hint("/", "filter") + hint("a", "out of range")
	}

	right := styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	// Layout: left + centered hints + right
	leftWidth := lipgloss.Width(left)
	centerWidth := lipgloss.Width(center)
	rightWidth := lipgloss.Width(right)

	if leftWidth+centerWidth+rightWidth >= m.Width {
		gap := max(0, m.Width-leftWidth-rightWidth)
		return left + strings.Repeat(" ", gap) + right
	}

	available := m.Width - leftWidth - rightWidth
	leftPad := (available - centerWidth) / 2
	rightPad := available - centerWidth - leftPad

	return left + strings.Repeat(" ", leftPad) + center + strings.Repeat(" ", rightPad) + right
}

func hint(k, label string) string {
	return styles.AccentStyle.Render(k) + styles.DimStyle.Render(" "+label+"  ")
}

// renderHelp renders the help screen
func (m Model) renderHelp() string {
	help := `
STUDIES                         IMAGES
  j/k        Up/down               ←/→ h/l   Previous/next image
  g/G        First/last            ↑/↓ k/j   Previous/next series
  Ctrl+u/d   Half page             Space     Play/pause
  Enter      Open study            [ ]       Slower/faster
  /          Filter                + - 0     Zoom in/out/reset
  t          Cycle type            Wheel     Step images (Ctrl: zoom)
  s          Cycle sort            o         Open image externally

DASHBOARD                       LABS
  Tab/S-Tab  Next/prev tab         /         Filter tests
  1-6        Jump to tab           a         Out of range only
  n/p        Next/prev study
  Ctrl+w     Switch pane          REPORT
  Esc        Back to studies       o         Open PDF
  r          Reload
  q          Quit                  ?         This help

Press any key to return...
`

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(help))
}

// RenderSpinner renders a loading spinner
func RenderSpinner(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}
