package tui

import "github.com/mmcdole/pdiview/internal/tui/components"

// Layout proportions
const (
	StudyListPercent  = 32
	MinStudyListWidth = 30
	MaxStudyListWidth = 56

	// DefaultCompactWidth is used when no breakpoint is configured
	DefaultCompactWidth = 100

	// Vertical layout: single footer line
	ChromeHeight = 1

	// Compact layout: study switcher above the content
	SwitcherHeight = 1

	TabBarHeight = 1
	PaneBorder   = 2
)

// paneLayout holds calculated pane sizes for the View
type paneLayout struct {
	compact      bool
	listWidth    int // 0 if not shown
	listHeight   int
	contentWidth int
	height       int
}

// calculateLayout computes pane sizes from the window size
func (m Model) calculateLayout() paneLayout {
	height := max(0, m.Height-ChromeHeight)

	if m.Width < m.compactWidth {
		l := paneLayout{compact: true, height: max(0, height-SwitcherHeight)}
		l.listWidth = m.Width
		l.listHeight = l.height
		l.contentWidth = m.Width
		return l
	}

	list := min(MaxStudyListWidth, max(MinStudyListWidth, m.Width*StudyListPercent/100))
	return paneLayout{
		listWidth:    list,
		listHeight:   height,
		contentWidth: max(0, m.Width-list),
		height:       height,
	}
}

// bodySize is the area inside the content pane border, below the tab bar
func (l paneLayout) bodySize() (int, int) {
	return max(0, l.contentWidth-PaneBorder), max(0, l.height-PaneBorder-TabBarHeight)
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}
	l := m.calculateLayout()
	m.StudyList.SetSize(l.listWidth, l.listHeight)

	w, h := l.bodySize()
	m.Viewer.SetSize(w, h)
	m.Labs.SetSize(w, h)
	m.Echo.SetSize(w, h)
	m.Timeline.SetSize(w, h)

	// Panel text wraps to the width, so re-render on resize
	m.Echo.SetContent(components.RenderEchoReports(m.Records.EchoReports, w))
	m.Timeline.SetContent(components.RenderTimeline(m.Records.Timeline(), w))
}
