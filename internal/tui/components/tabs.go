package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

// Tab identifies a dashboard content tab
type Tab int

const (
	TabImages Tab = iota
	TabReport
	TabPatient
	TabLabs
	TabEcho
	TabTimeline
)

// Tabs lists every tab in display order
var Tabs = []Tab{TabImages, TabReport, TabPatient, TabLabs, TabEcho, TabTimeline}

func (t Tab) String() string {
	switch t {
	case TabReport:
		return "Report"
	case TabPatient:
		return "Patient"
	case TabLabs:
		return "Labs"
	case TabEcho:
		return "Echo"
	case TabTimeline:
		return "Timeline"
	default:
		return "Images"
	}
}

// ParseTab maps a config name ("images", "labs", ...) to a tab
func ParseTab(name string) Tab {
	for _, t := range Tabs {
		if strings.EqualFold(t.String(), strings.TrimSpace(name)) {
			return t
		}
	}
	return TabImages
}

// Next returns the following tab, wrapping
func (t Tab) Next() Tab {
	return Tabs[(int(t)+1)%len(Tabs)]
}

// Prev returns the preceding tab, wrapping
func (t Tab) Prev() Tab {
	return Tabs[(int(t)+len(Tabs)-1)%len(Tabs)]
}

// RenderTabBar renders the tab strip with numeric shortcuts
func RenderTabBar(active Tab, width int) string {
	cells := make([]string, 0, len(Tabs))
	for i, t := range Tabs {
		label := string(rune('1'+i)) + " " + t.String()
		if t == active {
			cells = append(cells, styles.ActiveTabStyle.Render(label))
		} else {
			cells = append(cells, styles.InactiveTabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	if lipgloss.Width(bar) > width {
		// Drop the shortcuts before anything else
		cells = cells[:0]
		for _, t := range Tabs {
			style := styles.InactiveTabStyle
			if t == active {
				style = styles.ActiveTabStyle
			}
			cells = append(cells, style.Render(t.String()))
		}
		bar = lipgloss.JoinHorizontal(lipgloss.Top, cells...)
	}
	return styles.Pad(bar, width)
}
