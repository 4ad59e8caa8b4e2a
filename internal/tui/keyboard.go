package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pdiview/internal/tui/components"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.State == StateHelp {
		m.State = StateBrowsing
		return m, nil
	}

	// Text inputs swallow everything while typing
	if m.Focus == PaneStudies && m.StudyList.IsFilterTyping() {
		return m, m.StudyList.Update(msg)
	}
	if m.Focus == PaneContent && m.Tab == components.TabLabs && m.Labs.IsFilterTyping() {
		return m, m.Labs.Update(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.NextTab):
		m.Tab = m.Tab.Next()
		return m, nil

	case key.Matches(msg, Keys.PrevTab):
		m.Tab = m.Tab.Prev()
		return m, nil

	case key.Matches(msg, Keys.Focus):
		if m.Focus == PaneStudies {
			m.setFocus(PaneContent)
		} else {
			m.setFocus(PaneStudies)
		}
		return m, nil

	case key.Matches(msg, Keys.NextStudy):
		return m.stepStudy(1)

	case key.Matches(msg, Keys.PrevStudy):
		return m.stepStudy(-1)

	case key.Matches(msg, Keys.Refresh):
		return m.refresh()

	case key.Matches(msg, Keys.Open):
		return m.openExternal()
	}

	for i, b := range Keys.tabKeys() {
		if key.Matches(msg, b) {
			m.Tab = components.Tabs[i]
			return m, nil
		}
	}

	if m.Focus == PaneStudies {
		return m.handleStudyListKey(msg)
	}
	return m.handleContentKey(msg)
}

func (m Model) handleStudyListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Enter) {
		study, ok := m.StudyList.Selected()
		if !ok {
			return m, nil
		}
		cmd := m.selectStudy(study)
		m.setFocus(PaneContent)
		return m, cmd
	}
	return m, m.StudyList.Update(msg)
}

func (m Model) handleContentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Escape) {
		// The labs filter clears first
		if m.Tab == components.TabLabs && m.Labs.HasFilter() {
			return m, m.Labs.Update(msg)
		}
		m.setFocus(PaneStudies)
		return m, nil
	}
	return m, m.routeToContent(msg)
}

// stepStudy moves to the neighbouring study in the filtered list and loads it
func (m Model) stepStudy(delta int) (tea.Model, tea.Cmd) {
	study, ok := m.StudyList.Step(delta)
	if !ok {
		return m, nil
	}
	return m, m.selectStudy(study)
}

func (m Model) openExternal() (tea.Model, tea.Cmd) {
	switch m.Tab {
	case components.TabImages:
		path := m.Viewer.FramePath()
		if path == "" {
			return m, nil
		}
		return m, OpenFrameCmd(m.Opener, path)

	case components.TabReport:
		study, ok := m.activeStudy()
		if !ok {
			return m, nil
		}
		if !study.HasReport() {
			m.StatusMsg = "No report for " + study.Accession
			m.StatusIsErr = true
			return m, ClearStatusCmd(3 * time.Second)
		}
		return m, OpenReportCmd(m.Opener, study)
	}
	return m, nil
}

// refresh drops cached documents and the index, then re-reads the feed. The
// active study is resolved again.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.cache != nil {
		m.cache.Invalidate()
	}
	m.Index.Invalidate()
	m.Loading = true
	m.StatusMsg = "Reloading..."
	m.StatusIsErr = false

	cmds := []tea.Cmd{
		LoadRecordsCmd(m.Loader),
		WarmIndexCmd(m.Index),
		TickCmd(100 * time.Millisecond),
	}
	if acc := m.StudyList.Active(); acc != "" {
		cmds = append(cmds, m.Viewer.Load(acc))
	}
	return m, tea.Batch(cmds...)
}
