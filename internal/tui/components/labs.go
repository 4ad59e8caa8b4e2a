package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

// Lines above the table: summary + filter bar
const labsHeaderLines = 2

// LabsPanel is the lab results table with a test-name filter
type LabsPanel struct {
	labs    []domain.LabResult
	query   service.LabQuery
	visible []domain.LabResult

	table       table.Model
	filterInput textinput.Model

	width  int
	height int
}

// NewLabsPanel creates an empty lab panel
func NewLabsPanel() *LabsPanel {
	ti := textinput.New()
	ti.Placeholder = "test name..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.DimGray).
		BorderBottom(true).
		Foreground(styles.Accent).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(styles.White).
		Background(styles.SlateLight).
		Bold(false)

	t := table.New(
		table.WithColumns(labColumns(80)),
		table.WithFocused(true),
	)
	t.SetStyles(st)

	return &LabsPanel{table: t, filterInput: ti}
}

func labColumns(width int) []table.Column {
	// Fixed columns take 60 cells; the test name gets the rest
	name := max(12, width-60)
	return []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Test", Width: name},
		{Title: "Value", Width: 10},
		{Title: "Unit", Width: 10},
		{Title: "Reference", Width: 16},
		{Title: "Status", Width: 8},
	}
}

// SetLabs replaces the results
func (p *LabsPanel) SetLabs(labs []domain.LabResult) {
	p.labs = labs
	p.apply()
}

// Visible returns the rows that pass the filter
func (p *LabsPanel) Visible() []domain.LabResult {
	return p.visible
}

func (p *LabsPanel) apply() {
	p.visible = service.FilterLabs(p.labs, p.query)
	rows := make([]table.Row, len(p.visible))
	for i, l := range p.visible {
		rows[i] = table.Row{l.Date, l.TestName, l.Value, l.Unit, l.ReferenceRange, string(l.Status)}
	}
	p.table.SetRows(rows)
	if p.table.Cursor() >= len(rows) {
		p.table.SetCursor(max(0, len(rows)-1))
	}
}

// SetSize sets the panel's outer dimensions
func (p *LabsPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
	p.table.SetColumns(labColumns(width - 2))
	p.table.SetWidth(width)
	p.table.SetHeight(max(3, height-labsHeaderLines))
}

// IsFilterTyping reports whether keys go to the filter input
func (p *LabsPanel) IsFilterTyping() bool {
	return p.filterInput.Focused()
}

// HasFilter reports whether a test-name filter is applied
func (p *LabsPanel) HasFilter() bool {
	return p.query.Text != ""
}

// Update handles keys while the Labs tab is focused
func (p *LabsPanel) Update(msg tea.Msg) tea.Cmd {
	keyMsg, isKey := msg.(tea.KeyMsg)

	if p.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, LabsKeys.Escape):
				p.clearFilter()
				return nil
			case key.Matches(keyMsg, LabsKeys.Enter):
				p.filterInput.Blur()
				return nil
			}
		}
		var cmd tea.Cmd
		p.filterInput, cmd = p.filterInput.Update(msg)
		p.query.Text = p.filterInput.Value()
		p.apply()
		return cmd
	}

	if isKey {
		switch {
		case key.Matches(keyMsg, LabsKeys.Filter):
			p.filterInput.Focus()
			return textinput.Blink
		case key.Matches(keyMsg, LabsKeys.Abnormal):
			p.query.AbnormalOnly = !p.query.AbnormalOnly
			p.apply()
			return nil
		case key.Matches(keyMsg, LabsKeys.Escape):
			if p.query.Text != "" {
				p.clearFilter()
			}
			return nil
		}
	}

	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

func (p *LabsPanel) clearFilter() {
	p.filterInput.SetValue("")
	p.filterInput.Blur()
	p.query.Text = ""
	p.apply()
}

// View renders the summary, filter bar and table
func (p *LabsPanel) View() string {
	if len(p.labs) == 0 {
		return lipgloss.Place(p.width, p.height, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render("No lab results"))
	}

	scope := "all results"
	if p.query.AbnormalOnly {
		scope = styles.WarningStyle.Render("out of range only")
	}
	summary := styles.SubtitleStyle.Render(fmt.Sprintf("%d of %d results · ", len(p.visible), len(p.labs))) + scope +
		styles.DimStyle.Render("   a toggle · / filter")

	filter := " "
	if p.filterInput.Focused() || p.query.Text != "" {
		filter = p.filterInput.View()
		if names := service.RankLabTests(p.labs, p.query.Text); len(names) > 0 {
			filter += styles.DimStyle.Render("  → " + strings.Join(names[:min(3, len(names))], ", "))
		}
	}

	body := p.table.View()
	if len(p.visible) == 0 {
		body = styles.DimStyle.Render("No matching tests")
	}
	return lipgloss.NewStyle().Width(p.width).Height(p.height).Render(
		styles.Pad(summary, p.width) + "\n" + filter + "\n" + body)
}
