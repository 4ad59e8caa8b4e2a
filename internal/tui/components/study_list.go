package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

// Layout constants for bordered columns
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Scroll indicators ("↑ more" and "↓ more") each take 1 line
	ScrollIndicatorLines = 2

	// Title + filter summary
	studyListHeaderLines = 2
)

// StudyList is the scrollable, filterable list of studies
type StudyList struct {
	studies   []domain.Study
	available []domain.StudyType
	query     service.StudyQuery
	matches   []service.StudyMatch

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Accession currently shown in the viewer
	active string

	// Dimensions
	width   int
	height  int
	focused bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
}

// NewStudyList creates an empty study list
func NewStudyList() *StudyList {
	ti := textinput.New()
	ti.Placeholder = "description or accession..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &StudyList{
		query:       service.StudyQuery{Order: service.SortDateDesc},
		filterInput: ti,
	}
}

// SetStudies replaces the list content, keeping the filter
func (c *StudyList) SetStudies(studies []domain.Study) {
	c.studies = studies
	c.available = service.AvailableTypes(studies)
	if c.query.Type != "" && !containsType(c.available, c.query.Type) {
		c.query.Type = ""
	}
	c.refresh()
}

func containsType(types []domain.StudyType, t domain.StudyType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// refresh re-runs the query and keeps the cursor in range
func (c *StudyList) refresh() {
	c.matches = service.FilterStudies(c.studies, c.query)
	if c.cursor >= len(c.matches) {
		c.cursor = max(0, len(c.matches)-1)
	}
	c.ensureVisible()
}

// Update handles keys while the list is focused
func (c *StudyList) Update(msg tea.Msg) tea.Cmd {
	if !c.focused {
		return nil
	}
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing into the filter
	if c.filterActive && c.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, StudyListKeys.Escape):
				c.ClearFilter()
				return nil
			case key.Matches(keyMsg, StudyListKeys.Enter):
				c.filterInput.Blur()
				return nil
			case keyMsg.String() == "backspace" && c.filterInput.Value() == "":
				c.ClearFilter()
				return nil
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.query.Text = c.filterInput.Value()
		c.cursor, c.offset = 0, 0
		c.refresh()
		return cmd
	}

	if !isKey {
		return nil
	}

	switch {
	case key.Matches(keyMsg, StudyListKeys.Filter):
		c.ToggleFilter()
		return textinput.Blink
	case key.Matches(keyMsg, StudyListKeys.Escape):
		if c.filterActive {
			c.ClearFilter()
		}
		return nil
	case key.Matches(keyMsg, StudyListKeys.Type):
		c.query.Type = service.NextType(c.query.Type, c.available)
		c.cursor, c.offset = 0, 0
		c.refresh()
		return nil
	case key.Matches(keyMsg, StudyListKeys.Sort):
		c.query.Order = c.query.Order.Next()
		c.refresh()
		return nil
	}

	count := len(c.matches)
	if count == 0 {
		return nil
	}

	switch {
	case key.Matches(keyMsg, StudyListKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
		}
	case key.Matches(keyMsg, StudyListKeys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(keyMsg, StudyListKeys.Home):
		c.cursor = 0
	case key.Matches(keyMsg, StudyListKeys.End):
		c.cursor = count - 1
	case key.Matches(keyMsg, StudyListKeys.HalfDown):
		c.cursor = min(count-1, c.cursor+max(1, c.maxVisible/2))
	case key.Matches(keyMsg, StudyListKeys.HalfUp):
		c.cursor = max(0, c.cursor-max(1, c.maxVisible/2))
	}
	c.ensureVisible()
	return nil
}

// Step moves the cursor by delta, wrapping, and returns the study under it
func (c *StudyList) Step(delta int) (domain.Study, bool) {
	n := len(c.matches)
	if n == 0 {
		return domain.Study{}, false
	}
	c.cursor = ((c.cursor+delta)%n + n) % n
	c.ensureVisible()
	return c.Selected()
}

// Selected returns the study under the cursor
func (c *StudyList) Selected() (domain.Study, bool) {
	if c.cursor < 0 || c.cursor >= len(c.matches) {
		return domain.Study{}, false
	}
	return c.matches[c.cursor].Study, true
}

// SetActive marks the study shown in the viewer and moves the cursor to it
func (c *StudyList) SetActive(accession string) {
	c.active = accession
	for i, m := range c.matches {
		if m.Study.Accession == accession {
			c.cursor = i
			c.ensureVisible()
			return
		}
	}
}

// Active returns the accession shown in the viewer
func (c *StudyList) Active() string {
	return c.active
}

// Position returns the cursor position and the number of visible studies
func (c *StudyList) Position() (int, int) {
	return c.cursor, len(c.matches)
}

// Query returns the current filter state
func (c *StudyList) Query() service.StudyQuery {
	return c.query
}

func (c *StudyList) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

func (c *StudyList) SetFocused(focused bool) {
	c.focused = focused
	if !focused {
		c.filterInput.Blur()
	}
}

func (c *StudyList) IsFocused() bool {
	return c.focused
}

// ToggleFilter activates the filter input
func (c *StudyList) ToggleFilter() {
	c.filterActive = true
	c.filterInput.Focus()
	c.recalcMaxVisible()
}

// IsFilterTyping returns true if filter is active AND input is focused
func (c *StudyList) IsFilterTyping() bool {
	return c.filterActive && c.filterInput.Focused()
}

// ClearFilter deactivates the text filter; type and order are kept
func (c *StudyList) ClearFilter() {
	c.filterActive = false
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.query.Text = ""
	c.recalcMaxVisible()
	c.refresh()
}

func (c *StudyList) recalcMaxVisible() {
	interiorHeight := c.height - BorderHeight
	c.maxVisible = interiorHeight - ScrollIndicatorLines - studyListHeaderLines
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *StudyList) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

// Rendering

func (c *StudyList) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(0, c.width-frameW)).
		Height(max(0, c.height-frameH)).
		Render(c.renderContent())
}

func (c *StudyList) renderContent() string {
	itemWidth := max(10, c.width-BorderWidth)

	title := styles.AccentStyle.Render(styles.Truncate("Studies", itemWidth))
	typeLabel := "All types"
	if c.query.Type != "" {
		typeLabel = string(c.query.Type)
	}
	summary := styles.DimStyle.Render(styles.Truncate(typeLabel+" · "+c.query.Order.Label(), itemWidth))

	count := len(c.matches)
	if count == 0 {
		empty := "No studies"
		if c.query.Text != "" || c.query.Type != "" {
			empty = "No matches"
		}
		content := title + "\n" + summary + "\n \n" + styles.DimStyle.Render(empty)
		if c.filterActive {
			content += "\n" + c.renderFilterBar()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.renderStudy(c.matches[i], i == c.cursor, itemWidth))
	}

	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	if end < count {
		footer = styles.DimStyle.Render("↓ more")
	}

	content := title + "\n" + summary + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.renderFilterBar()
	}
	return content
}

func (c *StudyList) renderStudy(m service.StudyMatch, selected bool, width int) string {
	s := m.Study

	marker, markerFg := "  ", styles.DimGray
	if s.Accession == c.active {
		marker, markerFg = "● ", styles.Accent
	}
	typeFg := styles.TypeColor(string(s.Type))
	typeLabel := fmt.Sprintf("%-4s", shortType(s.Type))
	date := s.Date + " "
	dimFg := styles.DimGray

	// marker(2) + type(4) + space + date(11) + margins(2)
	available := max(5, width-2-4-1-len(date)-2)
	desc := styles.Truncate(s.Description, available)

	parts := []styles.RowPart{
		{Text: marker, Foreground: &markerFg},
		{Text: typeLabel + " ", Foreground: &typeFg, Bold: true},
		{Text: date, Foreground: &dimFg},
	}
	parts = append(parts, highlightParts(desc, m.MatchedIndexes, selected)...)
	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits text into runs, matched runes in the accent colour
func highlightParts(text string, matched []int, selected bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: text}}
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	accent := styles.Accent

	var parts []styles.RowPart
	var run strings.Builder
	runHit := false
	flush := func() {
		if run.Len() == 0 {
			return
		}
		p := styles.RowPart{Text: run.String()}
		if runHit {
			p.Foreground = &accent
			p.Bold = true
		}
		parts = append(parts, p)
		run.Reset()
	}
	for i, r := range []rune(text) {
		if hit[i] != runHit {
			flush()
			runHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}

func shortType(t domain.StudyType) string {
	switch t {
	case domain.StudyTypeUltrasound:
		return "US"
	case domain.StudyTypeXRay:
		return "XR"
	case "":
		return "?"
	default:
		return string(t)
	}
}

func (c *StudyList) renderFilterBar() string {
	input := c.filterInput.View()
	if c.query.Text == "" {
		return input
	}
	return input + styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", len(c.matches), len(c.studies)))
}

// RenderSwitcher renders the one-line study switcher used by the compact layout
func (c *StudyList) RenderSwitcher(width int) string {
	s, ok := c.Selected()
	if !ok {
		return styles.Pad(styles.DimStyle.Render("No studies"), width)
	}
	pos := fmt.Sprintf(" %d/%d ", c.cursor+1, len(c.matches))
	label := fmt.Sprintf("%s · %s", s.Date, s.Description)
	avail := max(5, width-lipgloss.Width(pos)-4)

	return styles.Pad(
		styles.AccentStyle.Render("◀ ")+
			styles.TitleStyle.Render(styles.Truncate(label, avail))+
			styles.DimStyle.Render(pos)+
			styles.AccentStyle.Render("▶"),
		width)
}
