package tui

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/imaging"
	"github.com/mmcdole/pdiview/internal/records"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/tui/components"
	"github.com/mmcdole/pdiview/internal/viewer"
)

type memSource map[string]string

func (s memSource) Fetch(_ context.Context, path string) ([]byte, error) {
	doc, ok := s[path]
	if !ok {
		return nil, domain.ErrDocumentFetch
	}
	return []byte(doc), nil
}

func (s memSource) Locate(path string) string { return "/bundle/" + path }

type stubLauncher struct {
	opened []string
}

func (l *stubLauncher) Open(target string) error {
	l.opened = append(l.opened, target)
	return nil
}

func newTestModel(t *testing.T, width int) (Model, *stubLauncher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := memSource{}

	index := service.NewIndexService(src, "INDEX.HTM", logger)
	images := service.NewImageService(service.NewSeriesResolver(index, src, 2, logger), "IHE_PDI", logger)
	launcher := &stubLauncher{}

	m := NewModel(
		records.NewLoader(src, "data.json", "REPORTS", logger),
		index,
		images,
		imaging.NewFrameLoader(src, 8, logger),
		service.NewOpenerService(launcher, src, logger),
		Options{
			Now:    func() time.Time { return time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC) },
			Logger: logger,
		},
	)
	m = send(t, m, tea.WindowSizeMsg{Width: width, Height: 40})
	m = send(t, m, RecordsLoadedMsg{Records: records.MockRecords("REPORTS")})
	return m, launcher
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestEnterSelectsStudyAndFocusesContent(t *testing.T) {
	m, _ := newTestModel(t, 140)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Focus != PaneContent {
		t.Errorf("Focus = %v, want content", m.Focus)
	}
	// Newest first
	if got := m.StudyList.Active(); got != "215516692" {
		t.Errorf("active study = %q, want 215516692", got)
	}
	if _, ok := m.Viewer.Engine().State().(viewer.Loading); !ok {
		t.Errorf("viewer state = %T, want Loading", m.Viewer.Engine().State())
	}

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Focus != PaneStudies {
		t.Errorf("esc: Focus = %v, want studies", m.Focus)
	}
}

func TestNextStudyLoadsNeighbour(t *testing.T) {
	m, _ := newTestModel(t, 140)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	first := m.Viewer.Engine().Epoch()

	m = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if got := m.StudyList.Active(); got != "215512035" {
		t.Errorf("active study = %q, want 215512035", got)
	}
	if m.Viewer.Engine().Epoch() == first {
		t.Error("switching study did not start a new load")
	}
}

func TestTabSwitching(t *testing.T) {
	m, _ := newTestModel(t, 140)

	m = send(t, m, runes("4"))
	if m.Tab != components.TabLabs {
		t.Errorf("Tab = %v, want Labs", m.Tab)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Tab != components.TabEcho {
		t.Errorf("Tab = %v, want Echo", m.Tab)
	}
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Tab != components.TabPatient {
		t.Errorf("Tab = %v, want Patient", m.Tab)
	}
	if !strings.Contains(m.View(), "Ibrahim Hamed Ahmed Abdullah") {
		t.Error("patient tab does not show the patient name")
	}
}

func TestIdleViewerPrompt(t *testing.T) {
	m, _ := newTestModel(t, 140)
	if !strings.Contains(m.View(), viewer.StatusIdle) {
		t.Errorf("view missing idle prompt:\n%s", m.View())
	}
}

func TestOpenReport(t *testing.T) {
	m, launcher := newTestModel(t, 140)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, runes("2"))

	m, cmd := sendCmd(t, m, runes("o"))
	if cmd == nil {
		t.Fatal("open produced no command")
	}
	msg := cmd()
	if _, ok := msg.(OpenedMsg); !ok {
		t.Fatalf("open returned %T, want OpenedMsg", msg)
	}
	if len(launcher.opened) != 1 || !strings.HasSuffix(launcher.opened[0], "215516692.pdf") {
		t.Errorf("opened = %v", launcher.opened)
	}

	m = send(t, m, msg)
	if !strings.Contains(m.StatusMsg, "Opened") {
		t.Errorf("StatusMsg = %q", m.StatusMsg)
	}
}

func TestCompactLayoutShowsSwitcher(t *testing.T) {
	m, _ := newTestModel(t, 80)
	if !m.calculateLayout().compact {
		t.Fatal("80 columns should use the compact layout")
	}
	if !strings.Contains(m.View(), "◀") {
		t.Error("compact view missing the study switcher")
	}

	wide, _ := newTestModel(t, 140)
	if wide.calculateLayout().compact {
		t.Error("140 columns should use the desktop layout")
	}
}

func TestHelpClosesOnAnyKey(t *testing.T) {
	m, _ := newTestModel(t, 140)
	m = send(t, m, runes("?"))
	if m.State != StateHelp {
		t.Fatalf("State = %v, want help", m.State)
	}
	m = send(t, m, runes("x"))
	if m.State != StateBrowsing {
		t.Errorf("State = %v, want browsing", m.State)
	}
}

func TestFallbackRecordsWarn(t *testing.T) {
	m, _ := newTestModel(t, 140)
	if !m.StatusIsErr || !strings.Contains(m.StatusMsg, "sample data") {
		t.Errorf("status = %q (err %v), want fallback warning", m.StatusMsg, m.StatusIsErr)
	}
}
