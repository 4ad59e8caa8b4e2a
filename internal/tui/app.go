package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/imaging"
	"github.com/mmcdole/pdiview/internal/records"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/tui/components"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
)

// Pane identifies which side receives keys
type Pane int

const (
	PaneStudies Pane = iota
	PaneContent
)

// Options tunes the dashboard
type Options struct {
	PlayInterval time.Duration
	CompactWidth int
	DefaultTab   string
	Now          func() time.Time
	Logger       *slog.Logger

	// Cache is dropped on reload, may be nil
	Cache interface{ Invalidate() }
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool
	Focus Pane
	Tab   components.Tab

	// Services
	Loader *records.Loader
	Index  *service.IndexService
	Opener *service.OpenerService

	// UI Components
	StudyList *components.StudyList
	Viewer    *components.ImageViewer
	Labs      *components.LabsPanel
	Echo      *components.DocumentPanel
	Timeline  *components.DocumentPanel

	// Data
	Records       domain.MedicalRecords
	RecordsLoaded bool

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	Loading      bool
	SpinnerFrame int

	compactWidth int
	cache        interface{ Invalidate() }
	now          func() time.Time
	logger       *slog.Logger
}

// NewModel creates a new application model
func NewModel(
	loader *records.Loader,
	index *service.IndexService,
	images *service.ImageService,
	frames *imaging.FrameLoader,
	opener *service.OpenerService,
	opts Options,
) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.CompactWidth <= 0 {
		opts.CompactWidth = DefaultCompactWidth
	}

	list := components.NewStudyList()
	list.SetFocused(true)

	return Model{
		State:        StateBrowsing,
		Focus:        PaneStudies,
		Tab:          components.ParseTab(opts.DefaultTab),
		Loader:       loader,
		Index:        index,
		Opener:       opener,
		StudyList:    list,
		Viewer:       components.NewImageViewer(images, frames, opts.PlayInterval, opts.Now),
		Labs:         components.NewLabsPanel(),
		Echo:         components.NewDocumentPanel("No echocardiography reports"),
		Timeline:     components.NewDocumentPanel("No history"),
		Loading:      true,
		compactWidth: opts.CompactWidth,
		cache:        opts.Cache,
		now:          opts.Now,
		logger:       opts.Logger,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadRecordsCmd(m.Loader),
		WarmIndexCmd(m.Index),
		TickCmd(100*time.Millisecond),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.updateLayout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m, m.routeToContent(msg)

	case TickMsg:
		if !m.Loading {
			return m, nil
		}
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case RecordsLoadedMsg:
		m.applyRecords(msg.Records)
		m.Loading = false
		if msg.Records.FromFallback {
			m.StatusMsg = "Records feed unavailable, showing sample data"
			m.StatusIsErr = true
			return m, ClearStatusCmd(5 * time.Second)
		}
		return m, nil

	case IndexWarmedMsg:
		m.logger.Debug("index warmed", "studies", msg.Studies, "series", msg.Series)
		if msg.Studies == 0 {
			m.StatusMsg = "Image index unavailable"
			m.StatusIsErr = true
		} else {
			m.StatusMsg = fmt.Sprintf("Indexed %s studies, %s series",
				humanize.Comma(int64(msg.Studies)), humanize.Comma(int64(msg.Series)))
			m.StatusIsErr = false
		}
		return m, ClearStatusCmd(3 * time.Second)

	case OpenedMsg:
		m.StatusMsg = "Opened " + msg.What
		m.StatusIsErr = false
		return m, ClearStatusCmd(3 * time.Second)

	case StatusMsg:
		m.StatusMsg = msg.Text
		m.StatusIsErr = msg.IsErr
		return m, ClearStatusCmd(3 * time.Second)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil

	case ErrMsg:
		m.logger.Error("command failed", "context", msg.Context, "error", msg.Err)
		m.StatusMsg = msg.Error()
		m.StatusIsErr = true
		return m, ClearStatusCmd(5 * time.Second)

	case components.SeriesLoadedMsg, components.FrameLoadedMsg, components.PlayTickMsg, spinner.TickMsg:
		return m, m.Viewer.Update(msg)
	}

	// Cursor blinks and other component-internal messages
	return m, m.routeToFocused(msg)
}

func (m *Model) applyRecords(r domain.MedicalRecords) {
	m.Records = r
	m.RecordsLoaded = true
	m.StudyList.SetStudies(r.Studies)
	m.Labs.SetLabs(r.LabResults)
	m.updateLayout()
}

// selectStudy makes a study the active one and starts resolving its images
func (m *Model) selectStudy(study domain.Study) tea.Cmd {
	if study.Accession == m.StudyList.Active() {
		return nil
	}
	m.StudyList.SetActive(study.Accession)
	m.logger.Info("study selected", "accession", study.Accession, "dicom", study.DicomEnabled)
	return m.Viewer.Load(study.Accession)
}

// activeStudy returns the study shown in the content pane
func (m Model) activeStudy() (domain.Study, bool) {
	if acc := m.StudyList.Active(); acc != "" {
		return m.Records.FindStudy(acc)
	}
	return m.StudyList.Selected()
}

func (m *Model) setFocus(p Pane) {
	m.Focus = p
	m.StudyList.SetFocused(p == PaneStudies)
}

// routeToContent sends input to the active tab's component
func (m *Model) routeToContent(msg tea.Msg) tea.Cmd {
	switch m.Tab {
	case components.TabImages:
		return m.Viewer.Update(msg)
	case components.TabLabs:
		return m.Labs.Update(msg)
	case components.TabEcho:
		return m.Echo.Update(msg)
	case components.TabTimeline:
		return m.Timeline.Update(msg)
	}
	return nil
}

func (m *Model) routeToFocused(msg tea.Msg) tea.Cmd {
	if m.Focus == PaneStudies {
		return m.StudyList.Update(msg)
	}
	if m.Tab == components.TabLabs {
		return m.Labs.Update(msg)
	}
	return nil
}
