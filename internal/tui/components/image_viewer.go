package components

import (
	"context"
	"fmt"
	"image"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/imaging"
	"github.com/mmcdole/pdiview/internal/tui/styles"
	"github.com/mmcdole/pdiview/internal/viewer"
)

const (
	seriesLoadTimeout = 60 * time.Second
	frameLoadTimeout  = 20 * time.Second

	// Header (series line) + info line + series strip
	viewerChromeLines = 3
)

// SeriesLoader resolves a study into its series and frames
type SeriesLoader interface {
	Load(ctx context.Context, accession string) ([]domain.LoadedSeries, error)
}

// FrameFetcher loads a decoded frame by bundle path
type FrameFetcher interface {
	Load(ctx context.Context, path string) (image.Image, error)
}

var viewerIDs atomic.Int64

// SeriesLoadedMsg carries a resolution result back to the viewer that asked
type SeriesLoadedMsg struct {
	ViewerID int64
	Request  uint64
	Series   []domain.LoadedSeries
	Err      error
}

// FrameLoadedMsg carries a decoded frame or its load error
type FrameLoadedMsg struct {
	ViewerID  int64
	Accession string
	Path      string
	Series    int
	Image     int
	Img       image.Image
	Err       error
}

// PlayTickMsg advances playback when its epoch is still current
type PlayTickMsg struct {
	ViewerID int64
	Epoch    uint64
}

// ImageViewer shows a study's series frame by frame with cine playback
type ImageViewer struct {
	id     int64
	engine *viewer.Engine
	series SeriesLoader
	frames FrameFetcher

	spinner spinner.Model

	// Last frame that arrived for the current selection
	frame     image.Image
	framePath string
	frameErr  error

	width  int
	height int
}

// NewImageViewer creates a viewer. now may be nil.
func NewImageViewer(series SeriesLoader, frames FrameFetcher, playInterval time.Duration, now func() time.Time) *ImageViewer {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return &ImageViewer{
		id:      viewerIDs.Add(1),
		engine:  viewer.New(playInterval, now),
		series:  series,
		frames:  frames,
		spinner: sp,
	}
}

// Engine exposes the state machine for rendering decisions
func (v *ImageViewer) Engine() *viewer.Engine {
	return v.engine
}

// ID identifies this viewer's messages
func (v *ImageViewer) ID() int64 {
	return v.id
}

// SetSize sets the viewer's outer dimensions
func (v *ImageViewer) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// Load starts resolving a study. Results of earlier loads are ignored once
// this one is issued.
func (v *ImageViewer) Load(accession string) tea.Cmd {
	req := v.engine.Select(accession)
	v.frame = nil
	v.framePath = ""
	v.frameErr = nil
	if accession == "" {
		return nil
	}

	id := v.id
	loader := v.series
	load := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), seriesLoadTimeout)
		defer cancel()

		series, err := loader.Load(ctx, accession)
		return SeriesLoadedMsg{ViewerID: id, Request: req, Series: series, Err: err}
	}
	return tea.Batch(load, v.spinner.Tick)
}

// FramePath returns the path of the frame on screen
func (v *ImageViewer) FramePath() string {
	return v.engine.FramePath()
}

// Update handles viewer messages and input. Key and mouse events are only
// routed here while the viewer has focus.
func (v *ImageViewer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case SeriesLoadedMsg:
		if msg.ViewerID != v.id {
			return nil
		}
		if !v.engine.Resolved(msg.Request, msg.Series, msg.Err) {
			return nil
		}
		return v.afterChange(true)

	case FrameLoadedMsg:
		if msg.ViewerID != v.id {
			return nil
		}
		return v.frameLoaded(msg)

	case PlayTickMsg:
		if msg.ViewerID != v.id || msg.Epoch != v.engine.Epoch() {
			return nil
		}
		if !v.engine.Tick() {
			return nil
		}
		return tea.Batch(v.loadFrame(), v.scheduleTick())

	case spinner.TickMsg:
		if _, loading := v.engine.State().(viewer.Loading); !loading {
			return nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		dir := viewer.WheelDown
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			dir = viewer.WheelUp
		case tea.MouseButtonWheelDown:
		default:
			return nil
		}
		if msg.Ctrl {
			// Zoom leaves the playback timer alone
			v.engine.Wheel(dir, true)
			return nil
		}
		return v.afterChange(v.engine.Wheel(dir, false))

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return nil
}

func (v *ImageViewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	e := v.engine
	switch {
	case key.Matches(msg, ViewerKeys.NextImage):
		return v.afterChange(e.NextImage())
	case key.Matches(msg, ViewerKeys.PrevImage):
		return v.afterChange(e.PrevImage())
	case key.Matches(msg, ViewerKeys.NextSeries):
		return v.afterChange(e.NextSeries())
	case key.Matches(msg, ViewerKeys.PrevSeries):
		return v.afterChange(e.PrevSeries())
	case key.Matches(msg, ViewerKeys.FirstImage):
		return v.afterChange(e.SelectImage(0))
	case key.Matches(msg, ViewerKeys.Play):
		return v.afterChange(e.TogglePlay())
	case key.Matches(msg, ViewerKeys.Faster):
		return v.afterChange(e.Faster())
	case key.Matches(msg, ViewerKeys.Slower):
		return v.afterChange(e.Slower())
	case key.Matches(msg, ViewerKeys.ZoomIn):
		e.ZoomIn()
	case key.Matches(msg, ViewerKeys.ZoomOut):
		e.ZoomOut()
	case key.Matches(msg, ViewerKeys.ResetZoom):
		e.ResetZoom()
	}
	return nil
}

// afterChange reloads the frame when it moved and restarts the playback
// timer under the new epoch
func (v *ImageViewer) afterChange(changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	return tea.Batch(v.loadFrame(), v.scheduleTick())
}

func (v *ImageViewer) scheduleTick() tea.Cmd {
	if !v.engine.Playing() {
		return nil
	}
	id, epoch := v.id, v.engine.Epoch()
	return tea.Tick(v.engine.PlayInterval(), func(time.Time) tea.Msg {
		return PlayTickMsg{ViewerID: id, Epoch: epoch}
	})
}

func (v *ImageViewer) loadFrame() tea.Cmd {
	r, ok := v.engine.State().(viewer.Ready)
	if !ok {
		return nil
	}
	path := v.engine.FramePath()
	if path == "" || path == v.framePath && v.frame != nil {
		return nil
	}
	v.frameErr = nil

	msg := FrameLoadedMsg{
		ViewerID:  v.id,
		Accession: r.Accession,
		Path:      path,
		Series:    r.SeriesIndex,
		Image:     r.ImageIndex,
	}
	fetcher := v.frames
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), frameLoadTimeout)
		defer cancel()

		msg.Img, msg.Err = fetcher.Load(ctx, path)
		return msg
	}
}

func (v *ImageViewer) frameLoaded(msg FrameLoadedMsg) tea.Cmd {
	r, ok := v.engine.State().(viewer.Ready)
	if !ok || r.Accession != msg.Accession {
		return nil
	}
	if msg.Err != nil {
		// Full image failed: retry once from the thumbnail
		if v.engine.ImageFailed(msg.Series, msg.Image) {
			return v.loadFrame()
		}
		if msg.Path == v.engine.FramePath() {
			// Never leave the previous frame under the new index
			v.frame = nil
			v.framePath = ""
			v.frameErr = msg.Err
		}
		return nil
	}
	// Only the frame currently on screen is kept
	if msg.Path != v.engine.FramePath() {
		return nil
	}
	v.frame = msg.Img
	v.framePath = msg.Path
	v.frameErr = nil
	return nil
}

// View renders the viewer into its box
func (v *ImageViewer) View() string {
	if v.width <= 0 || v.height <= 0 {
		return ""
	}

	switch st := v.engine.State().(type) {
	case viewer.Idle:
		return v.placeStatus(styles.DimStyle.Render(viewer.StatusIdle))
	case viewer.Loading:
		return v.placeStatus(v.spinner.View() + " " + styles.DimStyle.Render(viewer.StatusLoading))
	case viewer.Failed:
		reason := st.Reason()
		if reason == viewer.StatusNoImages {
			return v.placeStatus(styles.DimStyle.Render(reason))
		}
		return v.placeStatus(styles.ErrorStyle.Render(reason))
	case viewer.Ready:
		return v.renderReady(st)
	}
	return ""
}

func (v *ImageViewer) placeStatus(text string) string {
	return lipgloss.Place(v.width, v.height, lipgloss.Center, lipgloss.Center, text)
}

func (v *ImageViewer) renderReady(r viewer.Ready) string {
	series := r.Current()
	imageHeight := max(1, v.height-viewerChromeLines)

	header := styles.TitleStyle.Render(styles.Truncate(series.Title, max(1, v.width-24)))
	header += styles.DimStyle.Render(fmt.Sprintf("  SerNr %s", series.SeriesID))

	var body string
	switch {
	case !r.HasFrames():
		body = lipgloss.Place(v.width, imageHeight, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render("No frames for this series"))
	case v.frameErr != nil && v.frame == nil:
		body = lipgloss.Place(v.width, imageHeight, lipgloss.Center, lipgloss.Center,
			styles.ErrorStyle.Render("Image unavailable: "+v.engine.FramePath()))
	case v.frame == nil:
		body = lipgloss.Place(v.width, imageHeight, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render("Loading frame..."))
	default:
		body = imaging.Render(v.frame, v.width, imageHeight, r.Zoom)
	}

	return strings.Join([]string{
		styles.Pad(header, v.width),
		body,
		v.renderInfo(r),
		v.renderSeriesStrip(r),
	}, "\n")
}

func (v *ImageViewer) renderInfo(r viewer.Ready) string {
	state := "❚❚ paused"
	if r.Playing {
		state = "▶ playing"
	}
	fps := float64(time.Second) / float64(v.engine.PlayInterval())

	frame := "-"
	if r.HasFrames() {
		frame = fmt.Sprintf("%d/%s", r.ImageIndex+1, humanize.Comma(int64(r.FrameCount())))
	}

	parts := []string{
		fmt.Sprintf("Series %d/%d", r.SeriesIndex+1, len(r.Series)),
		"Image " + frame,
		fmt.Sprintf("%s @ %s fps", state, humanize.FtoaWithDigits(fps, 1)),
		fmt.Sprintf("zoom %d%%", int(r.Zoom*100+0.5)),
	}
	if v.engine.UsingThumbnail() {
		parts = append(parts, styles.WarningStyle.Render("thumbnail"))
	}
	return styles.Pad(styles.SubtitleStyle.Render(strings.Join(parts, "  ·  ")), v.width)
}

// renderSeriesStrip lists the series as compact tabs, the current one highlighted
func (v *ImageViewer) renderSeriesStrip(r viewer.Ready) string {
	var sb strings.Builder
	width := 0
	for i, s := range r.Series {
		label := fmt.Sprintf("%s %s", s.SeriesID, styles.Truncate(s.Title, 14))
		style := styles.InactiveTabStyle
		if i == r.SeriesIndex {
			style = styles.ActiveTabStyle
		}
		cell := style.Render(label)
		w := lipgloss.Width(cell)
		if width+w > v.width {
			if width < v.width {
				sb.WriteString(styles.DimStyle.Render("…"))
			}
			break
		}
		sb.WriteString(cell)
		width += w
	}
	return styles.Pad(sb.String(), v.width)
}
