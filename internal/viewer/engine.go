package viewer

import (
	"fmt"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
)

// Playback and zoom limits
const (
	DefaultPlayInterval = 125 * time.Millisecond
	MinPlayInterval     = 100 * time.Millisecond
	MaxPlayInterval     = 2000 * time.Millisecond
	PlayIntervalStep    = 100 * time.Millisecond

	MinZoom       = 0.1
	MaxZoom       = 5.0
	ZoomStep      = 1.2
	WheelZoomStep = 1.1
	WheelThrottle = 100 * time.Millisecond
	DefaultZoom   = 1.0
)

// WheelDirection is the sign of a scroll event
type WheelDirection int

const (
	WheelUp   WheelDirection = -1
	WheelDown WheelDirection = 1
)

type frameKey struct {
	series, image int
}

// Engine is the viewer state machine. It is not safe for concurrent use; the
// UI event loop is its only caller.
type Engine struct {
	state    State
	interval time.Duration
	now      func() time.Time

	request   uint64
	epoch     uint64
	lastWheel time.Time

	// Frames already switched to their thumbnail
	fallbacks map[frameKey]bool
}

// New creates an idle engine. A nil clock uses time.Now.
func New(playInterval time.Duration, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	if playInterval == 0 {
		playInterval = DefaultPlayInterval
	}
	return &Engine{
		state:     Idle{},
		interval:  clampInterval(playInterval),
		now:       now,
		fallbacks: make(map[frameKey]bool),
	}
}

// State returns the current state
func (e *Engine) State() State {
	return e.state
}

// Epoch changes whenever a timer's governing input changes: selection, series,
// image index, play flag or interval. Ticks scheduled under an older epoch are stale.
func (e *Engine) Epoch() uint64 {
	return e.epoch
}

// PlayInterval returns the playback tick interval
func (e *Engine) PlayInterval() time.Duration {
	return e.interval
}

// Playing reports whether playback is active
func (e *Engine) Playing() bool {
	r, ok := e.state.(Ready)
	return ok && r.Playing
}

func (e *Engine) bump() {
	e.epoch++
}

// Select starts loading a study and returns the request number that
// Resolved must present. An empty accession returns to Idle.
func (e *Engine) Select(accession string) uint64 {
	e.request++
	e.bump()
	clear(e.fallbacks)
	e.lastWheel = time.Time{}

	if accession == "" {
		e.state = Idle{}
		return e.request
	}
	e.state = Loading{Accession: accession, Request: e.request}
	return e.request
}

// Reset returns to Idle and invalidates any in-flight request
func (e *Engine) Reset() {
	e.Select("")
}

// Resolved applies a resolution result. Results for anything other than the
// current request are dropped and Resolved reports false.
func (e *Engine) Resolved(request uint64, series []domain.LoadedSeries, err error) bool {
	loading, ok := e.state.(Loading)
	if !ok || loading.Request != request {
		return false
	}
	e.bump()

	if err == nil && len(series) == 0 {
		err = fmt.Errorf("study %s: %w", loading.Accession, domain.ErrNoSeries)
	}
	if err != nil {
		e.state = Failed{Accession: loading.Accession, Err: err}
		return true
	}

	e.state = Ready{
		Accession: loading.Accession,
		Series:    series,
		Zoom:      DefaultZoom,
	}
	return true
}

// update applies fn to the Ready state; it reports false in any other state
func (e *Engine) update(fn func(r *Ready) bool) bool {
	r, ok := e.state.(Ready)
	if !ok {
		return false
	}
	if !fn(&r) {
		return false
	}
	e.state = r
	return true
}

// Tick advances playback by one frame, wrapping to the first frame.
// It does nothing unless playing.
func (e *Engine) Tick() bool {
	return e.update(func(r *Ready) bool {
		if !r.Playing {
			return false
		}
		return stepImage(r, 1)
	})
}

// NextImage moves to the following frame, wrapping
func (e *Engine) NextImage() bool { return e.stepImage(1) }

// PrevImage moves to the preceding frame, wrapping
func (e *Engine) PrevImage() bool { return e.stepImage(-1) }

func (e *Engine) stepImage(delta int) bool {
	changed := e.update(func(r *Ready) bool { return stepImage(r, delta) })
	if changed {
		e.bump()
	}
	return changed
}

func stepImage(r *Ready, delta int) bool {
	n := r.FrameCount()
	if n <= 1 {
		return false
	}
	r.ImageIndex = wrap(r.ImageIndex+delta, n)
	return true
}

// SelectImage jumps to a frame of the current series
func (e *Engine) SelectImage(i int) bool {
	changed := e.update(func(r *Ready) bool {
		if i < 0 || i >= r.FrameCount() || i == r.ImageIndex {
			return false
		}
		r.ImageIndex = i
		return true
	})
	if changed {
		e.bump()
	}
	return changed
}

// NextSeries moves to the following series, wrapping, at its first frame
func (e *Engine) NextSeries() bool { return e.stepSeries(1) }

// PrevSeries moves to the preceding series, wrapping, at its first frame
func (e *Engine) PrevSeries() bool { return e.stepSeries(-1) }

func (e *Engine) stepSeries(delta int) bool {
	changed := e.update(func(r *Ready) bool {
		n := len(r.Series)
		if n <= 1 {
			return false
		}
		r.SeriesIndex = wrap(r.SeriesIndex+delta, n)
		r.ImageIndex = 0
		return true
	})
	if changed {
		e.bump()
	}
	return changed
}

// SelectSeries jumps to a series by position; the play flag is kept
func (e *Engine) SelectSeries(i int) bool {
	changed := e.update(func(r *Ready) bool {
		if i < 0 || i >= len(r.Series) || i == r.SeriesIndex {
			return false
		}
		r.SeriesIndex = i
		r.ImageIndex = 0
		return true
	})
	if changed {
		e.bump()
	}
	return changed
}

// TogglePlay starts or stops playback
func (e *Engine) TogglePlay() bool {
	changed := e.update(func(r *Ready) bool {
		r.Playing = !r.Playing
		return true
	})
	if changed {
		e.bump()
	}
	return changed
}

// Faster shortens the play interval by one step
func (e *Engine) Faster() bool { return e.setInterval(e.interval - PlayIntervalStep) }

// Slower lengthens the play interval by one step
func (e *Engine) Slower() bool { return e.setInterval(e.interval + PlayIntervalStep) }

func (e *Engine) setInterval(d time.Duration) bool {
	d = clampInterval(d)
	if d == e.interval {
		return false
	}
	e.interval = d
	e.bump()
	return true
}

// ZoomIn multiplies zoom by ZoomStep
func (e *Engine) ZoomIn() bool { return e.scaleZoom(ZoomStep) }

// ZoomOut divides zoom by ZoomStep
func (e *Engine) ZoomOut() bool { return e.scaleZoom(1 / ZoomStep) }

// ResetZoom restores zoom to 1
func (e *Engine) ResetZoom() bool {
	return e.update(func(r *Ready) bool {
		if r.Zoom == DefaultZoom {
			return false
		}
		r.Zoom = DefaultZoom
		return true
	})
}

func (e *Engine) scaleZoom(factor float64) bool {
	return e.update(func(r *Ready) bool {
		z := clampZoom(r.Zoom * factor)
		if z == r.Zoom {
			return false
		}
		r.Zoom = z
		return true
	})
}

// Wheel handles a scroll event. With the zoom modifier it scales zoom by
// WheelZoomStep; otherwise it steps one frame, at most once per WheelThrottle.
func (e *Engine) Wheel(dir WheelDirection, zoomModifier bool) bool {
	if _, ok := e.state.(Ready); !ok {
		return false
	}
	if zoomModifier {
		if dir == WheelUp {
			return e.scaleZoom(WheelZoomStep)
		}
		return e.scaleZoom(1 / WheelZoomStep)
	}

	now := e.now()
	if !e.lastWheel.IsZero() && now.Sub(e.lastWheel) < WheelThrottle {
		return false
	}
	delta := 1
	if dir == WheelUp {
		delta = -1
	}
	if !e.stepImage(delta) {
		return false
	}
	e.lastWheel = now
	return true
}

// FramePath returns the path to draw for the current frame, the thumbnail
// once the full image has failed
func (e *Engine) FramePath() string {
	r, ok := e.state.(Ready)
	if !ok || !r.HasFrames() {
		return ""
	}
	frames := r.Current().Frames
	if e.fallbacks[frameKey{r.SeriesIndex, r.ImageIndex}] && r.ImageIndex < len(frames.Thumbnails) {
		return frames.Thumbnails[r.ImageIndex]
	}
	return frames.Images[r.ImageIndex]
}

// UsingThumbnail reports whether the current frame has fallen back
func (e *Engine) UsingThumbnail() bool {
	r, ok := e.state.(Ready)
	return ok && e.fallbacks[frameKey{r.SeriesIndex, r.ImageIndex}]
}

// ImageFailed records that the full image of a frame failed to load. The
// first failure switches that frame to its thumbnail and reports true; later
// failures are left alone.
func (e *Engine) ImageFailed(series, image int) bool {
	r, ok := e.state.(Ready)
	if !ok || series < 0 || series >= len(r.Series) {
		return false
	}
	if image < 0 || image >= r.Series[series].Frames.Len() {
		return false
	}
	key := frameKey{series, image}
	if e.fallbacks[key] {
		return false
	}
	e.fallbacks[key] = true
	return true
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}

func clampInterval(d time.Duration) time.Duration {
	return min(max(d, MinPlayInterval), MaxPlayInterval)
}

func clampZoom(z float64) float64 {
	return min(max(z, MinZoom), MaxZoom)
}
