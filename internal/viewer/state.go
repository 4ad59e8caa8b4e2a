// Package viewer holds the image viewer's playback and navigation state machine.
// It has no I/O and no timers of its own: the caller feeds it resolution
// results, ticks and input events, and reads the state back for rendering.
package viewer

import (
	"errors"

	"github.com/mmcdole/pdiview/internal/domain"
)

// State is one of Idle, Loading, Failed or Ready
type State interface {
	isState()
}

// Idle means no study is selected
type Idle struct{}

// Loading means series resolution for Accession is in flight
type Loading struct {
	Accession string
	Request   uint64
}

// Failed means resolution failed or produced no series
type Failed struct {
	Accession string
	Err       error
}

// Ready means the study's series are loaded and one frame is on screen
type Ready struct {
	Accession   string
	Series      []domain.LoadedSeries
	SeriesIndex int
	ImageIndex  int
	Zoom        float64
	Playing     bool
}

func (Idle) isState()    {}
func (Loading) isState() {}
func (Failed) isState()  {}
func (Ready) isState()   {}

// Status texts shown in place of an image
const (
	StatusIdle     = "Select a study to view medical images"
	StatusLoading  = "Loading medical images..."
	StatusNoImages = "No image data available for this study"
)

// Reason returns the user-facing failure text
func (f Failed) Reason() string {
	if f.Err == nil || errors.Is(f.Err, domain.ErrNoSeries) {
		return StatusNoImages
	}
	return "Failed to load medical images: " + f.Err.Error()
}

// Current returns the selected series
func (r Ready) Current() domain.LoadedSeries {
	return r.Series[r.SeriesIndex]
}

// FrameCount returns the number of frames in the selected series
func (r Ready) FrameCount() int {
	return r.Current().Frames.Len()
}

// HasFrames reports whether the selected series has anything to show
func (r Ready) HasFrames() bool {
	return r.FrameCount() > 0
}
