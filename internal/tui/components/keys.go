package components

import "github.com/charmbracelet/bubbles/key"

// StudyListKeyMap defines key bindings for study list navigation
type StudyListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Home     key.Binding
	End      key.Binding
	HalfUp   key.Binding
	HalfDown key.Binding
	Escape   key.Binding
	Enter    key.Binding
	Filter   key.Binding
	Type     key.Binding
	Sort     key.Binding
}

// DefaultStudyListKeyMap returns the default study list key bindings
func DefaultStudyListKeyMap() StudyListKeyMap {
	return StudyListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "go to bottom"),
		),
		HalfUp: key.NewBinding(
			key.WithKeys("ctrl+u", "pgup"),
			key.WithHelp("C-u", "half page up"),
		),
		HalfDown: key.NewBinding(
			key.WithKeys("ctrl+d", "pgdown"),
			key.WithHelp("C-d", "half page down"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "accept filter"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Type: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle type"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
	}
}

// ViewerKeyMap defines key bindings for the image viewer
type ViewerKeyMap struct {
	PrevImage  key.Binding
	NextImage  key.Binding
	PrevSeries key.Binding
	NextSeries key.Binding
	FirstImage key.Binding
	Play       key.Binding
	Slower     key.Binding
	Faster     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	ResetZoom  key.Binding
}

// DefaultViewerKeyMap returns the default viewer key bindings
func DefaultViewerKeyMap() ViewerKeyMap {
	return ViewerKeyMap{
		PrevImage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous image"),
		),
		NextImage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next image"),
		),
		PrevSeries: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous series"),
		),
		NextSeries: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next series"),
		),
		FirstImage: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "first image"),
		),
		Play: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Slower: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "slower"),
		),
		Faster: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "faster"),
		),
		ZoomIn: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "zoom in"),
		),
		ZoomOut: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "zoom out"),
		),
		ResetZoom: key.NewBinding(
			key.WithKeys("0"),
			key.WithHelp("0", "reset zoom"),
		),
	}
}

// LabsKeyMap defines key bindings for the lab results table
type LabsKeyMap struct {
	Filter   key.Binding
	Abnormal key.Binding
	Escape   key.Binding
	Enter    key.Binding
}

// DefaultLabsKeyMap returns the default lab table key bindings
func DefaultLabsKeyMap() LabsKeyMap {
	return LabsKeyMap{
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter tests"),
		),
		Abnormal: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "abnormal only"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "accept filter"),
		),
	}
}

// Package-level key map instances
var (
	StudyListKeys = DefaultStudyListKeyMap()
	ViewerKeys    = DefaultViewerKeyMap()
	LabsKeys      = DefaultLabsKeyMap()
)
