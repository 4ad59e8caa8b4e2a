package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the dashboard-level key bindings. Component bindings live
// in the components package.
type KeyMap struct {
	Quit      key.Binding
	Help      key.Binding
	Escape    key.Binding
	Enter     key.Binding
	Focus     key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	Tab5      key.Binding
	Tab6      key.Binding
	NextStudy key.Binding
	PrevStudy key.Binding
	Open      key.Binding
	Refresh   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back to studies"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open study"),
		),
		Focus: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("C-w", "switch pane"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous tab"),
		),
		Tab1: key.NewBinding(key.WithKeys("1")),
		Tab2: key.NewBinding(key.WithKeys("2")),
		Tab3: key.NewBinding(key.WithKeys("3")),
		Tab4: key.NewBinding(key.WithKeys("4")),
		Tab5: key.NewBinding(key.WithKeys("5")),
		Tab6: key.NewBinding(key.WithKeys("6")),
		NextStudy: key.NewBinding(
			key.WithKeys("ctrl+n", "n"),
			key.WithHelp("n", "next study"),
		),
		PrevStudy: key.NewBinding(
			key.WithKeys("ctrl+p", "p"),
			key.WithHelp("p", "previous study"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open externally"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
	}
}

// Keys is the global key bindings instance
var Keys = DefaultKeyMap()

func (k KeyMap) tabKeys() []key.Binding {
	return []key.Binding{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5, k.Tab6}
}
