package tui

import (
	"github.com/mmcdole/pdiview/internal/domain"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// RecordsLoadedMsg carries the patient records feed
type RecordsLoadedMsg struct {
	Records domain.MedicalRecords
}

// IndexWarmedMsg signals that the study index has been read
type IndexWarmedMsg struct {
	Studies int
	Series  int
}

// OpenedMsg signals that an external viewer was launched
type OpenedMsg struct {
	What string
}

// StatusMsg shows a transient footer message
type StatusMsg struct {
	Text  string
	IsErr bool
}

// ClearStatusMsg clears the status message
type ClearStatusMsg struct{}

// TickMsg drives the footer spinner
type TickMsg struct{}
