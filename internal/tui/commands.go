package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/records"
	"github.com/mmcdole/pdiview/internal/service"
)

// Command factories for async operations

// LoadRecordsCmd reads the records feed. The loader falls back to built-in
// data, so this never fails.
func LoadRecordsCmd(loader *records.Loader) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return RecordsLoadedMsg{Records: loader.Load(ctx)}
	}
}

// WarmIndexCmd loads the study index ahead of the first study selection
func WarmIndexCmd(index *service.IndexService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		studies := index.Studies(ctx)
		series := 0
		for _, s := range studies {
			series += len(s.Series)
		}
		return IndexWarmedMsg{Studies: len(studies), Series: series}
	}
}

// OpenReportCmd opens a study's PDF report in the external viewer
func OpenReportCmd(opener *service.OpenerService, study domain.Study) tea.Cmd {
	return func() tea.Msg {
		if err := opener.OpenReport(study); err != nil {
			return ErrMsg{Err: err, Context: "opening report"}
		}
		return OpenedMsg{What: "report " + study.Accession}
	}
}

// OpenFrameCmd opens the full-resolution frame in the external viewer
func OpenFrameCmd(opener *service.OpenerService, path string) tea.Cmd {
	return func() tea.Msg {
		if err := opener.OpenFrame(path); err != nil {
			return ErrMsg{Err: err, Context: "opening image"}
		}
		return OpenedMsg{What: path}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
