package service

import (
	"fmt"
	"log/slog"

	"github.com/mmcdole/pdiview/internal/domain"
)

// launcher abstracts external viewer launching (consumer-defined interface)
type launcher interface {
	Open(target string) error
}

// locator resolves bundle-relative paths to openable addresses
type locator interface {
	Locate(path string) string
}

// OpenerService opens reports and frames outside the terminal
type OpenerService struct {
	launcher launcher
	locator  locator
	logger   *slog.Logger
}

// NewOpenerService creates a new opener service
func NewOpenerService(launcher launcher, locator locator, logger *slog.Logger) *OpenerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OpenerService{
		launcher: launcher,
		locator:  locator,
		logger:   logger,
	}
}

// OpenReport opens the study's PDF report
func (s *OpenerService) OpenReport(study domain.Study) error {
	if !study.HasReport() {
		return fmt.Errorf("study %s has no report", study.Accession)
	}
	target := s.locator.Locate(study.ReportFile)
	s.logger.Info("opening report", "accession", study.Accession, "target", target)
	return s.launcher.Open(target)
}

// OpenFrame opens a single frame of a series
func (s *OpenerService) OpenFrame(framePath string) error {
	if framePath == "" {
		return fmt.Errorf("no frame selected")
	}
	target := s.locator.Locate(framePath)
	s.logger.Info("opening frame", "target", target)
	return s.launcher.Open(target)
}

// ReportLocation returns where the study's report lives, empty when it has none
func (s *OpenerService) ReportLocation(study domain.Study) string {
	if !study.HasReport() {
		return ""
	}
	return s.locator.Locate(study.ReportFile)
}
