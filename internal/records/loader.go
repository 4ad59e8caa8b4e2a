package records

import (
	"context"
	"log/slog"

	"github.com/mmcdole/pdiview/internal/domain"
)

// Loader reads the feed and assembles the patient's records
type Loader struct {
	source     domain.DocumentSource
	feedFile   string
	reportsDir string
	logger     *slog.Logger
}

// NewLoader creates a Loader for the feed at feedFile
func NewLoader(source domain.DocumentSource, feedFile, reportsDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, feedFile: feedFile, reportsDir: reportsDir, logger: logger}
}

// Load never fails: any fetch or parse error yields the built-in dataset.
// Lab and echo records are always attached.
func (l *Loader) Load(ctx context.Context) domain.MedicalRecords {
	recs, err := l.loadFeed(ctx)
	if err != nil {
		if ctx.Err() != nil {
			l.logger.Info("feed load cancelled, using built-in records")
		} else {
			l.logger.Warn("feed unavailable, using built-in records", "file", l.feedFile, "error", err)
		}
		recs = MockRecords(l.reportsDir)
	} else {
		l.logger.Info("loaded feed", "patient", recs.Patient.ID, "studies", len(recs.Studies))
	}

	recs.LabResults = SampleLabResults()
	recs.EchoReports = SampleEchoReports()
	return recs
}

func (l *Loader) loadFeed(ctx context.Context) (domain.MedicalRecords, error) {
	if l.source == nil {
		return domain.MedicalRecords{}, domain.ErrDocumentFetch
	}
	content, err := l.source.Fetch(ctx, l.feedFile)
	if err != nil {
		return domain.MedicalRecords{}, err
	}
	return ParseFeed(content, l.reportsDir)
}
