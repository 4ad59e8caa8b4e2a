package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mmcdole/pdiview/internal/agfa"
	"github.com/mmcdole/pdiview/internal/domain"
	"golang.org/x/sync/singleflight"
)

// IndexService loads and memoizes the bundle's study index.
// Concurrent callers share one in-flight load.
type IndexService struct {
	source    domain.DocumentSource
	indexFile string
	logger    *slog.Logger

	group singleflight.Group

	mu      sync.RWMutex
	studies []domain.StudyIndexEntry
	loaded  bool
}

// NewIndexService creates an index service reading indexFile from source
func NewIndexService(source domain.DocumentSource, indexFile string, logger *slog.Logger) *IndexService {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexService{
		source:    source,
		indexFile: indexFile,
		logger:    logger,
	}
}

// Studies returns the parsed index. A fetch failure yields an empty index and
// is not memoized, so a later call retries.
func (s *IndexService) Studies(ctx context.Context) []domain.StudyIndexEntry {
	s.mu.RLock()
	if s.loaded {
		studies := s.studies
		s.mu.RUnlock()
		return studies
	}
	s.mu.RUnlock()

	v, _, _ := s.group.Do(s.indexFile, func() (interface{}, error) {
		// Another caller may have finished while we waited for the lock
		s.mu.RLock()
		if s.loaded {
			studies := s.studies
			s.mu.RUnlock()
			return studies, nil
		}
		s.mu.RUnlock()

		content, err := s.source.Fetch(ctx, s.indexFile)
		if err != nil {
			s.logger.Warn("index unavailable", "file", s.indexFile, "error", err)
			return []domain.StudyIndexEntry{}, nil
		}

		studies := agfa.ParseIndex(content)
		s.logger.Info("parsed index", "file", s.indexFile, "studies", len(studies), "series", countSeries(studies))

		s.mu.Lock()
		s.studies = studies
		s.loaded = true
		s.mu.Unlock()
		return studies, nil
	})
	return v.([]domain.StudyIndexEntry)
}

// Study returns the index entry for an accession
func (s *IndexService) Study(ctx context.Context, accession string) (domain.StudyIndexEntry, bool) {
	return domain.FindStudy(s.Studies(ctx), accession)
}

// Loaded reports whether a successful parse is memoized
func (s *IndexService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Invalidate forgets the memoized index
func (s *IndexService) Invalidate() {
	s.mu.Lock()
	s.studies = nil
	s.loaded = false
	s.mu.Unlock()
	s.group.Forget(s.indexFile)
}

func countSeries(studies []domain.StudyIndexEntry) int {
	n := 0
	for _, st := range studies {
		n += len(st.Series)
	}
	return n
}
