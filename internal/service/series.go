package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/mmcdole/pdiview/internal/agfa"
	"github.com/mmcdole/pdiview/internal/domain"
	"golang.org/x/sync/errgroup"
)

const defaultResolveWorkers = 4

// studyIndex abstracts the memoized index (consumer-defined interface)
type studyIndex interface {
	Study(ctx context.Context, accession string) (domain.StudyIndexEntry, bool)
}

// SeriesResolver turns an accession into display-ordered series, using each
// series' detail page for the authoritative SerNr and title
type SeriesResolver struct {
	index   studyIndex
	source  domain.DocumentSource
	workers int
	logger  *slog.Logger
}

// NewSeriesResolver creates a resolver fetching at most workers detail pages at once
func NewSeriesResolver(index studyIndex, source domain.DocumentSource, workers int, logger *slog.Logger) *SeriesResolver {
	if logger == nil {
		logger = slog.Default()
	}
	if workers < 1 {
		workers = defaultResolveWorkers
	}
	return &SeriesResolver{
		index:   index,
		source:  source,
		workers: workers,
		logger:  logger,
	}
}

// Resolve returns the study's series sorted by numeric SerNr, descending.
// An unknown study or one without series yields an empty list. A failed
// detail page falls back to the index values for that series only.
// The only error is ctx's.
func (r *SeriesResolver) Resolve(ctx context.Context, accession string) ([]domain.ResolvedSeries, error) {
	study, ok := r.index.Study(ctx, accession)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !ok || len(study.Series) == 0 {
		r.logger.Debug("no series for study", "accession", accession, "indexed", ok)
		return []domain.ResolvedSeries{}, nil
	}

	resolved := make([]domain.ResolvedSeries, len(study.Series))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, entry := range study.Series {
		g.Go(func() error {
			resolved[i] = r.resolveOne(ctx, entry)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortBySerNrDesc(resolved)

	fallbacks := 0
	for _, s := range resolved {
		if !s.Resolved {
			fallbacks++
		}
	}
	r.logger.Info("resolved series", "accession", accession, "series", len(resolved), "fallbacks", fallbacks)
	return resolved, nil
}

// resolveOne never fails; detail page problems leave the index values in place
func (r *SeriesResolver) resolveOne(ctx context.Context, entry domain.SeriesIndexEntry) domain.ResolvedSeries {
	out := domain.ResolvedSeries{SeriesIndexEntry: entry}
	if ctx.Err() != nil {
		return out
	}

	content, err := r.source.Fetch(ctx, agfa.DetailPagePath(entry.HTMLFile))
	if err != nil {
		r.logger.Debug("detail page unavailable", "file", entry.HTMLFile, "error", err)
		return out
	}

	serNr, title, err := agfa.ParseDetailTitle(content)
	if err != nil {
		r.logger.Debug("detail page title mismatch", "file", entry.HTMLFile, "error", err)
		return out
	}

	out.SeriesID = serNr
	out.Title = title
	out.Resolved = true
	return out
}

// SortBySerNrDesc orders series by numeric SerNr, largest first; ties keep
// their relative order and non-numeric ids count as 0
func SortBySerNrDesc(series []domain.ResolvedSeries) {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].NumericID() > series[j].NumericID()
	})
}
