package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmcdole/pdiview/internal/agfa"
	"github.com/mmcdole/pdiview/internal/domain"
)

// ImageService is the viewer's loading pipeline: resolve series, then
// generate their frame sequences
type ImageService struct {
	resolver *SeriesResolver
	prefix   string
	logger   *slog.Logger
}

// NewImageService creates an ImageService; prefix is joined before IMAGES/ and THUMBS/
func NewImageService(resolver *SeriesResolver, prefix string, logger *slog.Logger) *ImageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{resolver: resolver, prefix: prefix, logger: logger}
}

// Load returns every series of a study with its frames. A study without
// series yields domain.ErrNoSeries.
func (s *ImageService) Load(ctx context.Context, accession string) ([]domain.LoadedSeries, error) {
	resolved, err := s.resolver.Resolve(ctx, accession)
	if err != nil {
		return nil, err
	}
	if len(resolved) == 0 {
		return nil, fmt.Errorf("study %s: %w", accession, domain.ErrNoSeries)
	}

	out := make([]domain.LoadedSeries, len(resolved))
	for i, series := range resolved {
		out[i] = domain.LoadedSeries{
			ResolvedSeries: series,
			Frames:         agfa.GenerateImageURLs(series, s.prefix),
		}
		if out[i].Frames.Empty() {
			s.logger.Debug("series has no frame sequence", "accession", accession, "series", series.SeriesID, "thumbnail", series.ThumbnailStart)
		}
	}
	return out, nil
}

// Prefix returns the frame path prefix
func (s *ImageService) Prefix() string {
	return s.prefix
}
