package imaging

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/mmcdole/pdiview/internal/domain"
	"golang.org/x/sync/singleflight"
)

const defaultFrameCacheSize = 64

// FrameLoader fetches and decodes frames, keeping the most recent ones.
// Concurrent loads of the same frame share one fetch.
type FrameLoader struct {
	source domain.DocumentSource
	logger *slog.Logger
	group  singleflight.Group

	mu    sync.Mutex
	limit int
	cache map[string]image.Image
	order []string // Insertion order for eviction
}

// NewFrameLoader creates a loader holding up to limit decoded frames
func NewFrameLoader(source domain.DocumentSource, limit int, logger *slog.Logger) *FrameLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = defaultFrameCacheSize
	}
	return &FrameLoader{
		source: source,
		logger: logger,
		limit:  limit,
		cache:  make(map[string]image.Image),
	}
}

// Load returns the decoded frame at a bundle-relative path. Errors wrap
// domain.ErrAssetLoad.
func (l *FrameLoader) Load(ctx context.Context, path string) (image.Image, error) {
	if img, ok := l.cached(path); ok {
		return img, nil
	}

	v, err, _ := l.group.Do(path, func() (interface{}, error) {
		data, err := l.source.Fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w: %w", path, domain.ErrAssetLoad, err)
		}
		img, err := Decode(data)
		if err != nil {
			return nil, fmt.Errorf("frame %s: %w", path, err)
		}
		l.store(path, img)
		return img, nil
	})
	if err != nil {
		l.logger.Debug("frame load failed", "path", path, "error", err)
		return nil, err
	}
	return v.(image.Image), nil
}

// Len returns the number of cached frames
func (l *FrameLoader) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cache)
}

func (l *FrameLoader) cached(path string) (image.Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.cache[path]
	return img, ok
}

func (l *FrameLoader) store(path string, img image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.cache[path]; ok {
		return
	}
	for len(l.order) >= l.limit {
		delete(l.cache, l.order[0])
		l.order = l.order[1:]
	}
	l.cache[path] = img
	l.order = append(l.order, path)
}
