package source

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/mmcdole/pdiview/internal/domain"
)

// CachedSource serves text documents from a DocumentStore and falls back to
// the wrapped source on a miss. Images and PDFs always pass through.
type CachedSource struct {
	inner  domain.DocumentSource
	store  domain.DocumentStore
	logger *slog.Logger
}

// NewCachedSource wraps inner with store. A nil store disables caching.
func NewCachedSource(inner domain.DocumentSource, store domain.DocumentStore, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{inner: inner, store: store, logger: logger}
}

// Cacheable reports whether a bundle path is a small text document worth persisting
func Cacheable(p string) bool {
	switch strings.ToLower(path.Ext(strings.ReplaceAll(p, "\\", "/"))) {
	case ".htm", ".html", ".json", ".js":
		return true
	}
	return false
}

func (s *CachedSource) Locate(p string) string {
	return s.inner.Locate(p)
}

func (s *CachedSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if s.store == nil || !Cacheable(p) {
		return s.inner.Fetch(ctx, p)
	}

	key, err := cleanPath(p)
	if err != nil {
		return nil, err
	}
	if data, ok := s.store.GetDocument(key); ok {
		s.logger.Debug("document cache hit", "path", key)
		return data, nil
	}

	data, err := s.inner.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveDocument(key, data); err != nil {
		s.logger.Warn("failed to cache document", "path", key, "error", err)
	}
	return data, nil
}

// Invalidate drops every cached document
func (s *CachedSource) Invalidate() {
	if s.store != nil {
		s.store.InvalidateAll()
	}
}
