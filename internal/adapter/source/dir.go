package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mmcdole/pdiview/internal/domain"
)

// DirSource reads bundle files from an extracted disc or directory
type DirSource struct {
	root   string
	logger *slog.Logger
}

// NewDirSource creates a source rooted at dir. The directory must exist.
func NewDirSource(dir string, logger *slog.Logger) (*DirSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bundle directory: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("bundle directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("bundle base %s is not a directory", abs)
	}
	return &DirSource{root: abs, logger: logger}, nil
}

// Locate returns the absolute filesystem path of a bundle file
func (s *DirSource) Locate(p string) string {
	clean, err := cleanPath(p)
	if err != nil {
		return s.root
	}
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

// Fetch reads a bundle file from disk
func (s *DirSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := cleanPath(p); err != nil {
		return nil, err
	}
	full := s.Locate(p)

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("bundle file missing", "path", full)
		} else {
			s.logger.Warn("bundle file read failed", "path", full, "error", err)
		}
		return nil, fmt.Errorf("read %s: %w", p, errors.Join(domain.ErrDocumentFetch, err))
	}
	return data, nil
}
