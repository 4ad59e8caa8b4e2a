package source

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
)

// ErrUnreachable indicates the bundle origin could not be reached or read
var ErrUnreachable = fmt.Errorf("bundle origin unreachable: %w", domain.ErrDocumentFetch)

// Kind identifies where a bundle is read from
type Kind string

const (
	KindDir  Kind = "dir"
	KindHTTP Kind = "http"
)

// SourceConfig contains the configuration needed to create a DocumentSource
type SourceConfig struct {
	Base     string        // Directory path or http(s) URL of the bundle root
	Timeout  time.Duration // HTTP only
	RetryMax int           // HTTP only, retries after the first attempt
}

// DetectKind returns KindHTTP for http(s) URLs and KindDir otherwise
func DetectKind(base string) Kind {
	u, err := url.Parse(strings.TrimSpace(base))
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return KindHTTP
	}
	return KindDir
}

// NewSource creates a DocumentSource for the configured bundle location.
// This factory hides whether documents come from disk or over HTTP.
func NewSource(cfg *SourceConfig, logger *slog.Logger) (domain.DocumentSource, error) {
	if cfg == nil {
		return nil, fmt.Errorf("source config is nil")
	}
	if strings.TrimSpace(cfg.Base) == "" {
		return nil, fmt.Errorf("bundle base is required")
	}

	switch DetectKind(cfg.Base) {
	case KindHTTP:
		return NewHTTPSource(cfg.Base, cfg.Timeout, cfg.RetryMax, logger)
	default:
		return NewDirSource(cfg.Base, logger)
	}
}

// cleanPath normalizes a bundle-relative path and rejects escapes from the root
func cleanPath(p string) (string, error) {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return "", fmt.Errorf("empty document path: %w", domain.ErrDocumentFetch)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("path %q leaves the bundle: %w", p, domain.ErrDocumentFetch)
		}
	}
	return p, nil
}

// StatusError reports a non-2xx HTTP response for a bundle document
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.StatusCode)
}

// Unwrap lets callers match every status failure as a fetch failure
func (e *StatusError) Unwrap() error { return domain.ErrDocumentFetch }
