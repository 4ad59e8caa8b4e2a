package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
)

const (
	defaultTimeout  = 20 * time.Second
	defaultRetryMax = 2
	userAgent       = "pdiview/1.0"

	// maxDocumentSize bounds a single read; the largest bundle files are PDFs
	maxDocumentSize = 64 << 20
)

// HTTPSource reads bundle files from a static web origin
type HTTPSource struct {
	base       *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	maxSize    int64
}

// NewHTTPSource creates a source rooted at baseURL
func NewHTTPSource(baseURL string, timeout time.Duration, retryMax int, logger *slog.Logger) (*HTTPSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid bundle URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if retryMax < 0 {
		retryMax = defaultRetryMax
	}

	return &HTTPSource{
		base: u,
		httpClient: &http.Client{
			Transport: &retryTransport{Base: http.DefaultTransport, RetryMax: retryMax},
			Timeout:   timeout,
		},
		logger:  logger,
		maxSize: maxDocumentSize,
	}, nil
}

// Locate returns the absolute URL of a bundle file
func (s *HTTPSource) Locate(p string) string {
	clean, err := cleanPath(p)
	if err != nil {
		return s.base.String()
	}
	return s.base.ResolveReference(&url.URL{Path: clean}).String()
}

// Fetch performs a GET for a bundle file
func (s *HTTPSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if _, err := cleanPath(p); err != nil {
		return nil, err
	}
	reqURL := s.Locate(p)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	s.logger.Debug("bundle request", "url", reqURL)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("bundle request failed", "url", reqURL, "error", err)
		return nil, fmt.Errorf("GET %s: %w", reqURL, errors.Join(ErrUnreachable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: reqURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", reqURL, errors.Join(ErrUnreachable, err))
	}
	if int64(len(body)) > s.maxSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrDocumentFetch, reqURL, s.maxSize)
	}
	return body, nil
}

// retryTransport retries idempotent requests a bounded number of times
type retryTransport struct {
	Base http.RoundTripper

	// RetryMax is the number of retries after the first attempt
	RetryMax int
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	// Only GET/HEAD without a body can be replayed
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		resp, err := base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			if resp.StatusCode >= 500 && attempt < max {
				resp.Body.Close()
				lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
				continue
			}
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}
