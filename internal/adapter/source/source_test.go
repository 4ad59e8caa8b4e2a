package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDetectKind(t *testing.T) {
	cases := map[string]Kind{
		"http://cd.local/":     KindHTTP,
		"https://x.test/pdi":   KindHTTP,
		"/media/cdrom":         KindDir,
		"./bundle":             KindDir,
		"C:\\bundle":           KindDir,
		"http:///missing-host": KindDir,
	}
	for in, want := range cases {
		if got := DetectKind(in); got != want {
			t.Fatalf("DetectKind(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCleanPath(t *testing.T) {
	if got, err := cleanPath("/data\\IHE_PDI\\00000011.htm"); err != nil || got != "data/IHE_PDI/00000011.htm" {
		t.Fatalf("cleanPath = (%q,%v)", got, err)
	}
	for _, bad := range []string{"", "  ", "../etc/passwd", "data/../../x"} {
		if _, err := cleanPath(bad); !errors.Is(err, domain.ErrDocumentFetch) {
			t.Fatalf("cleanPath(%q) expected ErrDocumentFetch, got %v", bad, err)
		}
	}
}

func TestNewSourceRequiresBase(t *testing.T) {
	if _, err := NewSource(&SourceConfig{}, quietLogger()); err == nil {
		t.Fatal("expected error for empty base")
	}
	if _, err := NewSource(nil, quietLogger()); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestDirSourceFetch(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "IHE_PDI"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "IHE_PDI", "00000011.htm"), []byte("<title>203 dADC</title>"), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewSource(&SourceConfig{Base: root}, quietLogger())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if _, ok := src.(*DirSource); !ok {
		t.Fatalf("expected *DirSource, got %T", src)
	}

	data, err := src.Fetch(context.Background(), "IHE_PDI/00000011.htm")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "<title>203 dADC</title>" {
		t.Fatalf("unexpected content %q", data)
	}

	_, err = src.Fetch(context.Background(), "IHE_PDI/missing.htm")
	if !errors.Is(err, domain.ErrDocumentFetch) {
		t.Fatalf("expected ErrDocumentFetch, got %v", err)
	}

	if got := src.Locate("IHE_PDI/00000011.htm"); got != filepath.Join(root, "IHE_PDI", "00000011.htm") {
		t.Fatalf("Locate = %q", got)
	}
}

func TestDirSourceCancelled(t *testing.T) {
	src, err := NewDirSource(t.TempDir(), quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx, "index.htm"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewDirSourceMissing(t *testing.T) {
	if _, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), quietLogger()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestHTTPSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != userAgent {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		switch r.URL.Path {
		case "/pdi/index.htm":
			_, _ = w.Write([]byte("<html>ok</html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewSource(&SourceConfig{Base: srv.URL + "/pdi", Timeout: time.Second, RetryMax: 0}, quietLogger())
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	if _, ok := src.(*HTTPSource); !ok {
		t.Fatalf("expected *HTTPSource, got %T", src)
	}

	data, err := src.Fetch(context.Background(), "index.htm")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "<html>ok</html>" {
		t.Fatalf("unexpected body %q", data)
	}

	_, err = src.Fetch(context.Background(), "missing.htm")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected StatusError 404, got %v", err)
	}
	if !errors.Is(err, domain.ErrDocumentFetch) {
		t.Fatalf("status error should match ErrDocumentFetch: %v", err)
	}

	if got := src.Locate("IHE_PDI/IMAGES/00000011.00001.jpg"); got != srv.URL+"/pdi/IHE_PDI/IMAGES/00000011.00001.jpg" {
		t.Fatalf("Locate = %q", got)
	}
}

func TestHTTPSourceRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path[1:]))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, time.Second, 0, quietLogger())
	if err != nil {
		t.Fatalf("NewHTTPSource: %v", err)
	}
	src.maxSize = 8

	data, err := src.Fetch(context.Background(), "12345678")
	if err != nil || string(data) != "12345678" {
		t.Fatalf("body at the limit: %q, %v", data, err)
	}

	data, err = src.Fetch(context.Background(), "123456789")
	if !errors.Is(err, domain.ErrDocumentFetch) {
		t.Fatalf("expected ErrDocumentFetch, got %v", err)
	}
	if data != nil {
		t.Fatalf("oversized body returned %d bytes", len(data))
	}
}

func TestHTTPSourceRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("late"))
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, time.Second, 2, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	data, err := src.Fetch(context.Background(), "index.htm")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "late" || calls.Load() != 3 {
		t.Fatalf("got %q after %d calls", data, calls.Load())
	}
}

func TestHTTPSourceRetryBudgetExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, time.Second, 1, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Fetch(context.Background(), "index.htm")
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected StatusError 503, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestHTTPSourceUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	src, err := NewHTTPSource(base, time.Second, 0, quietLogger())
	if err != nil {
		t.Fatal(err)
	}
	_, err = src.Fetch(context.Background(), "index.htm")
	if !errors.Is(err, ErrUnreachable) || !errors.Is(err, domain.ErrDocumentFetch) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
}

// memStore is a map-backed DocumentStore for exercising CachedSource
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func (m *memStore) GetDocument(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[path]
	return d, ok
}

func (m *memStore) SaveDocument(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[path] = data
	return nil
}

func (m *memStore) InvalidateAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = map[string][]byte{}
}

func (m *memStore) Close() error { return nil }

// countingSource counts Fetch calls per path
type countingSource struct {
	calls map[string]int
}

func (c *countingSource) Fetch(_ context.Context, p string) ([]byte, error) {
	c.calls[p]++
	if p == "missing.htm" {
		return nil, domain.ErrDocumentFetch
	}
	return []byte("body:" + p), nil
}

func (c *countingSource) Locate(p string) string { return "/bundle/" + p }

func TestCachedSource(t *testing.T) {
	inner := &countingSource{calls: map[string]int{}}
	store := &memStore{docs: map[string][]byte{}}
	src := NewCachedSource(inner, store, quietLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := src.Fetch(ctx, "index.htm")
		if err != nil || string(data) != "body:index.htm" {
			t.Fatalf("Fetch = (%q,%v)", data, err)
		}
	}
	if inner.calls["index.htm"] != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", inner.calls["index.htm"])
	}

	// Frames are never persisted
	for i := 0; i < 2; i++ {
		if _, err := src.Fetch(ctx, "IHE_PDI/IMAGES/00000011.00001.jpg"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls["IHE_PDI/IMAGES/00000011.00001.jpg"] != 2 {
		t.Fatalf("images should bypass the cache")
	}

	// Failures are not cached
	for i := 0; i < 2; i++ {
		if _, err := src.Fetch(ctx, "missing.htm"); !errors.Is(err, domain.ErrDocumentFetch) {
			t.Fatalf("expected ErrDocumentFetch, got %v", err)
		}
	}
	if inner.calls["missing.htm"] != 2 {
		t.Fatalf("failed fetches should be retried upstream")
	}

	src.Invalidate()
	if _, err := src.Fetch(ctx, "index.htm"); err != nil {
		t.Fatal(err)
	}
	if inner.calls["index.htm"] != 2 {
		t.Fatalf("expected refetch after Invalidate, got %d", inner.calls["index.htm"])
	}

	if got := src.Locate("x.pdf"); got != "/bundle/x.pdf" {
		t.Fatalf("Locate = %q", got)
	}
}

func TestCachedSourceNilStore(t *testing.T) {
	inner := &countingSource{calls: map[string]int{}}
	src := NewCachedSource(inner, nil, quietLogger())
	for i := 0; i < 2; i++ {
		if _, err := src.Fetch(context.Background(), "index.htm"); err != nil {
			t.Fatal(err)
		}
	}
	if inner.calls["index.htm"] != 2 {
		t.Fatalf("nil store should not cache")
	}
}
