package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/domain"
)

// gradient builds a w x h image, black on the left half and white on the right
func gradient(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x >= w/2 {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img, err := Decode(encodeJPEG(t, gradient(40, 20)))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("bounds = %v", b)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, gradient(8, 8)); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(buf.Bytes()); err != nil {
		t.Fatalf("png thumbnail: %v", err)
	}
}

func TestDecodeFailures(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":   nil,
		"garbage": []byte("<html>404</html>"),
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(data); !errors.Is(err, domain.ErrAssetLoad) {
				t.Fatalf("error = %v, want ErrAssetLoad", err)
			}
		})
	}
}

func checkBox(t *testing.T, out string, width, height int) {
	t.Helper()
	lines := strings.Split(out, "\n")
	if len(lines) != height {
		t.Fatalf("got %d lines, want %d", len(lines), height)
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Fatalf("line %d width = %d, want %d", i, w, width)
		}
	}
}

func TestRenderFillsBox(t *testing.T) {
	img := gradient(64, 64)
	for _, zoom := range []float64{0.1, 0.5, 1, 2.5, 5} {
		t.Run(fmt.Sprint(zoom), func(t *testing.T) {
			checkBox(t, Render(img, 30, 12, zoom), 30, 12)
		})
	}
}

func TestRenderZoomChangesDrawnArea(t *testing.T) {
	img := gradient(64, 64)
	blocks := func(zoom float64) int {
		return strings.Count(Render(img, 40, 20, zoom), halfBlock)
	}
	small, fit, large := blocks(0.5), blocks(1), blocks(3)
	if !(small < fit && fit <= large) {
		t.Fatalf("blocks: zoom 0.5=%d, 1=%d, 3=%d", small, fit, large)
	}
	if large != 40*20 {
		t.Fatalf("zoomed-in image should fill the box, got %d cells", large)
	}
}

func TestRenderDegenerate(t *testing.T) {
	if Render(gradient(4, 4), 0, 10, 1) != "" {
		t.Fatal("zero width should render nothing")
	}
	out := Render(nil, 5, 2, 1)
	checkBox(t, out, 5, 2)
	if strings.Contains(out, halfBlock) {
		t.Fatal("nil image should render blank")
	}
}

type memSource struct {
	mu    sync.Mutex
	docs  map[string][]byte
	calls int
}

func (m *memSource) Fetch(_ context.Context, p string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	data, ok := m.docs[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, domain.ErrDocumentFetch)
	}
	return data, nil
}

func (m *memSource) Locate(p string) string { return p }

func TestFrameLoaderCaches(t *testing.T) {
	src := &memSource{docs: map[string][]byte{
		"IMAGES/00000011.00001.jpg": encodeJPEG(t, gradient(16, 16)),
		"IMAGES/00000012.00001.jpg": encodeJPEG(t, gradient(16, 16)),
		"IMAGES/00000013.00001.jpg": encodeJPEG(t, gradient(16, 16)),
		"IMAGES/broken.jpg":         []byte("nope"),
	}}
	loader := NewFrameLoader(src, 2, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := loader.Load(ctx, "IMAGES/00000011.00001.jpg"); err != nil {
			t.Fatalf("Load: %v", err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("fetched %d times, want 1", src.calls)
	}

	loader.Load(ctx, "IMAGES/00000012.00001.jpg")
	loader.Load(ctx, "IMAGES/00000013.00001.jpg")
	if loader.Len() != 2 {
		t.Fatalf("cache holds %d frames, want 2", loader.Len())
	}
	// Oldest frame was evicted
	loader.Load(ctx, "IMAGES/00000011.00001.jpg")
	if src.calls != 4 {
		t.Fatalf("fetched %d times, want 4", src.calls)
	}

	if _, err := loader.Load(ctx, "IMAGES/missing.jpg"); !errors.Is(err, domain.ErrAssetLoad) || !errors.Is(err, domain.ErrDocumentFetch) {
		t.Fatalf("missing frame error = %v", err)
	}
	if _, err := loader.Load(ctx, "IMAGES/broken.jpg"); !errors.Is(err, domain.ErrAssetLoad) {
		t.Fatalf("broken frame error = %v", err)
	}
}
