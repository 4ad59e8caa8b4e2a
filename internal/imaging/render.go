// Package imaging decodes bundle JPEG frames and draws them as terminal
// half-block cells.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png" // Thumbnails are not always JPEG
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/pdiview/internal/domain"
)

const halfBlock = "▀"

// Decode reads a JPEG (or any registered format) frame
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty frame: %w", domain.ErrAssetLoad)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err == nil {
		return img, nil
	}
	img, _, err2 := image.Decode(bytes.NewReader(data))
	if err2 != nil {
		return nil, errors.Join(domain.ErrAssetLoad, err)
	}
	return img, nil
}

// Render draws img into a width x height cell box. Each cell shows two
// vertically stacked pixels. zoom scales relative to the fit-to-box size and
// crops around the image centre once the image overflows the box. Every line
// is padded to width.
func Render(img image.Image, width, height int, zoom float64) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	blank := strings.Repeat(" ", width)
	if img == nil || img.Bounds().Empty() {
		return strings.TrimSuffix(strings.Repeat(blank+"\n", height), "\n")
	}
	if zoom <= 0 {
		zoom = 1
	}

	b := img.Bounds()
	iw, ih := float64(b.Dx()), float64(b.Dy())
	boxW, boxH := float64(width), float64(height*2)

	scale := min(boxW/iw, boxH/ih) * zoom
	drawW := min(width, max(1, int(iw*scale)))
	drawH := min(height*2, max(1, int(ih*scale)))
	// Keep pixel rows even so cells pair up
	if drawH%2 == 1 && drawH < height*2 {
		drawH++
	}

	cellRows := (drawH + 1) / 2
	offX := (width - drawW) / 2
	offRows := (height - cellRows) / 2
	cx := float64(b.Min.X) + iw/2
	cy := float64(b.Min.Y) + ih/2

	sample := func(x, y int) uint8 {
		sx := int(cx + (float64(x)-float64(drawW)/2+0.5)/scale)
		sy := int(cy + (float64(y)-float64(drawH)/2+0.5)/scale)
		if sx < b.Min.X || sx >= b.Max.X || sy < b.Min.Y || sy >= b.Max.Y {
			return 0
		}
		return luminance(img.At(sx, sy))
	}

	styles := make(map[[2]uint8]lipgloss.Style)
	cell := func(top, bottom uint8) string {
		key := [2]uint8{top, bottom}
		st, ok := styles[key]
		if !ok {
			st = lipgloss.NewStyle().
				Foreground(lipgloss.Color(grayHex(top))).
				Background(lipgloss.Color(grayHex(bottom)))
			styles[key] = st
		}
		return st.Render(halfBlock)
	}

	var sb strings.Builder
	for row := 0; row < height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		r := row - offRows
		if r < 0 || r >= cellRows {
			sb.WriteString(blank)
			continue
		}
		sb.WriteString(strings.Repeat(" ", offX))
		for x := 0; x < drawW; x++ {
			top := sample(x, r*2)
			bottom := uint8(0)
			if r*2+1 < drawH {
				bottom = sample(x, r*2+1)
			}
			sb.WriteString(cell(top, bottom))
		}
		sb.WriteString(strings.Repeat(" ", width-offX-drawW))
	}
	return sb.String()
}

// luminance converts any colour to an 8-bit grey level
func luminance(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}

func grayHex(v uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", v, v, v)
}
