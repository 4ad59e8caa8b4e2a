package agfa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/pdiview/internal/domain"
)

// Frame naming: every exported JPEG is "<8-digit id>.00001.jpg"
const (
	ImagesDir   = "IMAGES"
	ThumbsDir   = "THUMBS"
	FrameSuffix = ".00001.jpg"

	idWidth = 8
	maxID   = 99999999
)

// DefaultImagePrefix is the bundle directory holding IMAGES/ and THUMBS/
const DefaultImagePrefix = "IHE_PDI"

// ThumbnailStartFromPath extracts "<8 digits>.00001.jpg" from a thumbnail path of
// the form ".../THUMBS/<8 digits>.00001.jpg". It returns "" when the shape differs.
func ThumbnailStartFromPath(src string) string {
	src = strings.ReplaceAll(src, "\\", "/")
	marker := ThumbsDir + "/"
	for i := 0; ; {
		j := strings.Index(src[i:], marker)
		if j < 0 {
			return ""
		}
		rest := src[i+j+len(marker):]
		digits := leadingDigits(rest)
		if len(digits) == idWidth && strings.HasPrefix(rest[len(digits):], FrameSuffix) {
			return digits + FrameSuffix
		}
		i += j + len(marker)
	}
}

// ParseThumbnailStart returns the numeric id of a "<8 digits>.00001.jpg" name
func ParseThumbnailStart(name string) (int, bool) {
	digits, found := strings.CutSuffix(name, FrameSuffix)
	if !found || len(digits) != idWidth || leadingDigits(digits) != digits {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// FrameName formats a numeric id as a frame file name
func FrameName(id int) string {
	return fmt.Sprintf("%0*d%s", idWidth, id, FrameSuffix)
}

// GenerateImageURLs derives the frame and thumbnail paths of a series. The i-th
// entry uses id start+i. Series without a valid ThumbnailStart yield empty lists.
func GenerateImageURLs(series domain.ResolvedSeries, prefix string) domain.ImageSequence {
	start, ok := ParseThumbnailStart(series.ThumbnailStart)
	if !ok || series.ImageCount <= 0 {
		return domain.ImageSequence{Images: []string{}, Thumbnails: []string{}}
	}

	count := series.ImageCount
	if start+count-1 > maxID {
		count = maxID - start + 1
	}

	imagesDir := joinPrefix(prefix, ImagesDir)
	thumbsDir := joinPrefix(prefix, ThumbsDir)

	seq := domain.ImageSequence{
		Images:     make([]string, 0, count),
		Thumbnails: make([]string, 0, count),
	}
	for i := 0; i < count; i++ {
		name := FrameName(start + i)
		seq.Images = append(seq.Images, imagesDir+"/"+name)
		seq.Thumbnails = append(seq.Thumbnails, thumbsDir+"/"+name)
	}
	return seq
}

func joinPrefix(prefix, dir string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return dir
	}
	return prefix + "/" + dir
}
