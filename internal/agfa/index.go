// Package agfa reads the HTML side of an AGFA IHE-PDI export: the INDEX.HTM study
// menu, the per-series detail pages, and the numeric JPEG naming scheme.
//
// Parsing never fails as a whole. A study block or series link that does not have
// the expected shape is skipped and the rest of the document is still read.
package agfa

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/pdiview/internal/domain"
)

// studyBlockSelector matches the per-study containers of the index menu
const studyBlockSelector = "[id].menu-item.alpha"

// hiddenSentinel marks placeholder thumbnails for empty series slots
const hiddenSentinel = "visibility:hidden"

// ParseIndex parses the INDEX.HTM document into studies in document order.
// Unreadable input yields an empty slice.
func ParseIndex(content []byte) []domain.StudyIndexEntry {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil
	}

	var studies []domain.StudyIndexEntry
	doc.Find(studyBlockSelector).Each(func(_ int, block *goquery.Selection) {
		study, err := parseStudyBlock(block)
		if err != nil {
			return
		}
		studies = append(studies, study)
	})
	return studies
}

func parseStudyBlock(block *goquery.Selection) (domain.StudyIndexEntry, error) {
	id, _ := block.Attr("id")
	accession := leadingDigits(strings.TrimSpace(id))
	if accession == "" {
		return domain.StudyIndexEntry{}, fmt.Errorf("block id %q: %w", id, domain.ErrPatternMismatch)
	}

	title := normSpace(block.Find("h4").First().Text())
	if title == "" {
		return domain.StudyIndexEntry{}, fmt.Errorf("study %s has no title: %w", accession, domain.ErrPatternMismatch)
	}

	date := ""
	block.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		if d, ok := parseStudyMarker(p.Text()); ok {
			date = d
			return false
		}
		return true
	})
	if date == "" {
		return domain.StudyIndexEntry{}, fmt.Errorf("study %s has no date: %w", accession, domain.ErrPatternMismatch)
	}

	list := block.Find("ul").First()
	if list.Length() == 0 {
		return domain.StudyIndexEntry{}, fmt.Errorf("study %s has no series list: %w", accession, domain.ErrPatternMismatch)
	}

	var series []domain.SeriesIndexEntry
	list.Find("a").Each(func(_ int, a *goquery.Selection) {
		entry, ok := parseSeriesAnchor(a, accession)
		if !ok {
			return
		}
		series = append(series, entry)
	})

	return domain.StudyIndexEntry{
		Accession: accession,
		Title:     title,
		Date:      date,
		Series:    series,
	}, nil
}

// parseSeriesAnchor reads one series link:
//
//	<a target="maincontent" href="IHE_PDI/00000011.htm"><img src="IHE_PDI/THUMBS/00000011.00001.jpg" />Series 11[203] : 25<br>dADC</a>
func parseSeriesAnchor(a *goquery.Selection, accession string) (domain.SeriesIndexEntry, bool) {
	href, _ := a.Attr("href")
	htmlFile, ok := detailFileFromHref(href)
	if !ok {
		return domain.SeriesIndexEntry{}, false
	}

	img := a.Find("img").First()
	if img.Length() == 0 {
		return domain.SeriesIndexEntry{}, false
	}
	src, _ := img.Attr("src")
	src = strings.TrimSpace(src)
	if src == "" || isHidden(img) {
		return domain.SeriesIndexEntry{}, false
	}

	labelText, titleText, ok := splitAtBreak(a)
	if !ok {
		return domain.SeriesIndexEntry{}, false
	}

	label, err := parseSeriesLabel(labelText)
	if err != nil || label.ImageCount <= 0 {
		return domain.SeriesIndexEntry{}, false
	}

	return domain.SeriesIndexEntry{
		HTMLFile:       htmlFile,
		SeriesNumber:   label.SeriesNumber,
		SeriesID:       label.SeriesID,
		Title:          normSpace(titleText),
		ImageCount:     label.ImageCount,
		ThumbnailStart: ThumbnailStartFromPath(src),
		StudyAccession: accession,
	}, true
}

// splitAtBreak returns the anchor text before and after its first <br>
func splitAtBreak(a *goquery.Selection) (before, after string, ok bool) {
	var head, tail strings.Builder
	seenBreak := false
	a.Contents().Each(func(_ int, n *goquery.Selection) {
		if goquery.NodeName(n) == "br" {
			seenBreak = true
			return
		}
		if goquery.NodeName(n) == "img" {
			return
		}
		if seenBreak {
			tail.WriteString(n.Text())
		} else {
			head.WriteString(n.Text())
		}
	})
	return head.String(), tail.String(), seenBreak
}

func isHidden(img *goquery.Selection) bool {
	html, err := goquery.OuterHtml(img)
	if err != nil {
		return false
	}
	compact := strings.ToLower(strings.Join(strings.Fields(html), ""))
	return strings.Contains(compact, hiddenSentinel)
}

// detailFileFromHref accepts "IHE_PDI/<digits>.htm" and returns "<digits>.htm"
func detailFileFromHref(href string) (string, bool) {
	href = strings.TrimSpace(href)
	href = strings.ReplaceAll(href, "\\", "/")
	name, found := strings.CutPrefix(href, "IHE_PDI/")
	if !found {
		return "", false
	}
	digits := leadingDigits(name)
	if digits == "" || !strings.EqualFold(name[len(digits):], ".htm") {
		return "", false
	}
	return digits + ".htm", true
}

// parseStudyMarker finds "Study <n> of <date>" in text and returns the date
func parseStudyMarker(text string) (string, bool) {
	text = normSpace(text)
	for i := 0; i < len(text); {
		j := strings.Index(text[i:], "Study ")
		if j < 0 {
			return "", false
		}
		rest := text[i+j+len("Study "):]
		n := leadingDigits(rest)
		if n != "" {
			if after, ok := strings.CutPrefix(rest[len(n):], " of "); ok {
				date := strings.TrimSpace(after)
				if date != "" {
					return date, true
				}
			}
		}
		i += j + len("Study ")
	}
	return "", false
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// normSpace collapses whitespace runs, including non-breaking spaces
func normSpace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
