package domain

import (
	"strconv"
	"strings"
)

// StudyIndexEntry is one study block parsed from the bundle's INDEX.HTM
type StudyIndexEntry struct {
	Accession string             // Study accession, leading digits of the container id
	Title     string             // Level-4 heading of the block
	Date      string             // Display date following "Study N of "
	Series    []SeriesIndexEntry // Retained series, document order
}

// SeriesIndexEntry is one series link inside a study block
type SeriesIndexEntry struct {
	HTMLFile       string // Detail page file name, e.g. "00000011.htm"
	SeriesNumber   int    // Ordinal as printed in the index ("Series 11")
	SeriesID       string // SerNr token from the index ("[203]"), may be overridden
	Title          string // Text after the line break
	ImageCount     int    // Always > 0 for retained entries
	ThumbnailStart string // "<8 digits>.00001.jpg" or empty
	StudyAccession string // Owning study
}

// NumericID returns the SerNr as an integer, 0 when it is not numeric
func (s SeriesIndexEntry) NumericID() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.SeriesID))
	if err != nil {
		return 0
	}
	return n
}

// ResolvedSeries is a series whose id and title may come from its detail page
type ResolvedSeries struct {
	SeriesIndexEntry

	// Resolved is true when the detail page supplied SeriesID and Title
	Resolved bool
}

// ImageSequence holds index-aligned frame and thumbnail paths for a series
type ImageSequence struct {
	Images     []string
	Thumbnails []string
}

// Len returns the number of frames in the sequence
func (s ImageSequence) Len() int {
	return len(s.Images)
}

// Empty reports whether the sequence has no frames
func (s ImageSequence) Empty() bool {
	return len(s.Images) == 0
}

// FindStudy returns the index entry for an accession
func FindStudy(studies []StudyIndexEntry, accession string) (StudyIndexEntry, bool) {
	for _, s := range studies {
		if s.Accession == accession {
			return s, true
		}
	}
	return StudyIndexEntry{}, false
}

// LoadedSeries pairs a resolved series with its generated frame paths
type LoadedSeries struct {
	ResolvedSeries
	Frames ImageSequence
}
