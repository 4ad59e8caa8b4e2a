package agfa

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmcdole/pdiview/internal/domain"
)

// seriesLabel is the parsed "Series <n>[<SerNr>] : <count>" link text
type seriesLabel struct {
	SeriesNumber int
	SeriesID     string
	ImageCount   int
}

// parseSeriesLabel reads the label grammar
//
//	label = "Series" SP number "[" id "]" [SP] ":" [SP] number
//
// where id is any text without "]" (trimmed, possibly empty).
func parseSeriesLabel(text string) (seriesLabel, error) {
	sc := labelScanner{s: normSpace(text)}

	if !sc.literal("Series") || !sc.space() {
		return seriesLabel{}, sc.fail("keyword")
	}
	number, ok := sc.number()
	if !ok {
		return seriesLabel{}, sc.fail("series number")
	}
	sc.space()
	if !sc.literal("[") {
		return seriesLabel{}, sc.fail("'['")
	}
	id, ok := sc.until(']')
	if !ok {
		return seriesLabel{}, sc.fail("']'")
	}
	sc.space()
	if !sc.literal(":") {
		return seriesLabel{}, sc.fail("':'")
	}
	sc.space()
	count, ok := sc.number()
	if !ok {
		return seriesLabel{}, sc.fail("image count")
	}
	sc.space()
	if !sc.done() {
		return seriesLabel{}, sc.fail("end of label")
	}

	return seriesLabel{
		SeriesNumber: number,
		SeriesID:     strings.TrimSpace(id),
		ImageCount:   count,
	}, nil
}

type labelScanner struct {
	s   string
	pos int
}

func (l *labelScanner) literal(word string) bool {
	if !strings.HasPrefix(l.s[l.pos:], word) {
		return false
	}
	l.pos += len(word)
	return true
}

// space consumes spaces and reports whether any were present
func (l *labelScanner) space() bool {
	start := l.pos
	for l.pos < len(l.s) && l.s[l.pos] == ' ' {
		l.pos++
	}
	return l.pos > start
}

func (l *labelScanner) number() (int, bool) {
	digits := leadingDigits(l.s[l.pos:])
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	l.pos += len(digits)
	return n, true
}

// until returns the text up to the delimiter and consumes the delimiter
func (l *labelScanner) until(delim byte) (string, bool) {
	i := strings.IndexByte(l.s[l.pos:], delim)
	if i < 0 {
		return "", false
	}
	out := l.s[l.pos : l.pos+i]
	l.pos += i + 1
	return out, true
}

func (l *labelScanner) done() bool {
	return l.pos == len(l.s)
}

func (l *labelScanner) fail(want string) error {
	return fmt.Errorf("series label %q: expected %s at offset %d: %w", l.s, want, l.pos, domain.ErrPatternMismatch)
}
