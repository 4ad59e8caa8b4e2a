package agfa

import (
	"errors"
	"testing"

	"github.com/mmcdole/pdiview/internal/domain"
)

func TestParseSeriesLabel(t *testing.T) {
	cases := []struct {
		in      string
		want    seriesLabel
		wantErr bool
	}{
		{in: "Series 11[203] : 25", want: seriesLabel{SeriesNumber: 11, SeriesID: "203", ImageCount: 25}},
		{in: "Series 11[203]:25", want: seriesLabel{SeriesNumber: 11, SeriesID: "203", ImageCount: 25}},
		{in: "  Series  7 [ 904 ]  :  320 ", want: seriesLabel{SeriesNumber: 7, SeriesID: "904", ImageCount: 320}},
		{in: "Series 2[] : 4", want: seriesLabel{SeriesNumber: 2, SeriesID: "", ImageCount: 4}},
		{in: "Series 11[203] : 0", want: seriesLabel{SeriesNumber: 11, SeriesID: "203", ImageCount: 0}},
		{in: "Series11[203] : 25", wantErr: true},
		{in: "Series x[203] : 25", wantErr: true},
		{in: "Series 11[203 : 25", wantErr: true},
		{in: "Series 11[203] 25", wantErr: true},
		{in: "Series 11[203] : 25 extra", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, c := range cases {
		got, err := parseSeriesLabel(c.in)
		if c.wantErr {
			if err == nil {
				t.Fatalf("parseSeriesLabel(%q) expected error, got %+v", c.in, got)
			}
			if !errors.Is(err, domain.ErrPatternMismatch) {
				t.Fatalf("parseSeriesLabel(%q) error %v does not wrap ErrPatternMismatch", c.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseSeriesLabel(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("parseSeriesLabel(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}
