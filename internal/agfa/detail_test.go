package agfa

import (
	"errors"
	"testing"

	"github.com/mmcdole/pdiview/internal/domain"
)

func TestParseDetailTitle(t *testing.T) {
	cases := []struct {
		name      string
		doc       string
		wantSerNr string
		wantTitle string
		wantErr   bool
	}{
		{name: "plain", doc: "<html><head><title>203 dADC</title></head></html>", wantSerNr: "203", wantTitle: "dADC"},
		{name: "spaces in title", doc: "<title>904   s3D_PCA_SINUS SENSE </title>", wantSerNr: "904", wantTitle: "s3D_PCA_SINUS SENSE"},
		{name: "entities", doc: "<title>12 T2W &amp; FLAIR</title>", wantSerNr: "12", wantTitle: "T2W & FLAIR"},
		{name: "uppercase tag", doc: "<HTML><TITLE>7 SWI</TITLE></HTML>", wantSerNr: "7", wantTitle: "SWI"},
		{name: "no digits", doc: "<title>dADC</title>", wantErr: true},
		{name: "digits only", doc: "<title>203</title>", wantErr: true},
		{name: "no separator", doc: "<title>203dADC</title>", wantErr: true},
		{name: "no title", doc: "<html><body>203 dADC</body></html>", wantErr: true},
		{name: "empty", doc: "", wantErr: true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			serNr, title, err := ParseDetailTitle([]byte(c.doc))
			if c.wantErr {
				if !errors.Is(err, domain.ErrPatternMismatch) {
					t.Fatalf("expected ErrPatternMismatch, got (%q,%q,%v)", serNr, title, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if serNr != c.wantSerNr || title != c.wantTitle {
				t.Fatalf("got (%q,%q), want (%q,%q)", serNr, title, c.wantSerNr, c.wantTitle)
			}
		})
	}
}

func TestDetailPagePath(t *testing.T) {
	if got := DetailPagePath("00000011.htm"); got != "IHE_PDI/00000011.htm" {
		t.Fatalf("DetailPagePath = %q", got)
	}
}
