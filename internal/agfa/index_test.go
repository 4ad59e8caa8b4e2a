package agfa

import (
	"strings"
	"testing"
)

const sampleIndex = `<html><body>
<div id="menu">
<div id="209691018_1" class="menu-item alpha">
  <h4>MRI + MRA + MRV BRAIN</h4>
  <p>Study 1 of 29/04/2025</p>
  <ul>
    <li><a target="maincontent" href="IHE_PDI/00000011.htm"><img src="IHE_PDI/THUMBS/00000011.00001.jpg" alt="" />Series 11[203] : 25<br>dADC</a></li>
    <li><a target="maincontent" href="IHE_PDI/00000012.htm"><img src="IHE_PDI/THUMBS/00000036.00001.jpg" alt="" />Series 12[202] : 25<br>sB0</a></li>
    <li><a target="maincontent" href="IHE_PDI/00000013.htm"><img src="IHE_PDI/THUMBS/00000061.00001.jpg" style="visibility: hidden" />Series 13[201] : 25<br>hidden slot</a></li>
    <li><a target="maincontent" href="IHE_PDI/00000014.htm"><img src="IHE_PDI/THUMBS/00000086.00001.jpg" />Series 14[200] : 0<br>empty</a></li>
    <li><a target="maincontent" href="IHE_PDI/00000015.htm"><img src="" />Series 15[199] : 3<br>no thumb</a></li>
    <li><a target="maincontent" href="IHE_PDI/00000016.htm"><img src="IHE_PDI/THUMBS/oddname.jpg" />Series 16[198] : 4<br>odd thumb</a></li>
  </ul>
</div>
<div id="209707743_2" class="menu-item alpha">
  <h4>MRI BRAIN C-/+</h4>
  <p>Study 2 of 30/04/2025</p>
  <ul>
    <li><a target="maincontent" href="IHE_PDI/00000052.htm"><img src="IHE_PDI/THUMBS/00000400.00001.jpg" />Series 3[1001] : 35<br>sB0</a></li>
  </ul>
</div>
<div id="nodigits" class="menu-item alpha">
  <h4>Broken</h4>
  <p>Study 3 of 01/05/2025</p>
  <ul></ul>
</div>
<div id="215516692_4" class="menu-item alpha">
  <h4>CT ANGIO</h4>
  <p>no marker here</p>
  <ul></ul>
</div>
</div>
</body></html>`

func TestParseIndex_Studies(t *testing.T) {
	studies := ParseIndex([]byte(sampleIndex))
	if len(studies) != 2 {
		t.Fatalf("expected 2 studies, got %d", len(studies))
	}

	first := studies[0]
	if first.Accession != "209691018" {
		t.Fatalf("accession = %q", first.Accession)
	}
	if first.Title != "MRI + MRA + MRV BRAIN" {
		t.Fatalf("title = %q", first.Title)
	}
	if first.Date != "29/04/2025" {
		t.Fatalf("date = %q", first.Date)
	}
	if studies[1].Accession != "209707743" || len(studies[1].Series) != 1 {
		t.Fatalf("unexpected second study: %+v", studies[1])
	}
}

func TestParseIndex_SeriesFiltering(t *testing.T) {
	studies := ParseIndex([]byte(sampleIndex))
	series := studies[0].Series

	var ids []string
	for _, s := range series {
		ids = append(ids, s.SeriesID)
	}
	got := strings.Join(ids, ",")
	if got != "203,202,198" {
		t.Fatalf("retained series = %s, want 203,202,198", got)
	}

	for _, s := range series {
		if s.ImageCount <= 0 {
			t.Fatalf("series %s retained with count %d", s.SeriesID, s.ImageCount)
		}
		if s.StudyAccession != "209691018" {
			t.Fatalf("series %s has accession %q", s.SeriesID, s.StudyAccession)
		}
	}

	dadc := series[0]
	if dadc.HTMLFile != "00000011.htm" || dadc.SeriesNumber != 11 || dadc.Title != "dADC" || dadc.ImageCount != 25 {
		t.Fatalf("unexpected first series: %+v", dadc)
	}
	if dadc.ThumbnailStart != "00000011.00001.jpg" {
		t.Fatalf("thumbnail start = %q", dadc.ThumbnailStart)
	}
	if series[2].ThumbnailStart != "" {
		t.Fatalf("odd thumbnail should leave start empty, got %q", series[2].ThumbnailStart)
	}
}

func TestParseIndex_HiddenSentinelVariants(t *testing.T) {
	doc := `<div id="1" class="menu-item alpha"><h4>T</h4><p>Study 1 of D</p><ul>
<li><a href="IHE_PDI/00000001.htm"><img style="VISIBILITY:HIDDEN" src="IHE_PDI/THUMBS/00000001.00001.jpg"/>Series 1[5] : 9<br>a</a></li>
<li><a href="IHE_PDI/00000002.htm"><img src="IHE_PDI/THUMBS/00000010.00001.jpg"/>Series 2[4] : 9<br>b</a></li>
</ul></div>`

	studies := ParseIndex([]byte(doc))
	if len(studies) != 1 || len(studies[0].Series) != 1 {
		t.Fatalf("expected one retained series, got %+v", studies)
	}
	if studies[0].Series[0].SeriesID != "4" {
		t.Fatalf("hidden series was retained: %+v", studies[0].Series)
	}
}

func TestParseIndex_EmptyAndGarbage(t *testing.T) {
	cases := []string{"", "   ", "not html at all", "<div class=\"menu-item\"></div>"}
	for _, c := range cases {
		if got := ParseIndex([]byte(c)); len(got) != 0 {
			t.Fatalf("ParseIndex(%q) = %+v, want empty", c, got)
		}
	}
}

func TestParseStudyMarker(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Study 1 of 29/04/2025", "29/04/2025", true},
		{"  Study 12 of   30/08/2025 ", "30/08/2025", true},
		{"Study of 2025", "", false},
		{"Prior Study x; Study 3 of 01/01/2024", "01/01/2024", true},
		{"nothing", "", false},
	}
	for _, c := range cases {
		got, ok := parseStudyMarker(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("parseStudyMarker(%q) = (%q,%v), want (%q,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestDetailFileFromHref(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"IHE_PDI/00000011.htm", "00000011.htm", true},
		{"IHE_PDI\\00000011.HTM", "00000011.htm", true},
		{"IHE_PDI/abc.htm", "", false},
		{"OTHER/00000011.htm", "", false},
		{"IHE_PDI/00000011.html", "", false},
	}
	for _, c := range cases {
		got, ok := detailFileFromHref(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("detailFileFromHref(%q) = (%q,%v), want (%q,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}
