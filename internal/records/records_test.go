package records

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/mmcdole/pdiview/internal/domain"
)

const jsFeed = `var currentData = {'data': {'patient': {'id': '623276', 'name': 'Test Patient', 'date_of_birth': '1/1/1959'},
 'viewer': {'path': 'viewer/index.htm'},
 'reports': {'report': [
   {'accession_number': '209691018', 'description': 'MRI + MRA + MRV BRAIN', 'study_date': '29/04/2025', 'dicom_enabled': 'True', 'pdf_enabled': 'True'},
   {'accession_number': '215516692', 'description': 'CT ANGIO BRAIN & NECK', 'study_date': '20250830', 'dicom_enabled': 'True', 'pdf_enabled': 'False'},
   {'accession_number': '213637042', 'description': 'ULTRASOUND DOPPLER OF CAROTID', 'study_date': '19/07/2025', 'dicom_enabled': 'False', 'pdf_enabled': 'True'},
   {'accession_number': '', 'description': 'dropped', 'study_date': '01/01/2020', 'dicom_enabled': 'True', 'pdf_enabled': 'True'}
 ]}}};`

func TestParseFeedJavaScript(t *testing.T) {
	recs, err := ParseFeed([]byte(jsFeed), "REPORTS")
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if recs.Patient.Name != "Test Patient" || recs.Patient.ID != "623276" || recs.Patient.DOB != "01/01/1959" {
		t.Fatalf("patient = %+v", recs.Patient)
	}
	if len(recs.Studies) != 3 {
		t.Fatalf("expected 3 studies, got %d", len(recs.Studies))
	}

	// Newest first
	want := []string{"215516692", "213637042", "209691018"}
	for i, acc := range want {
		if recs.Studies[i].Accession != acc {
			t.Fatalf("study %d = %s, want %s", i, recs.Studies[i].Accession, acc)
		}
	}

	ct := recs.Studies[0]
	if ct.Date != "30/08/2025" || ct.Modality != "CT" || ct.Type != domain.StudyTypeCT {
		t.Fatalf("ct study = %+v", ct)
	}
	if ct.HasReport() || ct.PDFEnabled || !ct.DicomEnabled {
		t.Fatalf("ct report flags wrong: %+v", ct)
	}

	mri := recs.Studies[2]
	if mri.ReportFile != "REPORTS/209691018.pdf" || mri.Type != domain.StudyTypeMRI || mri.ImageCount != 85 {
		t.Fatalf("mri study = %+v", mri)
	}

	us := recs.Studies[1]
	if us.Modality != "US" || us.Type != domain.StudyTypeUltrasound || us.DicomEnabled {
		t.Fatalf("us study = %+v", us)
	}
	if recs.FromFallback {
		t.Fatal("parsed feed should not be marked as fallback")
	}
}

func TestParseFeedStrictJSON(t *testing.T) {
	doc := `{"patient": {"id": "P1", "name": "O'Brien", "date_of_birth": "19590101"},
	         "reports": {"report": [{"accession_number": "1", "description": "XRAY CHEST", "study_date": "2025-01-02", "pdf_enabled": "true"}]}}`
	recs, err := ParseFeed([]byte(doc), "")
	if err != nil {
		t.Fatalf("ParseFeed: %v", err)
	}
	if recs.Patient.Name != "O'Brien" || recs.Patient.DOB != "01/01/1959" {
		t.Fatalf("patient = %+v", recs.Patient)
	}
	s := recs.Studies[0]
	if s.Modality != "CR" || s.Type != domain.StudyTypeXRay || s.Date != "02/01/2025" || s.ReportFile != "1.pdf" {
		t.Fatalf("study = %+v", s)
	}
}

func TestParseFeedRejectsGarbage(t *testing.T) {
	for _, doc := range []string{"", "   ", "<html></html>", "currentData = {broken;", `{"unrelated": true}`} {
		if _, err := ParseFeed([]byte(doc), "REPORTS"); !errors.Is(err, domain.ErrPatternMismatch) {
			t.Fatalf("ParseFeed(%q) expected ErrPatternMismatch, got %v", doc, err)
		}
	}
}

func TestExtractModality(t *testing.T) {
	cases := map[string]string{
		"MRI BRAIN C-":          "MR",
		"mra neck":              "MR",
		"MRV":                   "MR",
		"CT ANGIO BRAIN & NECK": "CT",
		"ULTRASOUND ABDOMEN":    "US",
		"DOPPLER LOWER LIMB":    "US",
		"X-RAY CHEST":           "CR",
		"XRAY KNEE":             "CR",
		"MAMMOGRAPHY":           "OT",
	}
	for in, want := range cases {
		if got := ExtractModality(in); got != want {
			t.Fatalf("ExtractModality(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestMapModalityToType(t *testing.T) {
	cases := map[string]domain.StudyType{
		"MR": domain.StudyTypeMRI,
		"CT": domain.StudyTypeCT,
		"US": domain.StudyTypeUltrasound,
		"CR": domain.StudyTypeXRay,
		"DR": domain.StudyTypeXRay,
		"XR": domain.StudyTypeXRay,
		"OT": domain.StudyTypeOther,
		"":   domain.StudyTypeOther,
	}
	for in, want := range cases {
		if got := MapModalityToType(in); got != want {
			t.Fatalf("MapModalityToType(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"29/04/2025":           "29/04/2025",
		"1/2/2025":             "01/02/2025",
		"20250830":             "30/08/2025",
		"2025-08-30":           "30/08/2025",
		"2025-08-30T10:00:00Z": "30/08/2025",
		"unknown":              "unknown",
		"":                     "",
	}
	for in, want := range cases {
		if got := FormatDate(in); got != want {
			t.Fatalf("FormatDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMockRecords(t *testing.T) {
	recs := MockRecords("REPORTS")
	if !recs.FromFallback {
		t.Fatal("mock records must be marked as fallback")
	}
	if recs.Patient.Name != "Ibrahim Hamed Ahmed Abdullah" || recs.Patient.ID != "PATIENT_ID_001" {
		t.Fatalf("patient = %+v", recs.Patient)
	}
	if len(recs.Studies) != 6 {
		t.Fatalf("expected 6 studies, got %d", len(recs.Studies))
	}
	if recs.Studies[0].Accession != "215516692" || recs.Studies[5].Accession != "209691018" {
		t.Fatalf("mock studies not newest first: %s..%s", recs.Studies[0].Accession, recs.Studies[5].Accession)
	}
	s, ok := recs.FindStudy("213637042")
	if !ok || s.Type != domain.StudyTypeUltrasound || s.ReportFile != "REPORTS/213637042.pdf" {
		t.Fatalf("FindStudy = (%+v,%v)", s, ok)
	}
}

func TestSampleRecords(t *testing.T) {
	labs := SampleLabResults()
	if len(labs) != 37 {
		t.Fatalf("expected 37 lab results, got %d", len(labs))
	}
	abnormal := 0
	for _, l := range labs {
		if l.Status == domain.LabAbnormal {
			abnormal++
		}
	}
	if abnormal != 11 {
		t.Fatalf("expected 11 abnormal results, got %d", abnormal)
	}

	echo := SampleEchoReports()
	if len(echo) != 1 || echo[0].EjectionFraction != 64 || len(echo[0].Measurements) != 8 {
		t.Fatalf("echo = %+v", echo)
	}
	if len(echo[0].Remarks) != 9 || len(echo[0].Conclusion) != 4 {
		t.Fatalf("echo text sections = %d/%d", len(echo[0].Remarks), len(echo[0].Conclusion))
	}
}

type stubSource struct {
	docs map[string]string
}

func (s stubSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := s.docs[p]
	if !ok {
		return nil, domain.ErrDocumentFetch
	}
	return []byte(d), nil
}

func (s stubSource) Locate(p string) string { return p }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestLoaderUsesFeed(t *testing.T) {
	l := NewLoader(stubSource{docs: map[string]string{"data.json": jsFeed}}, "data.json", "REPORTS", quiet())
	recs := l.Load(context.Background())
	if recs.FromFallback || recs.Patient.ID != "623276" || len(recs.Studies) != 3 {
		t.Fatalf("records = %+v", recs)
	}
	if len(recs.LabResults) == 0 || len(recs.EchoReports) == 0 {
		t.Fatal("labs and echo should always be attached")
	}
}

func TestLoaderFallsBack(t *testing.T) {
	cases := map[string]stubSource{
		"missing": {docs: map[string]string{}},
		"garbage": {docs: map[string]string{"data.json": "<html>not a feed</html>"}},
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			recs := NewLoader(src, "data.json", "REPORTS", quiet()).Load(context.Background())
			if !recs.FromFallback || len(recs.Studies) != 6 {
				t.Fatalf("expected mock fallback, got %+v", recs)
			}
			if len(recs.LabResults) == 0 {
				t.Fatal("labs should be attached to fallback records")
			}
		})
	}

	recs := NewLoader(nil, "data.json", "REPORTS", quiet()).Load(context.Background())
	if !recs.FromFallback {
		t.Fatal("nil source should fall back")
	}
}

func TestTimelineMergesRecords(t *testing.T) {
	recs := MockRecords("REPORTS")
	recs.LabResults = SampleLabResults()
	recs.EchoReports = SampleEchoReports()

	tl := recs.Timeline()
	if len(tl) != 6+37+1 {
		t.Fatalf("timeline has %d entries", len(tl))
	}
	// 30/08/2025 is the newest date; the CT study precedes the echo entry (stable order)
	if tl[0].Kind != domain.TimelineImaging || tl[0].ID != "215516692" {
		t.Fatalf("first entry = %+v", tl[0])
	}
	if tl[1].Kind != domain.TimelineEcho {
		t.Fatalf("second entry = %+v", tl[1])
	}
	for i := 1; i < len(tl); i++ {
		if domain.ParseDisplayDate(tl[i].Date).After(domain.ParseDisplayDate(tl[i-1].Date)) {
			t.Fatalf("timeline not newest first at %d", i)
		}
	}
}
