// Package records reads the patient/study feed of a bundle and supplies the
// laboratory and echocardiography records shown next to the imaging.
package records

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/pdiview/internal/domain"
)

// rawFeed mirrors the AGFA feed document
type rawFeed struct {
	Data *rawData `json:"data"`

	// Some exports omit the "data" wrapper
	Patient *rawPatient `json:"patient"`
	Reports *rawReports `json:"reports"`
}

type rawData struct {
	Patient rawPatient `json:"patient"`
	Reports rawReports `json:"reports"`
}

type rawPatient struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DateOfBirth string `json:"date_of_birth"`
}

type rawReports struct {
	Report []rawReport `json:"report"`
}

type rawReport struct {
	AccessionNumber string `json:"accession_number"`
	Description     string `json:"description"`
	StudyDate       string `json:"study_date"`
	DicomEnabled    string `json:"dicom_enabled"`
	PDFEnabled      string `json:"pdf_enabled"`
}

// currentDataPattern extracts the object literal from `currentData = {...};`
var currentDataPattern = regexp.MustCompile(`(?s)currentData\s*=\s*(\{.*\})\s*;`)

// ParseFeed parses a feed document into patient and studies. Both strict JSON
// and the JavaScript assignment form with single-quoted strings are accepted.
// reportsDir is the bundle-relative directory holding <accession>.pdf files.
func ParseFeed(content []byte, reportsDir string) (domain.MedicalRecords, error) {
	raw, err := decodeFeed(content)
	if err != nil {
		return domain.MedicalRecords{}, err
	}

	data := raw.Data
	if data == nil {
		if raw.Patient == nil || raw.Reports == nil {
			return domain.MedicalRecords{}, fmt.Errorf("feed has no patient/reports: %w", domain.ErrPatternMismatch)
		}
		data = &rawData{Patient: *raw.Patient, Reports: *raw.Reports}
	}

	records := domain.MedicalRecords{
		Patient: domain.Patient{
			Name: strings.TrimSpace(data.Patient.Name),
			DOB:  FormatDate(data.Patient.DateOfBirth),
			ID:   strings.TrimSpace(data.Patient.ID),
		},
	}

	for _, r := range data.Reports.Report {
		acc := strings.TrimSpace(r.AccessionNumber)
		if acc == "" {
			continue
		}
		study := domain.Study{
			Accession:    acc,
			Date:         FormatDate(r.StudyDate),
			Description:  strings.TrimSpace(r.Description),
			Type:         MapModalityToType(r.Description),
			Modality:     ExtractModality(r.Description),
			DicomEnabled: flagTrue(r.DicomEnabled),
			PDFEnabled:   flagTrue(r.PDFEnabled),
			SeriesCount:  1,
			ImageCount:   estimateImageCount(r.Description),
		}
		if study.PDFEnabled {
			study.ReportFile = ReportPath(reportsDir, acc)
		}
		records.Studies = append(records.Studies, study)
	}

	SortNewestFirst(records.Studies)
	return records, nil
}

func decodeFeed(content []byte) (*rawFeed, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty feed: %w", domain.ErrPatternMismatch)
	}

	var raw rawFeed
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err == nil {
			return &raw, nil
		}
	}

	m := currentDataPattern.FindSubmatch(trimmed)
	if m == nil {
		return nil, fmt.Errorf("feed is neither JSON nor a currentData assignment: %w", domain.ErrPatternMismatch)
	}
	literal := bytes.ReplaceAll(m[1], []byte("'"), []byte(`"`))
	if err := json.Unmarshal(literal, &raw); err != nil {
		return nil, fmt.Errorf("feed object: %v: %w", err, domain.ErrPatternMismatch)
	}
	return &raw, nil
}

func flagTrue(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

// ReportPath returns the bundle-relative PDF path for an accession
func ReportPath(reportsDir, accession string) string {
	if reportsDir == "" {
		return accession + ".pdf"
	}
	return path.Join(strings.Trim(reportsDir, "/"), accession+".pdf")
}

// ExtractModality derives a DICOM modality code from a study description
func ExtractModality(description string) string {
	d := strings.ToUpper(description)
	switch {
	case strings.Contains(d, "MRI"), strings.Contains(d, "MRA"), strings.Contains(d, "MRV"):
		return "MR"
	case strings.Contains(d, "CT"):
		return "CT"
	case strings.Contains(d, "ULTRASOUND"), strings.Contains(d, "DOPPLER"):
		return "US"
	case strings.Contains(d, "X-RAY"), strings.Contains(d, "XRAY"):
		return "CR"
	}
	return "OT"
}

// MapModalityToType buckets a modality code or description into a study type
func MapModalityToType(modality string) domain.StudyType {
	m := strings.ToUpper(modality)
	switch {
	case strings.Contains(m, "MR"):
		return domain.StudyTypeMRI
	case strings.Contains(m, "CT"):
		return domain.StudyTypeCT
	case strings.Contains(m, "US"), strings.Contains(m, "ULTRASOUND"):
		return domain.StudyTypeUltrasound
	case strings.Contains(m, "CR"), strings.Contains(m, "DR"), strings.Contains(m, "XR"):
		return domain.StudyTypeXRay
	}
	return domain.StudyTypeOther
}

// estimateImageCount is a display hint only; the index supplies real counts
func estimateImageCount(description string) int {
	d := strings.ToUpper(description)
	switch {
	case strings.Contains(d, "MRI"):
		return 85
	case strings.Contains(d, "CT"):
		return 150
	case strings.Contains(d, "ULTRASOUND"):
		return 12
	}
	return 20
}

var dateLayouts = []string{"2/1/2006", "20060102", "2006-01-02", time.RFC3339}

// FormatDate normalizes a feed date to DD/MM/YYYY. Unparseable input is
// returned unchanged.
func FormatDate(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// SortNewestFirst orders studies by date, newest first. Undated studies go last.
func SortNewestFirst(studies []domain.Study) {
	sort.SliceStable(studies, func(i, j int) bool {
		return studies[i].Time().After(studies[j].Time())
	})
}
