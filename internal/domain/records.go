package domain

import (
	"sort"
	"time"
)

// StudyType is the coarse modality bucket shown in the study list
type StudyType string

const (
	StudyTypeMRI        StudyType = "MRI"
	StudyTypeCT         StudyType = "CT"
	StudyTypeUltrasound StudyType = "Ultrasound"
	StudyTypeXRay       StudyType = "X-Ray"
	StudyTypeOther      StudyType = "Other"
)

// StudyTypes lists every bucket in display order
var StudyTypes = []StudyType{StudyTypeMRI, StudyTypeCT, StudyTypeUltrasound, StudyTypeXRay, StudyTypeOther}

// Patient identifies the single patient of a bundle
type Patient struct {
	Name string
	DOB  string // DD/MM/YYYY
	ID   string
	MRN  string
}

// Study is one entry of the records feed
type Study struct {
	Accession    string
	Date         string // DD/MM/YYYY
	Description  string
	Type         StudyType
	Modality     string // DICOM modality code: MR, CT, US, CR, OT
	ReportFile   string // Bundle-relative PDF path, empty when no report
	DicomEnabled bool
	PDFEnabled   bool
	SeriesCount  int
	ImageCount   int
}

// Time parses the display date, zero time when unparseable
func (s Study) Time() time.Time {
	return ParseDisplayDate(s.Date)
}

// HasReport reports whether a PDF report is available
func (s Study) HasReport() bool {
	return s.ReportFile != ""
}

// LabStatus classifies a lab value against its reference range
type LabStatus string

const (
	LabNormal   LabStatus = "normal"
	LabAbnormal LabStatus = "abnormal"
	LabCritical LabStatus = "critical"
)

// LabResult is a single laboratory measurement
type LabResult struct {
	ID             string
	Date           string
	TestName       string
	Value          string
	Unit           string
	ReferenceRange string
	Status         LabStatus
	Notes          string
}

// MeasurementStatus classifies an echo measurement
type MeasurementStatus string

const (
	MeasurementNormal      MeasurementStatus = "normal"
	MeasurementAbnormal    MeasurementStatus = "abnormal"
	MeasurementNotMeasured MeasurementStatus = "not_measured"
)

// EchoMeasurement is one row of an echocardiography report
type EchoMeasurement struct {
	Parameter    string
	NormalRange  string
	PatientValue string
	Unit         string
	Status       MeasurementStatus
}

// EchoReport is an echocardiography report
type EchoReport struct {
	ID               string
	Date             string
	PatientID        string
	Hospital         string
	Cardiologist     string
	EjectionFraction int
	LVFunction       string
	Measurements     []EchoMeasurement
	Remarks          []string
	Conclusion       []string
	Recommendation   string
}

// MedicalRecords is everything the dashboard shows for the patient
type MedicalRecords struct {
	Patient     Patient
	Studies     []Study
	LabResults  []LabResult
	EchoReports []EchoReport

	// FromFallback is true when the feed could not be read and built-in data is used
	FromFallback bool
}

// FindStudy returns the study with the given accession
func (r MedicalRecords) FindStudy(accession string) (Study, bool) {
	for _, s := range r.Studies {
		if s.Accession == accession {
			return s, true
		}
	}
	return Study{}, false
}

// TimelineKind tags the source of a timeline entry
type TimelineKind string

const (
	TimelineImaging TimelineKind = "imaging"
	TimelineLab     TimelineKind = "lab"
	TimelineEcho    TimelineKind = "echo"
)

// TimelineEntry is one dated event in the patient history
type TimelineEntry struct {
	ID          string
	Date        string
	Kind        TimelineKind
	Title       string
	Description string
	Attachment  string
}

// Timeline merges studies, labs and echo reports, newest first
func (r MedicalRecords) Timeline() []TimelineEntry {
	var entries []TimelineEntry
	for _, s := range r.Studies {
		entries = append(entries, TimelineEntry{
			ID:          s.Accession,
			Date:        s.Date,
			Kind:        TimelineImaging,
			Title:       s.Description,
			Description: string(s.Type) + " Study",
			Attachment:  s.ReportFile,
		})
	}
	for _, l := range r.LabResults {
		entries = append(entries, TimelineEntry{
			ID:          l.ID,
			Date:        l.Date,
			Kind:        TimelineLab,
			Title:       l.TestName,
			Description: l.Value + " " + l.Unit + " (" + string(l.Status) + ")",
		})
	}
	for _, e := range r.EchoReports {
		entries = append(entries, TimelineEntry{
			ID:          e.ID,
			Date:        e.Date,
			Kind:        TimelineEcho,
			Title:       "Echocardiography",
			Description: e.LVFunction,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return ParseDisplayDate(entries[i].Date).After(ParseDisplayDate(entries[j].Date))
	})
	return entries
}

// ParseDisplayDate parses a DD/MM/YYYY date, zero time on failure
func ParseDisplayDate(s string) time.Time {
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}
	}
	return t
}
