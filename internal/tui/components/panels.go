package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mmcdole/pdiview/internal/domain"
	"github.com/mmcdole/pdiview/internal/service"
	"github.com/mmcdole/pdiview/internal/tui/styles"
)

func field(label, value string) string {
	return styles.LabelStyle.Render(label) + styles.TitleStyle.Render(value)
}

// relativeDate renders a display date as "12/03/2025 (3 months ago)"
func relativeDate(date string, now time.Time) string {
	t := domain.ParseDisplayDate(date)
	if t.IsZero() {
		return date
	}
	return date + styles.DimStyle.Render(" ("+humanize.RelTime(t, now, "ago", "from now")+")")
}

// RenderReport renders the report tab for a study
func RenderReport(study *domain.Study, location string, width, height int, now time.Time) string {
	if study == nil {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
			styles.DimStyle.Render("Select a study to view its report"))
	}

	lines := []string{
		styles.TitleStyle.Render(study.Description),
		"",
		field("Accession", study.Accession),
		field("Date", relativeDate(study.Date, now)),
		field("Type", string(study.Type)),
		field("Modality", study.Modality),
		field("Series", humanize.Comma(int64(study.SeriesCount))),
		field("Images", humanize.Comma(int64(study.ImageCount))),
		"",
	}
	if study.HasReport() {
		lines = append(lines,
			field("Report", study.ReportFile),
			styles.LabelStyle.Render("")+styles.DimStyle.Render(styles.Truncate(location, max(10, width-18))),
			"",
			styles.AccentStyle.Render("o")+styles.DimStyle.Render(" open the PDF report in the system viewer"),
		)
	} else {
		lines = append(lines, styles.DimStyle.Render("No report is available for this study"))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(strings.Join(lines, "\n"))
}

// RenderPatient renders the patient tab
func RenderPatient(records domain.MedicalRecords, width, height int, now time.Time) string {
	p := records.Patient

	dob := p.DOB
	if t := domain.ParseDisplayDate(p.DOB); !t.IsZero() {
		dob = fmt.Sprintf("%s (%d years)", p.DOB, ageAt(t, now))
	}

	abnormal := 0
	for _, l := range records.LabResults {
		if l.Status != domain.LabNormal {
			abnormal++
		}
	}
	reports := 0
	for _, s := range records.Studies {
		if s.HasReport() {
			reports++
		}
	}

	lines := []string{
		styles.TitleStyle.Render(p.Name),
		"",
		field("Date of birth", dob),
		field("Patient ID", p.ID),
		field("MRN", p.MRN),
		"",
		field("Imaging studies", fmt.Sprintf("%d (%d with reports)", len(records.Studies), reports)),
		field("Lab results", fmt.Sprintf("%d (%d out of range)", len(records.LabResults), abnormal)),
		field("Echo reports", fmt.Sprint(len(records.EchoReports))),
	}
	if len(records.Studies) > 0 {
		latest := records.Studies[0]
		lines = append(lines, field("Latest study", latest.Description+" · "+relativeDate(latest.Date, now)))
	}
	if groups := service.GroupLabsByDate(records.LabResults); len(groups) > 0 {
		g := groups[0]
		lines = append(lines, field("Latest labs", fmt.Sprintf("%d tests · %s", len(g.Results), relativeDate(g.Date, now))))
	}
	if records.FromFallback {
		lines = append(lines, "", styles.WarningStyle.Render("Records feed unavailable, showing built-in sample data"))
	}
	return lipgloss.NewStyle().Width(width).Height(height).Padding(1, 2).Render(strings.Join(lines, "\n"))
}

func ageAt(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}
