package records

import "github.com/mmcdole/pdiview/internal/domain"

// MockRecords is the built-in dataset used when the feed cannot be read
func MockRecords(reportsDir string) domain.MedicalRecords {
	type mockStudy struct {
		acc, date, desc string
		series, images  int
	}
	mocks := []mockStudy{
		{"209691018", "29/04/2025", "MRI + MRA + MRV BRAIN", 3, 156},
		{"209707743", "30/04/2025", "MRI BRAIN C-/+", 2, 89},
		{"213636532", "18/07/2025", "MRI BRAIN C-", 1, 45},
		{"213637042", "19/07/2025", "ULTRASOUND DOPPLER OF CAROTID & VERTEBRAL ARTERIES", 1, 12},
		{"215512035", "29/08/2025", "MRI BRAIN C-", 1, 67},
		{"215516692", "30/08/2025", "CT ANGIO BRAIN & NECK", 2, 234},
	}

	studies := make([]domain.Study, 0, len(mocks))
	for _, m := range mocks {
		modality := ExtractModality(m.desc)
		studies = append(studies, domain.Study{
			Accession:    m.acc,
			Date:         m.date,
			Description:  m.desc,
			Type:         MapModalityToType(modality),
			Modality:     modality,
			ReportFile:   ReportPath(reportsDir, m.acc),
			DicomEnabled: true,
			PDFEnabled:   true,
			SeriesCount:  m.series,
			ImageCount:   m.images,
		})
	}
	SortNewestFirst(studies)

	return domain.MedicalRecords{
		Patient: domain.Patient{
			Name: "Ibrahim Hamed Ahmed Abdullah",
			DOB:  "01/01/1959",
			ID:   "PATIENT_ID_001",
		},
		Studies:      studies,
		FromFallback: true,
	}
}

func lab(id, date, name, value, unit, ref string, status domain.LabStatus, notes string) domain.LabResult {
	return domain.LabResult{
		ID:             id,
		Date:           date,
		TestName:       name,
		Value:          value,
		Unit:           unit,
		ReferenceRange: ref,
		Status:         status,
		Notes:          notes,
	}
}

// SampleLabResults returns the laboratory panel shipped with the dashboard
func SampleLabResults() []domain.LabResult {
	const (
		n = domain.LabNormal
		a = domain.LabAbnormal
	)
	return []domain.LabResult{
		// April lipid profile
		lab("lab_001_april", "30/04/2025", "CHOLESTEROL-TOTAL", "4.62", "mmol/L", "2.7 - 5.2", n, ""),
		lab("lab_002_april", "30/04/2025", "TRIGLYCERIDES", "1.35", "mmol/L", "1 - 1.69", n, ""),
		lab("lab_003_april", "30/04/2025", "HDL-CHOLESTEROL", "1.00", "mmol/L", "1.55 - 2", a, "Below normal range"),
		lab("lab_004_april", "30/04/2025", "LDL-CHOLESTEROL", "3.00", "mmol/L", "1 - 2.6", a, "Above normal range - WORST"),

		// July lipid profile
		lab("lab_005_july", "18/07/2025", "CHOLESTEROL-TOTAL", "3.96", "mmol/L", "2.7 - 5.2", n, ""),
		lab("lab_006_july", "18/07/2025", "TRIGLYCERIDES", "0.77", "mmol/L", "1 - 1.69", a, "Below normal range"),
		lab("lab_007_july", "18/07/2025", "HDL-CHOLESTEROL", "1.34", "mmol/L", "1.55 - 2", a, "Below normal range"),
		lab("lab_008_july", "18/07/2025", "LDL-CHOLESTEROL", "2.27", "mmol/L", "1 - 2.6", n, ""),

		// August panel
		lab("lab_001", "29/08/2025", "CHOLESTEROL-TOTAL", "2.61", "mmol/L", "2.7 - 5.2", a, "Below normal range"),
		lab("lab_002", "29/08/2025", "TRIGLYCERIDES", "1.17", "mmol/L", "1 - 1.69", n, ""),
		lab("lab_003", "29/08/2025", "HDL-CHOLESTEROL", "0.88", "mmol/L", "1.55 - 2", a, "Below normal range"),
		lab("lab_004", "29/08/2025", "LDL-CHOLESTEROL", "1.20", "mmol/L", "1 - 2.6", n, ""),
		lab("lab_005", "29/08/2025", "GLYCATED HB1", "5.7", "%", "4 - 5.7", n, ""),
		lab("lab_006", "29/08/2025", "CREATININE", "68.7", "µmol/L", "50 - 110", n, ""),
		lab("lab_007", "29/08/2025", "BUN", "4.2", "mmol/L", "3.14 - 7.14", n, ""),
		lab("lab_008", "29/08/2025", "TSH ARCHI 4", "1.25", "mIU/L", "3 - 4.5", a, "Below normal range"),
		lab("lab_009", "29/08/2025", "CK VITROS1", "83", "U/L", "55 - 170", n, ""),
		lab("lab_010", "29/08/2025", "SODIUM1", "143", "mmol/L", "136 - 145", n, ""),
		lab("lab_011", "29/08/2025", "POTASSIUM1", "3.8", "mmol/L", "3.5 - 5.1", n, ""),
		lab("lab_012", "29/08/2025", "WBC CBC2", "6.60", "×10³/µL", "4.5 - 11", n, ""),
		lab("lab_013", "29/08/2025", "RBC CBC2", "4.42", "×10⁶/µL", "4.5 - 5.9", a, "Slightly below normal"),
		lab("lab_014", "29/08/2025", "HB CBC2", "13.4", "g/dL", "13.5 - 17.5", a, "Slightly below normal"),
		lab("lab_015", "29/08/2025", "PCV CBC2", "37.1", "%", "41 - 53", a, "Below normal range"),
		lab("lab_016", "29/08/2025", "MCV CBC2", "83.9", "fL", "80 - 100", n, ""),
		lab("lab_017", "29/08/2025", "MCH CBC2", "30.3", "pg", "26 - 34", n, ""),
		lab("lab_018", "29/08/2025", "MCHC CBC2", "36.1", "g/dL", "31 - 37", n, ""),
		lab("lab_019", "29/08/2025", "PLATELET CBC2", "335", "×10³/µL", "130 - 400", n, ""),
		lab("lab_020", "29/08/2025", "NEUTROPHIL SEGMENTED CBCD", "49.4", "%", "35 - 65", n, ""),
		lab("lab_021", "29/08/2025", "LYMPHOCYTES", "39.7", "%", "20 - 45", n, ""),
		lab("lab_022", "29/08/2025", "MONOCYTES CBCD2", "8.3", "%", "3 - 10", n, ""),
		lab("lab_023", "29/08/2025", "EOSINOPHILS CBCD2", "2.0", "%", "0 - 6", n, ""),
		lab("lab_024", "29/08/2025", "BASOPHILS CBCD2", "0.6", "%", "0 - 2", n, ""),
		lab("lab_025", "29/08/2025", "RDW", "12.6", "%", "12.2 - 16.1", n, ""),
		lab("lab_026", "29/08/2025", "PT2", "13.0", "sec", "10 - 14", n, ""),
		lab("lab_027", "29/08/2025", "INR2", "1.14", "ratio", "1.2 - 8", a, "Slightly below normal"),
		lab("lab_028", "29/08/2025", "PTT2", "30.8", "sec", "26 - 42", n, ""),
		lab("lab_029", "29/08/2025", "D-DIMER2", "0.414", "mg/L", "0 - 0.5", n, ""),
	}
}

// SampleEchoReports returns the echocardiography report shipped with the dashboard
func SampleEchoReports() []domain.EchoReport {
	const (
		n = domain.MeasurementNormal
		a = domain.MeasurementAbnormal
	)
	return []domain.EchoReport{{
		ID:               "echo_001",
		Date:             "30/08/2025",
		PatientID:        "623276",
		Hospital:         "DR.BAKHSH HOSPITAL",
		Cardiologist:     "Dr. AGAMAL",
		EjectionFraction: 64,
		LVFunction:       "Good global LV systolic function",
		Measurements: []domain.EchoMeasurement{
			{Parameter: "Aortic Root Diameter", NormalRange: "2.0-3.6", PatientValue: "2.2", Unit: "cm", Status: n},
			{Parameter: "Left Atrium", NormalRange: "1.9-4.0", PatientValue: "3.1", Unit: "cm", Status: n},
			{Parameter: "Left Ventricle E-D", NormalRange: "3.5-5.7", PatientValue: "5.7", Unit: "cm", Status: n},
			{Parameter: "Left Ventricle E-S", NormalRange: "2.6-3.4", PatientValue: "3.6", Unit: "cm", Status: a},
			{Parameter: "Septum E-D", NormalRange: "0.6-1.1", PatientValue: "1.1", Unit: "cm", Status: n},
			{Parameter: "LV Post, Wall E-D", NormalRange: "0.6-1.1", PatientValue: "1.0", Unit: "cm", Status: n},
			{Parameter: "L.V Function Ej. Fraction", NormalRange: "53-77", PatientValue: "64", Unit: "%", Status: n},
			{Parameter: "Fr. Shortening", NormalRange: "25-42", PatientValue: "35", Unit: "%", Status: n},
		},
		Remarks: []string{
			"Mild Concentric LVH with Normal LV dimensions with good global LV systolic function EF = 64%",
			"No RWMA could be detected at rest (Not exclude CAD)",
			"LV diastolic dysfunction Grade I",
			"Normal LA and Aortic root diameters. Pt is in sinus rhythm",
			"Sclerotic Mitral valve leaflets with mild mitral regurge (Grade I/IV)",
			"Sclerotic Aortic valve without significant gradient across it",
			"Mild Tricuspid regurge (Grade I/IV) with PASP = 40 mmHG",
			"Normal RT side of heart with good RV systolic function",
			"No intra cardiac masses nor thrombi - Intact cardiac septae - Normal pericardium",
		},
		Conclusion: []string{
			"Mild LVH, Normal LV dimensions, function EF = 66%",
			"LV diastolic dysfunction Grade I",
			"Mild Tricuspid regurge (Grade I/IV) with PASP = 40 mmHG",
			"Mild MR.",
		},
	}}
}
