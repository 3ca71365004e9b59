package record

import "strings"

// ClinicalRecord is the canonical representation of one encounter. JSON keys
// match the payload the note prompt embeds.
type ClinicalRecord struct {
	PatientID      string   `json:"PatientID"`
	ChiefComplaint string   `json:"ChiefComplaint"`
	Conditions     []string `json:"Conditions"`
	Vitals         Vitals   `json:"Vitals"`
	Labs           Labs     `json:"Labs"`
	Medications    []string `json:"MedicationRequest"`
}

// Vitals are kept as display strings; units are not validated.
type Vitals struct {
	BP   string `json:"BP"`
	HR   string `json:"HR"`
	SpO2 string `json:"SpO2"`
}

type Labs struct {
	HbA1c string `json:"HbA1c"`
	CBC   string `json:"CBC"`
}

// FormInput holds the raw field values as submitted by the form layer.
// Conditions and Medications are comma-separated.
type FormInput struct {
	PatientID      string `json:"patient_id"`
	ChiefComplaint string `json:"chief_complaint"`
	Conditions     string `json:"conditions"`
	BP             string `json:"bp"`
	HR             string `json:"hr"`
	SpO2           string `json:"spo2"`
	HbA1c          string `json:"hba1c"`
	CBC            string `json:"cbc"`
	Medications    string `json:"medications"`
}

// ParseListField splits a comma-separated field, trims each entry and drops
// the empty ones. Order and duplicates are preserved. The result is never nil.
func ParseListField(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// FromForm builds a ClinicalRecord from raw form values. Scalar fields are
// copied verbatim.
func FromForm(in FormInput) ClinicalRecord {
	return ClinicalRecord{
		PatientID:      in.PatientID,
		ChiefComplaint: in.ChiefComplaint,
		Conditions:     ParseListField(in.Conditions),
		Vitals: Vitals{
			BP:   in.BP,
			HR:   in.HR,
			SpO2: in.SpO2,
		},
		Labs: Labs{
			HbA1c: in.HbA1c,
			CBC:   in.CBC,
		},
		Medications: ParseListField(in.Medications),
	}
}

// ConditionsLine returns the conditions joined for display.
func (r ClinicalRecord) ConditionsLine() string {
	return strings.Join(r.Conditions, ", ")
}

// MedicationsLine returns the medications joined for display.
func (r ClinicalRecord) MedicationsLine() string {
	return strings.Join(r.Medications, ", ")
}

// Clone returns a deep copy. Nil slices come back as empty slices.
func (r ClinicalRecord) Clone() ClinicalRecord {
	c := r
	c.Conditions = append([]string{}, r.Conditions...)
	c.Medications = append([]string{}, r.Medications...)
	return c
}
