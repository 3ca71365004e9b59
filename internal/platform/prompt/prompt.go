// Package prompt turns a clinical record into the instruction text sent to
// the completion service.
package prompt

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/ehr/soapnote/internal/domain/record"
)

// TemplateVersion identifies the instruction template below. Any edit to
// the template text changes every future note and must bump this value.
const TemplateVersion = "soap-v1"

// SystemMessage is the role instruction sent alongside every prompt.
const SystemMessage = "You are a medical documentation assistant."

const header = "Generate a structured SOAP note based on the following patient data:\n"

const format = `Format:
**S:** (Subjective - patient-reported symptoms)
**O:** (Objective - vitals, labs, exam findings)
**A:** (Assessment - diagnosis, clinical reasoning)
**P:** (Plan - treatment, follow-up recommendations)
**ICD-10 Codes:** (Relevant ICD-10 codes)
**CPT Code:** (Relevant CPT code)
`

// SectionLabels are the bold-marker labels the template asks the model to
// open each section with, in order.
var SectionLabels = []string{"**S:**", "**O:**", "**A:**", "**P:**", "**ICD-10 Codes:**", "**CPT Code:**"}

// Build serializes rec into the versioned template. The output depends only
// on rec, so repeated calls yield identical strings.
func Build(rec record.ClinicalRecord) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString(encodeRecord(rec))
	sb.WriteString("\n\n")
	sb.WriteString(format)
	return sb.String()
}

// encodeRecord renders the record as indented JSON in struct field order
// (PatientID, ChiefComplaint, Conditions, Vitals, Labs, MedicationRequest).
func encodeRecord(rec record.ClinicalRecord) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Clone so nil slices encode as [] rather than null. A struct of strings
	// and string slices cannot fail to encode.
	_ = enc.Encode(rec.Clone())
	return strings.TrimRight(buf.String(), "\n")
}
