// Package demo holds the prefilled encounter and canned note used by the
// demo endpoints and the render-demo command. Nothing here is used on the
// live generation path.
package demo

import "github.com/ehr/soapnote/internal/domain/record"

// CodeSuggestions is the prefilled ICD-10/CPT block offered after a note is
// generated. The clinician edits it before export.
const CodeSuggestions = "ICD-10: I50.9 (Heart failure, unspecified), E11.65 (Type 2 DM with hyperglycemia)\n" +
	"CPT: 99214 (Established patient office visit, moderate complexity)"

// NoteText is a canned note in the shape the model is asked to produce.
const NoteText = `**S:** Patient reports shortness of breath on exertion for the past two weeks, worse when lying flat. History of hypertension and type 2 diabetes; adherent to Metformin and Lisinopril.

**O:** BP 150/90, HR 98, SpO2 91% on room air. HbA1c 8.2%. CBC within normal limits.

**A:** Dyspnea with hypoxemia in a patient with uncontrolled hypertension; suspected heart failure. Type 2 diabetes with hyperglycemia.

**P:** Order echocardiogram and BNP. Start low-dose diuretic and review antihypertensive dosing. Reinforce diet and glucose monitoring. Follow up in one week.

**ICD-10 Codes:** I50.9, E11.65

**CPT Code:** 99214`

// Form returns the prefilled encounter form.
func Form() record.FormInput {
	return record.FormInput{
		PatientID:      "20351235",
		ChiefComplaint: "Shortness of breath",
		Conditions:     "Hypertension, Diabetes",
		BP:             "150/90",
		HR:             "98",
		SpO2:           "91%",
		HbA1c:          "8.2%",
		CBC:            "Normal",
		Medications:    "Metformin, Lisinopril",
	}
}
