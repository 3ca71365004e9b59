package pdfexport

import "fmt"

const (
	FileName = "SOAP_Note.pdf"
	MIMEType = "application/pdf"
)

// ExportedDocument is a finished PDF. The caller owns Content; the exporter
// keeps no reference to it.
type ExportedDocument struct {
	Content  []byte `json:"-"`
	FileName string `json:"file_name"`
	MIMEType string `json:"mime_type"`
	Pages    int    `json:"pages"`
}

// Stage names the part of the document being rendered when an export failed.
type Stage string

const (
	StageLetterhead Stage = "letterhead"
	StageHeader     Stage = "header"
	StageBody       Stage = "body"
	StageCodes      Stage = "codes"
	StageOutput     Stage = "output"
)

// RenderError reports a failed export. No partial document accompanies it.
type RenderError struct {
	Stage Stage
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("pdfexport: %s stage failed: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
