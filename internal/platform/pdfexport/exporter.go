// Package pdfexport renders an encounter header, a styled SOAP note and the
// code block into a PDF held entirely in memory.
package pdfexport

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/ehr/soapnote/internal/domain/record"
	"github.com/ehr/soapnote/internal/platform/runs"
)

const letterheadImage = "letterhead"

// Options configures an Exporter. Zero values fall back to Arial 12pt,
// 10mm lines and a 15mm bottom margin.
type Options struct {
	Letterhead         *Letterhead
	FontFamily         string
	FontSize           float64
	LineHeight         float64
	BottomMargin       float64
	Title              string
	Author             string
	DisableCompression bool
}

// Exporter builds SOAP note PDFs. It holds only immutable configuration and
// is safe for concurrent use; each Export call owns its own document.
type Exporter struct {
	opts Options
}

// NewExporter creates an exporter.
func NewExporter(opts Options) *Exporter {
	if opts.FontFamily == "" {
		opts.FontFamily = "Arial"
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	if opts.LineHeight <= 0 {
		opts.LineHeight = 10
	}
	if opts.BottomMargin <= 0 {
		opts.BottomMargin = 15
	}
	if opts.Title == "" {
		opts.Title = "SOAP Note"
	}
	return &Exporter{opts: opts}
}

// Export renders, in order: the letterhead (when configured), the encounter
// header, the "SOAP Note:" label and runs, then the "ICD-10/CPT Codes:"
// label and codeText verbatim. Page breaks are left to the renderer's
// automatic break at the bottom margin. On failure a *RenderError is
// returned and no document.
func (e *Exporter) Export(rec record.ClinicalRecord, rs []runs.Run, codeText string) (*ExportedDocument, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, e.opts.BottomMargin)
	pdf.SetCompression(!e.opts.DisableCompression)
	pdf.SetTitle(e.opts.Title, true)
	if e.opts.Author != "" {
		pdf.SetAuthor(e.opts.Author, true)
	}
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(e.opts.FontFamily, "", e.opts.FontSize)

	if err := e.letterhead(pdf); err != nil {
		return nil, &RenderError{Stage: StageLetterhead, Err: err}
	}
	if err := e.header(pdf, tr, rec); err != nil {
		return nil, &RenderError{Stage: StageHeader, Err: err}
	}
	if err := e.body(pdf, tr, rs); err != nil {
		return nil, &RenderError{Stage: StageBody, Err: err}
	}
	if err := e.codes(pdf, tr, codeText); err != nil {
		return nil, &RenderError{Stage: StageCodes, Err: err}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Stage: StageOutput, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &RenderError{Stage: StageOutput, Err: errors.New("empty document")}
	}

	return &ExportedDocument{
		Content:  buf.Bytes(),
		FileName: FileName,
		MIMEType: MIMEType,
		Pages:    pdf.PageCount(),
	}, nil
}

func (e *Exporter) letterhead(pdf *fpdf.Fpdf) error {
	lh := e.opts.Letterhead
	if lh == nil || len(lh.Data) == 0 {
		return nil
	}
	imgOpts := fpdf.ImageOptions{ImageType: lh.ImageType}
	pdf.RegisterImageOptionsReader(letterheadImage, imgOpts, bytes.NewReader(lh.Data))
	if pdf.Err() {
		return pdf.Error()
	}
	pdf.ImageOptions(letterheadImage, 10, 8, 30, 0, false, imgOpts, 0, "")
	pdf.Ln(40)
	return pdf.Error()
}

func (e *Exporter) header(pdf *fpdf.Fpdf, tr func(string) string, rec record.ClinicalRecord) error {
	lines := []string{
		"Patient ID: " + rec.PatientID,
		"Chief Complaint: " + rec.ChiefComplaint,
		"Conditions: " + rec.ConditionsLine(),
		fmt.Sprintf("Vitals: BP %s, HR %s, SpO2 %s", rec.Vitals.BP, rec.Vitals.HR, rec.Vitals.SpO2),
		fmt.Sprintf("Labs: HbA1c %s, CBC %s", rec.Labs.HbA1c, rec.Labs.CBC),
		"Medications: " + rec.MedicationsLine(),
	}
	for _, l := range lines {
		e.line(pdf, tr, l)
	}
	pdf.Ln(e.opts.LineHeight)
	return pdf.Error()
}

// body writes the runs inline, switching between bold and regular weight
// per run. Newlines inside run text start new lines.
func (e *Exporter) body(pdf *fpdf.Fpdf, tr func(string) string, rs []runs.Run) error {
	e.line(pdf, tr, "SOAP Note:")
	for _, r := range rs {
		style := ""
		if r.Bold {
			style = "B"
		}
		pdf.SetFont(e.opts.FontFamily, style, e.opts.FontSize)
		pdf.Write(e.opts.LineHeight, tr(r.Text))
	}
	pdf.SetFont(e.opts.FontFamily, "", e.opts.FontSize)
	pdf.Ln(e.opts.LineHeight)
	pdf.Ln(e.opts.LineHeight)
	return pdf.Error()
}

func (e *Exporter) codes(pdf *fpdf.Fpdf, tr func(string) string, codeText string) error {
	e.line(pdf, tr, "ICD-10/CPT Codes:")
	e.line(pdf, tr, codeText)
	return pdf.Error()
}

func (e *Exporter) line(pdf *fpdf.Fpdf, tr func(string) string, s string) {
	pdf.MultiCell(0, e.opts.LineHeight, tr(s), "", "", false)
}
