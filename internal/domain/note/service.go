package note

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/soapnote/internal/domain/record"
	"github.com/ehr/soapnote/internal/platform/completion"
	"github.com/ehr/soapnote/internal/platform/pdfexport"
	"github.com/ehr/soapnote/internal/platform/prompt"
	"github.com/ehr/soapnote/internal/platform/runs"
	"github.com/ehr/soapnote/internal/platform/sanitize"
)

// Renderer turns a record, styled runs and code text into a document.
// *pdfexport.Exporter satisfies it.
type Renderer interface {
	Export(rec record.ClinicalRecord, rs []runs.Run, codeText string) (*pdfexport.ExportedDocument, error)
}

// Service runs the note pipeline. It keeps no state between calls.
type Service struct {
	completer completion.Completer
	renderer  Renderer
	logger    zerolog.Logger
	model     string
}

func NewService(completer completion.Completer, renderer Renderer, logger zerolog.Logger, model string) *Service {
	return &Service{
		completer: completer,
		renderer:  renderer,
		logger:    logger.With().Str("component", "note").Logger(),
		model:     model,
	}
}

// Generate builds the prompt for rec, requests a completion and derives the
// note. On failure the note is nil and the error wraps the completer's
// *completion.ServiceError.
func (s *Service) Generate(ctx context.Context, rec record.ClinicalRecord) (*GeneratedNote, error) {
	start := time.Now()
	text, err := s.completer.Complete(ctx, completion.Request{
		System: prompt.SystemMessage,
		Prompt: prompt.Build(rec),
	})
	if err != nil {
		return nil, fmt.Errorf("generate soap note: %w", err)
	}

	n := NewGeneratedNote(text, prompt.TemplateVersion, s.model)
	s.logger.Info().
		Str("note_id", n.ID.String()).
		Str("prompt_version", n.PromptVersion).
		Int("runs", len(n.Runs)).
		Dur("elapsed", time.Since(start)).
		Msg("soap note generated")
	return n, nil
}

// Export sanitizes noteText, splits it into styled runs and renders the PDF.
// Sanitizing is idempotent, so already-sanitized text may be passed.
func (s *Service) Export(rec record.ClinicalRecord, noteText, codeText string) (*pdfexport.ExportedDocument, error) {
	rs := runs.Parse(sanitize.Text(noteText))
	doc, err := s.renderer.Export(rec.Clone(), rs, codeText)
	if err != nil {
		return nil, fmt.Errorf("export soap note: %w", err)
	}
	s.logger.Info().
		Int("pages", doc.Pages).
		Int("bytes", len(doc.Content)).
		Msg("soap note exported")
	return doc, nil
}

// GenerateAndExport handles one submission: one prompt, one completion call
// and one export.
func (s *Service) GenerateAndExport(ctx context.Context, rec record.ClinicalRecord, codeText string) (*GeneratedNote, *pdfexport.ExportedDocument, error) {
	n, err := s.Generate(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.Export(rec, n.SanitizedText, codeText)
	if err != nil {
		return n, nil, err
	}
	return n, doc, nil
}
