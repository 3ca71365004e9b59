package note

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/soapnote/internal/domain/record"
	"github.com/ehr/soapnote/internal/platform/completion"
	"github.com/ehr/soapnote/internal/platform/pdfexport"
)

type Handler struct {
	svc            *Service
	suggestedCodes string
}

// NewHandler creates a SOAP note handler. suggestedCodes prefills the code
// block returned with each generated note; the clinician edits it before
// export.
func NewHandler(svc *Service, suggestedCodes string) *Handler {
	return &Handler{svc: svc, suggestedCodes: suggestedCodes}
}

// RegisterRoutes registers SOAP note endpoints on the provided route group.
//
//	POST /api/v1/soap-notes/generate - Generate a note from an encounter form
//	POST /api/v1/soap-notes/export   - Render an edited note and codes to PDF
//	POST /api/v1/soap-notes/pdf      - Generate and render in one request
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/soap-notes/generate", h.Generate)
	g.POST("/soap-notes/export", h.Export)
	g.POST("/soap-notes/pdf", h.GeneratePDF)
}

type generateResponse struct {
	*GeneratedNote
	SuggestedCodes string `json:"suggested_codes"`
}

// ExportRequest carries the encounter form with the clinician's reviewed
// note and code text.
type ExportRequest struct {
	Form     record.FormInput `json:"form"`
	NoteText string           `json:"note_text"`
	CodeText string           `json:"code_text"`
}

// PDFRequest carries the encounter form and code text for a one-shot
// generate and export.
type PDFRequest struct {
	Form     record.FormInput `json:"form"`
	CodeText string           `json:"code_text"`
}

func (h *Handler) Generate(c echo.Context) error {
	var in record.FormInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Generate(c.Request().Context(), record.FromForm(in))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, generateResponse{GeneratedNote: n, SuggestedCodes: h.suggestedCodes})
}

func (h *Handler) Export(c echo.Context) error {
	var req ExportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doc, err := h.svc.Export(record.FromForm(req.Form), req.NoteText, req.CodeText)
	if err != nil {
		return httpError(err)
	}
	return attachment(c, doc)
}

func (h *Handler) GeneratePDF(c echo.Context) error {
	var req PDFRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	_, doc, err := h.svc.GenerateAndExport(c.Request().Context(), record.FromForm(req.Form), req.CodeText)
	if err != nil {
		return httpError(err)
	}
	return attachment(c, doc)
}

func attachment(c echo.Context, doc *pdfexport.ExportedDocument) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.FileName))
	return c.Blob(http.StatusOK, doc.MIMEType, doc.Content)
}

// httpError maps pipeline failures to HTTP errors: completion timeouts to
// 504, other completion failures to 502 and render failures to 500.
func httpError(err error) error {
	var serr *completion.ServiceError
	if errors.As(err, &serr) {
		status := http.StatusBadGateway
		if serr.Kind == completion.KindTimeout {
			status = http.StatusGatewayTimeout
		}
		return echo.NewHTTPError(status, map[string]string{
			"error": "note generation failed: " + serr.Error(),
			"kind":  string(serr.Kind),
		})
	}
	var rerr *pdfexport.RenderError
	if errors.As(err, &rerr) {
		return echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
			"error": rerr.Error(),
			"stage": string(rerr.Stage),
		})
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
