package demo

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// RegisterRoutes registers demo endpoints on the provided route group.
//
//	GET /api/v1/demo/form - Prefilled encounter form and code suggestions
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/demo/form", h.GetForm)
}

func (h *Handler) GetForm(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"form":            Form(),
		"suggested_codes": CodeSuggestions,
	})
}
