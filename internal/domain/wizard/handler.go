package wizard

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	initial State
}

// NewHandler creates a wizard handler that hands out initial as the
// starting state.
func NewHandler(initial State) *Handler {
	return &Handler{initial: initial}
}

// RegisterRoutes registers wizard endpoints on the provided route group.
//
//	GET  /api/v1/wizard/initial    - Starting state with the prefilled form
//	POST /api/v1/wizard/transition - Apply an event to a state
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/wizard/initial", h.GetInitial)
	g.POST("/wizard/transition", h.PostTransition)
}

type transitionRequest struct {
	State State `json:"state"`
	Event Event `json:"event"`
}

func (h *Handler) GetInitial(c echo.Context) error {
	return c.JSON(http.StatusOK, h.initial)
}

func (h *Handler) PostTransition(c echo.Context) error {
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Event.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "event.type is required")
	}
	next, err := Transition(req.State, req.Event)
	if errors.Is(err, ErrInvalidTransition) {
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, next)
}
