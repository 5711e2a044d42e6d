package triage

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/acil/er-api/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the triage endpoints. Creation is restricted to the
// nurse role; any staff member can read the history.
func (h *Handler) RegisterRoutes(api *echo.Group, staff, nurseOnly echo.MiddlewareFunc) {
	g := api.Group("/triage", staff)
	g.POST("", h.Create, nurseOnly)
	g.GET("/appointment/:id", h.ListByAppointment)
}

func (h *Handler) Create(c echo.Context) error {
	var rec TriageRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &rec); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListByAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	items, err := h.svc.ListByAppointment(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*TriageRecord{}
	}
	return c.JSON(http.StatusOK, items)
}
