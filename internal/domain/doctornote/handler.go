package doctornote

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

// RegisterRoutes mounts the note endpoints. Only doctors write notes; any
// staff member can read them.
func (h *Handler) RegisterRoutes(api *echo.Group, staff, doctorOnly echo.MiddlewareFunc) {
	g := api.Group("/doctor-notes", staff)
	g.POST("", h.Create, doctorOnly)
	g.GET("/appointment/:id", h.ListByAppointment)
}

func (h *Handler) Create(c echo.Context) error {
	var n DoctorNote
	if err := c.Bind(&n); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), &n); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, n)
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
		items = []*DoctorNote{}
	}
	return c.JSON(http.StatusOK, items)
}
