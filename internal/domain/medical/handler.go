package medical

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/acil/er-api/internal/platform/apperr"
)

type Handler struct {
	dataset *Dataset
}

func NewHandler(dataset *Dataset) *Handler {
	return &Handler{dataset: dataset}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/medical")
	g.GET("", h.ListAll)
	g.GET("/search", h.Search)
	g.GET("/symptoms", h.ListSymptoms)
}

func (h *Handler) ListAll(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dataset.All())
}

// Search accepts symptoms either as repeated query params
// (?symptoms=a&symptoms=b) or comma-separated (?symptoms=a,b).
func (h *Handler) Search(c echo.Context) error {
	var query []string
	for _, raw := range c.QueryParams()["symptoms"] {
		query = append(query, strings.Split(raw, ",")...)
	}

	matches, err := h.dataset.Search(query, DefaultTopK)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if matches == nil {
		matches = []Match{}
	}
	return c.JSON(http.StatusOK, matches)
}

func (h *Handler) ListSymptoms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dataset.AllSymptoms())
}
