package appointment

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/acil/er-api/internal/domain/doctornote"
	"github.com/acil/er-api/internal/domain/patient"
	"github.com/acil/er-api/internal/domain/triage"
	"github.com/acil/er-api/internal/platform/apperr"
)

// Collaborators the detail view pulls together. Each is satisfied by the
// corresponding domain repository.
type PatientLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

type TriageHistory interface {
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*triage.TriageRecord, error)
}

type NoteHistory interface {
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*doctornote.DoctorNote, error)
}

type Handler struct {
	svc      *Service
	patients PatientLookup
	triage   TriageHistory
	notes    NoteHistory
}

func NewHandler(svc *Service, patients PatientLookup, triage TriageHistory, notes NoteHistory) *Handler {
	return &Handler{svc: svc, patients: patients, triage: triage, notes: notes}
}

func (h *Handler) RegisterRoutes(api *echo.Group, staff echo.MiddlewareFunc) {
	g := api.Group("/appointments")
	g.POST("", h.Create, staff)
	// The queue-status lookup is the one endpoint patients hit themselves,
	// from the kiosk in the waiting room. No staff token required.
	g.GET("/status/:nid", h.StatusByNationalID)
	g.GET("/today", h.ListToday, staff)
	g.GET("/today/next", h.NextWaiting, staff)
	g.GET("/:id", h.Get, staff)
	g.GET("/:id/detail", h.Detail, staff)
	g.PATCH("/:id/status", h.UpdateStatus, staff)
	g.DELETE("/:id", h.Delete, staff)
}

type createRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id is required")
	}
	ap, err := h.svc.Create(c.Request().Context(), req.PatientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, ap)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ap, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ap)
}

type statusResponse struct {
	HasActive   bool         `json:"has_active"`
	Appointment *Appointment `json:"appointment,omitempty"`
	AheadCount  int          `json:"ahead_count"`
}

// StatusByNationalID answers the kiosk. "No case today" is a normal answer,
// not an error, so it comes back 200 with has_active false.
func (h *Handler) StatusByNationalID(c echo.Context) error {
	qs, err := h.svc.StatusByNationalID(c.Request().Context(), c.Param("nid"))
	if errors.Is(err, apperr.ErrNotFound) {
		return c.JSON(http.StatusOK, statusResponse{HasActive: false})
	}
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, statusResponse{
		HasActive:   true,
		Appointment: qs.Appointment,
		AheadCount:  qs.AheadCount,
	})
}

func (h *Handler) ListToday(c echo.Context) error {
	date := Today()
	if d := c.QueryParam("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = parsed
	}
	items, err := h.svc.List(c.Request().Context(), date, c.QueryParam("status"))
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if items == nil {
		items = []*Appointment{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) NextWaiting(c echo.Context) error {
	ap, err := h.svc.NextWaiting(c.Request().Context())
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ap)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ap, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, ap)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "appointment deleted"})
}

type detailResponse struct {
	Appointment   *Appointment             `json:"appointment"`
	Patient       *patient.Patient         `json:"patient"`
	TriageRecords []*triage.TriageRecord   `json:"triage_records"`
	DoctorNotes   []*doctornote.DoctorNote `json:"doctor_notes"`
}

// Detail is the clinician's full view of a case: the patient, every triage
// snapshot and every note.
func (h *Handler) Detail(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()

	ap, err := h.svc.Get(ctx, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	p, err := h.patients.GetByID(ctx, ap.PatientID)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	records, err := h.triage.ListByAppointment(ctx, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	notes, err := h.notes.ListByAppointment(ctx, id)
	if err != nil {
		return apperr.ToHTTP(err)
	}
	if records == nil {
		records = []*triage.TriageRecord{}
	}
	if notes == nil {
		notes = []*doctornote.DoctorNote{}
	}
	return c.JSON(http.StatusOK, detailResponse{
		Appointment:   ap,
		Patient:       p,
		TriageRecords: records,
		DoctorNotes:   notes,
	})
}
