package doctornote

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/acil/er-api/internal/platform/apperr"
)

// AppointmentResolver checks the case a note attaches to. The appointment
// repository satisfies it.
type AppointmentResolver interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo         Repository
	appointments AppointmentResolver
}

func NewService(repo Repository, appointments AppointmentResolver) *Service {
	return &Service{repo: repo, appointments: appointments}
}

func (s *Service) Create(ctx context.Context, n *DoctorNote) error {
	var fields []apperr.FieldError
	if n.AppointmentID == uuid.Nil {
		fields = append(fields, apperr.FieldError{Field: "appointment_id", Message: "appointment_id is required"})
	}
	if strings.TrimSpace(n.DoctorName) == "" {
		fields = append(fields, apperr.FieldError{Field: "doctor_name", Message: "doctor_name is required"})
	}
	if strings.TrimSpace(n.Note) == "" {
		fields = append(fields, apperr.FieldError{Field: "note", Message: "note is required"})
	}
	if len(fields) > 0 {
		return apperr.ValidationFields("validation failed", fields...)
	}
	ok, err := s.appointments.ExistsByID(ctx, n.AppointmentID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("appointment %s", n.AppointmentID)
	}
	return s.repo.Create(ctx, n)
}

func (s *Service) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*DoctorNote, error) {
	ok, err := s.appointments.ExistsByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("appointment %s", appointmentID)
	}
	return s.repo.ListByAppointment(ctx, appointmentID)
}
