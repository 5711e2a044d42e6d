package doctornote

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, n *DoctorNote) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*DoctorNote, error)
}
