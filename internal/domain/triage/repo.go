package triage

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rec *TriageRecord) error
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*TriageRecord, error)
}
