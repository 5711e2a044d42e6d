package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithQueueNumber persists the case and assigns its queue number
	// for the appointment date in a single atomic step. Two concurrent calls
	// for the same date must never produce the same number.
	CreateWithQueueNumber(ctx context.Context, ap *Appointment) error

	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	FindTodayActiveByNationalID(ctx context.Context, nationalID string, date time.Time) (*Appointment, error)
	ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error)
	ListByDateAndStatus(ctx context.Context, date time.Time, status Status) ([]*Appointment, error)
	CountWaitingAhead(ctx context.Context, date time.Time, queueNumber int) (int, error)
	// UpdateStatusFrom writes the new status only if the row still holds the
	// status the caller validated against. Returns false when it no longer
	// does (or the row is gone), so a concurrent transition cannot chain an
	// illegal edge.
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}
