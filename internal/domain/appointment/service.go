package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/acil/er-api/internal/platform/apperr"
)

// PatientDirectory is the slice of the patient registry the case workflow
// needs. The patient repository satisfies it.
type PatientDirectory interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients}
}

// Create opens a new case for today and assigns it the next queue number.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID) (*Appointment, error) {
	ok, err := s.patients.ExistsByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFoundf("patient %s", patientID)
	}
	ap := &Appointment{
		PatientID:       patientID,
		AppointmentDate: Today(),
		Status:          StatusWaiting,
	}
	if err := s.repo.CreateWithQueueNumber(ctx, ap); err != nil {
		return nil, err
	}
	return ap, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// QueueStatus is what a patient sees on the waiting-room board: their case
// and how many WAITING cases hold a lower number.
type QueueStatus struct {
	Appointment *Appointment `json:"appointment"`
	AheadCount  int          `json:"ahead_count"`
}

// StatusByNationalID looks up the patient's active case for today. A case
// already discharged or cancelled does not count.
func (s *Service) StatusByNationalID(ctx context.Context, nationalID string) (*QueueStatus, error) {
	ap, err := s.repo.FindTodayActiveByNationalID(ctx, nationalID, Today())
	if err != nil {
		return nil, err
	}
	ahead, err := s.repo.CountWaitingAhead(ctx, ap.AppointmentDate, ap.QueueNumber)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{Appointment: ap, AheadCount: ahead}, nil
}

// List returns the cases for a date in queue order, optionally narrowed to
// one status.
func (s *Service) List(ctx context.Context, date time.Time, status string) ([]*Appointment, error) {
	day := DateOf(date)
	if status == "" {
		return s.repo.ListByDate(ctx, day)
	}
	st, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByDateAndStatus(ctx, day, st)
}

// NextWaiting returns the WAITING case with the lowest queue number today.
func (s *Service) NextWaiting(ctx context.Context) (*Appointment, error) {
	waiting, err := s.repo.ListByDateAndStatus(ctx, Today(), StatusWaiting)
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, apperr.NotFoundf("no waiting appointments today")
	}
	return waiting[0], nil
}

// UpdateStatus moves a case along the lifecycle graph. Unknown statuses and
// illegal edges are rejected before anything is written.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	ap, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ap.Status.CanTransitionTo(next) {
		return nil, apperr.Validationf("cannot transition from %s to %s", ap.Status, next)
	}
	ok, err := s.repo.UpdateStatusFrom(ctx, id, ap.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		// The case moved between our read and the write. Re-read so the
		// rejection names the status that actually blocked the edge.
		cur, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperr.Validationf("cannot transition from %s to %s", cur.Status, next)
	}
	ap.Status = next
	return ap, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
