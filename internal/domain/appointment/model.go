package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/acil/er-api/internal/platform/apperr"
)

// Status is the lifecycle state of a case. Transitions follow a directed
// graph; illegal edges are rejected as validation errors.
type Status string

const (
	StatusWaiting        Status = "WAITING"
	StatusInTriage       Status = "IN_TRIAGE"
	StatusInConsultation Status = "IN_CONSULTATION"
	StatusDischarged     Status = "DISCHARGED"
	StatusCancelled      Status = "CANCELLED"
)

var transitions = map[Status][]Status{
	StatusWaiting:        {StatusInTriage, StatusInConsultation, StatusCancelled},
	StatusInTriage:       {StatusInConsultation, StatusCancelled},
	StatusInConsultation: {StatusDischarged, StatusCancelled},
	StatusDischarged:     {},
	StatusCancelled:      {},
}

// ParseStatus validates a status token from the outside world.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", apperr.Validationf("unknown status %q", s)
	}
	return st, nil
}

// CanTransitionTo reports whether the edge from s to next is legal.
func (s Status) CanTransitionTo(next Status) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Appointment maps to the appointments table: one ER visit of one patient on
// one calendar date. The queue number is assigned once at creation and is
// unique within the date.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	QueueNumber     int       `db:"queue_number" json:"queue_number"`
	AppointmentDate time.Time `db:"appointment_date" json:"appointment_date"`
	Status          Status    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// DateOf strips the time component, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the calendar date new cases are queued under.
func Today() time.Time {
	return DateOf(time.Now())
}
