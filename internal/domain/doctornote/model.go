package doctornote

import (
	"time"

	"github.com/google/uuid"
)

// DoctorNote is a free-text observation attached to a case during
// consultation. Notes are append-only and disappear with the case.
type DoctorNote struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	DoctorName    string    `db:"doctor_name" json:"doctor_name"`
	Note          string    `db:"note" json:"note"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
