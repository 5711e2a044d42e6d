package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. The national id is the 11-digit
// identifier patients use at the registration desk; it is unique.
type Patient struct {
	ID               uuid.UUID `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	NationalID       string    `db:"national_id" json:"national_id"`
	BasicSymptomsCsv *string   `db:"basic_symptoms_csv" json:"basic_symptoms_csv,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
