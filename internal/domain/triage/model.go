package triage

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TriageRecord is one nurse assessment of a case. Records are append-only:
// a re-assessment creates a new record rather than editing the old one, so
// the history of a deteriorating patient stays visible.
type TriageRecord struct {
	ID               uuid.UUID `db:"id" json:"id"`
	AppointmentID    uuid.UUID `db:"appointment_id" json:"appointment_id"`
	NurseSymptomsCsv *string   `db:"nurse_symptoms_csv" json:"nurse_symptoms_csv"`
	Temperature      *float64  `db:"temperature" json:"temperature"`
	Pulse            *int      `db:"pulse" json:"pulse"`
	BpHigh           *int      `db:"bp_high" json:"bp_high"`
	BpLow            *int      `db:"bp_low" json:"bp_low"`
	PainLevel        *int      `db:"pain_level" json:"pain_level"`
	TriageLevel      *string   `db:"triage_level" json:"triage_level"`
	Notes            *string   `db:"notes" json:"notes"`
	SuggestionsJSON  *string   `db:"suggestions_json" json:"suggestions_json"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// SymptomTokens splits the nurse's comma-separated symptom line into clean
// tokens. Blanks between commas are dropped; an empty line is an empty list.
func (t *TriageRecord) SymptomTokens() []string {
	if t.NurseSymptomsCsv == nil {
		return nil
	}
	var tokens []string
	for _, part := range strings.Split(*t.NurseSymptomsCsv, ",") {
		if s := strings.TrimSpace(part); s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}
