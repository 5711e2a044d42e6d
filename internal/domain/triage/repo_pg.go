package triage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acil/er-api/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, appointment_id, nurse_symptoms_csv, temperature, pulse, bp_high, bp_low,
	pain_level, triage_level, notes, suggestions_json, created_at`

func scan(row pgx.Row) (*TriageRecord, error) {
	var t TriageRecord
	err := row.Scan(&t.ID, &t.AppointmentID, &t.NurseSymptomsCsv, &t.Temperature, &t.Pulse,
		&t.BpHigh, &t.BpLow, &t.PainLevel, &t.TriageLevel, &t.Notes, &t.SuggestionsJSON, &t.CreatedAt)
	return &t, err
}

func (r *repoPG) Create(ctx context.Context, rec *TriageRecord) error {
	rec.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO triage_records
			(id, appointment_id, nurse_symptoms_csv, temperature, pulse, bp_high, bp_low,
			 pain_level, triage_level, notes, suggestions_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		rec.ID, rec.AppointmentID, rec.NurseSymptomsCsv, rec.Temperature, rec.Pulse,
		rec.BpHigh, rec.BpLow, rec.PainLevel, rec.TriageLevel, rec.Notes, rec.SuggestionsJSON,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*TriageRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cols+` FROM triage_records WHERE appointment_id = $1 ORDER BY created_at DESC`,
		appointmentID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()
	var items []*TriageRecord
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}
