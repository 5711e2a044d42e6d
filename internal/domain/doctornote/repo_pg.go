package doctornote

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acil/er-api/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func scan(row pgx.Row) (*DoctorNote, error) {
	var n DoctorNote
	err := row.Scan(&n.ID, &n.AppointmentID, &n.DoctorName, &n.Note, &n.CreatedAt)
	return &n, err
}

func (r *repoPG) Create(ctx context.Context, n *DoctorNote) error {
	n.ID = uuid.New()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO doctor_notes (id, appointment_id, doctor_name, note)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.AppointmentID, n.DoctorName, n.Note).Scan(&n.CreatedAt)
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *repoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*DoctorNote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, appointment_id, doctor_name, note, created_at
		FROM doctor_notes WHERE appointment_id = $1 ORDER BY created_at DESC`,
		appointmentID)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer rows.Close()
	var items []*DoctorNote
	for rows.Next() {
		n, err := scan(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}
