package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acil/er-api/internal/platform/apperr"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, patient_id, queue_number, appointment_date, status, created_at`

func scan(row pgx.Row) (*Appointment, error) {
	var ap Appointment
	err := row.Scan(&ap.ID, &ap.PatientID, &ap.QueueNumber, &ap.AppointmentDate, &ap.Status, &ap.CreatedAt)
	return &ap, err
}

// CreateWithQueueNumber draws the next queue number for the date and inserts
// the case in one transaction. The upsert takes a row lock on the date's
// counter, so concurrent creates for the same date queue up behind each other
// and each sees a distinct value; if the insert fails the rollback returns
// the number with it, leaving no gap.
func (r *repoPG) CreateWithQueueNumber(ctx context.Context, ap *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return apperr.Storage(err)
	}
	defer tx.Rollback(ctx)

	var n int
	err = tx.QueryRow(ctx, `
		INSERT INTO queue_sequence (seq_date, last_value)
		VALUES ($1, 1)
		ON CONFLICT (seq_date) DO UPDATE SET last_value = queue_sequence.last_value + 1
		RETURNING last_value`,
		ap.AppointmentDate).Scan(&n)
	if err != nil {
		return apperr.Storage(err)
	}

	ap.ID = uuid.New()
	ap.QueueNumber = n
	err = tx.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, queue_number, appointment_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		ap.ID, ap.PatientID, ap.QueueNumber, ap.AppointmentDate, ap.Status).Scan(&ap.CreatedAt)
	if err != nil {
		return apperr.Storage(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	ap, err := scan(r.pool.QueryRow(ctx, `SELECT `+cols+` FROM appointments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("appointment %s", id)
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return ap, nil
}

func (r *repoPG) FindTodayActiveByNationalID(ctx context.Context, nationalID string, date time.Time) (*Appointment, error) {
	ap, err := scan(r.pool.QueryRow(ctx, `
		SELECT a.id, a.patient_id, a.queue_number, a.appointment_date, a.status, a.created_at
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE p.national_id = $1
		  AND a.appointment_date = $2
		  AND a.status NOT IN ($3, $4)
		ORDER BY a.created_at DESC
		LIMIT 1`,
		nationalID, date, StatusDischarged, StatusCancelled))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFoundf("no active appointment for national id %s", nationalID)
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return ap, nil
}

func (r *repoPG) ListByDate(ctx context.Context, date time.Time) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cols+` FROM appointments WHERE appointment_date = $1 ORDER BY queue_number`, date)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return collect(rows)
}

func (r *repoPG) ListByDateAndStatus(ctx context.Context, date time.Time, status Status) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+cols+` FROM appointments WHERE appointment_date = $1 AND status = $2 ORDER BY queue_number`,
		date, status)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		ap, err := scan(rows)
		if err != nil {
			return nil, apperr.Storage(err)
		}
		items = append(items, ap)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage(err)
	}
	return items, nil
}

func (r *repoPG) CountWaitingAhead(ctx context.Context, date time.Time, queueNumber int) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE appointment_date = $1 AND status = $2 AND queue_number < $3`,
		date, StatusWaiting, queueNumber).Scan(&n)
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return n, nil
}

func (r *repoPG) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, apperr.Storage(err)
	}
	return exists, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return apperr.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFoundf("appointment %s", id)
	}
	return nil
}
