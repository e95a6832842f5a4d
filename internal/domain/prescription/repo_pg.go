package prescription

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, appointment_id, instructions)
		VALUES ($1,$2,$3)`,
		p.ID, p.AppointmentID, p.Instructions)
	if err != nil {
		return err
	}
	for i, line := range p.Medicines {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO prescribed_medicine (prescription_id, position,
				medicine_id, frequency, duration_days)
			VALUES ($1,$2,$3,$4,$5)`,
			p.ID, i, line.MedicineID, line.Frequency, int(line.Duration))
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) get(ctx context.Context, where string, arg interface{}) (*Prescription, error) {
	var p Prescription
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, appointment_id, instructions, created_at, updated_at
		FROM prescription WHERE `+where, arg).
		Scan(&p.ID, &p.AppointmentID, &p.Instructions, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT medicine_id, frequency, duration_days
		FROM prescribed_medicine
		WHERE prescription_id = $1 ORDER BY position ASC`, p.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line PrescribedMedicine
		var days int
		if err := rows.Scan(&line.MedicineID, &line.Frequency, &days); err != nil {
			return nil, err
		}
		line.Duration = DurationDays(days)
		p.Medicines = append(p.Medicines, line)
	}
	return &p, rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return r.get(ctx, `id = $1`, id)
}

func (r *repoPG) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*Prescription, error) {
	return r.get(ctx, `appointment_id = $1`, appointmentID)
}
