package billing

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

const billCols = `id, patient_id, appointment_id, consultation_fee,
	total_amount, payment_status, date_issued, created_at, updated_at`

func scanBilling(row pgx.Row) (*Billing, error) {
	var b Billing
	err := row.Scan(&b.ID, &b.PatientID, &b.AppointmentID, &b.ConsultationFee,
		&b.TotalAmount, &b.PaymentStatus, &b.DateIssued, &b.CreatedAt, &b.UpdatedAt)
	return &b, err
}

func (r *repoPG) Create(ctx context.Context, b *Billing) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing (id, patient_id, appointment_id, consultation_fee,
			total_amount, payment_status, date_issued)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		b.ID, b.PatientID, b.AppointmentID, b.ConsultationFee,
		b.TotalAmount, b.PaymentStatus, b.DateIssued)
	if err != nil {
		return err
	}
	for _, mc := range b.MedicationCosts {
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO medication_cost (billing_id, medicine_id, cost)
			VALUES ($1,$2,$3)`,
			b.ID, mc.MedicineID, mc.Cost)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repoPG) loadCosts(ctx context.Context, b *Billing) error {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT medicine_id, cost FROM medication_cost
		WHERE billing_id = $1 ORDER BY medicine_id`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var mc MedicationCost
		if err := rows.Scan(&mc.MedicineID, &mc.Cost); err != nil {
			return err
		}
		b.MedicationCosts = append(b.MedicationCosts, mc)
	}
	return rows.Err()
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Billing, error) {
	b, err := scanBilling(r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+` FROM billing WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadCosts(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repoPG) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing SET payment_status = $2, updated_at = NOW()
		WHERE id = $1`, id, status)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Billing, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM billing`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billCols+` FROM billing
		 ORDER BY date_issued DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Billing
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, b := range items {
		if err := r.loadCosts(ctx, b); err != nil {
			return nil, 0, err
		}
	}
	return items, total, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Billing, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+billCols+` FROM billing
		 WHERE patient_id = $1 ORDER BY date_issued DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Billing
	for rows.Next() {
		b, err := scanBilling(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range items {
		if err := r.loadCosts(ctx, b); err != nil {
			return nil, err
		}
	}
	return items, nil
}
