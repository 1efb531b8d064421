package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ponto.service/internal/core/model"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// PaymentRepository is the PostgreSQL implementation of PaymentStore. The
// pagamentos.ponto_id unique constraint is the serialization point for the
// at-most-one-payment-per-pair invariant.
type PaymentRepository struct {
	DB *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{DB: db}
}

// InsertIfAbsent stores the payment, mapping a unique-constraint violation on
// ponto_id to model.ErrDuplicatePayment so the engine sees the loser of a
// concurrent check-then-insert as a plain duplicate.
func (r *PaymentRepository) InsertIfAbsent(ctx context.Context, rec model.PaymentRecord) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", rec.EmployeeID))

	query := `INSERT INTO pagamentos (id, employee_id, ponto_id, comprovante_ref, created_at)
              VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.PontoID, rec.ComprovanteRef, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.ErrDuplicatePayment
		}
		return err
	}
	return nil
}

// ListByEmployee returns the employee's payments ordered by creation time.
func (r *PaymentRepository) ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error) {
	query := `SELECT id, employee_id, ponto_id, comprovante_ref, created_at
              FROM pagamentos WHERE employee_id = $1 ORDER BY created_at`

	rows, err := r.DB.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PaymentRecord
	for rows.Next() {
		var rec model.PaymentRecord
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.PontoID, &rec.ComprovanteRef, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// FindByReference returns the payment attached to an entrada punch ID, or nil.
func (r *PaymentRepository) FindByReference(ctx context.Context, pontoID string) (*model.PaymentRecord, error) {
	query := `SELECT id, employee_id, ponto_id, comprovante_ref, created_at
              FROM pagamentos WHERE ponto_id = $1`

	var rec model.PaymentRecord
	err := r.DB.QueryRowContext(ctx, query, pontoID).
		Scan(&rec.ID, &rec.EmployeeID, &rec.PontoID, &rec.ComprovanteRef, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
