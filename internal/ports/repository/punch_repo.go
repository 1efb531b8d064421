package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ponto.service/internal/core/model"
)

// PunchRepository is the PostgreSQL implementation of PunchStore. The
// timezone name is baked in at construction so business-day comparisons in
// SQL match the engine's reference zone.
type PunchRepository struct {
	DB       *sql.DB
	Timezone string
}

// NewPunchRepository creates a punch repository bound to the reference zone.
func NewPunchRepository(db *sql.DB, timezone string) *PunchRepository {
	return &PunchRepository{DB: db, Timezone: timezone}
}

const punchColumns = `id, employee_id, kind, ts, photo_ref, signature_ref, responsible_admin, created_at`

// Append stores a punch record unconditionally.
func (r *PunchRepository) Append(ctx context.Context, rec model.PunchRecord) error {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", rec.EmployeeID))

	query := `INSERT INTO pontos (id, employee_id, kind, ts, photo_ref, signature_ref, responsible_admin, created_at)
              VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8)`

	_, err := r.DB.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Kind, rec.Timestamp,
		rec.PhotoRef, rec.SignatureRef, rec.ResponsibleAdmin, rec.CreatedAt)
	return err
}

// AppendEntradaIf inserts an entrada only while the employee has no open pair
// on a prior business day within the lookback window. The subquery mirrors
// the aggregator's notion of an open pair: an entrada on some day with no
// saida on that same day.
func (r *PunchRepository) AppendEntradaIf(ctx context.Context, rec model.PunchRecord, today model.BusinessDay, since time.Time) (bool, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", rec.EmployeeID))

	query := `INSERT INTO pontos (id, employee_id, kind, ts, photo_ref, signature_ref, responsible_admin, created_at)
              SELECT $1, $2, 'entrada', $3, NULLIF($4, ''), NULLIF($5, ''), NULL, $6
              WHERE NOT EXISTS (
                  SELECT 1 FROM pontos e
                  WHERE e.employee_id = $2
                    AND e.kind = 'entrada'
                    AND e.ts >= $9
                    AND (e.ts AT TIME ZONE $7)::date < $8::date
                    AND NOT EXISTS (
                        SELECT 1 FROM pontos s
                        WHERE s.employee_id = e.employee_id
                          AND s.kind = 'saida'
                          AND (s.ts AT TIME ZONE $7)::date = (e.ts AT TIME ZONE $7)::date
                    )
              )`

	res, err := r.DB.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.Timestamp,
		rec.PhotoRef, rec.SignatureRef, rec.CreatedAt,
		r.Timezone, today.String(), since)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ListByEmployee returns the employee's full punch log ordered by timestamp.
func (r *PunchRepository) ListByEmployee(ctx context.Context, employeeID string) ([]model.PunchRecord, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.employee_id", employeeID))

	query := `SELECT ` + punchColumns + ` FROM pontos WHERE employee_id = $1 ORDER BY ts`

	rows, err := r.DB.QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPunches(rows)
}

// ListByDateRange returns punches with start <= ts < end, ordered by timestamp.
func (r *PunchRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.PunchRecord, error) {
	query := `SELECT ` + punchColumns + ` FROM pontos WHERE ts >= $1 AND ts < $2 ORDER BY ts`

	rows, err := r.DB.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPunches(rows)
}

func scanPunches(rows *sql.Rows) ([]model.PunchRecord, error) {
	var out []model.PunchRecord
	for rows.Next() {
		var rec model.PunchRecord
		var photo, signature, admin sql.NullString
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Kind, &rec.Timestamp,
			&photo, &signature, &admin, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.PhotoRef = photo.String
		rec.SignatureRef = signature.String
		rec.ResponsibleAdmin = admin.String
		out = append(out, rec)
	}
	return out, rows.Err()
}
