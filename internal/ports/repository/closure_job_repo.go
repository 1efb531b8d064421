package repository

import (
	"context"
	"database/sql"

	"ponto.service/internal/core/model"
)

// ClosureJobRepository is the PostgreSQL implementation of ClosureJobStore.
type ClosureJobRepository struct {
	DB *sql.DB
}

func NewClosureJobRepository(db *sql.DB) *ClosureJobRepository {
	return &ClosureJobRepository{DB: db}
}

// Create inserts a job in its initial state. A pair can only close once, but
// the insert tolerates replays of the same closure.
func (r *ClosureJobRepository) Create(ctx context.Context, job model.ClosureJob) error {
	query := `INSERT INTO closure_jobs (entrada_id, employee_id, closure_status, closure_retry_count, email_status, email_retry_count)
              VALUES ($1, $2, $3, 0, $4, 0)
              ON CONFLICT (entrada_id) DO NOTHING`

	_, err := r.DB.ExecContext(ctx, query,
		job.EntradaID, job.EmployeeID, job.ClosureStatus, job.EmailStatus)
	return err
}

// Get fetches a job by its entrada punch ID, or nil when none exists.
func (r *ClosureJobRepository) Get(ctx context.Context, entradaID string) (*model.ClosureJob, error) {
	query := `SELECT entrada_id, employee_id, closure_status, closure_retry_count, email_status, email_retry_count
              FROM closure_jobs WHERE entrada_id = $1`

	var job model.ClosureJob
	err := r.DB.QueryRowContext(ctx, query, entradaID).Scan(
		&job.EntradaID, &job.EmployeeID,
		&job.ClosureStatus, &job.ClosureRetryCount,
		&job.EmailStatus, &job.EmailRetryCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// UpdateClosureStatus updates the payroll-propagation status and retry count.
func (r *ClosureJobRepository) UpdateClosureStatus(ctx context.Context, entradaID string, status model.ClosureStatus, retryCount int) error {
	query := `UPDATE closure_jobs SET closure_status = $1, closure_retry_count = $2 WHERE entrada_id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, entradaID)
	return err
}

// UpdateEmailStatus updates the notification status and retry count.
func (r *ClosureJobRepository) UpdateEmailStatus(ctx context.Context, entradaID string, status model.EmailStatus, retryCount int) error {
	query := `UPDATE closure_jobs SET email_status = $1, email_retry_count = $2 WHERE entrada_id = $3`
	_, err := r.DB.ExecContext(ctx, query, status, retryCount, entradaID)
	return err
}
