package repository

import (
	"context"
	"time"

	"ponto.service/internal/core/model"
)

// PunchStore is the gateway to the append-only punch log. Implementations
// must never update or delete rows; the log is the audit trail.
type PunchStore interface {
	// Append stores a punch record unconditionally.
	Append(ctx context.Context, rec model.PunchRecord) error

	// AppendEntradaIf stores an entrada only if the employee has no open pair
	// on a business day before today, considering punches from since onward.
	// The check and the insert run as one statement so two concurrent
	// entradas cannot both slip past the gate. Returns false, without error,
	// when the condition failed.
	AppendEntradaIf(ctx context.Context, rec model.PunchRecord, today model.BusinessDay, since time.Time) (bool, error)

	ListByEmployee(ctx context.Context, employeeID string) ([]model.PunchRecord, error)

	// ListByDateRange returns punches with start <= timestamp < end.
	ListByDateRange(ctx context.Context, start, end time.Time) ([]model.PunchRecord, error)
}

// PaymentStore is the gateway to payment records. The at-most-one-payment-
// per-pair invariant is enforced here, not in the engine: InsertIfAbsent must
// be atomic with respect to concurrent calls for the same ponto reference.
type PaymentStore interface {
	// InsertIfAbsent stores the payment, returning model.ErrDuplicatePayment
	// when one already exists for rec.PontoID.
	InsertIfAbsent(ctx context.Context, rec model.PaymentRecord) error

	ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error)

	// FindByReference returns the payment for a pair's entrada punch ID, or
	// nil when none exists.
	FindByReference(ctx context.Context, pontoID string) (*model.PaymentRecord, error)
}

// ClosureJobStore tracks downstream processing of closed pairs. Jobs are
// keyed by the entrada punch ID so punch records themselves stay immutable.
type ClosureJobStore interface {
	Create(ctx context.Context, job model.ClosureJob) error
	Get(ctx context.Context, entradaID string) (*model.ClosureJob, error)
	UpdateClosureStatus(ctx context.Context, entradaID string, status model.ClosureStatus, retryCount int) error
	UpdateEmailStatus(ctx context.Context, entradaID string, status model.EmailStatus, retryCount int) error
}
