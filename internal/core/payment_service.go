package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"ponto.service/internal/core/model"
	"ponto.service/internal/core/reconcile"
	"ponto.service/internal/ports/repository"
)

// PaymentService matches wage payments to punch pairs. The entrada punch ID
// is the canonical pair reference; the store's unique constraint keeps the
// at-most-one-payment-per-pair rule honest under concurrent submissions.
type PaymentService struct {
	punches  repository.PunchStore
	payments repository.PaymentStore
	loc      *time.Location
	now      func() time.Time
}

func NewPaymentService(punches repository.PunchStore, payments repository.PaymentStore, loc *time.Location) *PaymentService {
	return &PaymentService{
		punches:  punches,
		payments: payments,
		loc:      loc,
		now:      time.Now,
	}
}

// RegisterPaymentInput carries a payment submission. ComprovanteRef is the
// evidence-store reference of the uploaded receipt.
type RegisterPaymentInput struct {
	EmployeeID     string
	PontoID        string
	ComprovanteRef string
}

// RegisterPayment attaches a payment to the punch pair referenced by its
// entrada. A second registration for the same pair fails with
// ErrDuplicatePayment no matter how the calls interleave.
func (s *PaymentService) RegisterPayment(ctx context.Context, in RegisterPaymentInput) (*model.PaymentRecord, error) {
	if in.EmployeeID == "" || in.PontoID == "" {
		return nil, fmt.Errorf("%w: employee id and ponto id are required", model.ErrValidation)
	}
	if in.ComprovanteRef == "" {
		return nil, model.ErrMissingEvidence
	}

	stored, err := s.punches.ListByEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, unavailable("list punches", err)
	}

	var ref *model.PunchRecord
	for i := range stored {
		if stored[i].ID == in.PontoID {
			ref = &stored[i]
			break
		}
	}
	if ref == nil {
		return nil, fmt.Errorf("%w: ponto %s not found for employee %s", model.ErrValidation, in.PontoID, in.EmployeeID)
	}
	if ref.Kind != model.KindEntrada {
		return nil, fmt.Errorf("%w: payments reference the pair's entrada, got a %s", model.ErrValidation, ref.Kind)
	}

	rec := model.PaymentRecord{
		ID:             uuid.NewString(),
		EmployeeID:     in.EmployeeID,
		PontoID:        in.PontoID,
		ComprovanteRef: in.ComprovanteRef,
		CreatedAt:      s.now().UTC(),
	}

	if err := s.payments.InsertIfAbsent(ctx, rec); err != nil {
		if errors.Is(err, model.ErrDuplicatePayment) {
			return nil, err
		}
		return nil, unavailable("insert payment", err)
	}
	return &rec, nil
}

// PaymentFor returns the payment registered for a pair, or nil.
func (s *PaymentService) PaymentFor(ctx context.Context, pontoID string) (*model.PaymentRecord, error) {
	payment, err := s.payments.FindByReference(ctx, pontoID)
	if err != nil {
		return nil, unavailable("find payment", err)
	}
	return payment, nil
}

// ListByEmployee returns an employee's payments.
func (s *PaymentService) ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error) {
	if employeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", model.ErrValidation)
	}
	payments, err := s.payments.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, unavailable("list payments", err)
	}
	return payments, nil
}

// GetPendingPayments returns, per employee and day in the range, the pairs
// that have an entrada, annotated with their payment when one exists. Rows
// with a nil payment feed the pending-payments export.
func (s *PaymentService) GetPendingPayments(ctx context.Context, from, to model.BusinessDay) ([]model.DailyReportEntry, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end %s before start %s", model.ErrValidation, to, from)
	}

	punches, err := s.punches.ListByDateRange(ctx, from.Start(s.loc), to.Next().Start(s.loc))
	if err != nil {
		return nil, unavailable("list punches by date", err)
	}

	var entries []model.DailyReportEntry
	for _, pair := range reconcile.GroupByEmployeeAndDay(punches, s.loc) {
		if pair.Entrada == nil {
			continue
		}
		payment, err := s.payments.FindByReference(ctx, pair.Entrada.ID)
		if err != nil {
			return nil, unavailable("find payment", err)
		}
		entries = append(entries, model.DailyReportEntry{Pair: pair, Payment: payment})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Pair.Day != entries[j].Pair.Day {
			return entries[i].Pair.Day.Before(entries[j].Pair.Day)
		}
		return entries[i].Pair.EmployeeID < entries[j].Pair.EmployeeID
	})
	return entries, nil
}
