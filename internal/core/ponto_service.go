package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ponto.service/internal/core/model"
	"ponto.service/internal/core/reconcile"
	"ponto.service/internal/ports/messaging"
	"ponto.service/internal/ports/repository"
)

// PontoService orchestrates punch submission, the pending-exit gate and the
// administrative override. It holds no state of its own; every derived view
// is recomputed from the punch store on each call.
type PontoService struct {
	punches  repository.PunchStore
	payments repository.PaymentStore
	jobs     repository.ClosureJobStore
	producer messaging.QueueProducer
	loc      *time.Location
	lookback time.Duration
	now      func() time.Time
}

// NewPontoService wires the punch workflow service. lookbackDays bounds how
// far back pending-exit scans reach.
func NewPontoService(
	punches repository.PunchStore,
	payments repository.PaymentStore,
	jobs repository.ClosureJobStore,
	producer messaging.QueueProducer,
	loc *time.Location,
	lookbackDays int,
) *PontoService {
	return &PontoService{
		punches:  punches,
		payments: payments,
		jobs:     jobs,
		producer: producer,
		loc:      loc,
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		now:      time.Now,
	}
}

// SubmitPunchInput carries a punch submission. Evidence references come from
// the evidence store; the service never sees blob content.
type SubmitPunchInput struct {
	EmployeeID   string
	Kind         model.PunchKind
	PhotoRef     string
	SignatureRef string
}

// SubmitPunch records a punch for the employee at the current instant. An
// entrada first passes the pending-exit gate and is then inserted through the
// store's conditional append, so a concurrent submission cannot sneak a
// second entrada past a still-open prior day.
func (s *PontoService) SubmitPunch(ctx context.Context, in SubmitPunchInput) (*model.PunchRecord, error) {
	if in.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", model.ErrValidation)
	}
	if !in.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown punch kind %q", model.ErrValidation, in.Kind)
	}
	if in.PhotoRef == "" || in.SignatureRef == "" {
		return nil, fmt.Errorf("%w: photo and signature are required", model.ErrValidation)
	}

	now := s.now().UTC()
	today := model.BusinessDayOf(now, s.loc)

	stored, err := s.punches.ListByEmployee(ctx, in.EmployeeID)
	if err != nil {
		return nil, unavailable("list punches", err)
	}
	pairs := reconcile.PairsForEmployee(stored, s.loc)

	rec := model.PunchRecord{
		ID:           uuid.NewString(),
		EmployeeID:   in.EmployeeID,
		Kind:         in.Kind,
		Timestamp:    now,
		PhotoRef:     in.PhotoRef,
		SignatureRef: in.SignatureRef,
		CreatedAt:    now,
	}

	if in.Kind == model.KindEntrada {
		// The gate only looks back over the pending-exit window, matching
		// what /pontos/pendentes surfaces: an open pair admins can no longer
		// see must not block forever.
		windowStart := now.Add(-s.lookback)
		windowPairs := reconcile.PairsForEmployee(punchesSince(stored, windowStart), s.loc)
		if pe := reconcile.FindPendingExit(windowPairs, today); pe != nil {
			return nil, fmt.Errorf("%w: open pair since %s", model.ErrBlockedEntrada, pe.Day)
		}
		inserted, err := s.punches.AppendEntradaIf(ctx, rec, today, windowStart)
		if err != nil {
			return nil, unavailable("append entrada", err)
		}
		if !inserted {
			return nil, model.ErrConcurrentEntrada
		}
		return &rec, nil
	}

	if err := s.punches.Append(ctx, rec); err != nil {
		return nil, unavailable("append saida", err)
	}

	// A saida only closes today's own pair. Older open pairs stay open until
	// an administrator resolves them.
	for _, pair := range pairs {
		if pair.Day == today && pair.Open() {
			s.notifyPairClosed(ctx, *pair.Entrada, rec, model.StatusEmailCompleted)
			break
		}
	}

	return &rec, nil
}

// RegisterAdministrativeExit closes the employee's earliest open pair with a
// synthesized saida carrying the responsible admin and no evidence. Repeating
// the call after success fails with ErrConflict since no open pair remains.
func (s *PontoService) RegisterAdministrativeExit(ctx context.Context, employeeID string, effectiveAt time.Time, responsibleAdmin string) (*model.PunchRecord, error) {
	if employeeID == "" || responsibleAdmin == "" {
		return nil, fmt.Errorf("%w: employee id and responsible admin are required", model.ErrValidation)
	}
	if effectiveAt.IsZero() {
		return nil, fmt.Errorf("%w: effective timestamp is required", model.ErrValidation)
	}

	stored, err := s.punches.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, unavailable("list punches", err)
	}

	open := reconcile.OpenPairs(reconcile.PairsForEmployee(stored, s.loc))
	if len(open) == 0 {
		return nil, model.ErrConflict
	}
	target := open[0]

	if effectiveAt.Before(target.Entrada.Timestamp) {
		return nil, fmt.Errorf("%w: effective %s is before entrada %s",
			model.ErrInvalidTimestamp, effectiveAt.Format(time.RFC3339), target.Entrada.Timestamp.Format(time.RFC3339))
	}
	// The saida must land on the target pair's own business day, or the
	// aggregator buckets it elsewhere and the pair stays open.
	if day := model.BusinessDayOf(effectiveAt, s.loc); day != target.Day {
		return nil, fmt.Errorf("%w: effective day %s does not match the open pair's day %s",
			model.ErrInvalidTimestamp, day, target.Day)
	}

	rec := model.PunchRecord{
		ID:               uuid.NewString(),
		EmployeeID:       employeeID,
		Kind:             model.KindSaida,
		Timestamp:        effectiveAt.UTC(),
		ResponsibleAdmin: responsibleAdmin,
		CreatedAt:        s.now().UTC(),
	}

	if err := s.punches.Append(ctx, rec); err != nil {
		return nil, unavailable("append administrative saida", err)
	}

	s.notifyPairClosed(ctx, *target.Entrada, rec, model.StatusEmailPending)

	ev := messaging.AdminExitEvent{
		EntradaID:        target.Entrada.ID,
		EmployeeID:       employeeID,
		ResponsibleAdmin: responsibleAdmin,
		EffectiveAt:      rec.Timestamp,
		OccurredAt:       s.now().UTC(),
	}
	if err := s.producer.PublishAdminExit(ctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("employee_id", employeeID).Msg("Failed to publish admin-exit event")
	}

	return &rec, nil
}

// GetDailyReport returns every pair on a business day with its payment, the
// data behind the verification panel and the payment screen.
func (s *PontoService) GetDailyReport(ctx context.Context, day model.BusinessDay) ([]model.DailyReportEntry, error) {
	start := day.Start(s.loc)
	end := day.Next().Start(s.loc)

	punches, err := s.punches.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, unavailable("list punches by date", err)
	}

	var entries []model.DailyReportEntry
	for _, pair := range reconcile.GroupByEmployeeAndDay(punches, s.loc) {
		entry := model.DailyReportEntry{Pair: pair}
		if pair.Entrada != nil {
			payment, err := s.payments.FindByReference(ctx, pair.Entrada.ID)
			if err != nil {
				return nil, unavailable("find payment", err)
			}
			entry.Payment = payment
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Pair.EmployeeID < entries[j].Pair.EmployeeID
	})
	return entries, nil
}

// GetPendingExits returns, per employee, the earliest prior-day open pair
// within the lookback window. Each one blocks that employee's next entrada.
func (s *PontoService) GetPendingExits(ctx context.Context) ([]model.PendingExit, error) {
	now := s.now()
	today := model.BusinessDayOf(now, s.loc)

	punches, err := s.punches.ListByDateRange(ctx, now.Add(-s.lookback), now)
	if err != nil {
		return nil, unavailable("list punches by date", err)
	}

	byEmployee := make(map[string][]model.DailyPunchPair)
	for _, pair := range reconcile.GroupByEmployeeAndDay(punches, s.loc) {
		byEmployee[pair.EmployeeID] = append(byEmployee[pair.EmployeeID], pair)
	}

	var pending []model.PendingExit
	for _, pairs := range byEmployee {
		if pe := reconcile.FindPendingExit(pairs, today); pe != nil {
			pending = append(pending, *pe)
		}
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].EmployeeID < pending[j].EmployeeID
	})
	return pending, nil
}

// GetOpenToday returns today's still-open pairs, for the verification panel's
// missing-saida listing.
func (s *PontoService) GetOpenToday(ctx context.Context) ([]model.DailyPunchPair, error) {
	today := model.BusinessDayOf(s.now(), s.loc)

	punches, err := s.punches.ListByDateRange(ctx, today.Start(s.loc), today.Next().Start(s.loc))
	if err != nil {
		return nil, unavailable("list punches by date", err)
	}

	var open []model.DailyPunchPair
	for _, pair := range reconcile.GroupByEmployeeAndDay(punches, s.loc) {
		if pair.Open() {
			open = append(open, pair)
		}
	}

	sort.Slice(open, func(i, j int) bool {
		return open[i].EmployeeID < open[j].EmployeeID
	})
	return open, nil
}

// notifyPairClosed records the closure job and publishes the pair-closed
// event. Both are best effort: the punch is already durable and the workers
// tolerate replays, so failures here are logged, not surfaced.
func (s *PontoService) notifyPairClosed(ctx context.Context, entrada, saida model.PunchRecord, emailStatus model.EmailStatus) {
	job := model.ClosureJob{
		EntradaID:     entrada.ID,
		EmployeeID:    entrada.EmployeeID,
		ClosureStatus: model.StatusClosurePending,
		EmailStatus:   emailStatus,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("entrada_id", entrada.ID).Msg("Failed to create closure job")
	}

	ev := messaging.PairClosedEvent{
		EntradaID:        entrada.ID,
		EmployeeID:       entrada.EmployeeID,
		ClockIn:          entrada.Timestamp,
		ClockOut:         saida.Timestamp,
		Administrative:   saida.Administrative(),
		ResponsibleAdmin: saida.ResponsibleAdmin,
	}
	if err := s.producer.PublishClosure(ctx, ev); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("entrada_id", entrada.ID).Msg("Failed to publish pair-closed event")
	}
}

func punchesSince(punches []model.PunchRecord, since time.Time) []model.PunchRecord {
	var out []model.PunchRecord
	for _, p := range punches {
		if !p.Timestamp.Before(since) {
			out = append(out, p)
		}
	}
	return out
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", model.ErrUnavailable, op, err)
}
