package core

import (
	"context"
	"sync"
	"time"

	"ponto.service/internal/core/model"
	"ponto.service/internal/core/reconcile"
)

// In-memory stores implementing the repository ports, with the same atomicity
// guarantees the PostgreSQL implementations give: the entrada gate re-checks
// under the store lock and payments insert-if-absent under the store lock.

type fakePunchStore struct {
	mu      sync.Mutex
	loc     *time.Location
	punches []model.PunchRecord

	appendErr error
	listErr   error
	denyGate  bool
}

func newFakePunchStore(loc *time.Location) *fakePunchStore {
	return &fakePunchStore{loc: loc}
}

func (f *fakePunchStore) Append(ctx context.Context, rec model.PunchRecord) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.punches = append(f.punches, rec)
	return nil
}

func (f *fakePunchStore) AppendEntradaIf(ctx context.Context, rec model.PunchRecord, today model.BusinessDay, since time.Time) (bool, error) {
	if f.appendErr != nil {
		return false, f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyGate {
		return false, nil
	}
	var own []model.PunchRecord
	for _, p := range f.punches {
		if p.EmployeeID == rec.EmployeeID && !p.Timestamp.Before(since) {
			own = append(own, p)
		}
	}
	pairs := reconcile.PairsForEmployee(own, f.loc)
	if reconcile.FindPendingExit(pairs, today) != nil {
		return false, nil
	}
	f.punches = append(f.punches, rec)
	return true, nil
}

func (f *fakePunchStore) ListByEmployee(ctx context.Context, employeeID string) ([]model.PunchRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PunchRecord
	for _, p := range f.punches {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePunchStore) ListByDateRange(ctx context.Context, start, end time.Time) ([]model.PunchRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PunchRecord
	for _, p := range f.punches {
		if !p.Timestamp.Before(start) && p.Timestamp.Before(end) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakePaymentStore struct {
	mu     sync.Mutex
	byRef  map[string]model.PaymentRecord
	insErr error
}

func newFakePaymentStore() *fakePaymentStore {
	return &fakePaymentStore{byRef: make(map[string]model.PaymentRecord)}
}

func (f *fakePaymentStore) InsertIfAbsent(ctx context.Context, rec model.PaymentRecord) error {
	if f.insErr != nil {
		return f.insErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byRef[rec.PontoID]; ok {
		return model.ErrDuplicatePayment
	}
	f.byRef[rec.PontoID] = rec
	return nil
}

func (f *fakePaymentStore) ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.PaymentRecord
	for _, p := range f.byRef {
		if p.EmployeeID == employeeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePaymentStore) FindByReference(ctx context.Context, pontoID string) (*model.PaymentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.byRef[pontoID]; ok {
		return &rec, nil
	}
	return nil, nil
}

type fakeJobStore struct {
	mu      sync.Mutex
	created []model.ClosureJob
}

func (f *fakeJobStore) Create(ctx context.Context, job model.ClosureJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, job)
	return nil
}

func (f *fakeJobStore) Get(ctx context.Context, entradaID string) (*model.ClosureJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.created {
		if f.created[i].EntradaID == entradaID {
			return &f.created[i], nil
		}
	}
	return nil, nil
}

func (f *fakeJobStore) UpdateClosureStatus(ctx context.Context, entradaID string, status model.ClosureStatus, retryCount int) error {
	return nil
}

func (f *fakeJobStore) UpdateEmailStatus(ctx context.Context, entradaID string, status model.EmailStatus, retryCount int) error {
	return nil
}

type fakeProducer struct {
	mu         sync.Mutex
	closures   []interface{}
	adminExits []interface{}
	publishErr error
}

func (f *fakeProducer) PublishClosure(ctx context.Context, body interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closures = append(f.closures, body)
	return nil
}

func (f *fakeProducer) PublishAdminExit(ctx context.Context, body interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.adminExits = append(f.adminExits, body)
	return nil
}
