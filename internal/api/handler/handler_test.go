package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto.service/internal/core"
	"ponto.service/internal/core/model"
)

type fakePontoService struct {
	submitFunc    func(ctx context.Context, in core.SubmitPunchInput) (*model.PunchRecord, error)
	adminExitFunc func(ctx context.Context, employeeID string, effectiveAt time.Time, admin string) (*model.PunchRecord, error)
	reportFunc    func(ctx context.Context, day model.BusinessDay) ([]model.DailyReportEntry, error)
	pendingFunc   func(ctx context.Context) ([]model.PendingExit, error)
	openFunc      func(ctx context.Context) ([]model.DailyPunchPair, error)
}

func (f *fakePontoService) SubmitPunch(ctx context.Context, in core.SubmitPunchInput) (*model.PunchRecord, error) {
	return f.submitFunc(ctx, in)
}

func (f *fakePontoService) RegisterAdministrativeExit(ctx context.Context, employeeID string, effectiveAt time.Time, admin string) (*model.PunchRecord, error) {
	return f.adminExitFunc(ctx, employeeID, effectiveAt, admin)
}

func (f *fakePontoService) GetDailyReport(ctx context.Context, day model.BusinessDay) ([]model.DailyReportEntry, error) {
	return f.reportFunc(ctx, day)
}

func (f *fakePontoService) GetPendingExits(ctx context.Context) ([]model.PendingExit, error) {
	return f.pendingFunc(ctx)
}

func (f *fakePontoService) GetOpenToday(ctx context.Context) ([]model.DailyPunchPair, error) {
	return f.openFunc(ctx)
}

type fakePaymentService struct {
	registerFunc func(ctx context.Context, in core.RegisterPaymentInput) (*model.PaymentRecord, error)
	listFunc     func(ctx context.Context, employeeID string) ([]model.PaymentRecord, error)
	pendingFunc  func(ctx context.Context, from, to model.BusinessDay) ([]model.DailyReportEntry, error)
}

func (f *fakePaymentService) RegisterPayment(ctx context.Context, in core.RegisterPaymentInput) (*model.PaymentRecord, error) {
	return f.registerFunc(ctx, in)
}

func (f *fakePaymentService) ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error) {
	return f.listFunc(ctx, employeeID)
}

func (f *fakePaymentService) GetPendingPayments(ctx context.Context, from, to model.BusinessDay) ([]model.DailyReportEntry, error) {
	return f.pendingFunc(ctx, from, to)
}

type fakeEvidenceStore struct {
	puts []string
	err  error
}

func (f *fakeEvidenceStore) Put(_ context.Context, prefix string, data []byte, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := fmt.Sprintf("%s/obj-%d", prefix, len(f.puts))
	f.puts = append(f.puts, key)
	return key, nil
}

func newTestRouter(pontos *fakePontoService, payments *fakePaymentService, store *fakeEvidenceStore) *mux.Router {
	r := mux.NewRouter()
	punchHandler := PunchHandler{Service: pontos, Evidence: store, Loc: time.UTC}
	paymentHandler := PaymentHandler{Service: payments, Evidence: store}

	r.HandleFunc("/pontos", punchHandler.Submit).Methods(http.MethodPost)
	r.HandleFunc("/pontos/saida-administrativa", punchHandler.AdministrativeExit).Methods(http.MethodPost)
	r.HandleFunc("/pontos/por-data", punchHandler.ByDate).Methods(http.MethodGet)
	r.HandleFunc("/pontos/pendentes", punchHandler.PendingExits).Methods(http.MethodGet)
	r.HandleFunc("/pontos/abertos", punchHandler.OpenToday).Methods(http.MethodGet)
	r.HandleFunc("/pagamentos", paymentHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/pagamentos/funcionario/{id}", paymentHandler.ByEmployee).Methods(http.MethodGet)
	r.HandleFunc("/pagamentos/pendentes", paymentHandler.Pending).Methods(http.MethodGet)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for name, content := range files {
		part, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestSubmitPunch(t *testing.T) {
	var got core.SubmitPunchInput
	pontos := &fakePontoService{
		submitFunc: func(_ context.Context, in core.SubmitPunchInput) (*model.PunchRecord, error) {
			got = in
			return &model.PunchRecord{ID: "p-1", EmployeeID: in.EmployeeID, Kind: in.Kind}, nil
		},
	}
	store := &fakeEvidenceStore{}
	router := newTestRouter(pontos, &fakePaymentService{}, store)

	body, contentType := multipartBody(t,
		map[string]string{"funcionario_id": "emp-1", "tipo": "entrada"},
		map[string]string{"foto": "jpeg-bytes", "assinatura": "png-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/pontos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, model.KindEntrada, got.Kind)
	assert.Equal(t, "fotos/obj-0", got.PhotoRef)
	assert.Equal(t, "assinaturas/obj-1", got.SignatureRef)

	var rec model.PunchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	assert.Equal(t, "p-1", rec.ID)
}

func TestSubmitPunchMissingFields(t *testing.T) {
	router := newTestRouter(&fakePontoService{}, &fakePaymentService{}, &fakeEvidenceStore{})

	body, contentType := multipartBody(t,
		map[string]string{"tipo": "pausa"},
		map[string]string{"foto": "x", "assinatura": "y"},
	)
	req := httptest.NewRequest(http.MethodPost, "/pontos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitPunchErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: bad input", model.ErrValidation), http.StatusBadRequest},
		{"blocked entrada", fmt.Errorf("%w: open pair on 2024-01-10", model.ErrBlockedEntrada), http.StatusConflict},
		{"concurrent entrada", fmt.Errorf("%w: gate closed", model.ErrConcurrentEntrada), http.StatusConflict},
		{"unavailable", fmt.Errorf("%w: append: timeout", model.ErrUnavailable), http.StatusServiceUnavailable},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pontos := &fakePontoService{
				submitFunc: func(context.Context, core.SubmitPunchInput) (*model.PunchRecord, error) {
					return nil, tt.serviceErr
				},
			}
			router := newTestRouter(pontos, &fakePaymentService{}, &fakeEvidenceStore{})

			body, contentType := multipartBody(t,
				map[string]string{"funcionario_id": "emp-1", "tipo": "entrada"},
				map[string]string{"foto": "x", "assinatura": "y"},
			)
			req := httptest.NewRequest(http.MethodPost, "/pontos", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAdministrativeExit(t *testing.T) {
	var gotEmployee, gotAdmin string
	var gotAt time.Time
	pontos := &fakePontoService{
		adminExitFunc: func(_ context.Context, employeeID string, effectiveAt time.Time, admin string) (*model.PunchRecord, error) {
			gotEmployee, gotAt, gotAdmin = employeeID, effectiveAt, admin
			return &model.PunchRecord{ID: "s-1", EmployeeID: employeeID, Kind: model.KindSaida}, nil
		},
	}
	router := newTestRouter(pontos, &fakePaymentService{}, &fakeEvidenceStore{})

	payload := `{"funcionario_id":"emp-1","data_hora":"2024-01-10T17:30:00-03:00","responsavel":"admin-m"}`
	req := httptest.NewRequest(http.MethodPost, "/pontos/saida-administrativa", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "emp-1", gotEmployee)
	assert.Equal(t, "admin-m", gotAdmin)
	assert.Equal(t, 17, gotAt.Hour())
}

func TestAdministrativeExitInvalidTimestamp(t *testing.T) {
	pontos := &fakePontoService{
		adminExitFunc: func(context.Context, string, time.Time, string) (*model.PunchRecord, error) {
			return nil, fmt.Errorf("%w: before entrada", model.ErrInvalidTimestamp)
		},
	}
	router := newTestRouter(pontos, &fakePaymentService{}, &fakeEvidenceStore{})

	payload := `{"funcionario_id":"emp-1","data_hora":"2024-01-09T07:00:00-03:00","responsavel":"admin-m"}`
	req := httptest.NewRequest(http.MethodPost, "/pontos/saida-administrativa", bytes.NewBufferString(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestPunchesByDate(t *testing.T) {
	var gotDay model.BusinessDay
	pontos := &fakePontoService{
		reportFunc: func(_ context.Context, day model.BusinessDay) ([]model.DailyReportEntry, error) {
			gotDay = day
			return []model.DailyReportEntry{}, nil
		},
	}
	router := newTestRouter(pontos, &fakePaymentService{}, &fakeEvidenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/pontos/por-data?data=2024-01-10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.BusinessDay{Year: 2024, Month: 1, Day: 10}, gotDay)
}

func TestPunchesByDateBadQuery(t *testing.T) {
	router := newTestRouter(&fakePontoService{}, &fakePaymentService{}, &fakeEvidenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/pontos/por-data?data=10-01-2024", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPendingExits(t *testing.T) {
	pontos := &fakePontoService{
		pendingFunc: func(context.Context) ([]model.PendingExit, error) {
			return []model.PendingExit{{EmployeeID: "emp-1", Day: model.BusinessDay{Year: 2024, Month: 1, Day: 9}}}, nil
		},
	}
	router := newTestRouter(pontos, &fakePaymentService{}, &fakeEvidenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/pontos/pendentes", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var pending []model.PendingExit
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "emp-1", pending[0].EmployeeID)
}

func TestRegisterPayment(t *testing.T) {
	var got core.RegisterPaymentInput
	payments := &fakePaymentService{
		registerFunc: func(_ context.Context, in core.RegisterPaymentInput) (*model.PaymentRecord, error) {
			got = in
			return &model.PaymentRecord{ID: "pay-1", EmployeeID: in.EmployeeID, PontoID: in.PontoID}, nil
		},
	}
	store := &fakeEvidenceStore{}
	router := newTestRouter(&fakePontoService{}, payments, store)

	body, contentType := multipartBody(t,
		map[string]string{"funcionario_id": "emp-1", "ponto_id": "p-1"},
		map[string]string{"comprovante": "pdf-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/pagamentos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "emp-1", got.EmployeeID)
	assert.Equal(t, "p-1", got.PontoID)
	assert.Equal(t, "comprovantes/obj-0", got.ComprovanteRef)
}

func TestRegisterPaymentDuplicate(t *testing.T) {
	payments := &fakePaymentService{
		registerFunc: func(context.Context, core.RegisterPaymentInput) (*model.PaymentRecord, error) {
			return nil, fmt.Errorf("%w: ponto p-1", model.ErrDuplicatePayment)
		},
	}
	router := newTestRouter(&fakePontoService{}, payments, &fakeEvidenceStore{})

	body, contentType := multipartBody(t,
		map[string]string{"funcionario_id": "emp-1", "ponto_id": "p-1"},
		map[string]string{"comprovante": "pdf-bytes"},
	)
	req := httptest.NewRequest(http.MethodPost, "/pagamentos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegisterPaymentMissingComprovante(t *testing.T) {
	router := newTestRouter(&fakePontoService{}, &fakePaymentService{}, &fakeEvidenceStore{})

	body, contentType := multipartBody(t,
		map[string]string{"funcionario_id": "emp-1", "ponto_id": "p-1"},
		nil,
	)
	req := httptest.NewRequest(http.MethodPost, "/pagamentos", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentsByEmployee(t *testing.T) {
	payments := &fakePaymentService{
		listFunc: func(_ context.Context, employeeID string) ([]model.PaymentRecord, error) {
			return []model.PaymentRecord{{ID: "pay-1", EmployeeID: employeeID}}, nil
		},
	}
	router := newTestRouter(&fakePontoService{}, payments, &fakeEvidenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/pagamentos/funcionario/emp-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var list []model.PaymentRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "emp-1", list[0].EmployeeID)
}

func TestPendingPayments(t *testing.T) {
	var gotFrom, gotTo model.BusinessDay
	payments := &fakePaymentService{
		pendingFunc: func(_ context.Context, from, to model.BusinessDay) ([]model.DailyReportEntry, error) {
			gotFrom, gotTo = from, to
			return []model.DailyReportEntry{}, nil
		},
	}
	router := newTestRouter(&fakePontoService{}, payments, &fakeEvidenceStore{})

	req := httptest.NewRequest(http.MethodGet, "/pagamentos/pendentes?inicio=2024-01-01&fim=2024-01-31", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.BusinessDay{Year: 2024, Month: 1, Day: 1}, gotFrom)
	assert.Equal(t, model.BusinessDay{Year: 2024, Month: 1, Day: 31}, gotTo)
}
