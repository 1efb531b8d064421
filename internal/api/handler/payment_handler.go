package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"ponto.service/internal/core"
	"ponto.service/internal/core/model"
	"ponto.service/internal/ports/evidence"
)

// PaymentService is the payment-side surface the handlers need.
type PaymentService interface {
	RegisterPayment(ctx context.Context, in core.RegisterPaymentInput) (*model.PaymentRecord, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.PaymentRecord, error)
	GetPendingPayments(ctx context.Context, from, to model.BusinessDay) ([]model.DailyReportEntry, error)
}

// PaymentHandler serves the payment registration and report endpoints.
type PaymentHandler struct {
	Service  PaymentService
	Evidence evidence.Store
}

// Register handles POST /pagamentos. The comprovante scan comes in the
// multipart form and is stored before the payment row is written.
func (h *PaymentHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	employeeID := r.FormValue("funcionario_id")
	pontoID := r.FormValue("ponto_id")
	if employeeID == "" || pontoID == "" {
		http.Error(w, "funcionario_id and ponto_id are required", http.StatusBadRequest)
		return
	}

	comprovanteRef, err := uploadFormFile(r, h.Evidence, "comprovante", "comprovantes")
	if err != nil {
		http.Error(w, "comprovante upload failed", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.RegisterPayment(r.Context(), core.RegisterPaymentInput{
		EmployeeID:     employeeID,
		PontoID:        pontoID,
		ComprovanteRef: comprovanteRef,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// ByEmployee handles GET /pagamentos/funcionario/{id}.
func (h *PaymentHandler) ByEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID := mux.Vars(r)["id"]

	payments, err := h.Service.ListByEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, payments)
}

// Pending handles GET /pagamentos/pendentes?inicio=YYYY-MM-DD&fim=YYYY-MM-DD.
func (h *PaymentHandler) Pending(w http.ResponseWriter, r *http.Request) {
	from, err := model.ParseBusinessDay(r.URL.Query().Get("inicio"))
	if err != nil {
		http.Error(w, "inicio must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := model.ParseBusinessDay(r.URL.Query().Get("fim"))
	if err != nil {
		http.Error(w, "fim must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := h.Service.GetPendingPayments(r.Context(), from, to)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
