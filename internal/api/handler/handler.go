package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"ponto.service/internal/core"
	"ponto.service/internal/core/model"
	"ponto.service/internal/ports/evidence"
)

// maxUploadBytes bounds punch and payment multipart bodies.
const maxUploadBytes = 10 << 20

// PontoService is the punch-side surface the handlers need.
type PontoService interface {
	SubmitPunch(ctx context.Context, in core.SubmitPunchInput) (*model.PunchRecord, error)
	RegisterAdministrativeExit(ctx context.Context, employeeID string, effectiveAt time.Time, responsibleAdmin string) (*model.PunchRecord, error)
	GetDailyReport(ctx context.Context, day model.BusinessDay) ([]model.DailyReportEntry, error)
	GetPendingExits(ctx context.Context) ([]model.PendingExit, error)
	GetOpenToday(ctx context.Context) ([]model.DailyPunchPair, error)
}

// PunchHandler serves the punch registration and report endpoints.
type PunchHandler struct {
	Service  PontoService
	Evidence evidence.Store
	Loc      *time.Location
}

// Submit handles POST /pontos. The front end sends a multipart form with
// funcionario_id, tipo and the foto/assinatura captures; both blobs go to the
// evidence store before the punch is submitted.
func (h *PunchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}

	employeeID := r.FormValue("funcionario_id")
	kind := model.PunchKind(r.FormValue("tipo"))
	if employeeID == "" || !kind.Valid() {
		http.Error(w, "funcionario_id and tipo are required", http.StatusBadRequest)
		return
	}

	photoRef, err := uploadFormFile(r, h.Evidence, "foto", "fotos")
	if err != nil {
		http.Error(w, "foto upload failed", http.StatusBadRequest)
		return
	}
	signatureRef, err := uploadFormFile(r, h.Evidence, "assinatura", "assinaturas")
	if err != nil {
		http.Error(w, "assinatura upload failed", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.SubmitPunch(r.Context(), core.SubmitPunchInput{
		EmployeeID:   employeeID,
		Kind:         kind,
		PhotoRef:     photoRef,
		SignatureRef: signatureRef,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// AdministrativeExitRequest is the JSON body for the override endpoint.
type AdministrativeExitRequest struct {
	EmployeeID       string    `json:"funcionario_id"`
	EffectiveAt      time.Time `json:"data_hora"`
	ResponsibleAdmin string    `json:"responsavel"`
}

// AdministrativeExit handles POST /pontos/saida-administrativa.
func (h *PunchHandler) AdministrativeExit(w http.ResponseWriter, r *http.Request) {
	var req AdministrativeExitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.Service.RegisterAdministrativeExit(r.Context(), req.EmployeeID, req.EffectiveAt, req.ResponsibleAdmin)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// ByDate handles GET /pontos/por-data?data=YYYY-MM-DD.
func (h *PunchHandler) ByDate(w http.ResponseWriter, r *http.Request) {
	day, err := model.ParseBusinessDay(r.URL.Query().Get("data"))
	if err != nil {
		http.Error(w, "data must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	entries, err := h.Service.GetDailyReport(r.Context(), day)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// Today handles GET /pontos/hoje.
func (h *PunchHandler) Today(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.GetDailyReport(r.Context(), model.BusinessDayOf(time.Now(), h.Loc))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// PendingExits handles GET /pontos/pendentes.
func (h *PunchHandler) PendingExits(w http.ResponseWriter, r *http.Request) {
	pending, err := h.Service.GetPendingExits(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, pending)
}

// OpenToday handles GET /pontos/abertos: pairs still missing today's saida.
func (h *PunchHandler) OpenToday(w http.ResponseWriter, r *http.Request) {
	open, err := h.Service.GetOpenToday(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	respondJSON(w, http.StatusOK, open)
}

func uploadFormFile(r *http.Request, store evidence.Store, field, prefix string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	return store.Put(r.Context(), prefix, data, header.Header.Get("Content-Type"))
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError translates the domain taxonomy into HTTP statuses. Business-rule
// rejections keep their message; infrastructure faults get a generic body and
// a log line.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrMissingEvidence):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, model.ErrInvalidTimestamp):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, model.ErrBlockedEntrada),
		errors.Is(err, model.ErrConflict),
		errors.Is(err, model.ErrDuplicatePayment),
		errors.Is(err, model.ErrConcurrentEntrada):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, model.ErrUnavailable):
		log.Ctx(ctx).Error().Err(err).Msg("Store unavailable")
		http.Error(w, "Service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		log.Ctx(ctx).Error().Err(err).Msg("Unhandled service error")
		http.Error(w, "Service error processing request", http.StatusInternalServerError)
	}
}
