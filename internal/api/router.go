package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ponto.service/internal/api/handler"
	"ponto.service/internal/ports/evidence"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(pontos handler.PontoService, payments handler.PaymentService, store evidence.Store, loc *time.Location) *mux.Router {

	punchHandler := handler.PunchHandler{
		Service:  pontos,
		Evidence: store,
		Loc:      loc,
	}
	paymentHandler := handler.PaymentHandler{
		Service:  payments,
		Evidence: store,
	}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/pontos", punchHandler.Submit).Methods(http.MethodPost)
	api.HandleFunc("/pontos/saida-administrativa", punchHandler.AdministrativeExit).Methods(http.MethodPost)
	api.HandleFunc("/pontos/hoje", punchHandler.Today).Methods(http.MethodGet)
	api.HandleFunc("/pontos/por-data", punchHandler.ByDate).Methods(http.MethodGet)
	api.HandleFunc("/pontos/pendentes", punchHandler.PendingExits).Methods(http.MethodGet)
	api.HandleFunc("/pontos/abertos", punchHandler.OpenToday).Methods(http.MethodGet)

	api.HandleFunc("/pagamentos", paymentHandler.Register).Methods(http.MethodPost)
	api.HandleFunc("/pagamentos/funcionario/{id}", paymentHandler.ByEmployee).Methods(http.MethodGet)
	api.HandleFunc("/pagamentos/pendentes", paymentHandler.Pending).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
