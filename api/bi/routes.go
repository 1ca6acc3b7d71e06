package bi

import (
	"net/http"

	"OrcaBI/api"
	"OrcaBI/internal/dashboard"
	"OrcaBI/internal/metrics"
	"OrcaBI/internal/starschema"

	"github.com/gorilla/mux"
)

// emptyIfNil keeps empty collections encoding as [] rather than null.
func emptyIfNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// NewRouter wires every BI endpoint behind authz.
func NewRouter(store *starschema.Store, events *dashboard.SSEServer, authz api.Authorizer, maxUpload int64) *mux.Router {
	router := api.NewRouter(authz)
	engine := metrics.NewEngine(store)

	router.HandleFunc("/upload-raw-excel", UploadRawExcel(store, maxUpload)).Methods(http.MethodPost)
	router.HandleFunc("/metrics", GetMetrics(engine)).Methods(http.MethodGet)
	router.HandleFunc("/metrics/export", ExportMetrics(engine)).Methods(http.MethodGet)

	router.HandleFunc("/get-fato-orcamento", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Budget)
	})).Methods(http.MethodGet)
	router.HandleFunc("/get-fato-realizado", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Realized)
	})).Methods(http.MethodGet)
	router.HandleFunc("/get-d-calendario", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Calendar)
	})).Methods(http.MethodGet)
	router.HandleFunc("/get-d-estrutura", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Structure)
	})).Methods(http.MethodGet)
	router.HandleFunc("/get-d-conta", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Accounts)
	})).Methods(http.MethodGet)
	router.HandleFunc("/get-d-fornecedor", GetTable(store, func(s *starschema.Snapshot) interface{} {
		return emptyIfNil(s.Suppliers)
	})).Methods(http.MethodGet)

	router.HandleFunc("/debug-databases", DebugDatabases(store)).Methods(http.MethodGet)
	if events != nil {
		router.HandleFunc("/events", events.HandleSSE).Methods(http.MethodGet)
	}
	return router
}
