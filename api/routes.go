package api

import (
	"log"
	"net/http"

	"OrcaBI/api/constants"
	"OrcaBI/internal/logger"

	"github.com/gorilla/mux"
)

// HealthPath is served without authorization.
const HealthPath = "/health"

// NewRouter returns a router with auditing and authorization applied to
// every route registered on it.
func NewRouter(authz Authorizer) *mux.Router {
	router := mux.NewRouter()
	router.Use(AuditMiddleware, RequireAuth(authz, HealthPath))

	router.HandleFunc(HealthPath, HealthHandler).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(notFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RespondWithError(w, http.StatusMethodNotAllowed, constants.ErrMethodNotAllowed)
	})
	return router
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]interface{}{"status": "ok"})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	msg := "[HTTP][ERROR] " + r.URL.Path + " from " + extractClientIP(r) + " (route not found)"
	if logr := logger.GlobalLogger; logr != nil {
		logr.LogAudit(msg)
	} else {
		log.Println(msg)
	}
	RespondWithJSON(w, http.StatusNotFound, map[string]interface{}{constants.ValueDetail: constants.ErrRouteNotFound})
}
