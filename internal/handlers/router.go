package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/josearcagni/cmcwebapp/internal/buildinfo"
	"github.com/josearcagni/cmcwebapp/internal/config"
	"github.com/josearcagni/cmcwebapp/internal/identity"
	"github.com/josearcagni/cmcwebapp/internal/middleware"
	"github.com/josearcagni/cmcwebapp/internal/notify"
	"github.com/josearcagni/cmcwebapp/internal/registry"
	"github.com/josearcagni/cmcwebapp/internal/rules"
)

// Router wraps the mux router and the service components
type Router struct {
	*mux.Router
	cfg        *config.Config
	registry   *registry.Registry
	rules      *rules.Engine
	dispatcher *notify.Dispatcher
	directory  *identity.Directory
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(cfg *config.Config, reg *registry.Registry, engine *rules.Engine,
	dispatcher *notify.Dispatcher, directory *identity.Directory) *Router {
	// Pump IDs may embed slashes (date-bearing IDs like "PX-01 - 05/01/2020"),
	// so path variables must be matched against the encoded path and
	// unescaped in the handlers.
	r := &Router{
		Router:     mux.NewRouter().UseEncodedPath(),
		cfg:        cfg,
		registry:   reg,
		rules:      engine,
		dispatcher: dispatcher,
		directory:  directory,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))
	api.HandleFunc("/pumps", r.listPumps).Methods("GET")
	api.HandleFunc("/pumps", r.addPump).Methods("POST")
	api.HandleFunc("/pumps/{id}", r.getPump).Methods("GET")
	api.HandleFunc("/pumps/{id}", r.updatePump).Methods("PUT")
	api.HandleFunc("/pumps/{id}/label.png", r.pumpLabel).Methods("GET")
	api.HandleFunc("/warnings", r.listWarnings).Methods("GET")
	api.HandleFunc("/analytics/sales", r.salesAnalytics).Methods("GET")
	api.HandleFunc("/reports/warnings.pdf", r.warningsReport).Methods("GET")
	api.HandleFunc("/admin/recompute-expiries", r.recomputeExpiries).Methods("POST")

	// Static dashboard frontend
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.FrontendDir)))

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"started": buildinfo.StartTime,
		"commit":  buildinfo.CommitHash,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
