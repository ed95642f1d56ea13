package handlers

import (
	"net/http"

	"github.com/josearcagni/cmcwebapp/internal/middleware"
	"github.com/josearcagni/cmcwebapp/internal/models"
)

// listWarnings runs a warning scan over the records visible to the actor and
// dispatches one alert mail per warning, fire-and-forget. A delivery failure
// never aborts the scan or the response.
func (r *Router) listWarnings(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	warnings := r.rules.ScanWarnings(records, actor)
	if kinds := req.URL.Query()["kind"]; len(kinds) > 0 {
		warnings = filterWarnings(warnings, kinds)
	}

	recipient := recipientFor(actor)
	dispatched := 0
	for _, warning := range warnings {
		if r.dispatcher.Notify(recipient, warning.Subject, warning.Body) {
			dispatched++
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"warnings":   warnings,
		"dispatched": dispatched,
	})
}

func filterWarnings(warnings []models.Warning, kinds []string) []models.Warning {
	var out []models.Warning
	for _, warning := range warnings {
		if containsString(kinds, string(warning.Kind)) {
			out = append(out, warning)
		}
	}
	return out
}

// recipientFor resolves where an actor's alerts go
func recipientFor(actor *models.Actor) string {
	if actor.Email != "" {
		return actor.Email
	}
	if actor.Username != "" {
		return actor.Username
	}
	return "admin@localhost"
}
