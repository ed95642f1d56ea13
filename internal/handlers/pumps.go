package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/josearcagni/cmcwebapp/internal/middleware"
	"github.com/josearcagni/cmcwebapp/internal/models"
	"github.com/josearcagni/cmcwebapp/internal/registry"
	"github.com/josearcagni/cmcwebapp/internal/rules"
)

// PumpRequest carries the editable fields of a pump record
type PumpRequest struct {
	ID           string `json:"id"`
	Client       string `json:"client"`
	Model        string `json:"model"`
	QuantitySold int    `json:"quantity_sold"`
	SerialNumber string `json:"serial_number"`
	Year         int    `json:"year"`
	Status       string `json:"status"`
	Expiry       string `json:"expiry"` // YYYY-MM-DD, empty to derive from the ID
	Patient      string `json:"patient"`
	Notes        string `json:"notes"`
}

// listPumps returns the records visible to the actor, narrowed by the
// optional facet filters (year, model, status and, for admins, client)
func (r *Router) listPumps(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	visible := filterByRole(records, actor)
	visible = applyFacets(visible, req.URL.Query(), actor.IsAdmin())
	respondJSON(w, http.StatusOK, map[string]interface{}{"pumps": visible})
}

// getPump returns one record by ID
func (r *Router) getPump(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	rec := findVisible(records, pumpID(req), actor)
	if rec == nil {
		respondError(w, http.StatusNotFound, "Pump not found")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// addPump creates a new record. Non-admin actors are scoped to their own
// client regardless of the submitted value.
func (r *Router) addPump(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	var body PumpRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if strings.TrimSpace(body.ID) == "" || strings.TrimSpace(body.Model) == "" {
		respondError(w, http.StatusBadRequest, "Pump ID and Model are required")
		return
	}

	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	now := time.Now()
	rec := recordFromRequest(&body)
	if !actor.IsAdmin() {
		rec.Client = actor.Client
	}
	if rec.Expiry == nil {
		if d, ok := registry.ParseIDDate(rec.ID); ok {
			e := d.AddDate(registry.ExpiryYears, 0, 0)
			rec.Expiry = &e
		} else {
			e := now.AddDate(registry.ExpiryYears, 0, 0)
			rec.Expiry = &e
		}
	}

	if err := r.rules.ValidateMutation(records, nil, &rec); err != nil {
		respondError(w, validationStatus(err), err.Error())
		return
	}
	rec.LastUpdated = now

	records = append(records, rec)
	if err := r.registry.Save(records); err != nil {
		respondError(w, http.StatusInternalServerError, "Could not save new pump")
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

// updatePump overwrites the editable fields of every row matching the ID,
// gated by the rule engine. Rejected mutations leave the stored table
// unchanged.
func (r *Router) updatePump(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	id := pumpID(req)

	var body PumpRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	before := findVisible(records, id, actor)
	if before == nil {
		respondError(w, http.StatusNotFound, "Pump not found")
		return
	}

	after := *before
	after.Client = body.Client
	after.Model = body.Model
	after.QuantitySold = body.QuantitySold
	after.SerialNumber = body.SerialNumber
	after.Year = body.Year
	after.Status = models.NormalizeStatus(body.Status)
	after.Notes = body.Notes
	after.Patient = strings.TrimSpace(body.Patient)
	after.Expiry = registry.DeriveExpiry(parseExpiry(body.Expiry), after.ID)

	if err := r.rules.ValidateMutation(records, before, &after); err != nil {
		if errors.Is(err, rules.ErrPatientLocked) {
			// The attempted change itself is a reportable event
			r.dispatcher.Notify(recipientFor(actor),
				fmt.Sprintf("[Warning] Attempted patient change on %s", after.SerialNumber),
				fmt.Sprintf("An attempt was made to change the patient on pump %s. Change was prevented.",
					after.SerialNumber))
		}
		respondError(w, validationStatus(err), err.Error())
		return
	}
	after.LastUpdated = time.Now()

	// ID is the join key: every matching row is rewritten
	for i := range records {
		if records[i].ID == id {
			records[i] = after
		}
	}
	if err := r.registry.Save(records); err != nil {
		respondError(w, http.StatusInternalServerError, "Save failed")
		return
	}
	respondJSON(w, http.StatusOK, after)
}

// recomputeExpiries rewrites every record's expiry from its ID date (admin only)
func (r *Router) recomputeExpiries(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	if !actor.IsAdmin() {
		respondError(w, http.StatusForbidden, "Admin role required")
		return
	}

	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	registry.RecomputeExpiries(records)
	if err := r.registry.Save(records); err != nil {
		respondError(w, http.StatusInternalServerError, "Could not update expiries")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"updated": len(records),
	})
}

func recordFromRequest(body *PumpRequest) models.PumpRecord {
	qty := body.QuantitySold
	if qty < 0 {
		qty = 0
	}
	return models.PumpRecord{
		ID:           strings.TrimSpace(body.ID),
		Client:       body.Client,
		Model:        body.Model,
		QuantitySold: qty,
		SerialNumber: body.SerialNumber,
		Year:         body.Year,
		Status:       models.NormalizeStatus(body.Status),
		Patient:      strings.TrimSpace(body.Patient),
		Notes:        body.Notes,
		Expiry:       parseExpiry(body.Expiry),
	}
}

func parseExpiry(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

func validationStatus(err error) int {
	if errors.Is(err, rules.ErrPatientRequired) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusConflict
}

// pumpID extracts the {id} path variable. The router matches on the encoded
// path, so IDs carrying slashes arrive percent-escaped and need unescaping.
func pumpID(req *http.Request) string {
	raw := mux.Vars(req)["id"]
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

func findVisible(records []models.PumpRecord, id string, actor *models.Actor) *models.PumpRecord {
	for i := range records {
		if records[i].ID == id && actor.CanSee(&records[i]) {
			rec := records[i]
			return &rec
		}
	}
	return nil
}

func filterByRole(records []models.PumpRecord, actor *models.Actor) []models.PumpRecord {
	if actor.IsAdmin() {
		return records
	}
	var visible []models.PumpRecord
	for _, rec := range records {
		if rec.Client == actor.Client {
			visible = append(visible, rec)
		}
	}
	return visible
}

// applyFacets narrows records by the user-chosen facet filters. The client
// facet is honored for admins only; non-admin results are already scoped.
func applyFacets(records []models.PumpRecord, query url.Values, admin bool) []models.PumpRecord {
	keep := records
	if years := query["year"]; len(years) > 0 {
		keep = filterRecords(keep, func(rec *models.PumpRecord) bool {
			return containsString(years, strconv.Itoa(rec.Year))
		})
	}
	if matchModels := query["model"]; len(matchModels) > 0 {
		keep = filterRecords(keep, func(rec *models.PumpRecord) bool {
			return containsString(matchModels, rec.Model)
		})
	}
	if statuses := query["status"]; len(statuses) > 0 {
		keep = filterRecords(keep, func(rec *models.PumpRecord) bool {
			return containsString(statuses, string(rec.Status))
		})
	}
	if clients := query["client"]; admin && len(clients) > 0 {
		keep = filterRecords(keep, func(rec *models.PumpRecord) bool {
			return containsString(clients, rec.Client)
		})
	}
	return keep
}

func filterRecords(records []models.PumpRecord, match func(*models.PumpRecord) bool) []models.PumpRecord {
	var out []models.PumpRecord
	for i := range records {
		if match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
