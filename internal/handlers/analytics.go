package handlers

import (
	"net/http"
	"sort"

	"github.com/josearcagni/cmcwebapp/internal/middleware"
	"github.com/josearcagni/cmcwebapp/internal/models"
)

// YearSales is the quantity sold in one year
type YearSales struct {
	Year         int `json:"year"`
	QuantitySold int `json:"quantity_sold"`
}

// ModelYearSales is the quantity sold for one model in one year
type ModelYearSales struct {
	Year         int    `json:"year"`
	Model        string `json:"model"`
	QuantitySold int    `json:"quantity_sold"`
}

// ClientSales is the quantity sold to one client
type ClientSales struct {
	Client       string `json:"client"`
	QuantitySold int    `json:"quantity_sold"`
}

// salesAnalytics returns the quantity-sold aggregates consumed by the
// dashboard charts (admin only). Pure read-only projection of the table.
func (r *Router) salesAnalytics(w http.ResponseWriter, req *http.Request) {
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

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"by_year":       salesByYear(records),
		"by_model_year": salesByModelYear(records),
		"by_client":     salesByClient(records),
	})
}

func salesByYear(records []models.PumpRecord) []YearSales {
	totals := map[int]int{}
	for _, rec := range records {
		if rec.Year == 0 {
			continue
		}
		totals[rec.Year] += rec.QuantitySold
	}
	out := make([]YearSales, 0, len(totals))
	for year, qty := range totals {
		out = append(out, YearSales{Year: year, QuantitySold: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

func salesByModelYear(records []models.PumpRecord) []ModelYearSales {
	type key struct {
		year  int
		model string
	}
	totals := map[key]int{}
	for _, rec := range records {
		if rec.Year == 0 || rec.Model == "" {
			continue
		}
		totals[key{rec.Year, rec.Model}] += rec.QuantitySold
	}
	out := make([]ModelYearSales, 0, len(totals))
	for k, qty := range totals {
		out = append(out, ModelYearSales{Year: k.year, Model: k.model, QuantitySold: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Model < out[j].Model
	})
	return out
}

func salesByClient(records []models.PumpRecord) []ClientSales {
	totals := map[string]int{}
	for _, rec := range records {
		if rec.Client == "" {
			continue
		}
		totals[rec.Client] += rec.QuantitySold
	}
	out := make([]ClientSales, 0, len(totals))
	for client, qty := range totals {
		out = append(out, ClientSales{Client: client, QuantitySold: qty})
	}
	// Largest customers first
	sort.Slice(out, func(i, j int) bool {
		if out[i].QuantitySold != out[j].QuantitySold {
			return out[i].QuantitySold > out[j].QuantitySold
		}
		return out[i].Client < out[j].Client
	})
	return out
}
