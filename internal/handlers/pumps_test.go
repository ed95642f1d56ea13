package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/josearcagni/cmcwebapp/internal/models"
	"github.com/josearcagni/cmcwebapp/internal/rules"
)

var testRecords = []models.PumpRecord{
	{ID: "PX-1", Client: "Acme", Model: "CRONO SC 30", Year: 2021, Status: models.StatusInUse, QuantitySold: 2},
	{ID: "PX-2", Client: "Acme", Model: "CRONO PAR", Year: 2022, Status: models.StatusInStock, QuantitySold: 1},
	{ID: "PX-3", Client: "Beta", Model: "CRONO PAR", Year: 2022, Status: models.StatusInUse, QuantitySold: 4},
}

func TestFilterByRole(t *testing.T) {
	admin := &models.Actor{Username: "admin", Role: models.RoleAdmin}
	if got := filterByRole(testRecords, admin); len(got) != 3 {
		t.Errorf("Admin should see all records, got %d", len(got))
	}

	client := &models.Actor{Username: "acme", Role: models.RoleUser, Client: "Acme"}
	got := filterByRole(testRecords, client)
	if len(got) != 2 {
		t.Fatalf("Client should see 2 records, got %d", len(got))
	}
	for _, rec := range got {
		if rec.Client != "Acme" {
			t.Errorf("Client view leaked record for %s", rec.Client)
		}
	}
}

func TestApplyFacets(t *testing.T) {
	got := applyFacets(testRecords, url.Values{"year": {"2022"}}, true)
	if len(got) != 2 {
		t.Errorf("Year facet: expected 2 records, got %d", len(got))
	}

	got = applyFacets(testRecords, url.Values{"model": {"CRONO PAR"}, "status": {string(models.StatusInUse)}}, true)
	if len(got) != 1 || got[0].ID != "PX-3" {
		t.Errorf("Combined facets: expected PX-3 only, got %v", got)
	}

	// Client facet is admin-only
	got = applyFacets(testRecords, url.Values{"client": {"Beta"}}, true)
	if len(got) != 1 || got[0].ID != "PX-3" {
		t.Errorf("Admin client facet: expected PX-3, got %v", got)
	}
	got = applyFacets(testRecords, url.Values{"client": {"Beta"}}, false)
	if len(got) != 3 {
		t.Errorf("Non-admin client facet should be ignored, got %d records", len(got))
	}
}

func TestValidationStatus(t *testing.T) {
	if got := validationStatus(rules.ErrPatientRequired); got != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for missing patient, got %d", got)
	}
	if got := validationStatus(rules.ErrPatientLocked); got != http.StatusConflict {
		t.Errorf("Expected 409 for locked patient, got %d", got)
	}
	if got := validationStatus(rules.ErrPatientCapExceeded); got != http.StatusConflict {
		t.Errorf("Expected 409 for cap violation, got %d", got)
	}
}

func TestFindVisible(t *testing.T) {
	client := &models.Actor{Username: "acme", Role: models.RoleUser, Client: "Acme"}
	if rec := findVisible(testRecords, "PX-1", client); rec == nil || rec.ID != "PX-1" {
		t.Errorf("Expected PX-1, got %v", rec)
	}
	if rec := findVisible(testRecords, "PX-3", client); rec != nil {
		t.Error("Client must not see another client's record")
	}
	if rec := findVisible(testRecords, "PX-9", client); rec != nil {
		t.Error("Unknown ID should not resolve")
	}
}

func TestRecipientFor(t *testing.T) {
	cases := []struct {
		actor models.Actor
		want  string
	}{
		{models.Actor{Email: "a@example.com", Username: "a"}, "a@example.com"},
		{models.Actor{Username: "a"}, "a"},
		{models.Actor{}, "admin@localhost"},
	}
	for _, tc := range cases {
		if got := recipientFor(&tc.actor); got != tc.want {
			t.Errorf("Expected %q, got %q", tc.want, got)
		}
	}
}
