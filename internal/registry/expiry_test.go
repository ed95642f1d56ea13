package registry

import (
	"testing"
	"time"

	"github.com/josearcagni/cmcwebapp/internal/models"
)

func TestParseIDDateDayFirst(t *testing.T) {
	// Day-first parse is preferred
	d, ok := ParseIDDate("PX-01 - 05/01/2020")
	if !ok {
		t.Fatal("Expected a date from the ID")
	}
	want := time.Date(2020, time.January, 5, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("Expected %v, got %v", want, d)
	}
}

func TestParseIDDateMonthFirstFallback(t *testing.T) {
	// 12/25 cannot be day-first, so the month-first fallback applies
	d, ok := ParseIDDate("PX-02 - 12/25/2021")
	if !ok {
		t.Fatal("Expected a date from the ID")
	}
	want := time.Date(2021, time.December, 25, 0, 0, 0, 0, time.UTC)
	if !d.Equal(want) {
		t.Errorf("Expected %v, got %v", want, d)
	}
}

func TestParseIDDateNoDate(t *testing.T) {
	for _, id := range []string{"", "PX-03", "PX-03 - not a date", "  "} {
		if _, ok := ParseIDDate(id); ok {
			t.Errorf("Expected no date for %q", id)
		}
	}
}

func TestDeriveExpiryExplicitWins(t *testing.T) {
	explicit := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	got := DeriveExpiry(&explicit, "PX-01 - 05/01/2020")
	if got == nil || !got.Equal(explicit) {
		t.Errorf("Expected explicit expiry %v, got %v", explicit, got)
	}
}

func TestDeriveExpiryFromID(t *testing.T) {
	got := DeriveExpiry(nil, "PX-01 - 05/01/2020")
	if got == nil {
		t.Fatal("Expected a derived expiry")
	}
	want := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Expected ID date + 4 years = %v, got %v", want, got)
	}
}

func TestDeriveExpiryUnset(t *testing.T) {
	if got := DeriveExpiry(nil, "PX-99"); got != nil {
		t.Errorf("Expected unset expiry, got %v", got)
	}
}

func TestRecomputeExpiriesIdempotent(t *testing.T) {
	stale := time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC)
	records := []models.PumpRecord{
		{ID: "PX-01 - 05/01/2020", Expiry: &stale},
		{ID: "PX-99", Expiry: &stale},
	}

	RecomputeExpiries(records)
	want := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	if records[0].Expiry == nil || !records[0].Expiry.Equal(want) {
		t.Errorf("Expected recomputed expiry %v, got %v", want, records[0].Expiry)
	}
	if records[1].Expiry != nil {
		t.Errorf("Expected cleared expiry for underivable ID, got %v", records[1].Expiry)
	}

	first := *records[0].Expiry
	RecomputeExpiries(records)
	if !records[0].Expiry.Equal(first) {
		t.Errorf("Second recompute changed the result: %v vs %v", first, records[0].Expiry)
	}
	if records[1].Expiry != nil {
		t.Error("Second recompute should keep the cleared expiry unset")
	}
}
