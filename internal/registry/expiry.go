package registry

import (
	"regexp"
	"strings"
	"time"

	"github.com/josearcagni/cmcwebapp/internal/models"
)

// ExpiryYears is the service life added to the acquisition date embedded in a pump ID
const ExpiryYears = 4

// idSeparator splits a pump ID into segments; the trailing segment may carry
// the acquisition date (e.g. "PX-01 - 05/01/2020").
var idSeparator = regexp.MustCompile(`\s-\s`)

// Day-first layouts are tried before month-first, matching how the IDs are
// written in practice (European date order).
var dayFirstLayouts = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02.01.2006",
	"2006-01-02",
}

var monthFirstLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01-02-2006",
}

// ParseIDDate extracts the date embedded in the trailing segment of a pump ID.
// Day-first parsing is preferred, falling back to month-first.
func ParseIDDate(id string) (time.Time, bool) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return time.Time{}, false
	}
	parts := idSeparator.Split(trimmed, -1)
	candidate := strings.TrimSpace(parts[len(parts)-1])
	if candidate == "" {
		return time.Time{}, false
	}
	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	for _, layout := range monthFirstLayouts {
		if t, err := time.Parse(layout, candidate); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DeriveExpiry resolves a record's expiry date. An explicit stored value wins;
// otherwise the ID date plus the fixed service life is used; otherwise unset.
func DeriveExpiry(explicit *time.Time, id string) *time.Time {
	if explicit != nil {
		return explicit
	}
	if d, ok := ParseIDDate(id); ok {
		e := d.AddDate(ExpiryYears, 0, 0)
		return &e
	}
	return nil
}

// RecomputeExpiries overwrites every record's expiry from its ID date,
// clearing records whose ID carries no derivable date. Running it twice
// yields the same result as running it once.
func RecomputeExpiries(records []models.PumpRecord) {
	for i := range records {
		if d, ok := ParseIDDate(records[i].ID); ok {
			e := d.AddDate(ExpiryYears, 0, 0)
			records[i].Expiry = &e
		} else {
			records[i].Expiry = nil
		}
	}
}
