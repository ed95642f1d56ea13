package models

import (
	"strings"
	"time"
)

// Status classifies the operational state of a pump
type Status string

const (
	StatusInUse    Status = "In use"
	StatusInStock  Status = "In stock"
	StatusOutOfUse Status = "Out of use"
)

// StatusOptions lists the canonical statuses in display order
var StatusOptions = []Status{StatusInUse, StatusInStock, StatusOutOfUse}

// statusSynonyms maps legacy spreadsheet values to canonical statuses.
// Consulted at the load boundary only; everything downstream sees canonical values.
var statusSynonyms = map[string]Status{
	"in use":         StatusInUse,
	"in stock":       StatusInStock,
	"out of use":     StatusOutOfUse,
	"in maintenance": StatusInStock,
	"not used yet":   StatusInStock,
	"disuse":         StatusOutOfUse,
	"out of order":   StatusOutOfUse,
}

// NormalizeStatus resolves a raw spreadsheet cell to a canonical status.
// Unrecognized values default to InStock.
func NormalizeStatus(raw string) Status {
	if s, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusInStock
}

// cronoModelTag identifies the product line requiring paired patient assignment
const cronoModelTag = "CRONO SC"

// PumpRecord represents one physical pump unit in the registry
type PumpRecord struct {
	ID           string     `json:"id"`
	Client       string     `json:"client"`
	Model        string     `json:"model"`
	QuantitySold int        `json:"quantity_sold"`
	SerialNumber string     `json:"serial_number"`
	Year         int        `json:"year,omitempty"`
	Status       Status     `json:"status"`
	LastUpdated  time.Time  `json:"last_updated"`
	Expiry       *time.Time `json:"expiry,omitempty"`
	Patient      string     `json:"patient,omitempty"`
	Notes        string     `json:"notes"`
}

// IsCronoSC reports whether the record belongs to the CRONO SC product line
func (p *PumpRecord) IsCronoSC() bool {
	return strings.Contains(strings.ToUpper(p.Model), cronoModelTag)
}

// HasPatient reports whether a patient is assigned
func (p *PumpRecord) HasPatient() bool {
	return strings.TrimSpace(p.Patient) != ""
}
