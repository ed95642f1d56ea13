package models

import "time"

// WarningKind identifies one compliance warning condition
type WarningKind string

const (
	WarningMissingExpiry  WarningKind = "missing_expiry"
	WarningExpired        WarningKind = "expired"
	WarningExpiresInOne   WarningKind = "expires_within_1_month"
	WarningExpiresInSix   WarningKind = "expires_within_6_months"
	WarningMissingPatient WarningKind = "missing_patient"
	WarningUnderPaired    WarningKind = "under_paired_patient"
)

// Warning is one alert produced by a registry scan. Subject and Body are
// ready for the notification dispatcher; the remaining fields feed the
// dashboard warning panel.
type Warning struct {
	ID           string      `json:"id"`
	Kind         WarningKind `json:"kind"`
	PumpID       string      `json:"pump_id"`
	SerialNumber string      `json:"serial_number"`
	Model        string      `json:"model"`
	Client       string      `json:"client"`
	Status       Status      `json:"status"`
	Expiry       *time.Time  `json:"expiry,omitempty"`
	Patient      string      `json:"patient,omitempty"`
	Subject      string      `json:"subject"`
	Body         string      `json:"body"`
}
