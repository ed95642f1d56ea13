package rules

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/josearcagni/cmcwebapp/internal/models"
)

// PatientCap is the maximum number of CRONO SC pumps one patient may hold
const PatientCap = 2

// Validation errors surfaced to the acting user as rejected mutations
var (
	ErrPatientRequired    = errors.New("CRONO SC pumps must be assigned to a patient")
	ErrPatientLocked      = errors.New("patient cannot be changed once assigned")
	ErrPatientCapExceeded = errors.New("patient already holds the maximum number of CRONO SC pumps")
)

// Engine derives warning conditions and validates mutations against the
// business rules. It holds no state beyond the clock.
type Engine struct {
	now func() time.Time
}

// NewEngine creates a rule engine using the wall clock
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// ScanWarnings walks every record visible to the actor and emits warnings
// for: missing expiry on in-use pumps, expiry proximity (expired, within one
// month, within six months; tightest tier wins), CRONO SC pumps without a
// patient, and patients holding only one CRONO SC pump.
func (e *Engine) ScanWarnings(records []models.PumpRecord, actor *models.Actor) []models.Warning {
	now := e.now()
	today := dateOnly(now)
	oneMonth := now.AddDate(0, 1, 0)
	sixMonths := now.AddDate(0, 6, 0)

	var warnings []models.Warning
	for i := range records {
		rec := &records[i]
		if !actor.CanSee(rec) {
			continue
		}
		if rec.Expiry == nil {
			if rec.Status == models.StatusInUse {
				warnings = append(warnings, newWarning(models.WarningMissingExpiry, rec,
					fmt.Sprintf("[Alert] Pump %s - Missing expiry", orDash(rec.SerialNumber)),
					fmt.Sprintf("Pump ID %s (%s) has no expiry date assigned.\nPlease review.",
						orDash(rec.SerialNumber), orDash(rec.Model))))
			}
			continue
		}
		if rec.Status != models.StatusInUse && rec.Status != models.StatusInStock {
			continue
		}

		exp := *rec.Expiry
		var kind models.WarningKind
		var reason string
		switch {
		case !dateOnly(exp).After(today):
			kind, reason = models.WarningExpired, "Pump expired and still in use/stock"
		case exp.After(now) && !exp.After(oneMonth):
			kind, reason = models.WarningExpiresInOne, "Pump expiring within 1 month"
		case exp.After(now) && !exp.After(sixMonths):
			kind, reason = models.WarningExpiresInSix, "Pump expiring within 6 months"
		default:
			continue
		}
		body := fmt.Sprintf("Pump ID %s (%s) flagged:\n\nStatus: %s\nExpiry: %s\nClient: %s\nNotes: %s",
			orDash(rec.SerialNumber), orDash(rec.Model), rec.Status,
			exp.Format("2006-01-02"), orDash(rec.Client), orDash(rec.Notes))
		warnings = append(warnings, newWarning(kind, rec,
			fmt.Sprintf("[Alert] %s - %s", orDash(rec.ID), reason), body))
	}

	warnings = append(warnings, e.scanPatients(records, actor)...)
	return warnings
}

// scanPatients covers the CRONO SC assignment rules: missing patient and
// under-paired patients. Pair counts are taken over the whole table; the
// actor's visibility only gates which warnings are emitted.
func (e *Engine) scanPatients(records []models.PumpRecord, actor *models.Actor) []models.Warning {
	counts := map[string]int{}
	for i := range records {
		rec := &records[i]
		if rec.IsCronoSC() && rec.HasPatient() {
			counts[strings.TrimSpace(rec.Patient)]++
		}
	}

	var warnings []models.Warning
	for i := range records {
		rec := &records[i]
		if !rec.IsCronoSC() || !actor.CanSee(rec) {
			continue
		}
		if !rec.HasPatient() {
			warnings = append(warnings, newWarning(models.WarningMissingPatient, rec,
				fmt.Sprintf("[Alert] CRONO SC %s - no patient assigned", orDash(rec.SerialNumber)),
				fmt.Sprintf("CRONO SC pump %s (serial %s) has no Patient assigned. "+
					"Please assign a Patient (%d pumps per patient).",
					orDash(rec.SerialNumber), orDash(rec.SerialNumber), PatientCap)))
			continue
		}
		patient := strings.TrimSpace(rec.Patient)
		if counts[patient] != 1 {
			continue
		}
		var expiry string
		if rec.Expiry != nil {
			expiry = rec.Expiry.Format("2006-01-02")
		}
		body := fmt.Sprintf("Patient %s currently has only 1 CRONO SC pump assigned.\n\n"+
			"Pump details:\nID: %s\nModel: %s\nClient: %s\nExpiry: %s\nStatus: %s\nSerial Number: %s\nNotes: %s",
			patient, orDash(rec.ID), orDash(rec.Model), orDash(rec.Client),
			orDash(expiry), rec.Status, orDash(rec.SerialNumber), orDash(rec.Notes))
		warnings = append(warnings, newWarning(models.WarningUnderPaired, rec,
			fmt.Sprintf("[Alert] Patient %s has only 1 CRONO SC pump", patient), body))
	}
	return warnings
}

// ValidateMutation gates an edit or add against the CRONO SC pairing rules.
// before is nil for newly added records. A nil return means the mutation is
// accepted; the caller stamps LastUpdated on the accepted record.
func (e *Engine) ValidateMutation(records []models.PumpRecord, before, after *models.PumpRecord) error {
	if !after.IsCronoSC() {
		return nil
	}

	var beforePatient string
	if before != nil {
		beforePatient = strings.TrimSpace(before.Patient)
	}
	afterPatient := strings.TrimSpace(after.Patient)

	if beforePatient != "" && afterPatient != beforePatient {
		return ErrPatientLocked
	}
	if afterPatient == "" {
		return ErrPatientRequired
	}
	if afterPatient != beforePatient {
		// New assignment: count the other records already holding this
		// patient. Re-saving an existing pair member never trips the cap.
		others := 0
		for i := range records {
			rec := &records[i]
			if rec.ID == after.ID {
				continue
			}
			if rec.IsCronoSC() && strings.TrimSpace(rec.Patient) == afterPatient {
				others++
			}
		}
		if others >= PatientCap {
			return ErrPatientCapExceeded
		}
	}
	return nil
}

func newWarning(kind models.WarningKind, rec *models.PumpRecord, subject, body string) models.Warning {
	return models.Warning{
		ID:           uuid.NewString(),
		Kind:         kind,
		PumpID:       rec.ID,
		SerialNumber: rec.SerialNumber,
		Model:        rec.Model,
		Client:       rec.Client,
		Status:       rec.Status,
		Expiry:       rec.Expiry,
		Patient:      rec.Patient,
		Subject:      subject,
		Body:         body,
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
