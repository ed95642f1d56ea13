package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/josearcagni/cmcwebapp/internal/middleware"
	"github.com/josearcagni/cmcwebapp/internal/models"
)

// warningsReport renders the actor's current warning set as a PDF compliance
// report for download
func (r *Router) warningsReport(w http.ResponseWriter, req *http.Request) {
	actor := middleware.ActorFrom(req)
	records, err := r.registry.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to load pump registry")
		return
	}

	warnings := r.rules.ScanWarnings(records, actor)
	pdfBytes, err := buildWarningsPDF(warnings, actor)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to generate PDF: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"warnings_%s.pdf\"", time.Now().Format("2006-01-02")))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdfBytes)))
	w.Write(pdfBytes)
}

var reportColumns = []struct {
	title string
	width float64
}{
	{"Warning", 42},
	{"Pump ID", 34},
	{"Serial", 26},
	{"Model", 32},
	{"Client", 26},
	{"Status", 18},
	{"Expiry", 18},
}

func buildWarningsPDF(warnings []models.Warning, actor *models.Actor) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Pump Compliance Warnings")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s for %s",
		time.Now().Format("2006-01-02 15:04"), actor.Username))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(217, 225, 242)
	for _, col := range reportColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	if len(warnings) == 0 {
		pdf.Cell(0, 7, "No warnings.")
	}
	for _, warning := range warnings {
		var expiry string
		if warning.Expiry != nil {
			expiry = warning.Expiry.Format("2006-01-02")
		}
		cells := []string{
			warningLabel(warning.Kind),
			warning.PumpID,
			warning.SerialNumber,
			warning.Model,
			warning.Client,
			string(warning.Status),
			expiry,
		}
		for i, col := range reportColumns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func warningLabel(kind models.WarningKind) string {
	switch kind {
	case models.WarningMissingExpiry:
		return "Missing expiry"
	case models.WarningExpired:
		return "Expired"
	case models.WarningExpiresInOne:
		return "Expires within 1 month"
	case models.WarningExpiresInSix:
		return "Expires within 6 months"
	case models.WarningMissingPatient:
		return "Missing patient"
	case models.WarningUnderPaired:
		return "Only 1 CRONO SC pump"
	default:
		return string(kind)
	}
}
