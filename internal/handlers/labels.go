package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/skip2/go-qrcode"

	"github.com/josearcagni/cmcwebapp/internal/middleware"
)

// pumpLabel renders a QR label for one pump, encoding its identity so a
// scanned unit resolves back to its registry record
func (r *Router) pumpLabel(w http.ResponseWriter, req *http.Request) {
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

	content := fmt.Sprintf("CMC1/%s|%s", rec.ID, rec.SerialNumber)
	png, err := qrcode.Encode(content, qrcode.Medium, 256)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate label")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}
