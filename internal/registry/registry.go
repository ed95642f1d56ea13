package registry

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/josearcagni/cmcwebapp/internal/models"
)

// SheetName is the worksheet holding the pump table
const SheetName = "Pumps"

// Columns is the fixed schema of the backing workbook
var Columns = []string{
	"ID", "Client", "Model", "Quantity Sold", "Serial Number", "Year",
	"Status", "Last Updated", "Expiry", "Patient", "Notes",
}

const (
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// cache holds one loaded snapshot with a time-bounded lifetime.
// A zero loadedAt means invalid.
type cache struct {
	records  []models.PumpRecord
	loadedAt time.Time
	ttl      time.Duration
}

func (c *cache) valid(now time.Time) bool {
	return !c.loadedAt.IsZero() && now.Sub(c.loadedAt) < c.ttl
}

// Registry is the Excel-backed pump record store. Access within one process
// is serialized by a mutex; cross-process writers still race last-write-wins
// at the file level, same as the spreadsheet being edited out-of-band.
type Registry struct {
	path string

	mu    sync.Mutex
	cache cache
	now   func() time.Time
}

// Open prepares a registry at path, creating the backing workbook with the
// fixed column schema if it does not exist yet.
func Open(path string, ttl time.Duration) (*Registry, error) {
	r := &Registry{
		path:  path,
		cache: cache{ttl: ttl},
		now:   time.Now,
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := r.create(); err != nil {
			return nil, fmt.Errorf("create registry %s: %w", path, err)
		}
	}
	return r, nil
}

// Path returns the location of the backing workbook
func (r *Registry) Path() string {
	return r.path
}

func (r *Registry) create() error {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetName)
	if err := writeHeader(f); err != nil {
		return err
	}
	return f.SaveAs(r.path)
}

func writeHeader(f *excelize.File) error {
	for i, name := range Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, name); err != nil {
			return err
		}
	}
	return nil
}

// Load returns the pump table, serving the cached snapshot while it is
// fresh to bound file I/O across dashboard refresh cycles.
func (r *Registry) Load() ([]models.PumpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cache.valid(r.now()) {
		return cloneRecords(r.cache.records), nil
	}

	records, err := r.read()
	if err != nil {
		return nil, err
	}
	r.cache.records = records
	r.cache.loadedAt = r.now()
	return cloneRecords(records), nil
}

// Save rewrites the whole backing workbook from records. The write goes
// through a temp file and a rename so a reader never sees a half-written
// workbook; the cache is invalidated on success.
func (r *Registry) Save(records []models.PumpRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetName)
	if err := writeHeader(f); err != nil {
		return fmt.Errorf("write registry header: %w", err)
	}
	for i, rec := range records {
		if err := writeRecord(f, i+2, &rec); err != nil {
			return fmt.Errorf("write registry row %d: %w", i+2, err)
		}
	}

	// The temp file keeps the .xlsx extension; excelize refuses to save
	// under any other workbook extension.
	tmp := r.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("write registry %s: %w", r.path, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace registry %s: %w", r.path, err)
	}

	r.invalidateLocked()
	return nil
}

// Invalidate drops the cached snapshot so the next Load rereads the file
func (r *Registry) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidateLocked()
}

func (r *Registry) invalidateLocked() {
	r.cache.records = nil
	r.cache.loadedAt = time.Time{}
}

func (r *Registry) read() ([]models.PumpRecord, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open registry %s: %w", r.path, err)
	}
	defer f.Close()

	sheet := SheetName
	rows, err := f.GetRows(sheet)
	if err != nil {
		// Fall back to the first sheet when the workbook was produced
		// elsewhere and named differently.
		sheet = f.GetSheetName(0)
		if rows, err = f.GetRows(sheet); err != nil {
			return nil, fmt.Errorf("read registry %s: %w", r.path, err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := map[string]int{}
	for i, h := range rows[0] {
		index[strings.TrimSpace(h)] = i
	}
	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	now := r.now()
	var records []models.PumpRecord
	for _, row := range rows[1:] {
		if rowEmpty(row) {
			continue
		}
		rec := models.PumpRecord{
			ID:           cell(row, "ID"),
			Client:       cell(row, "Client"),
			Model:        cell(row, "Model"),
			QuantitySold: parseCount(cell(row, "Quantity Sold")),
			SerialNumber: cell(row, "Serial Number"),
			Year:         parseCount(cell(row, "Year")),
			Status:       models.NormalizeStatus(cell(row, "Status")),
			Patient:      cell(row, "Patient"),
			Notes:        cell(row, "Notes"),
		}
		rec.LastUpdated = parseTimestamp(cell(row, "Last Updated"), now)
		rec.Expiry = DeriveExpiry(parseDate(cell(row, "Expiry")), rec.ID)
		records = append(records, rec)
	}
	return records, nil
}

func writeRecord(f *excelize.File, rowNum int, rec *models.PumpRecord) error {
	values := []interface{}{
		rec.ID,
		rec.Client,
		rec.Model,
		rec.QuantitySold,
		rec.SerialNumber,
		"",
		string(rec.Status),
		rec.LastUpdated.Format(timestampLayout),
		"",
		rec.Patient,
		rec.Notes,
	}
	if rec.Year != 0 {
		values[5] = rec.Year
	}
	if rec.Expiry != nil {
		values[8] = rec.Expiry.Format(dateLayout)
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseCount coerces a numeric cell to a non-negative int; malformed cells
// become zero rather than failing the load.
func parseCount(raw string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return int(v)
}

func parseTimestamp(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	for _, layout := range []string{timestampLayout, dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return fallback
}

// parseDate coerces an expiry cell to a date. Unlike ID-embedded dates,
// ambiguous explicit cells resolve month-first, with day-first as the
// fallback. Malformed cells yield nil so the ID-derived fallback can take
// over.
func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	layouts := []string{dateLayout, timestampLayout}
	layouts = append(layouts, monthFirstLayouts...)
	layouts = append(layouts, dayFirstLayouts...)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func cloneRecords(records []models.PumpRecord) []models.PumpRecord {
	out := make([]models.PumpRecord, len(records))
	copy(out, records)
	return out
}
