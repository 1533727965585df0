package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"day_id", "day_date", "total_miles_driving_today", "mileage_covered_today",
	"status", "start_at", "end_at", "hours", "remark",
}

type exportRow struct {
	DayID                  string     `json:"day_id"`
	DayDate                string     `json:"day_date"`
	TotalMilesDrivingToday float64    `json:"total_miles_driving_today"`
	MileageCoveredToday    float64    `json:"mileage_covered_today"`
	Status                 *string    `json:"status,omitempty"`
	StartAt                *time.Time `json:"start_at,omitempty"`
	EndAt                  *time.Time `json:"end_at,omitempty"`
	Hours                  *float64   `json:"hours,omitempty"`
	Remark                 *string    `json:"remark,omitempty"`
}

// GetExport handles GET /drivers/{driverId}/export.
// It returns one row per duty interval for the driver's days in ?from..?to.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	dr, ok := queryDayRange(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "json" {
		requestError(w, "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), driverID, dr)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}

	if format == "csv" {
		writeCSV(w, rows)
		return
	}
	out := make([]exportRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domainRowToJSON(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// writeCSV encodes domain rows as CSV with a header row.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail.
	_ = cw.Write(csvHeaders)
	for _, row := range rows {
		_ = cw.Write(domainRowToCSVRecord(row))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="rods-export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// domainRowToJSON maps a domain.ExportRow to its JSON shape.
// Interval fields are omitted for a day with no intervals.
func domainRowToJSON(r domain.ExportRow) exportRow {
	row := exportRow{
		DayID:                  r.DayID,
		DayDate:                r.DayDate,
		TotalMilesDrivingToday: r.TotalMilesDrivingToday,
		MileageCoveredToday:    r.MileageCoveredToday,
		StartAt:                r.StartAt,
		EndAt:                  r.EndAt,
	}
	if r.Status != "" {
		st := string(r.Status)
		hours := r.Hours
		row.Status = &st
		row.Hours = &hours
	}
	if r.Remark != "" {
		row.Remark = &r.Remark
	}
	return row
}

// domainRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// Nil times and the interval fields of an empty day are empty strings.
func domainRowToCSVRecord(r domain.ExportRow) []string {
	hours := ""
	if r.Status != "" {
		hours = strconv.FormatFloat(r.Hours, 'f', 2, 64)
	}
	return []string{
		r.DayID,
		r.DayDate,
		strconv.FormatFloat(r.TotalMilesDrivingToday, 'f', -1, 64),
		strconv.FormatFloat(r.MileageCoveredToday, 'f', -1, 64),
		string(r.Status),
		formatOptionalTime(r.StartAt),
		formatOptionalTime(r.EndAt),
		hours,
		r.Remark,
	}
}

// formatOptionalTime returns the RFC3339 representation of t, or "" if t is nil.
func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
