package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/hos"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// ExportService flattens a stored log into compliance-grid rows.
type ExportService struct {
	trips repo.TripRepo
	logs  repo.LogRepo
	rules hos.Rules
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, logs repo.LogRepo, rules hos.Rules) *ExportService {
	return &ExportService{trips: trips, logs: logs, rules: rules}
}

// Export returns one GridRow per segment, in log order.
// Returns domain.ErrNotFound if the trip does not exist or was never planned.
func (s *ExportService) Export(ctx context.Context, tripID uuid.UUID) ([]domain.GridRow, error) {
	log, err := loadTripLog(ctx, s.trips, s.logs, s.rules, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	return GridRows(log), nil
}

// GridRows flattens a TripLog. Always returns a non-nil slice.
func GridRows(log domain.TripLog) []domain.GridRow {
	rows := []domain.GridRow{}
	for _, day := range log.Days {
		date := day.Date.Format(time.DateOnly)
		for _, seg := range day.Segments {
			rows = append(rows, domain.GridRow{
				TripID:   log.TripID.String(),
				Date:     date,
				Start:    seg.Start,
				End:      seg.End,
				Status:   seg.Status,
				Location: seg.Location,
				Notes:    seg.Notes,
				Miles:    seg.Miles,
			})
		}
	}
	return rows
}

// GridCSVHeader is the first row of every CSV export.
var GridCSVHeader = []string{
	"trip_id", "date", "start", "end", "status", "status_label", "location", "notes", "miles",
}

// WriteGridCSV writes rows as CSV with GridCSVHeader first. Times are HH:MM
// in the log's time zone, the way they appear on a paper log.
func WriteGridCSV(w io.Writer, rows []domain.GridRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(GridCSVHeader); err != nil {
		return fmt.Errorf("service.WriteGridCSV: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.TripID,
			r.Date,
			r.Start.Format("15:04"),
			endClock(r),
			string(r.Status),
			r.Status.Label(),
			r.Location,
			r.Notes,
			strconv.FormatFloat(r.Miles, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("service.WriteGridCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service.WriteGridCSV: %w", err)
	}
	return nil
}

// endClock prints a segment that ends at midnight as 24:00.
func endClock(r domain.GridRow) string {
	if r.End.Hour() == 0 && r.End.Minute() == 0 && !r.End.Equal(r.Start) {
		return "24:00"
	}
	return r.End.Format("15:04")
}
