package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

// GridRowResponse is one row of the JSON export.
type GridRowResponse struct {
	TripID   string            `json:"trip_id"`
	Date     string            `json:"date"`
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Status   domain.DutyStatus `json:"status"`
	Location string            `json:"location"`
	Notes    string            `json:"notes,omitempty"`
	Miles    float64           `json:"miles"`
}

// ExportTripLog handles GET /trips/{id}/logs/export.
// ?format=csv returns CSV; the default is JSON.
func (s *Server) ExportTripLog(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var format *string
	if err := runtime.BindQueryParameter("form", true, false, "format", r.URL.Query(), &format); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid format parameter")
		return
	}
	if format != nil && *format != "csv" && *format != "json" {
		writeError(w, http.StatusBadRequest, "bad_request", "format must be csv or json")
		return
	}

	rows, err := s.export.Export(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "no log for this trip; plan it first")
		return
	}

	if format != nil && *format == "csv" {
		writeCSV(w, r, id.String(), rows)
		return
	}
	out := make([]GridRowResponse, len(rows))
	for i, row := range rows {
		out[i] = GridRowResponse(row)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeCSV(w http.ResponseWriter, r *http.Request, name string, rows []domain.GridRow) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="log-%s.csv"`, name))
	w.WriteHeader(http.StatusOK)

	if err := service.WriteGridCSV(w, rows); err != nil {
		// Headers are gone; all that is left is to record it.
		slog.ErrorContext(r.Context(), "write csv export", "trip_id", name, "error", err)
	}
}
