package handler_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/handler"
)

// mockExportServicer is a hand-written test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context, tripID uuid.UUID) ([]domain.GridRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, tripID uuid.UUID) ([]domain.GridRow, error) {
	return m.export(ctx, tripID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

func newExportHandler(svc handler.ExportServicer) http.Handler {
	return handler.NewServer(nil, nil, svc, nil).Routes()
}

func gridRows(id uuid.UUID) []domain.GridRow {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return []domain.GridRow{
		{
			TripID: id.String(), Date: "2025-06-02",
			Start: day.Add(7 * time.Hour), End: day.Add(11*time.Hour + 30*time.Minute),
			Status: domain.Driving, Location: "I-80 W", Miles: 245.126,
		},
		{
			TripID: id.String(), Date: "2025-06-02",
			Start: day.Add(20 * time.Hour), End: day.Add(24 * time.Hour),
			Status: domain.Sleeper, Location: "Des Moines, IA", Notes: "10-hour rest",
		},
	}
}

func TestExportTripLog_CSV(t *testing.T) {
	id := uuid.New()
	svc := &mockExportServicer{export: func(_ context.Context, got uuid.UUID) ([]domain.GridRow, error) {
		assert.Equal(t, id, got)
		return gridRows(id), nil
	}}

	rec := do(t, newExportHandler(svc), http.MethodGet, "/trips/"+id.String()+"/logs/export?format=csv", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "log-"+id.String()+".csv")

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"trip_id", "date", "start", "end", "status", "status_label", "location", "notes", "miles"}, records[0])
	assert.Equal(t, []string{id.String(), "2025-06-02", "07:00", "11:30", "driving", "Driving", "I-80 W", "", "245.13"}, records[1])
	assert.Equal(t, "24:00", records[2][3], "a segment ending at midnight closes the day")
	assert.Equal(t, "Sleeper", records[2][5])
}

func TestExportTripLog_JSONByDefault(t *testing.T) {
	id := uuid.New()
	svc := &mockExportServicer{export: func(_ context.Context, _ uuid.UUID) ([]domain.GridRow, error) {
		return gridRows(id), nil
	}}

	rec := do(t, newExportHandler(svc), http.MethodGet, "/trips/"+id.String()+"/logs/export", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var rows []handler.GridRowResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&rows))
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Sleeper, rows[1].Status)
	assert.Equal(t, "10-hour rest", rows[1].Notes)
}

func TestExportTripLog_EmptyIsArray(t *testing.T) {
	svc := &mockExportServicer{export: func(_ context.Context, _ uuid.UUID) ([]domain.GridRow, error) {
		return []domain.GridRow{}, nil
	}}

	rec := do(t, newExportHandler(svc), http.MethodGet, "/trips/"+uuid.NewString()+"/logs/export?format=json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestExportTripLog_BadFormat_400(t *testing.T) {
	rec := do(t, newExportHandler(&mockExportServicer{}), http.MethodGet, "/trips/"+uuid.NewString()+"/logs/export?format=pdf", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "format must be csv or json", decodeError(t, rec).Message)
}

func TestExportTripLog_NotPlanned_404(t *testing.T) {
	svc := &mockExportServicer{export: func(_ context.Context, _ uuid.UUID) ([]domain.GridRow, error) {
		return nil, domain.ErrNotFound
	}}

	rec := do(t, newExportHandler(svc), http.MethodGet, "/trips/"+uuid.NewString()+"/logs/export?format=csv", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
