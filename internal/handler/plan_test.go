package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/handler"
)

// mockPlanServicer is a hand-written test double for handler.PlanServicer.
type mockPlanServicer struct {
	plan    func(ctx context.Context, id uuid.UUID) (domain.TripLog, error)
	log     func(ctx context.Context, id uuid.UUID) (domain.TripLog, error)
	preview func(ctx context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error)
}

func (m *mockPlanServicer) Plan(ctx context.Context, id uuid.UUID) (domain.TripLog, error) {
	return m.plan(ctx, id)
}
func (m *mockPlanServicer) Log(ctx context.Context, id uuid.UUID) (domain.TripLog, error) {
	return m.log(ctx, id)
}
func (m *mockPlanServicer) Preview(ctx context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error) {
	return m.preview(ctx, in, route)
}

var _ handler.PlanServicer = (*mockPlanServicer)(nil)

func newPlanHandler(svc handler.PlanServicer) http.Handler {
	return handler.NewServer(nil, svc, nil, nil).Routes()
}

// oneDayLog is a minimal log: off duty to 06:00, an hour on duty, then off
// duty until midnight.
func oneDayLog(id uuid.UUID) domain.TripLog {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return domain.TripLog{
		TripID:          id,
		StartCycleHours: 12,
		Days: []domain.DayLog{{
			Date: day,
			Segments: []domain.Segment{
				{Status: domain.OffDuty, Kind: domain.KindOffDuty, Start: day, End: day.Add(6 * time.Hour)},
				{Status: domain.OnDuty, Kind: domain.KindInspection, Start: day.Add(6 * time.Hour), End: day.Add(7 * time.Hour)},
				{Status: domain.OffDuty, Kind: domain.KindEndOfTrip, Start: day.Add(7 * time.Hour), End: day.Add(24 * time.Hour)},
			},
			OnDutyHours:         1,
			OffDutyHours:        23,
			CycleHoursRemaining: 57,
			Certification: domain.Certification{
				Date:        day,
				CertifiedAt: day.Add(23*time.Hour + 59*time.Minute),
				Statement:   "I hereby certify that my data entries and my record of duty status for this 24-hour period are true and correct.",
			},
		}},
	}
}

// ---- POST /trips/{id}/plan -------------------------------------------------

func TestPlanTrip_200(t *testing.T) {
	id := uuid.New()
	svc := &mockPlanServicer{plan: func(_ context.Context, got uuid.UUID) (domain.TripLog, error) {
		assert.Equal(t, id, got)
		return oneDayLog(id), nil
	}}

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/trips/"+id.String()+"/plan", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.TripLogResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, id, resp.TripID)
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "2025-06-02", resp.Days[0].Date.Format(time.DateOnly))
	assert.Len(t, resp.Days[0].Segments, 3)
	assert.Equal(t, 57.0, resp.Days[0].CycleHoursRemaining)
	assert.Equal(t, "2025-06-02", resp.Days[0].Certification.Date.Format(time.DateOnly))
	assert.NotNil(t, resp.Stops, "stops is always an array")
}

func TestPlanTrip_Infeasible_422(t *testing.T) {
	svc := &mockPlanServicer{plan: func(_ context.Context, _ uuid.UUID) (domain.TripLog, error) {
		return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w: cycle exhausted before dropoff", domain.ErrInfeasibleSchedule)
	}}

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/plan", "")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "infeasible_schedule", detail.Code)
	assert.Equal(t, "cycle exhausted before dropoff", detail.Message)
}

func TestPlanTrip_RouteUnavailable_503(t *testing.T) {
	svc := &mockPlanServicer{plan: func(_ context.Context, _ uuid.UUID) (domain.TripLog, error) {
		return domain.TripLog{}, fmt.Errorf("routing.ORS: %w", domain.ErrRouteUnavailable)
	}}

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/plan", "")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "route_unavailable", decodeError(t, rec).Code)
}

func TestPlanTrip_UnknownTrip_404(t *testing.T) {
	svc := &mockPlanServicer{plan: func(_ context.Context, _ uuid.UUID) (domain.TripLog, error) {
		return domain.TripLog{}, domain.ErrNotFound
	}}

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/trips/"+uuid.NewString()+"/plan", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlanTrip_WrongMethod_405(t *testing.T) {
	rec := do(t, newPlanHandler(&mockPlanServicer{}), http.MethodGet, "/trips/"+uuid.NewString()+"/plan", "")

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "method_not_allowed", decodeError(t, rec).Code)
}

// ---- GET /trips/{id}/logs --------------------------------------------------

func TestGetTripLog_200(t *testing.T) {
	id := uuid.New()
	svc := &mockPlanServicer{log: func(_ context.Context, _ uuid.UUID) (domain.TripLog, error) {
		return oneDayLog(id), nil
	}}

	rec := do(t, newPlanHandler(svc), http.MethodGet, "/trips/"+id.String()+"/logs", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"inspection"`)
}

func TestGetTripLog_NeverPlanned_404(t *testing.T) {
	svc := &mockPlanServicer{log: func(_ context.Context, _ uuid.UUID) (domain.TripLog, error) {
		return domain.TripLog{}, fmt.Errorf("repo.LogRepo.Get: %w", domain.ErrNotFound)
	}}

	rec := do(t, newPlanHandler(svc), http.MethodGet, "/trips/"+uuid.NewString()+"/logs", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no log for this trip; plan it first", decodeError(t, rec).Message)
}

// ---- POST /schedule --------------------------------------------------------

func TestSchedule_WithRoute(t *testing.T) {
	var gotIn domain.TripInput
	var gotRoute *domain.TripRoute
	svc := &mockPlanServicer{preview: func(_ context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error) {
		gotIn, gotRoute = in, route
		return oneDayLog(uuid.New()), nil
	}}
	body := `{
		"current_location": "Chicago, IL",
		"pickup_location": "Joliet, IL",
		"dropoff_location": "Denver, CO",
		"cycle_hours_used": 12,
		"start_time": "2025-06-02T11:00:00Z",
		"time_zone": "America/Chicago",
		"route": {
			"to_pickup": {"distance_miles": 45, "duration_minutes": 50},
			"to_dropoff": {"distance_miles": 960, "duration_minutes": 900}
		}
	}`

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/schedule", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Denver, CO", gotIn.DropoffLocation)
	assert.Equal(t, "America/Chicago", gotIn.StartTime.Location().String())
	assert.Equal(t, 6, gotIn.StartTime.Hour(), "11:00 UTC is 06:00 in Chicago")
	require.NotNil(t, gotRoute)
	assert.Equal(t, 900, gotRoute.ToDropoff.DurationMinutes)
}

func TestSchedule_WithoutRouteDefaultsToUTC(t *testing.T) {
	var gotIn domain.TripInput
	var gotRoute *domain.TripRoute
	svc := &mockPlanServicer{preview: func(_ context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error) {
		gotIn, gotRoute = in, route
		return oneDayLog(uuid.New()), nil
	}}
	body := `{"current_location":"A","pickup_location":"B","dropoff_location":"C","cycle_hours_used":0,"start_time":"2025-06-02T06:00:00Z"}`

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/schedule", body)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, gotRoute)
	assert.Equal(t, time.UTC, gotIn.StartTime.Location())
}

func TestSchedule_UnknownTimeZone_422(t *testing.T) {
	body := `{"current_location":"A","pickup_location":"B","dropoff_location":"C","cycle_hours_used":0,
		"start_time":"2025-06-02T06:00:00Z","time_zone":"Mars/Olympus_Mons"}`

	rec := do(t, newPlanHandler(&mockPlanServicer{}), http.MethodPost, "/schedule", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "unknown time_zone")
}

func TestSchedule_ValidationFromScheduler_422(t *testing.T) {
	svc := &mockPlanServicer{preview: func(_ context.Context, _ domain.TripInput, _ *domain.TripRoute) (domain.TripLog, error) {
		return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w: dropoff location is required", domain.ErrValidation)
	}}
	body := `{"current_location":"A","pickup_location":"B","dropoff_location":"","cycle_hours_used":0,"start_time":"2025-06-02T06:00:00Z"}`

	rec := do(t, newPlanHandler(svc), http.MethodPost, "/schedule", body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "dropoff location is required", decodeError(t, rec).Message)
}
