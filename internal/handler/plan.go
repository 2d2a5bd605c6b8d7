package handler

import (
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// ScheduleRequest is the body of POST /schedule. Route is optional; without
// it both legs are fetched from the routing provider.
type ScheduleRequest struct {
	TripRequest
	Route *domain.TripRoute `json:"route,omitempty"`
}

// CertificationResponse is the attestation block of a daily log.
type CertificationResponse struct {
	Date        openapi_types.Date `json:"date"`
	CertifiedAt time.Time          `json:"certified_at"`
	Statement   string             `json:"statement"`
}

// DayLogResponse is one calendar day of a log.
type DayLogResponse struct {
	Date                openapi_types.Date    `json:"date"`
	Segments            []domain.Segment      `json:"segments"`
	DrivingHours        float64               `json:"driving_hours"`
	OnDutyHours         float64               `json:"on_duty_hours"`
	OffDutyHours        float64               `json:"off_duty_hours"`
	SleeperHours        float64               `json:"sleeper_hours"`
	DrivingMiles        float64               `json:"driving_miles"`
	CycleHoursRemaining float64               `json:"cycle_hours_remaining"`
	Certification       CertificationResponse `json:"certification"`
}

// TripLogResponse is the body of the plan, logs and schedule endpoints.
type TripLogResponse struct {
	TripID          openapi_types.UUID `json:"trip_id"`
	StartCycleHours float64            `json:"start_cycle_hours"`
	TotalMiles      float64            `json:"total_miles"`
	Days            []DayLogResponse   `json:"days"`
	Stops           []domain.RouteStop `json:"stops"`
}

// PlanTrip handles POST /trips/{id}/plan. Planning again replaces the log.
func (s *Server) PlanTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	log, err := s.plans.Plan(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, logToResponse(log))
}

// GetTripLog handles GET /trips/{id}/logs.
func (s *Server) GetTripLog(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	log, err := s.plans.Log(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "no log for this trip; plan it first")
		return
	}
	writeJSON(w, http.StatusOK, logToResponse(log))
}

// Schedule handles POST /schedule: plan a trip without storing anything.
func (s *Server) Schedule(w http.ResponseWriter, r *http.Request) {
	var body ScheduleRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, err := body.toTrip()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}
	if trip.TimeZone == "" {
		trip.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(trip.TimeZone); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "unknown time_zone "+trip.TimeZone)
		return
	}

	log, err := s.plans.Preview(r.Context(), trip.Input(), body.Route)
	if err != nil {
		writeServiceError(w, r, err, "not found")
		return
	}
	writeJSON(w, http.StatusOK, logToResponse(log))
}

func logToResponse(l domain.TripLog) TripLogResponse {
	resp := TripLogResponse{
		TripID:          l.TripID,
		StartCycleHours: l.StartCycleHours,
		TotalMiles:      l.TotalMiles,
		Days:            make([]DayLogResponse, len(l.Days)),
		Stops:           l.Stops,
	}
	if resp.Stops == nil {
		resp.Stops = []domain.RouteStop{}
	}
	for i, d := range l.Days {
		resp.Days[i] = DayLogResponse{
			Date:                openapi_types.Date{Time: d.Date},
			Segments:            d.Segments,
			DrivingHours:        d.DrivingHours,
			OnDutyHours:         d.OnDutyHours,
			OffDutyHours:        d.OffDutyHours,
			SleeperHours:        d.SleeperHours,
			DrivingMiles:        d.DrivingMiles,
			CycleHoursRemaining: d.CycleHoursRemaining,
			Certification: CertificationResponse{
				Date:        openapi_types.Date{Time: d.Certification.Date},
				CertifiedAt: d.Certification.CertifiedAt,
				Statement:   d.Certification.Statement,
			},
		}
	}
	return resp
}
