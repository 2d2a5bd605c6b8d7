package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// TripRequest is the body of POST /trips and the trip part of POST /schedule.
type TripRequest struct {
	CurrentLocation string     `json:"current_location"`
	PickupLocation  string     `json:"pickup_location"`
	DropoffLocation string     `json:"dropoff_location"`
	CycleHoursUsed  *float64   `json:"cycle_hours_used"`
	StartTime       *time.Time `json:"start_time"`
	TimeZone        string     `json:"time_zone,omitempty"`
	Notes           string     `json:"notes,omitempty"`
}

// TripResponse is the JSON form of a stored trip.
type TripResponse struct {
	ID              openapi_types.UUID `json:"id"`
	CurrentLocation string             `json:"current_location"`
	PickupLocation  string             `json:"pickup_location"`
	DropoffLocation string             `json:"dropoff_location"`
	CycleHoursUsed  float64            `json:"cycle_hours_used"`
	StartTime       time.Time          `json:"start_time"`
	StartDate       openapi_types.Date `json:"start_date"`
	TimeZone        string             `json:"time_zone"`
	Notes           *string            `json:"notes,omitempty"`
	Planned         bool               `json:"planned"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// TripListResponse is the body of GET /trips.
type TripListResponse struct {
	Data       []TripResponse `json:"data"`
	Pagination Pagination     `json:"pagination"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}
	trip, err := body.toTrip()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	created, err := s.trips.Create(r.Context(), trip)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.Header().Set("Location", "/trips/"+created.ID.String())
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	var page, limit *int
	if err := runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &page); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid page parameter")
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid limit parameter")
		return
	}
	params := domain.NewPaginationParams(page, limit)

	trips, total, err := s.trips.ListPaged(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}

	data := make([]TripResponse, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	writeJSON(w, http.StatusOK, TripListResponse{
		Data:       data,
		Pagination: Pagination{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// GetTrip handles GET /trips/{id}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	trip, err := s.trips.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{id}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if err := s.trips.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "trip not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- request helpers --------------------------------------------------------

// tripID binds the {id} path parameter, writing a 400 when it is not a UUID.
func tripID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "trip id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// decodeBody decodes a JSON request body, writing a 400 or 422 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
		case errors.Is(err, io.EOF):
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "request body is required")
		default:
			writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		}
		return false
	}
	return true
}

// toTrip checks presence of the fields the service cannot default.
// Value rules (ranges, time zones) are the service's job.
func (b TripRequest) toTrip() (domain.Trip, error) {
	switch {
	case b.CycleHoursUsed == nil:
		return domain.Trip{}, errors.New("cycle_hours_used is required")
	case b.StartTime == nil:
		return domain.Trip{}, errors.New("start_time is required")
	}
	return domain.Trip{
		CurrentLocation: b.CurrentLocation,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		CycleHoursUsed:  *b.CycleHoursUsed,
		StartTime:       *b.StartTime,
		TimeZone:        b.TimeZone,
		Notes:           b.Notes,
	}, nil
}

func tripToResponse(t domain.Trip) TripResponse {
	resp := TripResponse{
		ID:              t.ID,
		CurrentLocation: t.CurrentLocation,
		PickupLocation:  t.PickupLocation,
		DropoffLocation: t.DropoffLocation,
		CycleHoursUsed:  t.CycleHoursUsed,
		StartTime:       t.StartTime.In(t.Location()),
		StartDate:       openapi_types.Date{Time: t.StartTime.In(t.Location())},
		TimeZone:        t.TimeZone,
		Planned:         t.Planned,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
	if t.Notes != "" {
		resp.Notes = &t.Notes
	}
	return resp
}
