// Package handler implements the HTTP handlers for the ELD Logbook API.
// All handlers are methods on Server and are mounted by Routes. Methods are
// split into resource files (health.go, trip.go, plan.go, export.go) but
// share the same Server struct so they can reach its dependencies.
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// TripServicer defines the trip operations the handlers depend on.
// Declaring it here, in the consumer package, lets handler tests inject a
// mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PlanServicer generates and reloads trip logs.
type PlanServicer interface {
	Plan(ctx context.Context, id uuid.UUID) (domain.TripLog, error)
	Log(ctx context.Context, id uuid.UUID) (domain.TripLog, error)
	Preview(ctx context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error)
}

// ExportServicer flattens a stored log into grid rows.
type ExportServicer interface {
	Export(ctx context.Context, tripID uuid.UUID) ([]domain.GridRow, error)
}

// Server holds the dependencies shared by every handler.
type Server struct {
	trips   TripServicer
	plans   PlanServicer
	export  ExportServicer
	openAPI []byte
}

// NewServer constructs the Server with all its dependencies.
// openAPI is served verbatim at /openapi.yaml.
func NewServer(trips TripServicer, plans PlanServicer, export ExportServicer, openAPI []byte) *Server {
	return &Server{trips: trips, plans: plans, export: export, openAPI: openAPI}
}

// Routes returns a router with every API endpoint mounted.
// Middleware is applied by the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such endpoint")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Post("/schedule", s.Schedule)

	r.Route("/trips", func(r chi.Router) {
		r.Post("/", s.CreateTrip)
		r.Get("/", s.ListTrips)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetTrip)
			r.Delete("/", s.DeleteTrip)
			r.Post("/plan", s.PlanTrip)
			r.Get("/logs", s.GetTripLog)
			r.Get("/logs/export", s.ExportTripLog)
		})
	})
	return r
}
