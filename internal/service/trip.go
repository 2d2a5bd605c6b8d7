// Package service contains the business logic for the ELD Logbook API.
// Services validate inputs, enforce business rules, and orchestrate repo,
// routing and scheduler calls. No SQL lives here.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	repo repo.TripRepo
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(r repo.TripRepo) *TripService {
	return &TripService{repo: r}
}

// Create validates and persists a new trip.
// Returns domain.ErrValidation if the input violates business rules.
func (s *TripService) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	trip = normalizeTrip(trip)
	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	result, err := s.repo.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// GetByID returns domain.ErrNotFound if the trip does not exist.
func (s *TripService) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	result, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.GetByID: %w", err)
	}
	return result, nil
}

// ListPaged returns one page of trips and the total count.
func (s *TripService) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	trips, total, err := s.repo.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListPaged: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, total, nil
}

// Delete removes a trip and its log.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

func normalizeTrip(t domain.Trip) domain.Trip {
	t.CurrentLocation = strings.TrimSpace(t.CurrentLocation)
	t.PickupLocation = strings.TrimSpace(t.PickupLocation)
	t.DropoffLocation = strings.TrimSpace(t.DropoffLocation)
	t.TimeZone = strings.TrimSpace(t.TimeZone)
	if t.TimeZone == "" {
		t.TimeZone = "UTC"
	}
	t.StartTime = t.StartTime.Truncate(time.Minute)
	return t
}

// validateTrip enforces the rules a trip must meet before it can be planned.
//   - All three locations are required.
//   - Cycle hours used lie within 0..70.
//   - Start time is set and the time zone is a known IANA name.
func validateTrip(t domain.Trip) error {
	switch {
	case t.CurrentLocation == "":
		return fmt.Errorf("%w: current_location is required", domain.ErrValidation)
	case t.PickupLocation == "":
		return fmt.Errorf("%w: pickup_location is required", domain.ErrValidation)
	case t.DropoffLocation == "":
		return fmt.Errorf("%w: dropoff_location is required", domain.ErrValidation)
	case t.CycleHoursUsed < 0 || t.CycleHoursUsed > domain.MaxCycleHours:
		return fmt.Errorf("%w: cycle_hours_used must be between 0 and %g", domain.ErrValidation, domain.MaxCycleHours)
	case t.StartTime.IsZero():
		return fmt.Errorf("%w: start_time is required", domain.ErrValidation)
	}
	if _, err := time.LoadLocation(t.TimeZone); err != nil {
		return fmt.Errorf("%w: unknown time_zone %q", domain.ErrValidation, t.TimeZone)
	}
	return nil
}
