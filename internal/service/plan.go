package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/hos"
	"github.com/pkordes/eld-logbook/internal/repo"
	"github.com/pkordes/eld-logbook/internal/routing"
)

// PlanService generates, stores and reloads the duty-status log of a trip.
type PlanService struct {
	trips     repo.TripRepo
	logs      repo.LogRepo
	routes    routing.Provider
	scheduler *hos.Scheduler
	now       func() time.Time
}

// NewPlanService constructs a PlanService. The scheduler decides which rule
// set applies.
func NewPlanService(trips repo.TripRepo, logs repo.LogRepo, routes routing.Provider, scheduler *hos.Scheduler) *PlanService {
	return &PlanService{
		trips:     trips,
		logs:      logs,
		routes:    routes,
		scheduler: scheduler,
		now:       time.Now,
	}
}

// Plan routes the trip, schedules it and replaces any stored log.
// Errors: domain.ErrNotFound, domain.ErrRouteUnavailable,
// domain.ErrInfeasibleSchedule. Nothing is stored when scheduling fails.
func (s *PlanService) Plan(ctx context.Context, id uuid.UUID) (domain.TripLog, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Plan: %w", err)
	}
	in := trip.Input()

	route, err := s.Route(ctx, in)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Plan: %w", err)
	}

	log, err := s.scheduler.Schedule(in, route)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Plan: %w", err)
	}

	rec := domain.LogRecord{
		TripID:          trip.ID,
		StartCycleHours: in.CycleHoursUsed,
		Segments:        log.Segments(),
		Stops:           log.Stops,
		GeneratedAt:     s.now(),
	}
	if err := s.logs.Save(ctx, rec); err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Plan: %w", err)
	}

	slog.InfoContext(ctx, "trip planned",
		"trip_id", trip.ID,
		"days", len(log.Days),
		"miles", log.TotalMiles,
		"stops", len(log.Stops),
	)
	return log, nil
}

// Log returns the stored log of a trip with day totals derived again in the
// trip's time zone. Returns domain.ErrNotFound if the trip does not exist or
// has not been planned.
func (s *PlanService) Log(ctx context.Context, id uuid.UUID) (domain.TripLog, error) {
	log, err := loadTripLog(ctx, s.trips, s.logs, s.scheduler.Rules(), id)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Log: %w", err)
	}
	return log, nil
}

// Preview schedules a trip that is not stored. When route is nil both legs
// are fetched from the routing provider.
func (s *PlanService) Preview(ctx context.Context, in domain.TripInput, route *domain.TripRoute) (domain.TripLog, error) {
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	var r domain.TripRoute
	if route != nil {
		r = *route
	} else {
		var err error
		if r, err = s.Route(ctx, in); err != nil {
			return domain.TripLog{}, fmt.Errorf("service.PlanService.Preview: %w", err)
		}
	}

	log, err := s.scheduler.Schedule(in, r)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("service.PlanService.Preview: %w", err)
	}
	return log, nil
}

// Route fetches both legs of a trip concurrently.
func (s *PlanService) Route(ctx context.Context, in domain.TripInput) (domain.TripRoute, error) {
	var r domain.TripRoute
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		r.ToPickup, err = s.routes.EstimateRoute(ctx, in.CurrentLocation, in.PickupLocation)
		return err
	})
	g.Go(func() error {
		var err error
		r.ToDropoff, err = s.routes.EstimateRoute(ctx, in.PickupLocation, in.DropoffLocation)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TripRoute{}, err
	}
	return r, nil
}

func loadTripLog(ctx context.Context, trips repo.TripRepo, logs repo.LogRepo, rules hos.Rules, id uuid.UUID) (domain.TripLog, error) {
	trip, err := trips.GetByID(ctx, id)
	if err != nil {
		return domain.TripLog{}, err
	}
	rec, err := logs.Get(ctx, id)
	if err != nil {
		return domain.TripLog{}, err
	}
	return hos.BuildTripLog(trip.ID, rec.StartCycleHours, trip.Location(), rec.Segments, rec.Stops, rules)
}
