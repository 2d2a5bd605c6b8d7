package hos

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Scheduler runs the fixed trip template against a Rules table.
// A Scheduler holds no per-run state and is safe for concurrent use.
type Scheduler struct {
	rules Rules
}

// NewScheduler returns a Scheduler for the given rules.
func NewScheduler(rules Rules) (*Scheduler, error) {
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("hos.NewScheduler: %w", err)
	}
	return &Scheduler{rules: rules}, nil
}

// Rules returns the table the scheduler was built with.
func (s *Scheduler) Rules() Rules { return s.rules }

// ScheduleTrip schedules a trip under PropertyCarrying70.
func ScheduleTrip(in domain.TripInput, route domain.TripRoute) (domain.TripLog, error) {
	return (&Scheduler{rules: PropertyCarrying70}).Schedule(in, route)
}

// Schedule produces the complete TripLog for one trip:
//
//	off duty until the trip starts
//	pre-trip inspection
//	drive to pickup
//	pickup
//	drive to dropoff
//	dropoff
//	off duty until midnight
//
// with fuel stops, breaks and rests inserted wherever the rules demand.
// The result depends only on the arguments. On error no log is returned.
func (s *Scheduler) Schedule(in domain.TripInput, route domain.TripRoute) (domain.TripLog, error) {
	if err := validateInput(in); err != nil {
		return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w", err)
	}
	if err := route.Validate(); err != nil {
		return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w", err)
	}

	start := in.StartTime.Truncate(time.Minute)
	dayStart := startOfDay(start)

	r := &run{
		rules: s.rules,
		b:     NewBuilder(s.rules, NewClock(s.rules, cycleMinutes(in.CycleHoursUsed)), dayStart),
	}

	steps := []func() error{
		func() error {
			return r.b.Add(Activity{
				Kind:     domain.KindOffDuty,
				Status:   domain.OffDuty,
				Minutes:  int(start.Sub(dayStart) / time.Minute),
				Location: in.CurrentLocation,
				Notes:    "Off duty",
			})
		},
		func() error {
			return r.b.Add(Activity{
				Kind:     domain.KindInspection,
				Status:   domain.OnDuty,
				Minutes:  s.rules.InspectionMinutes,
				Location: in.CurrentLocation,
				Notes:    "Pre-trip inspection",
			})
		},
		func() error { return r.driveLeg(route.ToPickup, in.PickupLocation) },
		func() error {
			return r.b.Add(Activity{
				Kind:     domain.KindPickup,
				Status:   domain.OnDuty,
				Minutes:  s.rules.PickupMinutes,
				Location: in.PickupLocation,
				Notes:    "Pickup & loading",
				Position: lastPosition(route.ToPickup),
			})
		},
		func() error { return r.driveLeg(route.ToDropoff, in.DropoffLocation) },
		func() error {
			return r.b.Add(Activity{
				Kind:     domain.KindDropoff,
				Status:   domain.OnDuty,
				Minutes:  s.rules.DropoffMinutes,
				Location: in.DropoffLocation,
				Notes:    "Delivery & unloading",
				Position: lastPosition(route.ToDropoff),
			})
		},
		func() error {
			end := r.b.Cursor()
			return r.b.Add(Activity{
				Kind:     domain.KindEndOfTrip,
				Status:   domain.OffDuty,
				Minutes:  int(nextMidnight(end).Sub(end) / time.Minute),
				Location: in.DropoffLocation,
				Notes:    "End of trip",
			})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w", err)
		}
	}

	log, err := BuildTripLog(in.ID, in.CycleHoursUsed, start.Location(), r.b.Segments(), r.b.Stops(), s.rules)
	if err != nil {
		return domain.TripLog{}, fmt.Errorf("hos.Scheduler.Schedule: %w", err)
	}
	return log, nil
}

// run is the mutable state of a single Schedule call.
type run struct {
	rules          Rules
	b              *Builder
	milesSinceFuel float64
}

// driveLeg schedules one leg, cutting it into chunks at every fuel stop.
func (r *run) driveLeg(leg domain.RouteEstimate, to string) error {
	if leg.DurationMinutes == 0 {
		return nil
	}

	notes := "En route to " + to
	doneMin, doneMiles := 0, 0.0

	for doneMin < leg.DurationMinutes {
		endMin := leg.DurationMinutes
		chunkMiles := leg.DistanceMiles - doneMiles
		fuel := false

		if r.rules.FuelIntervalMiles > 0 && leg.DistanceMiles > 0 &&
			r.milesSinceFuel+chunkMiles > r.rules.FuelIntervalMiles {
			untilFuel := max(0, r.rules.FuelIntervalMiles-r.milesSinceFuel)
			at := int(math.Round((doneMiles + untilFuel) / leg.DistanceMiles * float64(leg.DurationMinutes)))
			if at < leg.DurationMinutes {
				endMin, chunkMiles, fuel = max(at, doneMin), untilFuel, true
			}
		}

		offset := doneMin
		err := r.b.Add(Activity{
			Kind:     domain.KindDriving,
			Status:   domain.Driving,
			Minutes:  endMin - doneMin,
			Location: notes,
			Notes:    notes,
			Miles:    chunkMiles,
			Locate:   legLocator(leg, notes, offset),
		})
		if err != nil {
			return err
		}
		doneMin = endMin
		doneMiles += chunkMiles
		r.milesSinceFuel += chunkMiles

		if fuel {
			label, pos := legLocator(leg, notes, doneMin)(0)
			err := r.b.Add(Activity{
				Kind:     domain.KindFuel,
				Status:   domain.OnDuty,
				Minutes:  r.rules.FuelStopMinutes,
				Location: label,
				Notes:    "Fueling",
				Position: pos,
			})
			if err != nil {
				return err
			}
			r.milesSinceFuel = 0
		}
	}
	return nil
}

// legLocator places the driver on a leg, offset minutes after its start.
// Without waypoints every position is reported as fallback.
func legLocator(leg domain.RouteEstimate, fallback string, offset int) Locator {
	return func(driven int) (string, *domain.Coordinates) {
		wp, ok := leg.LocateAt(offset + driven)
		if !ok {
			return fallback, nil
		}
		c := wp.Coordinates
		return wp.Label, &c
	}
}

func lastPosition(leg domain.RouteEstimate) *domain.Coordinates {
	if len(leg.Waypoints) == 0 {
		return nil
	}
	c := leg.Waypoints[len(leg.Waypoints)-1].Coordinates
	return &c
}

func cycleMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}

func validateInput(in domain.TripInput) error {
	for _, f := range []struct{ name, value string }{
		{"current location", in.CurrentLocation},
		{"pickup location", in.PickupLocation},
		{"dropoff location", in.DropoffLocation},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, f.name)
		}
	}
	if math.IsNaN(in.CycleHoursUsed) || in.CycleHoursUsed < 0 || in.CycleHoursUsed > domain.MaxCycleHours {
		return fmt.Errorf("%w: cycle hours used must be between 0 and %g", domain.ErrValidation, domain.MaxCycleHours)
	}
	if in.StartTime.IsZero() {
		return fmt.Errorf("%w: start time is required", domain.ErrValidation)
	}
	return nil
}
