// Package hos implements the Hours-of-Service duty-status scheduler.
//
// Given a trip and its route legs, ScheduleTrip produces an ordered list of
// duty-status segments that respects the driving, on-duty window, break, rest
// and cycle limits of a Rules table, and aggregates them into daily logs.
// Everything in this package is pure: no I/O, no clock reads, no globals that
// change. A run owns its Clock; independent runs can proceed in parallel.
package hos

import (
	"fmt"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Rules is a table of regulatory limits and fixed activity durations.
// All durations are in minutes.
type Rules struct {
	Name string

	MaxDrivingBeforeBreak int // driving allowed before a qualifying break
	BreakMinutes          int // length of a qualifying break
	MaxDrivingPerDay      int
	MaxOnDutyWindow       int // measured from the first on-duty event of the duty day
	MinRestReset          int // off-duty/sleeper time that starts a new duty day
	MaxCycle              int
	CycleDays             int

	FuelIntervalMiles float64 // 0 disables fuel stops
	FuelStopMinutes   int

	InspectionMinutes int
	PickupMinutes     int
	DropoffMinutes    int
}

// PropertyCarrying70 is the federal property-carrying rule set on the
// 70-hour/8-day cycle, with a fuel stop at least every 1,000 miles and one
// hour each for pre-trip inspection, pickup and dropoff.
var PropertyCarrying70 = Rules{
	Name:                  "property-carrying 70h/8d",
	MaxDrivingBeforeBreak: 8 * 60,
	BreakMinutes:          30,
	MaxDrivingPerDay:      11 * 60,
	MaxOnDutyWindow:       14 * 60,
	MinRestReset:          10 * 60,
	MaxCycle:              70 * 60,
	CycleDays:             8,
	FuelIntervalMiles:     1000,
	FuelStopMinutes:       30,
	InspectionMinutes:     60,
	PickupMinutes:         60,
	DropoffMinutes:        60,
}

// Validate rejects tables that would make the scheduler loop or emit
// meaningless segments.
func (r Rules) Validate() error {
	for _, l := range []struct {
		name  string
		value int
	}{
		{"max driving before break", r.MaxDrivingBeforeBreak},
		{"break minutes", r.BreakMinutes},
		{"max driving per day", r.MaxDrivingPerDay},
		{"max on-duty window", r.MaxOnDutyWindow},
		{"min rest reset", r.MinRestReset},
		{"max cycle", r.MaxCycle},
	} {
		if l.value <= 0 {
			return fmt.Errorf("%w: rules %q: %s must be positive", domain.ErrValidation, r.Name, l.name)
		}
	}
	if r.BreakMinutes >= r.MaxOnDutyWindow {
		return fmt.Errorf("%w: rules %q: break must be shorter than the on-duty window", domain.ErrValidation, r.Name)
	}
	if r.FuelIntervalMiles < 0 || r.FuelStopMinutes < 0 {
		return fmt.Errorf("%w: rules %q: fuel settings must not be negative", domain.ErrValidation, r.Name)
	}
	return nil
}

// MaxCycleHours is the cycle limit in hours.
func (r Rules) MaxCycleHours() float64 {
	return float64(r.MaxCycle) / 60
}
