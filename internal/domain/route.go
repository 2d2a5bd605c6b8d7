package domain

import (
	"fmt"
	"math"
)

// Coordinates is a geographic point (longitude, latitude).
type Coordinates struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Waypoint is a labelled point along a leg. DistanceMiles and DurationMinutes
// are cumulative offsets from the start of the leg.
type Waypoint struct {
	Label           string      `json:"label" yaml:"label"`
	Coordinates     Coordinates `json:"coordinates" yaml:"coordinates"`
	DistanceMiles   float64     `json:"distance_miles" yaml:"miles"`
	DurationMinutes int         `json:"duration_minutes" yaml:"minutes"`
}

// RouteEstimate is the routing provider's answer for a single leg.
// The core treats it as ground truth.
type RouteEstimate struct {
	DistanceMiles   float64    `json:"distance_miles"`
	DurationMinutes int        `json:"duration_minutes"`
	Waypoints       []Waypoint `json:"waypoints"`
}

// TripRoute holds the two driving legs of a trip.
type TripRoute struct {
	ToPickup  RouteEstimate `json:"to_pickup"`
	ToDropoff RouteEstimate `json:"to_dropoff"`
}

// Validate reports whether the estimate can be scheduled.
// A zero-length leg (no distance, no duration) is valid.
func (r RouteEstimate) Validate() error {
	switch {
	case r.DistanceMiles < 0 || math.IsNaN(r.DistanceMiles) || math.IsInf(r.DistanceMiles, 0):
		return fmt.Errorf("%w: distance must be a non-negative number", ErrValidation)
	case r.DurationMinutes < 0:
		return fmt.Errorf("%w: duration must not be negative", ErrValidation)
	case r.DistanceMiles > 0 && r.DurationMinutes == 0:
		return fmt.Errorf("%w: a leg with distance needs a driving duration", ErrValidation)
	}
	return nil
}

// Validate checks both legs.
func (r TripRoute) Validate() error {
	if err := r.ToPickup.Validate(); err != nil {
		return fmt.Errorf("pickup leg: %w", err)
	}
	if err := r.ToDropoff.Validate(); err != nil {
		return fmt.Errorf("dropoff leg: %w", err)
	}
	return nil
}

// LocateAt returns the last waypoint reached after driving the given number
// of minutes along the leg. ok is false when the leg has no waypoints.
func (r RouteEstimate) LocateAt(minutes int) (wp Waypoint, ok bool) {
	for _, w := range r.Waypoints {
		if w.DurationMinutes > minutes {
			break
		}
		wp, ok = w, true
	}
	if !ok && len(r.Waypoints) > 0 {
		return r.Waypoints[0], true
	}
	return wp, ok
}

// SplitAtWaypoint splits a combined current→dropoff estimate into the two
// legs of a TripRoute at the waypoint index of the pickup. The index is
// external input; it is never guessed.
func SplitAtWaypoint(combined RouteEstimate, pickup int) (TripRoute, error) {
	if pickup < 0 || pickup >= len(combined.Waypoints) {
		return TripRoute{}, fmt.Errorf("%w: pickup waypoint index %d out of range", ErrValidation, pickup)
	}
	split := combined.Waypoints[pickup]
	if split.DistanceMiles > combined.DistanceMiles || split.DurationMinutes > combined.DurationMinutes {
		return TripRoute{}, fmt.Errorf("%w: pickup waypoint lies beyond the end of the route", ErrValidation)
	}

	first := RouteEstimate{
		DistanceMiles:   split.DistanceMiles,
		DurationMinutes: split.DurationMinutes,
		Waypoints:       append([]Waypoint(nil), combined.Waypoints[:pickup+1]...),
	}

	rest := combined.Waypoints[pickup:]
	second := RouteEstimate{
		DistanceMiles:   combined.DistanceMiles - split.DistanceMiles,
		DurationMinutes: combined.DurationMinutes - split.DurationMinutes,
		Waypoints:       make([]Waypoint, len(rest)),
	}
	for i, w := range rest {
		w.DistanceMiles -= split.DistanceMiles
		w.DurationMinutes -= split.DurationMinutes
		second.Waypoints[i] = w
	}

	return TripRoute{ToPickup: first, ToDropoff: second}, nil
}
