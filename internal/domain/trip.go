// Package domain contains the core data types for the ELD Logbook application.
// This package has no dependencies beyond uuid and is imported by every other
// internal package (hos, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxCycleHours is the upper bound for a driver's accumulated cycle hours.
const MaxCycleHours = 70.0

// TripInput is everything the scheduler needs to know about a trip besides
// its route. It is never mutated once a scheduling run starts.
//
// The location of StartTime is the log's home-terminal time zone: calendar
// days begin at midnight in that location.
type TripInput struct {
	ID              uuid.UUID
	CurrentLocation string
	PickupLocation  string
	DropoffLocation string
	CycleHoursUsed  float64
	StartTime       time.Time
}

// Trip is a stored TripInput.
// Planned is true once a log has been generated for the trip.
type Trip struct {
	ID              uuid.UUID `json:"id"`
	CurrentLocation string    `json:"current_location"`
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	CycleHoursUsed  float64   `json:"cycle_hours_used"`
	StartTime       time.Time `json:"start_time"`
	TimeZone        string    `json:"time_zone"` // IANA name, e.g. "America/Chicago"
	Notes           string    `json:"notes,omitempty"`
	Planned         bool      `json:"planned"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Location returns the trip's time zone; an unknown zone falls back to UTC.
func (t Trip) Location() *time.Location {
	loc, err := time.LoadLocation(t.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Input converts the stored trip into scheduler input with StartTime moved
// into the trip's time zone.
func (t Trip) Input() TripInput {
	return TripInput{
		ID:              t.ID,
		CurrentLocation: t.CurrentLocation,
		PickupLocation:  t.PickupLocation,
		DropoffLocation: t.DropoffLocation,
		CycleHoursUsed:  t.CycleHoursUsed,
		StartTime:       t.StartTime.In(t.Location()),
	}
}
