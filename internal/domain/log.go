package domain

import (
	"time"

	"github.com/google/uuid"
)

// Segment is one contiguous interval in a single duty status.
// Every segment belongs to exactly one calendar day; the scheduler splits at
// midnight so that End never lies past the next 00:00.
type Segment struct {
	Status   DutyStatus   `json:"status"`
	Kind     SegmentKind  `json:"kind"`
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Location string       `json:"location"`
	Notes    string       `json:"notes,omitempty"`
	Miles    float64      `json:"miles,omitempty"`    // driving distance covered, 0 for non-driving
	Position *Coordinates `json:"position,omitempty"` // nil when no waypoint was known
}

// Minutes returns the segment length in whole minutes.
func (s Segment) Minutes() int {
	return int(s.End.Sub(s.Start) / time.Minute)
}

// Certification is the driver's attestation block printed at the bottom of a
// daily log.
type Certification struct {
	Date        time.Time `json:"date"`
	CertifiedAt time.Time `json:"certified_at"`
	Statement   string    `json:"statement"`
}

// DayLog is one calendar day of a TripLog with its derived totals.
type DayLog struct {
	Date                time.Time     `json:"date"` // midnight in the log's time zone
	Segments            []Segment     `json:"segments"`
	DrivingHours        float64       `json:"driving_hours"`
	OnDutyHours         float64       `json:"on_duty_hours"`
	OffDutyHours        float64       `json:"off_duty_hours"`
	SleeperHours        float64       `json:"sleeper_hours"`
	DrivingMiles        float64       `json:"driving_miles"`
	CycleHoursRemaining float64       `json:"cycle_hours_remaining"`
	Certification       Certification `json:"certification"`
}

// RouteStop is a point of interest for the map: pickup, dropoff, a rest or a
// fuel stop, with the time the driver arrives there.
type RouteStop struct {
	Kind        SegmentKind  `json:"kind"`
	Location    string       `json:"location"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	ArriveAt    time.Time    `json:"arrive_at"`
	Minutes     int          `json:"minutes"`
}

// TripLog is the complete output of one scheduling run.
// It is read-only once returned; a route change requires a fresh run.
type TripLog struct {
	TripID          uuid.UUID   `json:"trip_id"`
	StartCycleHours float64     `json:"start_cycle_hours"`
	TotalMiles      float64     `json:"total_miles"`
	Days            []DayLog    `json:"days"`
	Stops           []RouteStop `json:"stops"`
}

// Segments flattens the day logs back into a single ordered slice.
func (l TripLog) Segments() []Segment {
	var out []Segment
	for _, d := range l.Days {
		out = append(out, d.Segments...)
	}
	return out
}

// LogRecord is the persisted form of a TripLog: the raw segments and stops.
// Day totals are derived again on read.
type LogRecord struct {
	TripID          uuid.UUID
	StartCycleHours float64
	Segments        []Segment
	Stops           []RouteStop
	GeneratedAt     time.Time
}
