package domain

import "fmt"

// DutyStatus is one of the four record-of-duty-status values.
// The string value is the wire and storage form.
type DutyStatus string

const (
	OffDuty DutyStatus = "off_duty"
	Sleeper DutyStatus = "sleeper"
	Driving DutyStatus = "driving"
	OnDuty  DutyStatus = "on_duty"
)

// DutyStatuses lists every status in grid order (top to bottom on a paper log).
var DutyStatuses = []DutyStatus{OffDuty, Sleeper, Driving, OnDuty}

// ParseDutyStatus converts a wire value into a DutyStatus.
func ParseDutyStatus(s string) (DutyStatus, error) {
	for _, st := range DutyStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown duty status %q", ErrValidation, s)
}

// Label is the human-readable name shown on a daily log.
func (s DutyStatus) Label() string {
	switch s {
	case OffDuty:
		return "Off Duty"
	case Sleeper:
		return "Sleeper"
	case Driving:
		return "Driving"
	case OnDuty:
		return "On Duty"
	}
	return string(s)
}

// IsWork reports whether time in this status counts against the on-duty
// window and the cycle.
func (s DutyStatus) IsWork() bool {
	return s == Driving || s == OnDuty
}

// SegmentKind records which activity produced a segment.
type SegmentKind string

const (
	KindOffDuty    SegmentKind = "off_duty"
	KindInspection SegmentKind = "inspection"
	KindDriving    SegmentKind = "driving"
	KindPickup     SegmentKind = "pickup"
	KindDropoff    SegmentKind = "dropoff"
	KindBreak      SegmentKind = "break"
	KindRest       SegmentKind = "rest"
	KindFuel       SegmentKind = "fuel"
	KindEndOfTrip  SegmentKind = "end_of_trip"
)

// IsStop reports whether the activity is a map-worthy stop along the route.
func (k SegmentKind) IsStop() bool {
	switch k {
	case KindPickup, KindDropoff, KindRest, KindFuel:
		return true
	}
	return false
}
