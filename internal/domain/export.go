package domain

import "time"

// GridRow is a single row of the compliance-grid export.
// It is a flat, denormalized view: one row per segment, with the day's date
// and trip identity repeated for every segment of that day.
type GridRow struct {
	TripID   string
	Date     string // "2006-01-02" in the log's time zone
	Start    time.Time
	End      time.Time
	Status   DutyStatus
	Location string
	Notes    string
	Miles    float64
}
