package hos

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// CertificationStatement is printed above the driver's signature on every
// daily log.
const CertificationStatement = "I hereby certify that my data entries and my record of duty status for this 24-hour period are true and correct."

// Aggregate reduces one calendar day's segments into a DayLog.
// cycleUsedBefore is the number of cycle minutes used before the day began,
// including the driver's starting cycle hours. The segments are not modified.
func Aggregate(date time.Time, segments []domain.Segment, cycleUsedBefore int, rules Rules) (domain.DayLog, error) {
	if len(segments) == 0 {
		return domain.DayLog{}, fmt.Errorf("hos.Aggregate: %s: %w", date.Format(time.DateOnly), domain.ErrEmptyDay)
	}

	minutes := make(map[domain.DutyStatus]int, len(domain.DutyStatuses))
	var miles float64
	for _, s := range segments {
		minutes[s.Status] += s.Minutes()
		miles += s.Miles
	}
	used := cycleUsedBefore + minutes[domain.Driving] + minutes[domain.OnDuty]

	day := startOfDay(date)
	y, m, d := day.Date()

	return domain.DayLog{
		Date:                day,
		Segments:            append([]domain.Segment(nil), segments...),
		DrivingHours:        hours(minutes[domain.Driving]),
		OnDutyHours:         hours(minutes[domain.OnDuty]),
		OffDutyHours:        hours(minutes[domain.OffDuty]),
		SleeperHours:        hours(minutes[domain.Sleeper]),
		DrivingMiles:        round2(miles),
		CycleHoursRemaining: round2(float64(rules.MaxCycle-used) / 60),
		Certification: domain.Certification{
			Date:        day,
			CertifiedAt: time.Date(y, m, d, 23, 59, 0, 0, day.Location()),
			Statement:   CertificationStatement,
		},
	}, nil
}

// BuildTripLog groups ordered segments by calendar day in loc and aggregates
// each day. It serves both fresh scheduling runs and logs rebuilt from
// storage, so both produce the same totals.
func BuildTripLog(
	tripID uuid.UUID,
	startCycleHours float64,
	loc *time.Location,
	segments []domain.Segment,
	stops []domain.RouteStop,
	rules Rules,
) (domain.TripLog, error) {
	out := domain.TripLog{
		TripID:          tripID,
		StartCycleHours: startCycleHours,
		Stops:           make([]domain.RouteStop, len(stops)),
	}
	for i, st := range stops {
		st.ArriveAt = st.ArriveAt.In(loc)
		out.Stops[i] = st
	}

	used := cycleMinutes(startCycleHours)
	var miles float64

	for i := 0; i < len(segments); {
		day := startOfDay(segments[i].Start.In(loc))
		next := nextMidnight(day)

		var daySegs []domain.Segment
		for ; i < len(segments) && segments[i].Start.In(loc).Before(next); i++ {
			s := segments[i]
			s.Start, s.End = s.Start.In(loc), s.End.In(loc)
			daySegs = append(daySegs, s)
		}

		dl, err := Aggregate(day, daySegs, used, rules)
		if err != nil {
			return domain.TripLog{}, fmt.Errorf("hos.BuildTripLog: %w", err)
		}
		out.Days = append(out.Days, dl)

		used += workMinutes(daySegs)
		miles += dl.DrivingMiles
	}

	out.TotalMiles = round2(miles)
	return out, nil
}

func workMinutes(segments []domain.Segment) int {
	var n int
	for _, s := range segments {
		if s.Status.IsWork() {
			n += s.Minutes()
		}
	}
	return n
}

func hours(minutes int) float64 {
	return round2(float64(minutes) / 60)
}
