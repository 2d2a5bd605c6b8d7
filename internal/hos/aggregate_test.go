package hos_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/hos"
)

func seg(status domain.DutyStatus, start time.Time, minutes int) domain.Segment {
	return domain.Segment{
		Status: status,
		Start:  start,
		End:    start.Add(time.Duration(minutes) * time.Minute),
	}
}

func TestAggregate_Empty(t *testing.T) {
	_, err := hos.Aggregate(tripStart, nil, 0, hos.PropertyCarrying70)

	assert.ErrorIs(t, err, domain.ErrEmptyDay)
}

func TestAggregate_TotalsAndCertification(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	segs := []domain.Segment{
		seg(domain.OffDuty, day, 360),
		seg(domain.OnDuty, day.Add(6*time.Hour), 60),
		seg(domain.Driving, day.Add(7*time.Hour), 200),
		seg(domain.Sleeper, day.Add(7*time.Hour+200*time.Minute), 820),
	}
	segs[2].Miles = 180.5

	got, err := hos.Aggregate(day.Add(13*time.Hour), segs, 30*60, hos.PropertyCarrying70)

	require.NoError(t, err)
	assert.Equal(t, day, got.Date, "date is normalised to midnight")
	assert.Equal(t, 3.33, got.DrivingHours)
	assert.Equal(t, 1.0, got.OnDutyHours)
	assert.Equal(t, 6.0, got.OffDutyHours)
	assert.Equal(t, 13.67, got.SleeperHours)
	assert.Equal(t, 180.5, got.DrivingMiles)
	assert.Equal(t, 35.67, got.CycleHoursRemaining, "70 - 30 - 260/60")
	assert.Len(t, got.Segments, 4)

	assert.Equal(t, day, got.Certification.Date)
	assert.Equal(t, time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC), got.Certification.CertifiedAt)
	assert.Equal(t, hos.CertificationStatement, got.Certification.Statement)
}

func TestAggregate_DoesNotAliasInput(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	segs := []domain.Segment{seg(domain.OffDuty, day, 1440)}

	got, err := hos.Aggregate(day, segs, 0, hos.PropertyCarrying70)
	require.NoError(t, err)

	got.Segments[0].Notes = "changed"
	assert.Empty(t, segs[0].Notes)
}

func TestBuildTripLog_RebuildsStoredSegmentsInTripZone(t *testing.T) {
	denver, err := time.LoadLocation("America/Denver")
	require.NoError(t, err)

	in := tripInput(10)
	in.StartTime = time.Date(2025, 6, 2, 6, 0, 0, 0, denver)
	original, err := hos.ScheduleTrip(in, route(leg(300, 270), leg(700, 640)))
	require.NoError(t, err)

	// Storage hands timestamps back in UTC.
	stored := original.Segments()
	for i := range stored {
		stored[i].Start, stored[i].End = stored[i].Start.UTC(), stored[i].End.UTC()
	}
	stops := append([]domain.RouteStop(nil), original.Stops...)
	for i := range stops {
		stops[i].ArriveAt = stops[i].ArriveAt.UTC()
	}

	rebuilt, err := hos.BuildTripLog(original.TripID, 10, denver, stored, stops, hos.PropertyCarrying70)

	require.NoError(t, err)
	require.Len(t, rebuilt.Days, len(original.Days))
	for i := range original.Days {
		assert.True(t, original.Days[i].Date.Equal(rebuilt.Days[i].Date))
		assert.Equal(t, original.Days[i].DrivingHours, rebuilt.Days[i].DrivingHours)
		assert.Equal(t, original.Days[i].CycleHoursRemaining, rebuilt.Days[i].CycleHoursRemaining)
	}
	assert.Equal(t, original.TotalMiles, rebuilt.TotalMiles)
	assert.Equal(t, denver, rebuilt.Days[0].Segments[0].Start.Location())
}

func TestBuildTripLog_NoSegments(t *testing.T) {
	got, err := hos.BuildTripLog(uuid.New(), 0, time.UTC, nil, nil, hos.PropertyCarrying70)

	require.NoError(t, err)
	assert.Empty(t, got.Days)
	assert.Zero(t, got.TotalMiles)
}
