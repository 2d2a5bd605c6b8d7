package hos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/hos"
)

func newBuilder(start time.Time, cycleUsed int) *hos.Builder {
	return hos.NewBuilder(hos.PropertyCarrying70, newClock(cycleUsed), start)
}

func TestBuilder_Add_ZeroMinutesEmitsNothing(t *testing.T) {
	b := newBuilder(time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), 0)

	require.NoError(t, b.Add(hos.Activity{Kind: domain.KindDriving, Status: domain.Driving}))
	require.NoError(t, b.Add(hos.Activity{Kind: domain.KindPickup, Status: domain.OnDuty}))

	assert.Empty(t, b.Segments())
}

func TestBuilder_Add_DrivingPastEightHoursGetsBreak(t *testing.T) {
	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	b := newBuilder(start, 0)

	require.NoError(t, b.Add(hos.Activity{
		Kind: domain.KindDriving, Status: domain.Driving, Minutes: 540, Miles: 450, Location: "I-80 E",
	}))

	segs := b.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, domain.Driving, segs[0].Status)
	assert.Equal(t, 480, segs[0].Minutes())
	assert.InDelta(t, 400, segs[0].Miles, 0.01)

	assert.Equal(t, domain.KindBreak, segs[1].Kind)
	assert.Equal(t, domain.OnDuty, segs[1].Status)
	assert.Equal(t, 30, segs[1].Minutes())
	assert.Equal(t, start.Add(8*time.Hour), segs[1].Start)

	assert.Equal(t, 60, segs[2].Minutes())
	assert.InDelta(t, 50, segs[2].Miles, 0.01)
	assert.Equal(t, start.Add(9*time.Hour+30*time.Minute), b.Cursor())
}

func TestBuilder_Add_SplitsAtMidnight(t *testing.T) {
	start := time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)
	b := newBuilder(start, 0)

	require.NoError(t, b.Add(hos.Activity{
		Kind: domain.KindDriving, Status: domain.Driving, Minutes: 240, Miles: 200, Location: "I-80 E",
	}))

	segs := b.Segments()
	require.Len(t, segs, 2)
	midnight := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, segs[0].End)
	assert.Equal(t, midnight, segs[1].Start)
	assert.InDelta(t, 100, segs[0].Miles, 0.01)
	assert.InDelta(t, 100, segs[1].Miles, 0.01)
	assert.Equal(t, domain.Driving, segs[1].Status, "the second half keeps the status")
}

func TestBuilder_Add_WorkLongerThanWindowIsInfeasible(t *testing.T) {
	b := newBuilder(time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), 0)

	err := b.Add(hos.Activity{Kind: domain.KindPickup, Status: domain.OnDuty, Minutes: 841})

	assert.ErrorIs(t, err, domain.ErrInfeasibleSchedule)
}

func TestBuilder_Add_WorkThatDoesNotFitTodayWaitsForRest(t *testing.T) {
	start := time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC)
	b := newBuilder(start, 0)
	require.NoError(t, b.Add(hos.Activity{Kind: domain.KindPickup, Status: domain.OnDuty, Minutes: 800, Location: "Warehouse"}))

	require.NoError(t, b.Add(hos.Activity{Kind: domain.KindDropoff, Status: domain.OnDuty, Minutes: 60, Location: "Dock 4"}))

	segs := b.Segments()
	last := segs[len(segs)-1]
	assert.Equal(t, domain.KindDropoff, last.Kind)
	assert.Equal(t, start.Add(800*time.Minute+600*time.Minute), last.Start,
		"only 40 minutes are left in the window, so the dropoff waits out a full rest")

	var rest int
	for _, s := range segs {
		if s.Kind == domain.KindRest {
			assert.Equal(t, domain.Sleeper, s.Status)
			rest += s.Minutes()
		}
	}
	assert.Equal(t, 600, rest)
}

func TestBuilder_Add_RecordsStops(t *testing.T) {
	b := newBuilder(time.Date(2025, 6, 2, 6, 0, 0, 0, time.UTC), 0)
	pos := &domain.Coordinates{Lon: -87.6, Lat: 41.9}

	require.NoError(t, b.Add(hos.Activity{
		Kind: domain.KindPickup, Status: domain.OnDuty, Minutes: 60, Location: "Chicago, IL", Position: pos,
	}))
	require.NoError(t, b.Add(hos.Activity{
		Kind: domain.KindInspection, Status: domain.OnDuty, Minutes: 15, Location: "Chicago, IL",
	}))

	stops := b.Stops()
	require.Len(t, stops, 1, "inspections are not map stops")
	assert.Equal(t, domain.KindPickup, stops[0].Kind)
	assert.Equal(t, pos, stops[0].Coordinates)
	assert.Equal(t, 60, stops[0].Minutes)
}
