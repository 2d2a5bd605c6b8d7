package hos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/hos"
)

func TestScheduleBatch_ResultsInRequestOrder(t *testing.T) {
	s, err := hos.NewScheduler(hos.PropertyCarrying70)
	require.NoError(t, err)

	bad := tripInput(0)
	bad.DropoffLocation = ""
	reqs := []hos.Request{
		{Input: tripInput(0), Route: route(leg(240, 220), leg(300, 280))},
		{Input: bad, Route: route(leg(60, 50), leg(60, 50))},
		{Input: tripInput(68), Route: route(leg(600, 550), leg(600, 550))},
		{Input: tripInput(0), Route: route(leg(0, 0), leg(700, 600))},
	}

	results, err := s.ScheduleBatch(context.Background(), reqs, 2)

	require.NoError(t, err)
	require.Len(t, results, 4)
	assert.NoError(t, results[0].Err)
	assert.Len(t, results[0].Log.Days, 1)
	assert.ErrorIs(t, results[1].Err, domain.ErrValidation)
	assert.ErrorIs(t, results[2].Err, domain.ErrInfeasibleSchedule)
	assert.NoError(t, results[3].Err)
	assert.Len(t, results[3].Log.Days, 2)
}

func TestScheduleBatch_MatchesSequentialRuns(t *testing.T) {
	s, err := hos.NewScheduler(hos.PropertyCarrying70)
	require.NoError(t, err)

	var reqs []hos.Request
	for i := range 16 {
		reqs = append(reqs, hos.Request{
			Input: tripInput(float64(i)),
			Route: route(leg(60*i, 55*float64(i)), leg(900, 830)),
		})
	}

	results, err := s.ScheduleBatch(context.Background(), reqs, 4)
	require.NoError(t, err)

	for i, req := range reqs {
		want, wantErr := s.Schedule(req.Input, req.Route)
		assert.Equal(t, wantErr, results[i].Err)
		assert.Equal(t, want, results[i].Log)
	}
}

func TestScheduleBatch_Cancelled(t *testing.T) {
	s, err := hos.NewScheduler(hos.PropertyCarrying70)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.ScheduleBatch(ctx, []hos.Request{{Input: tripInput(0), Route: route(leg(60, 50), leg(60, 50))}}, 1)

	assert.ErrorIs(t, err, context.Canceled)
}
