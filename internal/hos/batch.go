package hos

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Request is one trip to schedule in a batch.
type Request struct {
	Input domain.TripInput
	Route domain.TripRoute
}

// Result is the outcome of one Request. Exactly one of Log and Err is set.
type Result struct {
	Log domain.TripLog
	Err error
}

// ScheduleBatch schedules independent trips on up to workers goroutines.
// Each run owns its own Clock, so runs share nothing. Results are returned in
// request order; a failing trip does not stop the others. The returned error
// is non-nil only when ctx is cancelled before every trip was scheduled.
func (s *Scheduler) ScheduleBatch(ctx context.Context, reqs []Request, workers int) ([]Result, error) {
	results := make([]Result, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log, err := s.Schedule(req.Input, req.Route)
			results[i] = Result{Log: log, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
