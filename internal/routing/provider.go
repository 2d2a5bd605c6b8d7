// Package routing turns pairs of free-text locations into RouteEstimates.
//
// The scheduler never calls a routing service itself; the service layer asks
// a Provider for both legs and hands the result to package hos. Providers in
// this package:
//
//   - ORS: OpenRouteService geocoding plus HGV directions, with retry and a
//     client-side rate limit.
//   - Cache: a Redis read-through decorator around any Provider.
//   - Static: a fixed table of legs, used by the CLI and in tests.
//   - Fallback: asks a second Provider when the first has no route.
//   - Unavailable: always fails; used when no routing backend is configured.
package routing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Provider estimates a single driving leg.
// Failures to reach or understand the backend wrap domain.ErrRouteUnavailable.
type Provider interface {
	EstimateRoute(ctx context.Context, origin, destination string) (domain.RouteEstimate, error)
}

// normalize collapses whitespace so equivalent addresses share cache keys.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func checkEndpoints(origin, destination string) (string, string, error) {
	o, d := normalize(origin), normalize(destination)
	if o == "" || d == "" {
		return "", "", fmt.Errorf("%w: origin and destination must be non-empty", domain.ErrValidation)
	}
	return o, d, nil
}

// Unavailable is the Provider used when no routing backend is configured.
type Unavailable struct{}

func (Unavailable) EstimateRoute(_ context.Context, origin, destination string) (domain.RouteEstimate, error) {
	return domain.RouteEstimate{}, fmt.Errorf("routing.Unavailable: %q -> %q: no routing backend configured: %w",
		origin, destination, domain.ErrRouteUnavailable)
}

// Fallback asks Primary first and Secondary only when Primary reports
// domain.ErrRouteUnavailable. Other errors are returned as they are.
type Fallback struct {
	Primary   Provider
	Secondary Provider
}

func (f Fallback) EstimateRoute(ctx context.Context, origin, destination string) (domain.RouteEstimate, error) {
	est, err := f.Primary.EstimateRoute(ctx, origin, destination)
	if err == nil || !errors.Is(err, domain.ErrRouteUnavailable) || f.Secondary == nil {
		return est, err
	}
	return f.Secondary.EstimateRoute(ctx, origin, destination)
}
