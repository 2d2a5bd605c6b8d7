package routing

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Leg is one entry in a Static provider's table.
type Leg struct {
	From      string            `yaml:"from" json:"from"`
	To        string            `yaml:"to" json:"to"`
	Miles     float64           `yaml:"miles" json:"miles"`
	Minutes   int               `yaml:"minutes" json:"minutes"`
	Waypoints []domain.Waypoint `yaml:"waypoints,omitempty" json:"waypoints,omitempty"`
}

// Static answers from a fixed table of legs. Lookups are case-insensitive and
// ignore repeated whitespace. A leg from a place to itself is always known and
// has zero length.
type Static struct {
	legs map[string]domain.RouteEstimate
}

// NewStatic builds a Static provider. Every leg must pass
// RouteEstimate.Validate.
func NewStatic(legs []Leg) (*Static, error) {
	m := make(map[string]domain.RouteEstimate, len(legs))
	for _, l := range legs {
		est := domain.RouteEstimate{
			DistanceMiles:   l.Miles,
			DurationMinutes: l.Minutes,
			Waypoints:       l.Waypoints,
		}
		if err := est.Validate(); err != nil {
			return nil, fmt.Errorf("routing.NewStatic: %q -> %q: %w", l.From, l.To, err)
		}
		m[staticKey(l.From, l.To)] = est
	}
	return &Static{legs: m}, nil
}

func (s *Static) EstimateRoute(_ context.Context, origin, destination string) (domain.RouteEstimate, error) {
	o, d, err := checkEndpoints(origin, destination)
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("routing.Static.EstimateRoute: %w", err)
	}
	if strings.EqualFold(o, d) {
		return domain.RouteEstimate{}, nil
	}
	est, ok := s.legs[staticKey(o, d)]
	if !ok {
		return domain.RouteEstimate{}, fmt.Errorf("routing.Static.EstimateRoute: missing leg %q -> %q: %w",
			origin, destination, domain.ErrRouteUnavailable)
	}
	return est, nil
}

func staticKey(from, to string) string {
	return strings.ToLower(normalize(from)) + "|" + strings.ToLower(normalize(to))
}
