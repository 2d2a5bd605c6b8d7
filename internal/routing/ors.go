package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pkordes/eld-logbook/internal/domain"
)

const (
	DefaultORSBaseURL = "https://api.openrouteservice.org"
	DefaultORSProfile = "driving-hgv"

	metersPerMile = 1609.344
)

// ORSConfig configures an ORS provider. Zero values pick the defaults.
type ORSConfig struct {
	APIKey  string
	BaseURL string
	Profile string
	// RequestsPerSecond and Burst bound outgoing calls across all goroutines.
	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// ORS estimates legs with the OpenRouteService geocoding and directions APIs.
// Waypoints are taken from the named road steps of the route. ORS is safe for
// concurrent use.
type ORS struct {
	client  *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
	backoff time.Duration
}

func NewORS(cfg ORSConfig) (*ORS, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("routing.NewORS: api key is empty")
	}
	o := &ORS{
		client:  &http.Client{Timeout: 10 * time.Second},
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		limiter: rate.NewLimiter(rate.Inf, 0),
		backoff: 200 * time.Millisecond,
	}
	if o.baseURL == "" {
		o.baseURL = DefaultORSBaseURL
	}
	if o.profile == "" {
		o.profile = DefaultORSProfile
	}
	if cfg.Timeout > 0 {
		o.client.Timeout = cfg.Timeout
	}
	if cfg.RequestsPerSecond > 0 {
		o.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}
	if cfg.Backoff > 0 {
		o.backoff = cfg.Backoff
	}
	return o, nil
}

func (o *ORS) EstimateRoute(ctx context.Context, origin, destination string) (domain.RouteEstimate, error) {
	from, to, err := checkEndpoints(origin, destination)
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("routing.ORS.EstimateRoute: %w", err)
	}

	start, err := o.geocode(ctx, from)
	if err != nil {
		return domain.RouteEstimate{}, unavailable(from, to, err)
	}
	end, err := o.geocode(ctx, to)
	if err != nil {
		return domain.RouteEstimate{}, unavailable(from, to, err)
	}
	if start == end {
		return domain.RouteEstimate{}, nil
	}

	est, err := o.directions(ctx, from, to, start, end)
	if err != nil {
		return domain.RouteEstimate{}, unavailable(from, to, err)
	}
	return est, nil
}

func unavailable(from, to string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("routing.ORS.EstimateRoute: %q -> %q: %w", from, to, err)
	}
	return fmt.Errorf("routing.ORS.EstimateRoute: %q -> %q: %w: %w", from, to, domain.ErrRouteUnavailable, err)
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// geocode resolves an address to its best-ranked US match.
func (o *ORS) geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	endpoint := o.baseURL + "/geocode/search"

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", address)
		q.Set("boundary.country", "US")
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geocode %q: %w", address, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q", address)
	}
	c := decoded.Features[0].Geometry.Coordinates
	if len(c) < 2 {
		return domain.Coordinates{}, fmt.Errorf("invalid coordinate format for %q", address)
	}
	return domain.Coordinates{Lon: c[0], Lat: c[1]}, nil
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
	Units       string       `json:"units"`
}

type directionsResponse struct {
	Features []struct {
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"`
				Duration float64 `json:"duration"`
			} `json:"summary"`
			Segments []struct {
				Steps []struct {
					Distance  float64 `json:"distance"`
					Duration  float64 `json:"duration"`
					Name      string  `json:"name"`
					WayPoints [2]int  `json:"way_points"`
				} `json:"steps"`
			} `json:"segments"`
		} `json:"properties"`
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (o *ORS) directions(ctx context.Context, from, to string, start, end domain.Coordinates) (domain.RouteEstimate, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", o.baseURL, o.profile)
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{{start.Lon, start.Lat}, {end.Lon, end.Lat}},
		Units:       "m",
	})
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("encode directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	})
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("directions: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("decode directions response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.RouteEstimate{}, errors.New("directions returned no route")
	}
	f := decoded.Features[0]
	coords := f.Geometry.Coordinates
	at := func(i int) domain.Coordinates {
		if i < 0 || i >= len(coords) || len(coords[i]) < 2 {
			return domain.Coordinates{}
		}
		return domain.Coordinates{Lon: coords[i][0], Lat: coords[i][1]}
	}

	est := domain.RouteEstimate{
		DistanceMiles:   miles(f.Properties.Summary.Distance),
		DurationMinutes: minutes(f.Properties.Summary.Duration),
		Waypoints:       []domain.Waypoint{{Label: from, Coordinates: start}},
	}

	var meters, seconds float64
	for _, seg := range f.Properties.Segments {
		for _, st := range seg.Steps {
			meters += st.Distance
			seconds += st.Duration
			name := strings.TrimSpace(st.Name)
			if name == "" || name == "-" || name == est.Waypoints[len(est.Waypoints)-1].Label {
				continue
			}
			// A step's waypoint is where the driver leaves that road.
			est.Waypoints = append(est.Waypoints, domain.Waypoint{
				Label:           name,
				Coordinates:     at(st.WayPoints[1]),
				DistanceMiles:   min(miles(meters), est.DistanceMiles),
				DurationMinutes: min(minutes(seconds), est.DurationMinutes),
			})
		}
	}
	est.Waypoints = append(est.Waypoints, domain.Waypoint{
		Label:           to,
		Coordinates:     end,
		DistanceMiles:   est.DistanceMiles,
		DurationMinutes: est.DurationMinutes,
	})

	if err := est.Validate(); err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("directions: %w", err)
	}
	return est, nil
}

func miles(meters float64) float64 {
	return math.Round(meters/metersPerMile*100) / 100
}

// minutes rounds up so that a non-empty leg never takes zero minutes.
func minutes(seconds float64) int {
	return int(math.Ceil(seconds / 60))
}
