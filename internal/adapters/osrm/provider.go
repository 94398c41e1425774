package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fleet-routing-service/internal/ports"

	"golang.org/x/time/rate"
)

// Provider implements RouteProvider against the OSRM route service.
//
// It coordinates:
//   - Route endpoint calls with retry/backoff
//   - Client-side rate limiting (public OSRM instances throttle hard)
//
// The provider is safe for concurrent use.
type Provider struct {
	session *http.Client
	baseURL string
	profile string
	limiter *rate.Limiter
}

// NewProvider builds an OSRM provider. rps bounds outbound request rate;
// zero or negative disables limiting.
func NewProvider(baseURL string, rps float64) (*Provider, error) {
	if baseURL == "" {
		return nil, errors.New("OSRM base URL is empty")
	}

	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	provider := &Provider{
		session: &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		profile: "driving",
		limiter: limiter,
	}

	return provider, nil
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Route returns road distance (km) and duration (minutes) between two
// coordinates.
func (o *Provider) Route(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return ports.RouteResult{}, fmt.Errorf("osrm route: rate limiter: %w", err)
		}
	}

	// OSRM takes lon,lat ordering in the URL.
	endpoint := fmt.Sprintf(
		"%s/route/v1/%s/%f,%f;%f,%f?overview=false",
		o.baseURL, o.profile,
		origin.Lon, origin.Lat,
		destination.Lon, destination.Lat,
	)

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, endpoint)
	})
	if err != nil {
		obs.ProviderCalls.WithLabelValues("error").Inc()
		return ports.RouteResult{}, fmt.Errorf("osrm route request: %w", err)
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		obs.ProviderCalls.WithLabelValues("error").Inc()
		return ports.RouteResult{}, fmt.Errorf("decode osrm response: %w", err)
	}

	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		obs.ProviderCalls.WithLabelValues("empty").Inc()
		return ports.RouteResult{}, fmt.Errorf("osrm returned no route (code=%q)", rr.Code)
	}

	best := rr.Routes[0]
	obs.ProviderCalls.WithLabelValues("ok").Inc()
	return ports.RouteResult{
		DistanceKm:  best.Distance / 1000,
		DurationMin: best.Duration / 60,
	}, nil
}
