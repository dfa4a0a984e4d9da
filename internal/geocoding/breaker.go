package geocoding

import (
	"context"
	"errors"

	"chatonline-world/backend/pkg/resilience"
)

// IsUpstreamFailure reports whether err means the service misbehaved,
// as opposed to knowing no place at the coordinate.
func IsUpstreamFailure(err error) bool {
	return err != nil && !errors.Is(err, ErrNoResults)
}

type breakerGeocoder struct {
	next    Geocoder
	breaker *resilience.Breaker
}

// WithCircuitBreaker short-circuits calls to next while breaker is open.
// Short-circuited calls fail with an *UpstreamError.
func WithCircuitBreaker(next Geocoder, breaker *resilience.Breaker) Geocoder {
	return &breakerGeocoder{next: next, breaker: breaker}
}

func (g *breakerGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	var description string
	err := g.breaker.Call(func() error {
		var err error
		description, err = g.next.ReverseGeocode(ctx, lat, lng)
		return err
	})
	if errors.Is(err, resilience.ErrOpen) {
		return "", &UpstreamError{Err: err}
	}
	return description, err
}
