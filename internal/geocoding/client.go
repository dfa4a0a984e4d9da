package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrNoResults is returned when the service knows no place at the coordinate
var ErrNoResults = errors.New("no location found")

// UpstreamError reports a failed call to the geocoding service
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("geocoding service returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("geocoding request failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Geocoder turns a coordinate into a place description
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)
}

// Client calls a Geoapify-style reverse geocoding endpoint
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type reverseResponse struct {
	Features []struct {
		Properties struct {
			State     string `json:"state"`
			Country   string `json:"country"`
			Formatted string `json:"formatted"`
		} `json:"properties"`
	} `json:"features"`
}

// ReverseGeocode returns "state, country" for the first feature at lat/lng
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) (description string, err error) {
	ctx, span := otel.Tracer("geocoding").Start(ctx, "geocoding.ReverseGeocode")
	span.SetAttributes(attribute.Float64("geo.lat", lat), attribute.Float64("geo.lng", lng))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("apiKey", c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &UpstreamError{Err: withoutURL(err)}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return "", &UpstreamError{StatusCode: httpResp.StatusCode}
	}

	var body reverseResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&body); err != nil {
		return "", &UpstreamError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(body.Features) == 0 {
		return "", ErrNoResults
	}

	props := body.Features[0].Properties
	description = Describe(props.State, props.Country)
	if description == "" {
		description = strings.TrimSpace(props.Formatted)
	}
	if description == "" {
		return "", ErrNoResults
	}
	return description, nil
}

// withoutURL drops the request URL, which carries the API key, from
// transport errors
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s reverse geocode: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// Describe joins the non-empty parts with ", ", dropping repeats
func Describe(parts ...string) string {
	seen := make(map[string]bool, len(parts))
	var kept []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		kept = append(kept, p)
	}
	return strings.Join(kept, ", ")
}
