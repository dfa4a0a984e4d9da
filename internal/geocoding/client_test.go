package geocoding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "California, United States", Describe("California", "United States"))
	assert.Equal(t, "Singapore", Describe("Singapore", "Singapore"))
	assert.Equal(t, "France", Describe("", "France"))
	assert.Equal(t, "Texas", Describe("Texas", " "))
	assert.Equal(t, "", Describe("", ""))
}

func TestReverseGeocode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "36.7", r.URL.Query().Get("lat"))
		assert.Equal(t, "-119.4", r.URL.Query().Get("lon"))
		assert.Equal(t, "key-1", r.URL.Query().Get("apiKey"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features":[{"properties":{"state":"California","country":"United States"}},{"properties":{"state":"Nevada"}}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "key-1", time.Second)
	got, err := c.ReverseGeocode(context.Background(), 36.7, -119.4)
	require.NoError(t, err)
	assert.Equal(t, "California, United States", got)
}

func TestReverseGeocodeFallsBackToFormatted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"features":[{"properties":{"formatted":"Atlantic Ocean"}}]}`))
	}))
	defer server.Close()

	got, err := NewClient(server.URL, "k", time.Second).ReverseGeocode(context.Background(), 0, -30)
	require.NoError(t, err)
	assert.Equal(t, "Atlantic Ocean", got)
}

func TestReverseGeocodeNoFeatures(t *testing.T) {
	for _, body := range []string{`{"features":[]}`, `{}`, `{"features":[{"properties":{}}]}`} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := NewClient(server.URL, "k", time.Second).ReverseGeocode(context.Background(), 1, 2)
		assert.ErrorIs(t, err, ErrNoResults, body)
		server.Close()
	}
}

func TestReverseGeocodeUpstreamStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad", time.Second).ReverseGeocode(context.Background(), 1, 2)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
}

func TestReverseGeocodeMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "k", time.Second).ReverseGeocode(context.Background(), 1, 2)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Zero(t, upstream.StatusCode)
}

func TestReverseGeocodeErrorsOmitAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	closedURL := server.URL
	server.Close()

	_, err := NewClient(closedURL, "SUPERSECRETKEY", time.Second).ReverseGeocode(context.Background(), 1, 2)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.NotContains(t, err.Error(), "SUPERSECRETKEY")
	assert.NotContains(t, err.Error(), "apiKey")
	assert.Contains(t, err.Error(), "reverse geocode")
}
