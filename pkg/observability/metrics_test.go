package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestMetricsExposedOnHandler(t *testing.T) {
	tel, err := Setup("test", nil)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())
	m := tel.Metrics

	ctx := context.Background()
	m.MessageCreated(ctx)
	m.MessagesPurged(ctx, 3)
	m.SummaryGenerated(ctx)
	m.UpstreamFailure(ctx, UpstreamGeocoding)

	server := httptest.NewServer(tel.Handler)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "messages_created_total 1")
	assert.Contains(t, text, "messages_purged_total 3")
	assert.Contains(t, text, "summaries_generated_total 1")
	assert.Contains(t, text, `upstream_failures_total{upstream="geocoding"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.MessageCreated(ctx)
	m.MessagesPurged(ctx, 1)
	m.SummaryGenerated(ctx)
	m.UpstreamFailure(ctx, UpstreamGeneration)
}

func TestSetupWithTracing(t *testing.T) {
	var spans bytes.Buffer
	tel, err := Setup("test", &spans)
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(context.Background(), "work")
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))
	assert.Contains(t, spans.String(), `"Name":"work"`)
}
