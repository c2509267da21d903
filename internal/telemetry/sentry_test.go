package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_EmptyDSNIsNoop(t *testing.T) {
	shutdown, err := Init(Config{}, zerolog.Nop())

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestStartSpan_WithoutSentry(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "IngestService.Save", SpanAttributes{
		URL:       "https://example.com",
		Operation: "save",
	})
	defer span.End()

	assert.NotNil(t, ctx)

	// no initialized client
	span.Tag("item_id", "item-1")
	span.SetError(errors.New("boom"))
	AddWarningBreadcrumb(ctx, "fetch", "degraded")
}

func TestSpan_NilInnerIsSafe(t *testing.T) {
	span := &Span{}

	span.Tag("platform", "youtube")
	span.SetError(errors.New("boom"))
	span.End()
}

func TestSampleRate(t *testing.T) {
	ctx := context.Background()

	health := sentry.StartSpan(ctx, "http.server", sentry.WithTransactionName("GET /health"))
	health.Name = "GET /health"
	assert.Equal(t, 0.0, sampleRate(health, 0.5))

	save := sentry.StartSpan(ctx, "http.server", sentry.WithTransactionName("POST /api/save"))
	assert.Equal(t, 0.5, sampleRate(save, 0.5))

	child := save.StartChild("IngestService.Save")
	child.Sampled = sentry.SampledTrue
	assert.Equal(t, 1.0, sampleRate(child, 0.5))

	child.Sampled = sentry.SampledFalse
	assert.Equal(t, 0.0, sampleRate(child, 0.5))

	assert.Equal(t, 0.25, sampleRate(nil, 0.25))
}
