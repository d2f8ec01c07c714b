package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
)

// restoreGlobalProvider puts back the global tracer provider after a test replaces it
func restoreGlobalProvider(t *testing.T) {
	t.Helper()
	original := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(original) })
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:4317",
		SamplingRatio:     1.0,
		ServiceName:       "backoffice",
	}

	tp, err := NewTracerProvider(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.Equal(t, otel.GetTracerProvider(), tp.Provider())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestNewTracerProvider_EnabledBuildsExporterAndResource(t *testing.T) {
	restoreGlobalProvider(t)
	ctx := context.Background()

	// The gRPC exporter dials lazily, so no collector is needed to construct it
	tp, err := NewTracerProvider(ctx, config.TelemetryConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:4317",
		Insecure:          true,
		SamplingRatio:     1.0,
		ServiceName:       "backoffice",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	assert.True(t, tp.IsEnabled())
	assert.Equal(t, tp.Provider(), otel.GetTracerProvider())
}

func TestNewTracerProvider_RecordsSpansWithServiceResource(t *testing.T) {
	restoreGlobalProvider(t)
	sr := tracetest.NewSpanRecorder()

	tp, err := newTracerProvider(config.TelemetryConfig{
		Enabled:       true,
		SamplingRatio: 1.0,
		ServiceName:   "backoffice-test",
	}, zaptest.NewLogger(t), sdktrace.WithSpanProcessor(sr))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	assert.True(t, tp.IsEnabled())

	_, span := tp.Tracer("test").Start(context.Background(), "unit")
	span.End()
	require.NoError(t, tp.ForceFlush(context.Background()))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "unit", spans[0].Name())

	var serviceName string
	for _, attr := range spans[0].Resource().Attributes() {
		if attr.Key == "service.name" {
			serviceName = attr.Value.AsString()
		}
	}
	assert.Equal(t, "backoffice-test", serviceName)
	assert.Equal(t, resource.Default().SchemaURL(), spans[0].Resource().SchemaURL())

	// Installed globally so otelgin and service spans share it
	assert.Equal(t, tp.Provider(), otel.GetTracerProvider())
}

func TestNewTracerProvider_NeverSampleDropsRootSpans(t *testing.T) {
	restoreGlobalProvider(t)
	sr := tracetest.NewSpanRecorder()

	tp, err := newTracerProvider(config.TelemetryConfig{Enabled: true, SamplingRatio: 0}, zaptest.NewLogger(t), sdktrace.WithSpanProcessor(sr))
	require.NoError(t, err)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "dropped")
	span.End()

	assert.Empty(t, sr.Ended())
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio    float64
		contains string
	}{
		{1.0, "AlwaysOnSampler"},
		{2.0, "AlwaysOnSampler"},
		{0.0, "AlwaysOffSampler"},
		{0.25, "TraceIDRatioBased{0.25}"},
	}
	for _, tt := range tests {
		desc := samplerFor(tt.ratio).Description()
		assert.Contains(t, desc, "ParentBased")
		assert.Contains(t, desc, tt.contains)
	}
}
