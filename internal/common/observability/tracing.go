package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"reco-workers/internal/common/logger"
)

// newTracerProvider returns a provider that batches spans to Jaeger when an
// endpoint is set, and a local-only provider otherwise.
func newTracerProvider(endpoint string, res *resource.Resource, log logger.Logger) *sdktrace.TracerProvider {
	opts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	if endpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)))
		if err != nil {
			log.Warn("jaeger exporter init failed, tracing stays local", map[string]interface{}{
				"endpoint": endpoint,
				"error":    err.Error(),
			})
		} else {
			opts = append(opts, sdktrace.WithBatcher(exp))
			log.Info("tracing initialized", map[string]interface{}{"endpoint": endpoint})
		}
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp
}
