package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const handlerSpanPrefix = "httpapi.Handler."

var apiTracer = otel.Tracer("propstats/internal/interfaces/httpapi")

// startHandlerSpan opens a handler span under the request span created by
// RequestTracing. Untraced requests (health probes, tests) get the span
// already in the context, which is a no-op.
func startHandlerSpan(r *http.Request, handler string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx := r.Context()
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	if id := requestIDFromContext(ctx); id != "" {
		attrs = append(attrs, attribute.String("http.request_id", id))
	}
	if playerID := r.PathValue("playerID"); playerID != "" {
		attrs = append(attrs, attribute.String("player.id", playerID))
	}
	return apiTracer.Start(ctx, handlerSpanPrefix+handler, trace.WithAttributes(attrs...))
}
