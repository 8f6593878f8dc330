package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/matzehuels/sugarcheck"

// TracingHooks turns analysis and HTTP events into OpenTelemetry spans:
// one span per model load, one per classification with an event per residue,
// and one per served request.
type TracingHooks struct {
	tracer trace.Tracer
}

// NewTracingHooks returns tracing hooks using tracer, or the global tracer
// provider when tracer is nil.
func NewTracingHooks(tracer trace.Tracer) *TracingHooks {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &TracingHooks{tracer: tracer}
}

func (h *TracingHooks) OnLoadStart(ctx context.Context, source string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "sugarcheck.Load",
		trace.WithAttributes(attribute.String("source", source)))
	return ctx
}

func (h *TracingHooks) OnLoadComplete(ctx context.Context, _ string, atoms int, d time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("atoms", atoms),
		attribute.Int64("duration_ms", d.Milliseconds()),
	)
	end(span, err)
}

func (h *TracingHooks) OnClassifyStart(ctx context.Context, structureID string, candidates int) context.Context {
	ctx, _ = h.tracer.Start(ctx, "sugarcheck.Classify",
		trace.WithAttributes(
			attribute.String("structure", structureID),
			attribute.Int("candidates", candidates),
		))
	return ctx
}

func (h *TracingHooks) OnResidue(ctx context.Context, ev ResidueEvent) {
	trace.SpanFromContext(ctx).AddEvent("residue", trace.WithAttributes(
		attribute.String("residue", ev.Residue),
		attribute.String("altloc", ev.AltLoc),
		attribute.Bool("supported", ev.Supported),
		attribute.Bool("sane", ev.Sane),
		attribute.String("denomination", ev.Denomination),
		attribute.String("conformation", ev.Conformation),
	))
}

func (h *TracingHooks) OnClassifyComplete(ctx context.Context, _ string, sugars int, d time.Duration, err error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("sugars", sugars),
		attribute.Int64("duration_ms", d.Milliseconds()),
	)
	end(span, err)
}

func (h *TracingHooks) OnRequest(ctx context.Context, method, route string) context.Context {
	ctx, _ = h.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", route),
		))
	return ctx
}

func (h *TracingHooks) OnResponse(ctx context.Context, _, _ string, status int, d time.Duration) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("http.status_code", status),
		attribute.Int64("duration_ms", d.Milliseconds()),
	)
	if status >= 500 {
		span.SetStatus(codes.Error, "server error")
	}
	span.End()
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

var (
	_ AnalysisHooks = (*TracingHooks)(nil)
	_ HTTPHooks     = (*TracingHooks)(nil)
)
