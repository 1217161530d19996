package observability

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "job-trail"

const (
	AttrJobApplicationID = "job_trail.job_application.id"
	AttrTimelineEventID  = "job_trail.timeline.event_id"
	AttrEventKind        = "job_trail.timeline.event_kind"
	AttrStatus           = "job_trail.status"
)

// Tracer wraps an OpenTelemetry tracer with job-application span helpers.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer uses tp, or the global provider when tp is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartTimeline starts a span for one timeline operation, e.g. "timeline.undo".
func (t *Tracer) StartTimeline(ctx context.Context, op string, appID uuid.UUID) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "timeline."+op, trace.WithAttributes(
		attribute.String(AttrJobApplicationID, appID.String()),
	))
}

func (t *Tracer) StartJobApplication(ctx context.Context, op string, appID uuid.UUID) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{}
	if appID != uuid.Nil {
		attrs = append(attrs, attribute.String(AttrJobApplicationID, appID.String()))
	}
	return t.tracer.Start(ctx, "job_application."+op, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func (t *Tracer) End(span trace.Span, err error) {
	t.RecordError(span, err)
	span.End()
}

func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
