package logger

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "instaforce-engine"

const (
	AttrRunID     = "run.id"
	AttrStageName = "stage.name"
)

// SpanContext pairs a span with the context it was started in.
type SpanContext struct {
	ctx  context.Context
	span trace.Span
}

// StartRunSpan opens the consumer span for one queued run. When traceID is a
// valid hex trace ID carried on the queue message, the span joins that trace
// so the API request and the worker execution line up. The returned context
// carries the run ID as a log field.
//
//	sc := logger.StartRunSpan(ctx, msg.TraceID, runID)
//	defer sc.End()
//	ctx = sc.Context()
func StartRunSpan(ctx context.Context, traceID, runID string) *SpanContext {
	opts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(attribute.String(AttrRunID, runID)),
	}

	if parent, ok := remoteParent(traceID); ok {
		opts = append(opts, trace.WithLinks(trace.Link{SpanContext: parent}))
		ctx = trace.ContextWithRemoteSpanContext(ctx, parent)
	}

	sc := start(ctx, "worker.process_run", opts...)
	sc.ctx = WithLogFields(sc.ctx, LogFields{RunID: Ptr(runID)})
	return sc
}

// StartStageSpan opens "pipeline.<stage>" as a child of the current span,
// tagged with the run and stage. Logs written with Context() carry the stage.
//
//	sc := logger.StartStageSpan(ctx, state.RunID, "design")
//	defer sc.End()
func StartStageSpan(ctx context.Context, runID, stage string) *SpanContext {
	sc := start(ctx, "pipeline."+stage, trace.WithAttributes(
		attribute.String(AttrRunID, runID),
		attribute.String(AttrStageName, stage),
	))
	sc.ctx = WithLogFields(sc.ctx, LogFields{Stage: Ptr(stage)})
	return sc
}

func start(ctx context.Context, name string, opts ...trace.SpanStartOption) *SpanContext {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, opts...)
	return &SpanContext{ctx: ctx, span: span}
}

func remoteParent(traceID string) (trace.SpanContext, bool) {
	if traceID == "" {
		return trace.SpanContext{}, false
	}
	id, err := trace.TraceIDFromHex(traceID)
	if err != nil {
		return trace.SpanContext{}, false
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    id,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	}), true
}

func (sc *SpanContext) Context() context.Context {
	return sc.ctx
}

// End completes the span. Calling it more than once is a no-op.
func (sc *SpanContext) End() {
	if sc.span != nil {
		sc.span.End()
	}
}

// RecordError attaches err to the span without changing its status.
func (sc *SpanContext) RecordError(err error) {
	if sc.span != nil && err != nil {
		sc.span.RecordError(err)
	}
}

// Fail records err and marks the span as errored.
func (sc *SpanContext) Fail(err error) {
	if sc.span == nil || err == nil {
		return
	}
	sc.span.RecordError(err)
	sc.span.SetStatus(codes.Error, err.Error())
}

func (sc *SpanContext) Span() trace.Span {
	return sc.span
}
