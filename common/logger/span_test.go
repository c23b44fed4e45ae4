package logger_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"instaforce.app/engine/common/logger"
)

var _ = Describe("Spans", func() {
	var (
		recorder *tracetest.SpanRecorder
		previous trace.TracerProvider
	)

	BeforeEach(func() {
		previous = otel.GetTracerProvider()
		recorder = tracetest.NewSpanRecorder()
		otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	})

	AfterEach(func() {
		otel.SetTracerProvider(previous)
	})

	ended := func() sdktrace.ReadOnlySpan {
		spans := recorder.Ended()
		Expect(spans).To(HaveLen(1))
		return spans[0]
	}

	Describe("StartStageSpan", func() {
		It("names the span after the stage and tags run and stage", func() {
			sc := logger.StartStageSpan(context.Background(), "42", "design")
			sc.End()

			span := ended()
			Expect(span.Name()).To(Equal("pipeline.design"))
			Expect(span.Attributes()).To(ContainElements(
				attribute.String(logger.AttrRunID, "42"),
				attribute.String(logger.AttrStageName, "design"),
			))
			Expect(span.Status().Code).To(Equal(codes.Unset))
		})

		It("carries the stage into log fields", func() {
			sc := logger.StartStageSpan(context.Background(), "42", "codegen")
			defer sc.End()

			fields := logger.GetLogFields(sc.Context())
			Expect(fields.Stage).NotTo(BeNil())
			Expect(*fields.Stage).To(Equal("codegen"))
		})

		It("nests under the run span", func() {
			run := logger.StartRunSpan(context.Background(), "", "42")
			stage := logger.StartStageSpan(run.Context(), "42", "deploy")
			stage.End()
			run.End()

			spans := recorder.Ended()
			Expect(spans).To(HaveLen(2))
			Expect(spans[0].Parent().SpanID()).To(Equal(spans[1].SpanContext().SpanID()))
		})
	})

	Describe("Fail", func() {
		It("records the error and marks the span errored", func() {
			sc := logger.StartStageSpan(context.Background(), "42", "deploy")
			sc.Fail(errors.New("sf exited 1"))
			sc.End()

			span := ended()
			Expect(span.Status().Code).To(Equal(codes.Error))
			Expect(span.Status().Description).To(Equal("sf exited 1"))
			Expect(span.Events()).To(HaveLen(1))
			Expect(span.Events()[0].Name).To(Equal("exception"))
		})

		It("ignores a nil error", func() {
			sc := logger.StartStageSpan(context.Background(), "42", "deploy")
			sc.Fail(nil)
			sc.End()

			Expect(ended().Status().Code).To(Equal(codes.Unset))
		})
	})

	Describe("StartRunSpan", func() {
		It("joins the trace carried on the message", func() {
			const traceID = "4bf92f3577b34da6a3ce929d0e0e4736"
			sc := logger.StartRunSpan(context.Background(), traceID, "7")
			sc.End()

			span := ended()
			Expect(span.Name()).To(Equal("worker.process_run"))
			Expect(span.SpanKind()).To(Equal(trace.SpanKindConsumer))
			Expect(span.SpanContext().TraceID().String()).To(Equal(traceID))
			Expect(span.Links()).To(HaveLen(1))
			Expect(span.Attributes()).To(ContainElement(attribute.String(logger.AttrRunID, "7")))
			Expect(*logger.GetLogFields(sc.Context()).RunID).To(Equal("7"))
		})

		DescribeTable("starts a fresh trace without a usable trace ID",
			func(traceID string) {
				sc := logger.StartRunSpan(context.Background(), traceID, "7")
				sc.End()

				span := ended()
				Expect(span.Parent().IsValid()).To(BeFalse())
				Expect(span.Links()).To(BeEmpty())
			},
			Entry("empty", ""),
			Entry("not hex", "not-a-trace-id"),
		)
	})
})
