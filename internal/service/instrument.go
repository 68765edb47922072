package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/smallbiznis/jobboard/internal/service"

// instrumentation carries the logger and tracer shared by every service.
type instrumentation struct {
	logger *zap.Logger
	tracer trace.Tracer
}

func newInstrumentation(logger *zap.Logger) instrumentation {
	return instrumentation{logger: logger, tracer: otel.Tracer(tracerName)}
}

func (i instrumentation) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return i.tracer.Start(ctx, name)
}

// fail records err on the span. Taxonomy errors are expected outcomes and do
// not mark the span as failed.
func fail(span trace.Span, err error) error {
	span.RecordError(err)
	if KindOf(err) == KindServer {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (i instrumentation) audit(event string, attrs ...any) {
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for n := 0; n+1 < len(attrs); n += 2 {
		key, ok := attrs[n].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[n+1]))
	}
	i.log().Info("audit", fields...)
}

func (i instrumentation) log() *zap.Logger {
	if i.logger != nil {
		return i.logger
	}
	return zap.L()
}
