// Package observe decorates a schema.Executor with tracing and metrics.
package observe

import (
	"context"

	"github.com/tinywasm/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentation = "github.com/tinywasm/schema"

// Tracer returns the global tracer for schema executions.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentation)
}

// Trace wraps next so every Execute runs inside a span named after the action.
// A nil tracer uses Tracer().
func Trace(next schema.Executor, tracer trace.Tracer) *Executor {
	if tracer == nil {
		tracer = Tracer()
	}
	return Wrap(next, func(ctx context.Context, next schema.Executor, s *schema.Schema) error {
		ctx, span := tracer.Start(ctx, "schema."+s.Action.String(),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("schema.name", s.Name),
				attribute.String("schema.space", s.Space),
				attribute.Bool("schema.exclusive_create", s.ExclusiveCreate),
				attribute.Int("schema.create_fields", len(s.CreateFields)),
				attribute.Int("schema.update_fields", len(s.UpdateFields)),
				attribute.Int("schema.delete_fields", len(s.DeleteFields)),
				attribute.Int("schema.create_constraints", len(s.CreateConstraints)),
				attribute.Int("schema.delete_constraints", len(s.DeleteConstraints)),
			),
		)
		defer span.End()

		err := next.Execute(ctx, s)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	})
}
