package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const dbTracerName = "medisight.database"

// TracedPool wraps a DatabasePool and records an OpenTelemetry span per
// statement. Repositories stay unaware of tracing; main wires the wrapper
// around the real pool while tests pass mocks in directly.
type TracedPool struct {
	inner  DatabasePool
	tracer trace.Tracer
}

// NewTracedPool wraps pool with statement-level tracing.
func NewTracedPool(pool DatabasePool) *TracedPool {
	return &TracedPool{
		inner:  pool,
		tracer: otel.Tracer(dbTracerName),
	}
}

// Query executes a query that returns rows, recording a span around it.
func (p *TracedPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	ctx, span := p.startSpan(ctx, "db.query", sql)
	defer span.End()

	rows, err := p.inner.Query(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return rows, err
}

// QueryRow executes a single-row query, recording a span around it. Errors
// surface on row.Scan, so the span only carries the statement.
func (p *TracedPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	ctx, span := p.startSpan(ctx, "db.query_row", sql)
	defer span.End()

	return p.inner.QueryRow(ctx, sql, args...)
}

// Exec executes a statement without returning rows, recording a span with
// the affected row count.
func (p *TracedPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	ctx, span := p.startSpan(ctx, "db.exec", sql)
	defer span.End()

	tag, err := p.inner.Exec(ctx, sql, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return tag, err
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", tag.RowsAffected()))
	return tag, nil
}

func (p *TracedPool) startSpan(ctx context.Context, name, sql string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemPostgreSQL,
			attribute.String("db.statement", sql),
		),
	)
}
