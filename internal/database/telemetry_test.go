package database

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecordingTracer(t *testing.T) *tracetest.SpanRecorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
	})
	return recorder
}

func TestTracedPool_ExecRecordsSpan(t *testing.T) {
	recorder := newRecordingTracer(t)
	mockPool := newMockPool(t)

	mockPool.ExpectExec("UPDATE diagnosis_records").
		WithArgs(true, "rec-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	pool := NewTracedPool(NewMockPoolAdapter(mockPool))
	tag, err := pool.Exec(context.Background(), "UPDATE diagnosis_records SET confirmed = $1 WHERE id = $2", true, "rec-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), tag.RowsAffected())

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.exec", spans[0].Name())

	attrs := spans[0].Attributes()
	var statement string
	for _, attr := range attrs {
		if string(attr.Key) == "db.statement" {
			statement = attr.Value.AsString()
		}
	}
	assert.Contains(t, statement, "UPDATE diagnosis_records")

	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestTracedPool_QueryPassesThroughErrors(t *testing.T) {
	recorder := newRecordingTracer(t)
	mockPool := newMockPool(t)

	mockPool.ExpectQuery("SELECT amount FROM invoices").
		WillReturnError(assert.AnError)

	pool := NewTracedPool(NewMockPoolAdapter(mockPool))
	rows, err := pool.Query(context.Background(), "SELECT amount FROM invoices")
	assert.Nil(t, rows)
	assert.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "db.query", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}
