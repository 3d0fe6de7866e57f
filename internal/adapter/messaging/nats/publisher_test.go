package nats

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/property/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestNewMessage_EncodesPayloadAndTraceContext(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	msg, err := newMessage(ctx, domain.SubjectPropertyCreated, domain.PropertyEvent{ID: "abc", Code: 7})
	require.NoError(t, err)

	assert.Equal(t, domain.SubjectPropertyCreated, msg.Subject)
	var ev domain.PropertyEvent
	require.NoError(t, json.Unmarshal(msg.Data, &ev))
	assert.Equal(t, domain.PropertyEvent{ID: "abc", Code: 7}, ev)

	carrier := HeaderCarrier(msg.Header)
	assert.Contains(t, carrier.Get("traceparent"), span.SpanContext().TraceID().String())

	extracted := propagation.TraceContext{}.Extract(context.Background(), carrier)
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
}

func TestNewMessage_RejectsUnencodablePayload(t *testing.T) {
	_, err := newMessage(context.Background(), "x", make(chan int))
	assert.Error(t, err)
}

func TestHeaderCarrier_Keys(t *testing.T) {
	c := HeaderCarrier{}
	c.Set("X-One", "1")
	c.Set("X-Two", "2")
	assert.ElementsMatch(t, []string{"X-One", "X-Two"}, c.Keys())
	assert.Equal(t, "1", c.Get("X-One"))
}
