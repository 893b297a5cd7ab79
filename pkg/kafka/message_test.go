package kafka

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	msg, err := NewMessage().
		WithKey("b-1").
		WithValue(map[string]int{"amount": 10000}).
		WithEventType("payment.recorded").
		WithCorrelationID("req-9").
		WithSource("bookings").
		WithSchemaVersion("1").
		WithTimestamp(ts).
		Build()
	require.NoError(t, err)

	assert.Equal(t, "b-1", msg.Key)
	assert.JSONEq(t, `{"amount":10000}`, string(msg.Value))
	assert.Equal(t, "payment.recorded", msg.GetEventType())
	assert.Equal(t, "req-9", msg.GetCorrelationID())
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, ts.Format(time.RFC3339), msg.Headers[HeaderTimestamp])

	var decoded map[string]int
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, 10000, decoded["amount"])
}

func TestMessageBuilder_EmptyCorrelationIDIsOmitted(t *testing.T) {
	msg, err := NewMessage().WithKey("k").WithValue(1).WithCorrelationID("").Build()
	require.NoError(t, err)
	_, ok := msg.GetHeader(HeaderCorrelationID)
	assert.False(t, ok)
}

func TestMessageBuilder_EncodingError(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(math.Inf(1)).Build()
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestDecodeValue_IsPermanent(t *testing.T) {
	msg := Message{Value: []byte("{not json")}
	err := msg.DecodeValue(&struct{}{})
	assert.ErrorIs(t, err, ErrPermanentFailure)
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("smtp busy", nil), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad template", nil), ErrorTypePermanent},
		{"wrapped transient", fmt.Errorf("send: %w", NewTransientError("x", nil)), ErrorTypeTransient},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown defaults to permanent", errors.New("weird"), ErrorTypePermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("x", nil)
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("x", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

func TestPublish_Validation(t *testing.T) {
	p := &Producer{topic: "t"}
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	p.closed = true
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	var order []string
	p := &Producer{topic: "t"}
	for _, name := range []string{"outer", "inner"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return errors.New("stop")
		})
	}

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")})
	assert.EqualError(t, err, "stop")
	assert.Equal(t, []string{"outer"}, order)
}
