package kafka_middleware

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"eventhub/pkg/kafka"
	"eventhub/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMessage(t *testing.T) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey("b-1").
		WithEventType("booking.created").
		WithValue(map[string]string{"booking_id": "b-1"}).
		Build()
	require.NoError(t, err)
	return msg
}

func TestLoggingConsumerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingConsumerMiddleware(log)

	err := mw(context.Background(), testMessage(t), func(context.Context, kafka.Message) error { return nil })
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Processed kafka message")
	assert.Contains(t, buf.String(), "booking.created")

	buf.Reset()
	boom := errors.New("smtp down")
	err = mw(context.Background(), testMessage(t), func(context.Context, kafka.Message) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, buf.String(), "smtp down")
}

func TestLoggingProducerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DEBUG, Output: &buf})
	mw := LoggingProducerMiddleware(log)

	err := mw(context.Background(), testMessage(t), func(context.Context, kafka.Message) error { return nil })
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Published kafka message")
}

func TestRecoveryConsumerMiddleware(t *testing.T) {
	mw := RecoveryConsumerMiddleware(logger.Discard())

	err := mw(context.Background(), testMessage(t), func(context.Context, kafka.Message) error {
		panic("template exploded")
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, kafka.ErrPermanentFailure)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}
