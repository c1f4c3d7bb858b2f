package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestProducer_PublishEvent(t *testing.T) {
	writer := &recordingWriter{}
	p := newProducer(writer, logger.NewDiscardLogger(), &cfg.KafkaCfg{Topic: "catalog-events"})

	event := usecase.NewOutboxEvent(usecase.ProductUpdated, "prod-1", []byte(`{"name":"Mug"}`), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	event.EventID = "evt-1"

	require.NoError(t, p.PublishEvent(context.Background(), event))
	require.Len(t, writer.msgs, 1)

	msg := writer.msgs[0]
	assert.Equal(t, "prod-1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, eventTypeHeader, msg.Headers[0].Key)
	assert.Equal(t, string(usecase.ProductUpdated), string(msg.Headers[0].Value))

	decoded, err := DecodeEvent(msg.Value)
	require.NoError(t, err)
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, "prod-1", decoded.EntityID)

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestProducer_PublishEventWrapsWriterError(t *testing.T) {
	broken := errors.New("kafka: leader not available")
	p := newProducer(&recordingWriter{err: broken}, logger.NewDiscardLogger(), &cfg.KafkaCfg{})

	err := p.PublishEvent(context.Background(), usecase.NewOutboxEvent(usecase.ProductDeleted, "prod-2", []byte(`{"id":"prod-2"}`), time.Now()))
	assert.ErrorIs(t, err, broken)
}
