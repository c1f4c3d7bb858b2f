package kafka

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanReader struct {
	msgs      chan kafka.Message
	closeOnce sync.Once
	closed    chan struct{}
}

func newChanReader() *chanReader {
	return &chanReader{msgs: make(chan kafka.Message, 8), closed: make(chan struct{})}
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-r.closed:
		return kafka.Message{}, io.EOF
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *chanReader) Close() error {
	r.closeOnce.Do(func() { close(r.closed) })
	return nil
}

type countingInvalidator struct {
	n atomic.Int32
}

func (c *countingInvalidator) Invalidate() { c.n.Add(1) }

func TestInvalidationConsumer_InvalidatesOnEveryMessage(t *testing.T) {
	reader := newChanReader()
	inv := &countingInvalidator{}
	c := newInvalidationConsumer(reader, inv, logger.NewDiscardLogger())

	c.Start(context.Background())

	value, err := EncodeEvent(usecase.NewOutboxEvent(usecase.CategoryCreated, "c1", []byte(`{"name":"Rugs"}`), time.Now()))
	require.NoError(t, err)

	reader.msgs <- kafka.Message{Value: value}
	reader.msgs <- kafka.Message{Value: []byte("not protobuf")}

	require.Eventually(t, func() bool { return inv.n.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.NoError(t, c.Stop())
}

func TestInvalidationConsumer_StopsOnContextCancel(t *testing.T) {
	reader := newChanReader()
	c := newInvalidationConsumer(reader, &countingInvalidator{}, logger.NewDiscardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()

	select {
	case <-c.done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
