package closer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCloser_closesInReverseOrder(t *testing.T) {
	t.Parallel()

	var order []string
	c := NewCloser(0)
	c.AddSimple("db", func() { order = append(order, "db") })
	c.AddSimple("redis", func() { order = append(order, "redis") })
	c.AddSimple("http", func() { order = append(order, "http") })

	require.NoError(t, c.Close(context.Background()))
	require.Equal(t, []string{"http", "redis", "db"}, order)
}

func TestCloser_collectsErrors(t *testing.T) {
	t.Parallel()

	c := NewCloser(0)
	c.Add("kafka", func(context.Context) error { return errors.New("boom") })
	c.AddSimple("db", func() {})

	err := c.Close(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "kafka: boom")
}

func TestCloser_closeIsIdempotent(t *testing.T) {
	t.Parallel()

	calls := 0
	c := NewCloser(0)
	c.AddSimple("db", func() { calls++ })

	require.NoError(t, c.Close(context.Background()))
	require.NoError(t, c.Close(context.Background()))
	require.Equal(t, 1, calls)
}

func TestCloser_forcesRemainingOnTimeout(t *testing.T) {
	t.Parallel()

	forced := make(chan struct{}, 1)
	c := NewCloser(100 * time.Millisecond)
	c.Add("first", func(ctx context.Context) error {
		forced <- struct{}{}
		return nil
	})
	var slowCalls atomic.Int32
	c.Add("slow", func(ctx context.Context) error {
		if slowCalls.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := c.Close(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "shutdown interrupted")
	require.Len(t, forced, 1)
}
