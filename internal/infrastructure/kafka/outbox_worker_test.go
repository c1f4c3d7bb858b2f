package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOutboxRepo struct {
	queue     []*usecase.OutboxEvent
	processed []int64
	requeued  []int64
}

func (s *stubOutboxRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	return event, nil
}

func (s *stubOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	n := min(limit, len(s.queue))
	batch := s.queue[:n]
	s.queue = s.queue[n:]
	return batch, nil
}

func (s *stubOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	s.processed = append(s.processed, id)
	return nil
}

func (s *stubOutboxRepo) MarkAsPending(ctx context.Context, id int64) error {
	s.requeued = append(s.requeued, id)
	return nil
}

type stubProducer struct {
	failIDs map[int64]error
	sent    []int64
}

func (s *stubProducer) PublishEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := s.failIDs[event.ID]; err != nil {
		return err
	}
	s.sent = append(s.sent, event.ID)
	return nil
}

func eventsWithIDs(ids ...int64) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(ids))
	for _, id := range ids {
		out = append(out, &usecase.OutboxEvent{ID: id, EventType: usecase.ProductCreated})
	}
	return out
}

func TestOutboxWorker_DrainPublishesEverything(t *testing.T) {
	repo := &stubOutboxRepo{queue: eventsWithIDs(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)}
	producer := &stubProducer{}
	w := NewOutboxWorker(repo, logger.NewDiscardLogger(), producer, "")

	w.drain(context.Background())

	assert.Len(t, producer.sent, 12)
	assert.Len(t, repo.processed, 12)
	assert.Empty(t, repo.queue)
}

func TestOutboxWorker_FailedEventReturnsToQueue(t *testing.T) {
	repo := &stubOutboxRepo{queue: eventsWithIDs(1, 2, 3)}
	producer := &stubProducer{failIDs: map[int64]error{2: errors.New("dial tcp: connection refused")}}
	w := NewOutboxWorker(repo, logger.NewDiscardLogger(), producer, "")

	hasMore, err := w.processBatch(context.Background())
	require.NoError(t, err)

	assert.False(t, hasMore)
	assert.Equal(t, []int64{1, 3}, repo.processed)
	assert.Equal(t, []int64{2}, repo.requeued)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("read tcp 10.0.0.1: i/o timeout")))
	assert.True(t, isRetryableError(errors.New("Broker Not Available")))
	assert.False(t, isRetryableError(errors.New("message too large")))
	assert.False(t, isRetryableError(nil))
}

type releasingOutboxRepo struct {
	stubOutboxRepo
	olderThan time.Duration
}

func (r *releasingOutboxRepo) ReleaseStuck(_ context.Context, olderThan time.Duration) (int64, error) {
	r.olderThan = olderThan
	return 2, nil
}

func TestOutboxWorker_ReleasesStuckEventsWhenSupported(t *testing.T) {
	repo := &releasingOutboxRepo{}
	w := NewOutboxWorker(repo, logger.NewDiscardLogger(), &stubProducer{}, "")

	w.releaseStuck(context.Background())
	assert.Equal(t, outboxStuckAfter, repo.olderThan)

	// Репозиторий без ReleaseStuck просто пропускается.
	NewOutboxWorker(&stubOutboxRepo{}, logger.NewDiscardLogger(), &stubProducer{}, "").releaseStuck(context.Background())
}
