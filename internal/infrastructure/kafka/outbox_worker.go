package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jackc/pgx/v5"
)

const (
	outboxChannel   = "outbox_pending"
	outboxBatchSize = 10
	outboxPollEvery = 30 * time.Second
	// Событие в processing дольше этого срока считается брошенным упавшим инстансом.
	outboxStuckAfter = 5 * time.Minute
)

// OutboxWorker публикует события outbox в Kafka. Будится через LISTEN/NOTIFY,
// а периодический опрос подбирает события, уведомление о которых потерялось.
type OutboxWorker struct {
	repo      usecase.OutboxRepository
	logger    logger.Logger
	producer  usecase.MessageProducer
	stop      chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
	dbConnStr string
	drainMu   sync.Mutex
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	logger logger.Logger,
	producer usecase.MessageProducer,
	dbConnStr string,
) *OutboxWorker {
	return &OutboxWorker{
		repo:      repo,
		logger:    logger,
		producer:  producer,
		stop:      make(chan struct{}),
		dbConnStr: dbConnStr,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	w.wg.Add(3)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()

	// Запускаем слушатель уведомлений
	go func() {
		defer w.wg.Done()
		w.listenOutboxNotifications(ctx)
	}()

	go func() {
		defer w.wg.Done()
		defer cancel()
		select {
		case <-w.stop:
		case <-ctx.Done():
		}
	}()
}

func (w *OutboxWorker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
}

func (w *OutboxWorker) run(ctx context.Context) {
	// Обрабатываем "остатки" при старте
	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(outboxPollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-ticker.C:
			w.releaseStuck(ctx)
			w.drain(ctx)
		}
	}
}

// stuckReleaser реализуется репозиторием, умеющим возвращать зависшие события в очередь.
type stuckReleaser interface {
	ReleaseStuck(ctx context.Context, olderThan time.Duration) (int64, error)
}

func (w *OutboxWorker) releaseStuck(ctx context.Context) {
	releaser, ok := w.repo.(stuckReleaser)
	if !ok {
		return
	}

	released, err := releaser.ReleaseStuck(ctx, outboxStuckAfter)
	if err != nil {
		w.logger.Warnf("failed to release stuck outbox events: %v", err)
		return
	}
	if released > 0 {
		w.logger.Warnf("released %d stuck outbox events", released)
	}
}

func (w *OutboxWorker) listenOutboxNotifications(ctx context.Context) {
	var conn *pgx.Conn

	connect := func() error {
		var err error
		conn, err = pgx.Connect(ctx, w.dbConnStr)
		if err != nil {
			return e.Wrap("failed to connect for LISTEN", err)
		}

		if _, err = conn.Exec(ctx, "LISTEN "+outboxChannel); err != nil {
			_ = conn.Close(ctx)
			conn = nil
			return e.Wrap("failed to LISTEN", err)
		}

		w.logger.Infof("Subscribed to '%s' channel", outboxChannel)
		return nil
	}

	attempt := 0
	for conn == nil {
		if err := connect(); err != nil {
			attempt++
			w.logger.Warnf("LISTEN connect failed (attempt %d): %v", attempt, err)
			if jitter.Sleep(ctx, jitter.ExponentialBackoff(time.Second, 30*time.Second, attempt, 0.2)) != nil {
				return
			}
		}
	}
	defer func() {
		if conn != nil {
			_ = conn.Close(context.Background())
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		if conn == nil {
			attempt++
			if jitter.Sleep(ctx, jitter.ExponentialBackoff(time.Second, 30*time.Second, attempt, 0.2)) != nil {
				return
			}
			if err := connect(); err != nil {
				w.logger.Warnf("Reconnect failed: %v", err)
				continue
			}
			attempt = 0
			// Пока соединения не было, уведомления могли потеряться
			w.drain(ctx)
		}

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		notif, err := conn.WaitForNotification(waitCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.Warnf("Connection lost: %v. Reconnecting...", err)
			_ = conn.Close(ctx)
			conn = nil
			continue
		}

		if notif != nil && notif.Channel == outboxChannel {
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		}
	}
}

// drain обрабатывает пачки, пока очередь не опустеет. Вызовы из опроса и из LISTEN не пересекаются.
func (w *OutboxWorker) drain(ctx context.Context) {
	w.drainMu.Lock()
	defer w.drainMu.Unlock()

	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch публикует пачку событий. hasMore=false, если очередь пуста
// или в пачке была ошибка публикации: возвращённые в очередь события подберёт следующий проход.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, outboxBatchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	failed := false
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			failed = true
			w.logger.Warnf("publish event %s failed: %v", event.EventID, err)
			if err := w.repo.MarkAsPending(ctx, event.ID); err != nil {
				w.logger.Warnf("return event %d to queue failed: %v", event.ID, err)
			}
			continue
		}
		if err := w.repo.MarkAsProcessed(ctx, event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return !failed, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	if err := w.producer.PublishEvent(ctx, event); err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Permanent Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}
