package kafka

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/jitter"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// messageReader — часть kafka.Reader, нужная консьюмеру.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// InvalidationConsumer слушает события каталога и помечает локальный снимок устаревшим.
// У каждого инстанса своя группа, поэтому событие получает каждый инстанс.
type InvalidationConsumer struct {
	reader      messageReader
	invalidator usecase.CatalogInvalidator
	logger      logger.Logger
	done        chan struct{}
}

func NewInvalidationConsumer(cfg *cfg.KafkaCfg, invalidator usecase.CatalogInvalidator, logger logger.Logger) *InvalidationConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		StartOffset: kafka.LastOffset,
		MaxWait:     time.Second,
	})

	return newInvalidationConsumer(reader, invalidator, logger)
}

func newInvalidationConsumer(reader messageReader, invalidator usecase.CatalogInvalidator, logger logger.Logger) *InvalidationConsumer {
	return &InvalidationConsumer{
		reader:      reader,
		invalidator: invalidator,
		logger:      logger,
		done:        make(chan struct{}),
	}
}

// Start читает топик до отмены ctx.
func (c *InvalidationConsumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		c.run(ctx)
	}()
}

// Stop закрывает reader и ждёт завершения цикла чтения. После Close ReadMessage возвращает io.EOF.
func (c *InvalidationConsumer) Stop() error {
	err := c.reader.Close()
	<-c.done
	return err
}

func (c *InvalidationConsumer) run(ctx context.Context) {
	attempt := 0
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}

			attempt++
			c.logger.Warnf("catalog events read failed (attempt %d): %v", attempt, err)
			if jitter.Sleep(ctx, jitter.ExponentialBackoff(200*time.Millisecond, 10*time.Second, attempt, 0.2)) != nil {
				return
			}
			continue
		}
		attempt = 0

		c.handle(msg)
	}
}

func (c *InvalidationConsumer) handle(msg kafka.Message) {
	event, err := DecodeEvent(msg.Value)
	if err != nil {
		// Сообщение не разобрано, но оно пришло из топика каталога: снимок всё равно сбрасываем
		c.logger.Warnf("undecodable catalog event at offset %d: %v", msg.Offset, err)
		c.invalidator.Invalidate()
		return
	}

	c.logger.Debugf("catalog event %s for %s, invalidating snapshot", event.EventType, event.EntityID)
	c.invalidator.Invalidate()
}
