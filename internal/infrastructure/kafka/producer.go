package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/internal/usecase"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/DRSN-tech/storefront/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// messageWriter — часть kafka.Writer, которой пользуется Producer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события каталога в общий топик.
type Producer struct {
	writer messageWriter
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchSize:    outboxBatchSize,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}

	return newProducer(writer, logger, cfg)
}

func newProducer(writer messageWriter, logger logger.Logger, cfg *cfg.KafkaCfg) *Producer {
	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}
}

// PublishEvent отправляет событие каталога. Ключ сообщения — ID сущности,
// поэтому события одного товара попадают в одну партицию по порядку.
func (p *Producer) PublishEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	value, err := EncodeEvent(event)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID),
		Value: value,
		Headers: []kafka.Header{
			{Key: eventTypeHeader, Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return e.Wrap(fmt.Sprintf("publish %s %s", event.EventType, event.EventID), err)
	}

	return nil
}

// EnsureTopic создаёт топик через контроллер кластера, если его ещё нет.
// Брокеры перебираются по очереди, пока один не ответит.
func (p *Producer) EnsureTopic(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, broker := range p.cfg.Brokers {
		created, err := p.ensureTopicVia(ctx, broker)
		if err == nil {
			if created {
				p.logger.Infof("kafka topic %s created", p.cfg.Topic)
			}
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", broker, err))
		if ctx.Err() != nil {
			break
		}
	}

	return e.Wrap(whereami.WhereAmI(), fmt.Errorf("topic %s: %w", p.cfg.Topic, errors.Join(errs...)))
}

func (p *Producer) ensureTopicVia(ctx context.Context, broker string) (bool, error) {
	dialer := &kafka.Dialer{Timeout: 5 * time.Second}

	conn, err := dialer.DialContext(ctx, p.cfg.NetworkMode, broker)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	partitions, err := conn.ReadPartitions(p.cfg.Topic)
	if err == nil && len(partitions) > 0 {
		return false, nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return false, err
	}

	ctrl, err := dialer.DialContext(ctx, p.cfg.NetworkMode, net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return false, err
	}
	defer ctrl.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = ctrl.SetDeadline(deadline)
	}

	err = ctrl.CreateTopics(kafka.TopicConfig{
		Topic:             p.cfg.Topic,
		NumPartitions:     p.cfg.Partitions,
		ReplicationFactor: p.cfg.ReplicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return false, err
	}

	return err == nil, nil
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
