package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// RecordEventHandler обрабатывает событие изменения записи.
type RecordEventHandler func(ctx context.Context, event *RecordEvent) error

// Consumer читает события изменений из consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	topics  []string
	handler RecordEventHandler
	logger  *log.Entry
	wg      sync.WaitGroup
}

// NewConsumer подключается к брокерам и создаёт consumer group.
func NewConsumer(brokers []string, groupID string, topics []string, handler RecordEventHandler) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}
	return newConsumerWithGroup(group, topics, handler), nil
}

func newConsumerWithGroup(group sarama.ConsumerGroup, topics []string, handler RecordEventHandler) *Consumer {
	return &Consumer{
		group:   group,
		topics:  topics,
		handler: handler,
		logger:  log.WithField("component", "kafka-consumer"),
	}
}

// Start запускает чтение в фоне до отмены ctx.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(2)
	go func() {
		defer c.wg.Done()
		for {
			// Consume завершается при каждом rebalance, поэтому вызывается в цикле.
			if err := c.group.Consume(ctx, c.topics, c); err != nil {
				c.logger.WithError(err).Error("error from consumer")
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	go func() {
		defer c.wg.Done()
		for err := range c.group.Errors() {
			c.logger.WithError(err).Error("consumer error")
		}
	}()
	c.logger.WithField("topics", c.topics).Info("kafka consumer started")
}

// Stop закрывает consumer group и ждёт фоновые горутины.
func (c *Consumer) Stop() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.wg.Wait()
	c.logger.Info("kafka consumer stopped")
	return nil
}

func (c *Consumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *Consumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim разбирает сообщения партиции. Нечитаемые сообщения пропускаются с отметкой,
// сообщения с ошибкой обработчика не отмечаются.
func (c *Consumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message := <-claim.Messages():
			if message == nil {
				return nil
			}
			fields := log.Fields{
				"topic":     message.Topic,
				"partition": message.Partition,
				"offset":    message.Offset,
			}

			event, err := ParseRecordEvent(message)
			if err != nil {
				c.logger.WithError(err).WithFields(fields).Warn("skipping malformed record event")
				session.MarkMessage(message, "")
				continue
			}
			if err := c.handler(session.Context(), event); err != nil {
				c.logger.WithError(err).WithFields(fields).Error("record event handler failed")
				continue
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}
