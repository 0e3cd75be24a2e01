package app

import (
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/messaging/kafka"
)

// initKafkaProducer создаёт producer событий изменений, если заданы brokers.
// Без brokers возвращает nil, nil: события просто не публикуются.
func initKafkaProducer(brokers []string, topic string, logger *log.Entry) (*kafka.Producer, error) {
	brokers = splitList(brokers)
	if len(brokers) == 0 {
		return nil, nil
	}

	producer, err := kafka.NewProducer(brokers, topic)
	if err != nil {
		logger.WithError(err).Warn("failed to create kafka producer")
		return nil, err
	}

	logger.WithFields(log.Fields{"brokers": brokers, "topic": producer.Topic()}).Info("kafka producer initialized")
	return producer, nil
}

// closeKafka закрывает Kafka producer если он не nil.
func closeKafka(producer *kafka.Producer, logger *log.Entry) {
	if producer == nil {
		return
	}

	if err := producer.Close(); err != nil {
		logger.WithError(err).Warn("failed to close kafka producer")
	} else {
		logger.Info("kafka producer closed")
	}
}
