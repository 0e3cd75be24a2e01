package catalog

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// MetricsRecorder принимает наблюдения об операциях над коллекцией.
type MetricsRecorder interface {
	ObserveOperation(collection, operation string, err error, duration time.Duration)
	ObserveCollectionSize(collection string, size int)
	ObserveChangeEvent(collection string, err error)
}

// Options задаёт зависимости коллекции.
type Options struct {
	Logger           *log.Entry
	Identity         IdentityStrategy
	Publisher        domain.ChangePublisher
	Metrics          MetricsRecorder
	SerializedWrites bool
	Clock            func() time.Time
}

// Option настраивает коллекцию.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithIdentity подменяет стратегию генерации идентификаторов.
func WithIdentity(identity IdentityStrategy) Option {
	return func(opts *Options) {
		opts.Identity = identity
	}
}

// WithPublisher задаёт получателя событий изменений.
func WithPublisher(publisher domain.ChangePublisher) Option {
	return func(opts *Options) {
		opts.Publisher = publisher
	}
}

// WithMetrics задаёт приёмник метрик.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(opts *Options) {
		opts.Metrics = metrics
	}
}

// WithSerializedWrites сериализует мутации внутри процесса: цикл чтение-изменение-запись
// не будет пересекаться с другой мутацией той же коллекции.
func WithSerializedWrites(enabled bool) Option {
	return func(opts *Options) {
		opts.SerializedWrites = enabled
	}
}

// WithClock задаёт источник времени для событий изменений.
func WithClock(clock func() time.Time) Option {
	return func(opts *Options) {
		opts.Clock = clock
	}
}
